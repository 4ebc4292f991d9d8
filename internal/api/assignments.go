package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/georgemallousis-design/MyWarehouse/internal/store"
)

// AssignmentsHandler handles the assignment lifecycle endpoints.
type AssignmentsHandler struct {
	DB *sql.DB
}

type assignRequest struct {
	CustomerID string `json:"customer_id"`
	Serial     string `json:"serial"`
}

type unassignRequest struct {
	Serial string `json:"serial"`
	Purge  bool   `json:"purge"`
}

type transferRequest struct {
	Serials      []string `json:"serials"`
	FromCustomer string   `json:"from_customer"`
}

// Assign handles POST /api/assignments.
func (h *AssignmentsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.AssignSerial(r.Context(), h.DB, req.CustomerID, req.Serial); err != nil {
		storeError(w, err, "failed to assign serial")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("serial assigned", "user", claims.Username,
		"serial", req.Serial, "customer", req.CustomerID)
	jsonResponse(w, http.StatusCreated, map[string]string{"message": "serial assigned"})
}

// Unassign handles POST /api/assignments/unassign. With purge set, the
// history record is removed instead of soft-deleted.
func (h *AssignmentsHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	var req unassignRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Serial == "" {
		jsonError(w, http.StatusBadRequest, "serial required")
		return
	}

	var err error
	if req.Purge {
		err = store.UnassignSerialAndPurge(r.Context(), h.DB, req.Serial)
	} else {
		err = store.UnassignSerial(r.Context(), h.DB, req.Serial)
	}
	if err != nil {
		storeError(w, err, "failed to unassign serial")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("serial unassigned", "user", claims.Username,
		"serial", req.Serial, "purge", req.Purge)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "serial unassigned"})
}

// TransferToUsed handles POST /api/assignments/transfer-used, moving serial
// units into used stock, releasing them from their holders first.
func (h *AssignmentsHandler) TransferToUsed(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Serials) == 0 {
		jsonError(w, http.StatusBadRequest, "serials required")
		return
	}

	n, err := store.TransferSerialsToUsed(r.Context(), h.DB, req.Serials, req.FromCustomer)
	if err != nil {
		storeError(w, err, "failed to transfer serials")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("serials transferred to used stock", "user", claims.Username, "count", n)
	jsonResponse(w, http.StatusOK, map[string]int{"transferred": n})
}
