package api

import (
	"database/sql"
	"net/http"

	"github.com/georgemallousis-design/MyWarehouse/internal/model"
	"github.com/georgemallousis-design/MyWarehouse/internal/store"
)

// SerialsHandler handles serial unit endpoints.
type SerialsHandler struct {
	DB *sql.DB
}

type addSerialsRequest struct {
	Serials         []string `json:"serials"`
	ProductionDate  string   `json:"production_date"`
	AcquisitionDate string   `json:"acquisition_date"`
	RetailPrice     *float64 `json:"retail_price"`
}

type serialListRequest struct {
	Serials []string `json:"serials"`
}

type resolveResponse struct {
	Valid   []string `json:"valid"`
	Invalid []string `json:"invalid"`
}

// Add handles POST /api/materials/{id}/serials, registering units in bulk.
// Blank and duplicate serials are skipped; the response carries the number
// actually added.
func (h *SerialsHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}

	var req addSerialsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Serials) == 0 {
		jsonError(w, http.StatusBadRequest, "serials required")
		return
	}

	added, err := store.AddSerials(r.Context(), h.DB, id, req.Serials, store.AddSerialsOptions{
		ProductionDate:  req.ProductionDate,
		AcquisitionDate: req.AcquisitionDate,
		RetailPrice:     req.RetailPrice,
	})
	if err != nil {
		storeError(w, err, "failed to add serials")
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]int{"added": added})
}

// List handles GET /api/materials/{id}/serials. Assigned units are included
// only with include_assigned=true.
func (h *SerialsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}

	includeAssigned := r.URL.Query().Get("include_assigned") == "true"
	serials, err := store.ListSerialsByMaterial(r.Context(), h.DB, id, includeAssigned)
	if err != nil {
		storeError(w, err, "failed to list serials")
		return
	}
	if serials == nil {
		serials = []model.SerialUnit{}
	}
	jsonResponse(w, http.StatusOK, serials)
}

// Get handles GET /api/serials/{serial}.
func (h *SerialsHandler) Get(w http.ResponseWriter, r *http.Request) {
	serial, err := store.GetSerial(r.Context(), h.DB, r.PathValue("serial"))
	if err != nil {
		storeError(w, err, "failed to get serial")
		return
	}
	if serial == nil {
		jsonError(w, http.StatusNotFound, "serial not found")
		return
	}
	jsonResponse(w, http.StatusOK, serial)
}

// Resolve handles POST /api/serials/resolve, partitioning scanned serials
// into assignable and rejected ones ahead of a bulk assignment.
func (h *SerialsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req serialListRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	valid, invalid, err := store.ResolveSerialsForCustomer(r.Context(), h.DB, req.Serials)
	if err != nil {
		storeError(w, err, "failed to resolve serials")
		return
	}
	if valid == nil {
		valid = []string{}
	}
	if invalid == nil {
		invalid = []string{}
	}
	jsonResponse(w, http.StatusOK, resolveResponse{Valid: valid, Invalid: invalid})
}

// Delete handles POST /api/serials/delete, removing units in bulk while
// keeping their assignment history.
func (h *SerialsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req serialListRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Serials) == 0 {
		jsonError(w, http.StatusBadRequest, "serials required")
		return
	}

	deleted, err := store.DeleteSerials(r.Context(), h.DB, req.Serials)
	if err != nil {
		storeError(w, err, "failed to delete serials")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"deleted": deleted})
}

// History handles GET /api/serials/{serial}/history.
func (h *SerialsHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := store.GetSerialHistory(r.Context(), h.DB, r.PathValue("serial"))
	if err != nil {
		storeError(w, err, "failed to get serial history")
		return
	}
	if history == nil {
		history = []model.Assignment{}
	}
	jsonResponse(w, http.StatusOK, history)
}
