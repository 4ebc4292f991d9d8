package api

import (
	"database/sql"
	"net/http"

	"github.com/georgemallousis-design/MyWarehouse/internal/model"
	"github.com/georgemallousis-design/MyWarehouse/internal/store"
)

// CustomersHandler handles customer CRUD and history endpoints.
type CustomersHandler struct {
	DB *sql.DB
}

type createCustomerRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// List handles GET /api/customers. An optional q parameter filters by name
// or ID substring.
func (h *CustomersHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := store.SearchCustomers(r.Context(), h.DB, r.URL.Query().Get("q"))
	if err != nil {
		storeError(w, err, "failed to list customers")
		return
	}
	if customers == nil {
		customers = []model.Customer{}
	}
	jsonResponse(w, http.StatusOK, customers)
}

// Create handles POST /api/customers.
func (h *CustomersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	customer, err := store.CreateCustomer(r.Context(), h.DB, req.ID, req.Name, req.Phone, req.Email)
	if err != nil {
		storeError(w, err, "failed to create customer")
		return
	}
	jsonResponse(w, http.StatusCreated, customer)
}

// Get handles GET /api/customers/{id}.
func (h *CustomersHandler) Get(w http.ResponseWriter, r *http.Request) {
	customer, err := store.GetCustomer(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err, "failed to get customer")
		return
	}
	if customer == nil {
		jsonError(w, http.StatusNotFound, "customer not found")
		return
	}
	jsonResponse(w, http.StatusOK, customer)
}

// Update handles PUT /api/customers/{id}. Absent fields keep their value.
func (h *CustomersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var upd model.CustomerUpdate
	if err := decodeJSON(r, &upd); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.UpdateCustomer(r.Context(), h.DB, id, upd); err != nil {
		storeError(w, err, "failed to update customer")
		return
	}

	customer, err := store.GetCustomer(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get customer")
		return
	}
	jsonResponse(w, http.StatusOK, customer)
}

// Delete handles DELETE /api/customers/{id}. Assignment history cascades
// away with the customer; assigned serials become available again.
func (h *CustomersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteCustomer(r.Context(), h.DB, r.PathValue("id")); err != nil {
		storeError(w, err, "failed to delete customer")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "customer deleted"})
}

// History handles GET /api/customers/{id}/history.
func (h *CustomersHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := store.GetCustomerHistory(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, err, "failed to get customer history")
		return
	}
	if history == nil {
		history = []model.Assignment{}
	}
	jsonResponse(w, http.StatusOK, history)
}
