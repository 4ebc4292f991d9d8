package api

import (
	"database/sql"
	"net/http"

	"github.com/georgemallousis-design/MyWarehouse/internal/model"
)

// NewRouter creates the API router with all endpoints registered. Reads are
// open to every authenticated role; stock and customer writes need operator,
// user management needs admin3 plus the hierarchy policy.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	customersHandler := &CustomersHandler{DB: db}
	materialsHandler := NewMaterialsHandler(db)
	serialsHandler := &SerialsHandler{DB: db}
	assignmentsHandler := &AssignmentsHandler{DB: db}
	usersHandler := &UsersHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret)
	requireOperator := RequireRole(model.RoleOperator)
	requireAdmin := RequireRole(model.RoleAdmin3)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Customers: read (all roles), write (operator+).
	mux.Handle("GET /api/customers", authMW(http.HandlerFunc(customersHandler.List)))
	mux.Handle("POST /api/customers", authMW(requireOperator(http.HandlerFunc(customersHandler.Create))))
	mux.Handle("GET /api/customers/{id}", authMW(http.HandlerFunc(customersHandler.Get)))
	mux.Handle("PUT /api/customers/{id}", authMW(requireOperator(http.HandlerFunc(customersHandler.Update))))
	mux.Handle("DELETE /api/customers/{id}", authMW(requireOperator(http.HandlerFunc(customersHandler.Delete))))
	mux.Handle("GET /api/customers/{id}/history", authMW(http.HandlerFunc(customersHandler.History)))

	// Materials and categorization.
	mux.Handle("GET /api/materials", authMW(http.HandlerFunc(materialsHandler.List)))
	mux.Handle("POST /api/materials", authMW(requireOperator(http.HandlerFunc(materialsHandler.Create))))
	mux.Handle("POST /api/materials/recategorize", authMW(requireOperator(http.HandlerFunc(materialsHandler.Recategorize))))
	mux.Handle("GET /api/materials/{id}", authMW(http.HandlerFunc(materialsHandler.Get)))
	mux.Handle("PUT /api/materials/{id}", authMW(requireOperator(http.HandlerFunc(materialsHandler.Update))))
	mux.Handle("DELETE /api/materials/{id}", authMW(requireOperator(http.HandlerFunc(materialsHandler.Delete))))
	mux.Handle("PUT /api/materials/{id}/category", authMW(requireOperator(http.HandlerFunc(materialsHandler.SetCategory))))
	mux.Handle("POST /api/materials/{id}/categorize", authMW(requireOperator(http.HandlerFunc(materialsHandler.Categorize))))
	mux.Handle("PUT /api/materials/{id}/image", authMW(requireOperator(http.HandlerFunc(materialsHandler.UploadImage))))
	mux.Handle("GET /api/materials/{id}/image", authMW(http.HandlerFunc(materialsHandler.GetImage)))
	mux.Handle("GET /api/materials/{id}/thumbnail", authMW(http.HandlerFunc(materialsHandler.Thumbnail)))
	mux.Handle("GET /api/categories", authMW(http.HandlerFunc(materialsHandler.Categories)))
	mux.Handle("POST /api/aliases", authMW(requireOperator(http.HandlerFunc(materialsHandler.LearnAlias))))
	mux.Handle("DELETE /api/aliases/{token}", authMW(requireOperator(http.HandlerFunc(materialsHandler.DeleteAlias))))

	// Serial units.
	mux.Handle("POST /api/materials/{id}/serials", authMW(requireOperator(http.HandlerFunc(serialsHandler.Add))))
	mux.Handle("GET /api/materials/{id}/serials", authMW(http.HandlerFunc(serialsHandler.List)))
	mux.Handle("GET /api/serials/{serial}", authMW(http.HandlerFunc(serialsHandler.Get)))
	mux.Handle("GET /api/serials/{serial}/history", authMW(http.HandlerFunc(serialsHandler.History)))
	mux.Handle("POST /api/serials/resolve", authMW(http.HandlerFunc(serialsHandler.Resolve)))
	mux.Handle("POST /api/serials/delete", authMW(requireOperator(http.HandlerFunc(serialsHandler.Delete))))

	// Assignment lifecycle (operator+).
	mux.Handle("POST /api/assignments", authMW(requireOperator(http.HandlerFunc(assignmentsHandler.Assign))))
	mux.Handle("POST /api/assignments/unassign", authMW(requireOperator(http.HandlerFunc(assignmentsHandler.Unassign))))
	mux.Handle("POST /api/assignments/transfer-used", authMW(requireOperator(http.HandlerFunc(assignmentsHandler.TransferToUsed))))

	// Users (admin3+, further policed per target).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("PUT /api/users/{username}/role", authMW(requireAdmin(http.HandlerFunc(usersHandler.UpdateRole))))
	mux.Handle("PUT /api/users/{username}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{username}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	return LoggingMiddleware(mux)
}
