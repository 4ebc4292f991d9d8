package api

import (
	"database/sql"
	"net/http"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/georgemallousis-design/MyWarehouse/internal/imaging"
	"github.com/georgemallousis-design/MyWarehouse/internal/model"
	"github.com/georgemallousis-design/MyWarehouse/internal/store"
)

// thumbCacheSize bounds the number of rendered thumbnails kept in memory.
const thumbCacheSize = 256

type thumbKey struct {
	materialID int64
	size       int
}

// MaterialsHandler handles material CRUD, photo and categorization endpoints.
type MaterialsHandler struct {
	DB     *sql.DB
	thumbs *lru.Cache[thumbKey, []byte]
}

// NewMaterialsHandler builds the handler with its thumbnail cache.
func NewMaterialsHandler(db *sql.DB) *MaterialsHandler {
	thumbs, err := lru.New[thumbKey, []byte](thumbCacheSize)
	if err != nil {
		panic(err)
	}
	return &MaterialsHandler{DB: db, thumbs: thumbs}
}

type createMaterialRequest struct {
	Name           string   `json:"name"`
	Model          string   `json:"model"`
	Producer       string   `json:"producer"`
	Description    string   `json:"description"`
	RetailPrice    *float64 `json:"retail_price"`
	Used           bool     `json:"used"`
	WarrantyMonths *int     `json:"warranty_months"`
}

type setCategoryRequest struct {
	Category string `json:"category"`
}

type learnAliasRequest struct {
	Token    string `json:"token"`
	Category string `json:"category"`
}

// List handles GET /api/materials. Query parameters: used (bool), q (name
// substring), category (manual or auto category).
func (h *MaterialsHandler) List(w http.ResponseWriter, r *http.Request) {
	used := r.URL.Query().Get("used") == "true"
	materials, err := store.ListMaterials(r.Context(), h.DB, used,
		r.URL.Query().Get("q"), r.URL.Query().Get("category"))
	if err != nil {
		storeError(w, err, "failed to list materials")
		return
	}
	if materials == nil {
		materials = []model.Material{}
	}
	jsonResponse(w, http.StatusOK, materials)
}

// Create handles POST /api/materials.
func (h *MaterialsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMaterialRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	material, err := store.CreateMaterial(r.Context(), h.DB, &model.Material{
		Name: req.Name, Model: req.Model, Producer: req.Producer,
		Description: req.Description, RetailPrice: req.RetailPrice,
		Used: req.Used, WarrantyMonths: req.WarrantyMonths,
	})
	if err != nil {
		storeError(w, err, "failed to create material")
		return
	}

	// New materials get an immediate category guess.
	if material, err = store.AutocategorizeMaterial(r.Context(), h.DB, material.ID); err != nil {
		storeError(w, err, "failed to categorize material")
		return
	}
	jsonResponse(w, http.StatusCreated, material)
}

// Get handles GET /api/materials/{id}.
func (h *MaterialsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}
	material, err := store.GetMaterial(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get material")
		return
	}
	if material == nil {
		jsonError(w, http.StatusNotFound, "material not found")
		return
	}
	jsonResponse(w, http.StatusOK, material)
}

// Update handles PUT /api/materials/{id}. Absent fields keep their value.
func (h *MaterialsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}

	var upd model.MaterialUpdate
	if err := decodeJSON(r, &upd); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.UpdateMaterial(r.Context(), h.DB, id, upd); err != nil {
		storeError(w, err, "failed to update material")
		return
	}

	// Name or model changes can shift the category guess.
	material, err := store.AutocategorizeMaterial(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to categorize material")
		return
	}
	jsonResponse(w, http.StatusOK, material)
}

// SetCategory handles PUT /api/materials/{id}/category. An empty category
// clears the manual override.
func (h *MaterialsHandler) SetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}

	var req setCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetMaterialCategory(r.Context(), h.DB, id, req.Category); err != nil {
		storeError(w, err, "failed to set category")
		return
	}
	material, err := store.GetMaterial(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get material")
		return
	}
	jsonResponse(w, http.StatusOK, material)
}

// Delete handles DELETE /api/materials/{id}.
func (h *MaterialsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}
	if err := store.DeleteMaterial(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete material")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "material deleted"})
}

// Categories handles GET /api/categories. With min set, only categories
// backed by at least that many materials are returned.
func (h *MaterialsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	var categories []string
	var err error
	if minStr := r.URL.Query().Get("min"); minStr != "" {
		minCount, convErr := strconv.Atoi(minStr)
		if convErr != nil {
			jsonError(w, http.StatusBadRequest, "invalid min parameter")
			return
		}
		categories, err = store.ListDynamicCategories(r.Context(), h.DB, minCount)
	} else {
		categories, err = store.ListCategories(r.Context(), h.DB)
	}
	if err != nil {
		storeError(w, err, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	jsonResponse(w, http.StatusOK, categories)
}

// Categorize handles POST /api/materials/{id}/categorize.
func (h *MaterialsHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}
	material, err := store.AutocategorizeMaterial(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to categorize material")
		return
	}
	jsonResponse(w, http.StatusOK, material)
}

// Recategorize handles POST /api/materials/recategorize, sweeping the whole
// catalog. With only_uncategorized=true, manually categorized materials are
// left alone.
func (h *MaterialsHandler) Recategorize(w http.ResponseWriter, r *http.Request) {
	onlyUncategorized := r.URL.Query().Get("only_uncategorized") == "true"
	n, err := store.BatchAutocategorize(r.Context(), h.DB, onlyUncategorized)
	if err != nil {
		storeError(w, err, "failed to recategorize materials")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"categorized": n})
}

// LearnAlias handles POST /api/aliases, teaching the categorizer a token.
func (h *MaterialsHandler) LearnAlias(w http.ResponseWriter, r *http.Request) {
	var req learnAliasRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := store.LearnAlias(r.Context(), h.DB, req.Token, req.Category); err != nil {
		storeError(w, err, "failed to learn alias")
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]string{"message": "alias learned"})
}

// DeleteAlias handles DELETE /api/aliases/{token}.
func (h *MaterialsHandler) DeleteAlias(w http.ResponseWriter, r *http.Request) {
	if err := store.DeleteAlias(r.Context(), h.DB, r.PathValue("token")); err != nil {
		storeError(w, err, "failed to delete alias")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "alias deleted"})
}

// UploadImage handles PUT /api/materials/{id}/image. The upload is validated,
// downscaled and stored as JPEG.
func (h *MaterialsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}
	defer r.Body.Close()

	data, mime, err := imaging.Prepare(http.MaxBytesReader(w, r.Body, 10<<20))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetMaterialImage(r.Context(), h.DB, id, data, mime); err != nil {
		storeError(w, err, "failed to store image")
		return
	}

	// Stale thumbnails for this material must not be served.
	for _, key := range h.thumbs.Keys() {
		if key.materialID == id {
			h.thumbs.Remove(key)
		}
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/materials/{id}/image.
func (h *MaterialsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}
	data, mime, err := store.GetMaterialImage(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "material has no image")
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Write(data)
}

// Thumbnail handles GET /api/materials/{id}/thumbnail. The rendered
// thumbnail is cached per (material, size).
func (h *MaterialsHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	id, ok := materialID(w, r)
	if !ok {
		return
	}

	size := 128
	if sizeStr := r.URL.Query().Get("size"); sizeStr != "" {
		var err error
		if size, err = strconv.Atoi(sizeStr); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid size parameter")
			return
		}
	}

	key := thumbKey{materialID: id, size: size}
	if thumb, ok := h.thumbs.Get(key); ok {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(thumb)
		return
	}

	data, _, err := store.GetMaterialImage(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "material has no image")
		return
	}

	thumb, err := imaging.Thumbnail(data, size)
	if err != nil {
		storeError(w, err, "failed to render thumbnail")
		return
	}
	h.thumbs.Add(key, thumb)

	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(thumb)
}

// materialID parses the id path value, writing a 400 on failure.
func materialID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid material id")
		return 0, false
	}
	return id, true
}
