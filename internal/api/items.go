package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/podari/internal/blob"
	"github.com/erazemk/podari/internal/docstore"
	"github.com/erazemk/podari/internal/imaging"
	"github.com/erazemk/podari/internal/model"
	"github.com/erazemk/podari/internal/store"
)

// ItemsHandler handles listing CRUD and image upload endpoints.
type ItemsHandler struct {
	Docs  docstore.Client
	Blobs *blob.Store
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.ItemFilter{
		Category: r.URL.Query().Get("category"),
		OwnerID:  r.URL.Query().Get("owner"),
	}
	if maxStr := r.URL.Query().Get("max"); maxStr != "" {
		max, err := strconv.Atoi(maxStr)
		if err != nil || max < 1 {
			jsonError(w, http.StatusBadRequest, "invalid max")
			return
		}
		filter.Max = max
	}

	items, err := store.ListItems(r.Context(), h.Docs, filter)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	var input model.ItemInput
	if err := decodeJSON(r, &input); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if input.Title == "" {
		jsonError(w, http.StatusBadRequest, "title required")
		return
	}
	if input.Category == "" {
		jsonError(w, http.StatusBadRequest, "category required")
		return
	}
	if input.HandoffMethod != model.HandoffShip && input.HandoffMethod != model.HandoffMeet {
		jsonError(w, http.StatusBadRequest, "handoffMethod must be ship or meet")
		return
	}

	id, err := store.CreateItem(r.Context(), h.Docs, user.UserID, input)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	item, err := store.GetItem(r.Context(), h.Docs, id)
	if err != nil || item == nil {
		jsonError(w, http.StatusInternalServerError, "failed to load created item")
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := store.GetItem(r.Context(), h.Docs, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}

	var update model.ItemUpdate
	if err := decodeJSON(r, &update); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if update.HandoffMethod != nil &&
		*update.HandoffMethod != model.HandoffShip && *update.HandoffMethod != model.HandoffMeet {
		jsonError(w, http.StatusBadRequest, "handoffMethod must be ship or meet")
		return
	}

	if err := store.UpdateItem(r.Context(), h.Docs, item.ID, update); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	updated, _ := store.GetItem(r.Context(), h.Docs, item.ID)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}

	if err := store.DeleteItem(r.Context(), h.Docs, item.ID); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadImages handles POST /api/items/{id}/images. Each uploaded file
// is validated, downscaled, re-encoded, stored as a blob, and its URL
// appended to the item's gallery.
func (h *ItemsHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	item, ok := h.ownedItem(w, r)
	if !ok {
		return
	}

	// Limit to 20 MB across all files.
	r.Body = http.MaxBytesReader(w, r.Body, 20<<20)
	if err := r.ParseMultipartForm(20 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "files too large or invalid multipart form")
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		jsonError(w, http.StatusBadRequest, "at least one image required")
		return
	}

	var urls []string
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			jsonError(w, http.StatusBadRequest, "failed to read upload")
			return
		}
		result, err := imaging.Process(file)
		file.Close()
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}

		url, err := h.Blobs.Put(result.Data, ".jpg")
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to store image")
			return
		}
		urls = append(urls, url)
	}

	if err := store.AppendItemImages(r.Context(), h.Docs, item.ID, urls); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save image urls")
		return
	}

	updated, _ := store.GetItem(r.Context(), h.Docs, item.ID)
	jsonResponse(w, http.StatusOK, updated)
}

// ownedItem loads the item from the path and verifies the current user
// owns it, writing the error response itself when not.
func (h *ItemsHandler) ownedItem(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	item, err := store.GetItem(r.Context(), h.Docs, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil, false
	}

	user := CurrentUser(r.Context())
	if user == nil || user.UserID != item.OwnerID {
		jsonError(w, http.StatusForbidden, "not the item owner")
		return nil, false
	}
	return item, true
}
