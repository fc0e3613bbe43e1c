package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/scrinia/scrinia/internal/database"
	"github.com/scrinia/scrinia/internal/middleware"
)

type FileHandler struct {
	db *database.DB
}

func NewFileHandler(db *database.DB) *FileHandler {
	return &FileHandler{db: db}
}

// List returns the user's catalogued files, optionally filtered to those
// bearing at least one of the ?tags= IDs (comma separated).
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var tagIDs []int64
	if raw := r.URL.Query().Get("tags"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				http.Error(w, "Invalid tag filter", http.StatusBadRequest)
				return
			}
			tagIDs = append(tagIDs, id)
		}
	}

	files, err := h.db.GetFiles(r.Context(), claims.UserID, tagIDs)
	if err != nil {
		http.Error(w, "Failed to list files", http.StatusInternalServerError)
		return
	}
	if files == nil {
		files = []*database.FileHandle{}
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	file, err := h.db.GetFile(r.Context(), claims.UserID, id)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

type TagHandler struct {
	db *database.DB
}

func NewTagHandler(db *database.DB) *TagHandler {
	return &TagHandler{db: db}
}

type TagRequest struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	tags, err := h.db.GetTags(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to list tags", http.StatusInternalServerError)
		return
	}
	if tags == nil {
		tags = []*database.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	tag, err := h.db.CreateTag(r.Context(), claims.UserID, req.Name, req.Color)
	if err != nil {
		http.Error(w, "Failed to create tag", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid tag ID", http.StatusBadRequest)
		return
	}

	deleted, err := h.db.DeleteTag(r.Context(), claims.UserID, id)
	if err != nil {
		http.Error(w, "Failed to delete tag", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Tag not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TagHandler) TagFile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	fileID, err := strconv.ParseInt(chi.URLParam(r, "fileId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}
	tagID, err := strconv.ParseInt(chi.URLParam(r, "tagId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid tag ID", http.StatusBadRequest)
		return
	}

	if _, err := h.db.GetFile(r.Context(), claims.UserID, fileID); err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	if err := h.db.TagFile(r.Context(), fileID, tagID); err != nil {
		http.Error(w, "Failed to tag file", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TagHandler) UntagFile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	fileID, err := strconv.ParseInt(chi.URLParam(r, "fileId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}
	tagID, err := strconv.ParseInt(chi.URLParam(r, "tagId"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid tag ID", http.StatusBadRequest)
		return
	}

	if _, err := h.db.GetFile(r.Context(), claims.UserID, fileID); err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	if err := h.db.UntagFile(r.Context(), fileID, tagID); err != nil {
		http.Error(w, "Failed to untag file", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
