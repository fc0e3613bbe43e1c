package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/scrinia/scrinia/internal/auth"
	"github.com/scrinia/scrinia/internal/database"
	"github.com/scrinia/scrinia/internal/middleware"
	"github.com/scrinia/scrinia/internal/syncer"
)

type ShareHandler struct {
	db     *database.DB
	syncer *syncer.Service
}

func NewShareHandler(db *database.DB, sync *syncer.Service) *ShareHandler {
	return &ShareHandler{db: db, syncer: sync}
}

type ShareRequest struct {
	Name              string  `json:"name"`
	Key               string  `json:"key"`
	Permissions       string  `json:"permissions"`
	CloudSync         *bool   `json:"cloudSync"`
	PrivacyProfileIDs []int64 `json:"privacyProfileIds"`
	TagIDs            []int64 `json:"tagIds"`
}

func (h *ShareHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	shares, err := h.db.GetShares(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to list shares", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, shares)
}

func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	key := req.Key
	if key == "" {
		generated, err := auth.GenerateShareKey()
		if err != nil {
			http.Error(w, "Failed to generate key", http.StatusInternalServerError)
			return
		}
		key = generated
	}
	permissions := req.Permissions
	if permissions == "" {
		permissions = "all"
	}

	share, err := h.db.CreateShare(r.Context(), claims.UserID, req.Name, key, permissions, req.TagIDs, req.PrivacyProfileIDs)
	if err != nil {
		http.Error(w, "Failed to create share", http.StatusInternalServerError)
		return
	}

	if req.CloudSync != nil && *req.CloudSync {
		if err := h.db.UpdateShare(r.Context(), claims.UserID, share.ID, database.ShareUpdate{CloudSync: req.CloudSync}); err != nil {
			http.Error(w, "Failed to create share", http.StatusInternalServerError)
			return
		}
		share.CloudSync = true
	}

	writeJSON(w, http.StatusCreated, share)
}

func (h *ShareHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid share ID", http.StatusBadRequest)
		return
	}

	share, err := h.db.GetShare(r.Context(), claims.UserID, id)
	if err != nil {
		http.Error(w, "Share not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, share)
}

func (h *ShareHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid share ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Name              *string  `json:"name"`
		Permissions       *string  `json:"permissions"`
		CloudSync         *bool    `json:"cloudSync"`
		PrivacyProfileIDs *[]int64 `json:"privacyProfileIds"`
		TagIDs            *[]int64 `json:"tagIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if _, err := h.db.GetShare(r.Context(), claims.UserID, id); err != nil {
		http.Error(w, "Share not found", http.StatusNotFound)
		return
	}

	update := database.ShareUpdate{
		Name:              req.Name,
		Permissions:       req.Permissions,
		CloudSync:         req.CloudSync,
		PrivacyProfileIDs: req.PrivacyProfileIDs,
		TagIDs:            req.TagIDs,
	}
	if err := h.db.UpdateShare(r.Context(), claims.UserID, id, update); err != nil {
		http.Error(w, "Failed to update share", http.StatusInternalServerError)
		return
	}

	share, err := h.db.GetShare(r.Context(), claims.UserID, id)
	if err != nil {
		http.Error(w, "Failed to load share", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, share)
}

func (h *ShareHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid share ID", http.StatusBadRequest)
		return
	}

	deleted, err := h.db.DeleteShare(r.Context(), claims.UserID, id)
	if err != nil {
		http.Error(w, "Failed to delete share", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "Share not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateKey mints a fresh share token without persisting anything; the
// client sends it back on create or update.
func (h *ShareHandler) GenerateKey(w http.ResponseWriter, r *http.Request) {
	key, err := auth.GenerateShareKey()
	if err != nil {
		http.Error(w, "Failed to generate key", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

// Sync triggers an immediate relay sync for one share.
func (h *ShareHandler) Sync(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid share ID", http.StatusBadRequest)
		return
	}

	share, err := h.db.GetShare(r.Context(), claims.UserID, id)
	if err != nil {
		http.Error(w, "Share not found", http.StatusNotFound)
		return
	}
	if !share.CloudSync {
		http.Error(w, "Share is not cloud-synced", http.StatusBadRequest)
		return
	}

	if err := h.syncer.SyncShare(r.Context(), share); err != nil {
		http.Error(w, "Sync failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
