package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/scrinia/scrinia/internal/relay/database"
	"github.com/scrinia/scrinia/pkg/api"
)

type SyncHandler struct {
	db *database.DB
}

func NewSyncHandler(db *database.DB) *SyncHandler {
	return &SyncHandler{db: db}
}

// Sync receives a share manifest: it upserts the share under its hashed
// token and fully replaces the share's access rules.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req api.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Token == "" || req.ShareID == 0 {
		writeError(w, http.StatusBadRequest, "Missing share metadata")
		return
	}

	if err := h.db.ApplyManifest(r.Context(), hashToken(req.Token), &req); err != nil {
		log.Printf("[Relay] Error applying manifest for share %d (sync %s): %v", req.ShareID, req.SyncID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("[Relay] Applied manifest for share %d: %d files (sync %s)", req.ShareID, len(req.Files), req.SyncID)

	writeJSON(w, http.StatusOK, api.SyncResponse{Success: true})
}

// ListShares is a debugging aid; token hashes are not included.
func (h *SyncHandler) ListShares(w http.ResponseWriter, r *http.Request) {
	shares, err := h.db.ListShares(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, shares)
}
