package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scrinia/scrinia/internal/relay/database"
	"github.com/scrinia/scrinia/internal/relay/store"
	"github.com/scrinia/scrinia/pkg/api"
)

type PublicHandler struct {
	db    *database.DB
	blobs store.Store
}

func NewPublicHandler(db *database.DB, blobs store.Store) *PublicHandler {
	return &PublicHandler{db: db, blobs: blobs}
}

// GetShare returns a synced share's display name, privacy config and file
// listing. The raw token arrives in the URL and is hashed before lookup.
func (h *PublicHandler) GetShare(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	share, err := h.db.GetShareByTokenHash(r.Context(), hashToken(token))
	if err != nil {
		writeError(w, http.StatusNotFound, "Share not found")
		return
	}

	files, err := h.db.FilesForShare(r.Context(), share.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	privacyConfig := json.RawMessage(share.PrivacyConfig)
	if len(privacyConfig) == 0 {
		privacyConfig = json.RawMessage("null")
	}

	writeJSON(w, http.StatusOK, api.ShareView{
		Name:          share.Name,
		PrivacyConfig: privacyConfig,
		Files:         files,
	})
}

// Download streams artifact bytes under a share. An access rule for
// (share, hash) is the sole grant: without one the response is 403 even if
// the artifact exists in the store, while missing bytes are a 404.
func (h *PublicHandler) Download(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	hash := chi.URLParam(r, "hash")

	share, err := h.db.GetShareByTokenHash(r.Context(), hashToken(token))
	if err != nil {
		writeError(w, http.StatusNotFound, "Share not found")
		return
	}

	rule, err := h.db.GetAccessRule(r.Context(), share.ID, hash)
	if err != nil {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	artifact, err := h.db.GetArtifact(r.Context(), hash)
	if err != nil {
		writeError(w, http.StatusNotFound, "Artifact not found")
		return
	}
	blob, err := h.blobs.Get(r.Context(), hash)
	if err != nil {
		writeError(w, http.StatusNotFound, "Artifact bytes missing")
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Type", artifact.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", rule.VirtualFilename))
	if _, err := io.Copy(w, blob); err != nil {
		log.Printf("[Relay] Error streaming %s for share %d: %v", hash, share.ID, err)
	}
}
