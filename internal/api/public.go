package api

import (
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/scrinia/scrinia/internal/database"
	"github.com/scrinia/scrinia/internal/middleware"
	"github.com/scrinia/scrinia/internal/privacy"
)

// PublicHandler serves the share-token API. Callers authenticate with a
// share token, not a user JWT, and only see files inside the share's tag
// scope. Text reads pass through the redaction engine with the share's
// profile chain.
type PublicHandler struct {
	db     *database.DB
	engine *privacy.Engine
}

func NewPublicHandler(db *database.DB, engine *privacy.Engine) *PublicHandler {
	return &PublicHandler{db: db, engine: engine}
}

func (h *PublicHandler) share(w http.ResponseWriter, r *http.Request) *database.Share {
	token, ok := middleware.GetShareTokenFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing API key", http.StatusUnauthorized)
		return nil
	}
	share, err := h.db.VerifyShareToken(r.Context(), token)
	if err != nil {
		http.Error(w, "Invalid API key", http.StatusUnauthorized)
		return nil
	}
	return share
}

// ListFiles lists the files visible through the share. A share with no tags
// exposes the owner's whole catalogue.
func (h *PublicHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	share := h.share(w, r)
	if share == nil {
		return
	}

	files, err := h.db.GetFiles(r.Context(), share.UserID, share.TagIDs)
	if err != nil {
		http.Error(w, "Failed to list files", http.StatusInternalServerError)
		return
	}
	if files == nil {
		files = []*database.FileHandle{}
	}
	writeJSON(w, http.StatusOK, files)
}

// GetText returns a file's content with the share's redaction chain applied.
// With ?html=1 the output is HTML-escaped and redacted spans are highlighted.
func (h *PublicHandler) GetText(w http.ResponseWriter, r *http.Request) {
	share := h.share(w, r)
	if share == nil {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	file, err := h.db.GetFile(r.Context(), share.UserID, id)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	if len(share.TagIDs) > 0 {
		allowed, err := h.db.FileHasAnyTag(r.Context(), file.ID, share.TagIDs)
		if err != nil {
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		if !allowed {
			http.Error(w, "Access denied", http.StatusForbidden)
			return
		}
	}

	content, err := os.ReadFile(file.Path)
	if err != nil {
		http.Error(w, "File not readable", http.StatusNotFound)
		return
	}

	asHTML := r.URL.Query().Get("html") == "1"
	redacted, err := h.engine.Redact(r.Context(), string(content), share.PrivacyProfileIDs, asHTML)
	if err != nil {
		http.Error(w, "Redaction failed", http.StatusInternalServerError)
		return
	}

	contentType := "text/plain; charset=utf-8"
	if asHTML {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write([]byte(redacted))
}
