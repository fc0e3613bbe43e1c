package api

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/scrinia/scrinia/internal/relay/database"
	"github.com/scrinia/scrinia/internal/relay/store"
	"github.com/scrinia/scrinia/pkg/api"
)

const maxUploadMemory = 32 << 20 // multipart spills to disk past this

type ArtifactHandler struct {
	db    *database.DB
	blobs store.Store
}

func NewArtifactHandler(db *database.DB, blobs store.Store) *ArtifactHandler {
	return &ArtifactHandler{db: db, blobs: blobs}
}

// Exists answers HEAD existence checks. A metadata row whose backing bytes
// are gone still reports not-found so the uploader re-sends the artifact.
func (h *ArtifactHandler) Exists(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	if _, err := h.db.GetArtifact(r.Context(), hash); err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	onDisk, err := h.blobs.Exists(r.Context(), hash)
	if err != nil || !onDisk {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Upload accepts raw bytes for a claimed hash. The hash is recomputed over
// the received bytes; the caller's claim is trusted for addressing only,
// never for integrity.
func (h *ArtifactHandler) Upload(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	// Spool to a temp file while hashing so large uploads are not buffered
	// in memory and a mismatch never touches the store.
	tmp, err := os.CreateTemp("", "relay-upload-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	actualHash := hex.EncodeToString(hasher.Sum(nil))
	if actualHash != hash {
		writeError(w, http.StatusBadRequest, "Hash mismatch")
		return
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := h.blobs.Put(r.Context(), hash, tmp); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	if err := h.db.InsertArtifact(r.Context(), hash, size, mimeType, hash); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, api.UploadResponse{Success: true, Hash: hash})
}

func (h *ArtifactHandler) Download(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

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
	if _, err := io.Copy(w, blob); err != nil {
		log.Printf("[Relay] Error streaming artifact %s: %v", hash, err)
	}
}

func (h *ArtifactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	deleted, err := h.db.DeleteArtifact(r.Context(), hash)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Artifact not found")
		return
	}
	if err := h.blobs.Delete(r.Context(), hash); err != nil && !os.IsNotExist(err) {
		log.Printf("[Relay] Error removing artifact bytes %s: %v", hash, err)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
