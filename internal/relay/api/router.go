// Package api implements the relay's HTTP surface: the content-addressed
// artifact store, the sync endpoint, and the public share gateway.
package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/scrinia/scrinia/internal/relay/database"
	"github.com/scrinia/scrinia/internal/relay/store"
)

// NewRouter wires the relay's routes.
func NewRouter(db *database.DB, blobs store.Store) http.Handler {
	artifacts := NewArtifactHandler(db, blobs)
	sync := NewSyncHandler(db)
	public := NewPublicHandler(db, blobs)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "component": "relay"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Head("/artifacts/{hash}", artifacts.Exists)
		r.Post("/artifacts/{hash}", artifacts.Upload)
		r.Get("/artifacts/{hash}", artifacts.Download)
		r.Delete("/artifacts/{hash}", artifacts.Delete)

		r.Post("/sync", sync.Sync)
		r.Get("/shares", sync.ListShares)

		r.Get("/pub/share/{token}", public.GetShare)
		r.Get("/pub/share/{token}/download/{hash}", public.Download)
	})

	return r
}

// hashToken derives the storage key for a share token. The raw token is
// never persisted on the relay.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
