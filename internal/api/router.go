package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/scrinia/scrinia/internal/config"
	"github.com/scrinia/scrinia/internal/database"
	"github.com/scrinia/scrinia/internal/middleware"
	"github.com/scrinia/scrinia/internal/privacy"
	"github.com/scrinia/scrinia/internal/syncer"
)

// NewRouter builds the catalogue server's HTTP API.
func NewRouter(db *database.DB, cfg *config.Config, sync *syncer.Service) http.Handler {
	engine := privacy.NewEngine(db)

	authHandler := NewAuthHandler(db, cfg)
	privacyHandler := NewPrivacyHandler(db)
	shareHandler := NewShareHandler(db, sync)
	fileHandler := NewFileHandler(db)
	tagHandler := NewTagHandler(db)
	publicHandler := NewPublicHandler(db, engine)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RateLimitMiddleware(cfg.DefaultRateLimit))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Api-Key"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/api/privacy", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		r.Get("/profiles", privacyHandler.ListProfiles)
		r.Post("/profiles", privacyHandler.CreateProfile)
		r.Put("/profiles/{id}", privacyHandler.UpdateProfile)
		r.Delete("/profiles/{id}", privacyHandler.DeleteProfile)
		r.Get("/profiles/{id}/rules", privacyHandler.ListRules)
		r.Post("/profiles/{id}/rules", privacyHandler.AddRule)
		r.Delete("/rules/{id}", privacyHandler.DeleteRule)
		r.Put("/rules/{id}/toggle", privacyHandler.ToggleRule)
	})

	r.Route("/api/shares", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		r.Get("/", shareHandler.List)
		r.Post("/", shareHandler.Create)
		r.Post("/generate-key", shareHandler.GenerateKey)
		r.Get("/{id}", shareHandler.Get)
		r.Put("/{id}", shareHandler.Update)
		r.Delete("/{id}", shareHandler.Delete)
		r.Post("/{id}/sync", shareHandler.Sync)
	})

	r.Route("/api/files", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		r.Get("/", fileHandler.List)
		r.Get("/{id}", fileHandler.Get)
	})

	r.Route("/api/tags", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		r.Get("/", tagHandler.List)
		r.Post("/", tagHandler.Create)
		r.Delete("/{id}", tagHandler.Delete)
		r.Put("/files/{fileId}/{tagId}", tagHandler.TagFile)
		r.Delete("/files/{fileId}/{tagId}", tagHandler.UntagFile)
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Use(middleware.ShareTokenMiddleware)
		r.Get("/files", publicHandler.ListFiles)
		r.Get("/files/{id}/text", publicHandler.GetText)
	})

	return r
}
