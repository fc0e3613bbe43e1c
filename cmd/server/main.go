package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/scrinia/scrinia/internal/api"
	"github.com/scrinia/scrinia/internal/config"
	"github.com/scrinia/scrinia/internal/database"
	"github.com/scrinia/scrinia/internal/files"
	"github.com/scrinia/scrinia/internal/jobs"
	"github.com/scrinia/scrinia/internal/relayclient"
	"github.com/scrinia/scrinia/internal/syncer"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	relay := relayclient.NewClient(cfg.RelayURL, cfg.RelayTimeout)
	syncService := syncer.NewService(db, relay)
	hasher := files.NewHasher(db)

	jobs.StartSyncScheduler(context.Background(), hasher, syncService, cfg.SyncInterval)

	r := api.NewRouter(db, cfg, syncService)

	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := http.ListenAndServe(":"+cfg.ServerPort, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
