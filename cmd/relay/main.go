package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/scrinia/scrinia/internal/config"
	"github.com/scrinia/scrinia/internal/relay/api"
	"github.com/scrinia/scrinia/internal/relay/database"
	"github.com/scrinia/scrinia/internal/relay/store"
)

func main() {
	godotenv.Load()
	cfg := config.LoadRelay()

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	var blobs store.Store
	if cfg.StorageType == "s3" {
		blobs, err = store.NewS3Store(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL)
	} else {
		blobs, err = store.NewLocalStore(cfg.LocalStoragePath)
	}
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	r := api.NewRouter(db, blobs)

	log.Printf("Relay starting on port %s", cfg.ServerPort)
	if err := http.ListenAndServe(":"+cfg.ServerPort, r); err != nil {
		log.Fatalf("Relay failed: %v", err)
	}
}
