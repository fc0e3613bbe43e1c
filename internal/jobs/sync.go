package jobs

import (
	"context"
	"log"
	"time"

	"github.com/scrinia/scrinia/internal/files"
	"github.com/scrinia/scrinia/internal/syncer"
)

// RunSyncCycle hashes pending files and then pushes every cloud-enabled
// share to the relay. Hashing runs first so freshly catalogued files make it
// into the same cycle's manifests.
func RunSyncCycle(ctx context.Context, hasher *files.Hasher, sync *syncer.Service) {
	if n, err := hasher.HashPending(ctx); err != nil {
		log.Printf("[SYNC] Hashing pass failed: %v", err)
	} else if n > 0 {
		log.Printf("[SYNC] Hashed %d files", n)
	}

	if err := sync.SyncAll(ctx); err != nil {
		log.Printf("[SYNC] Sync cycle failed: %v", err)
	}
}

// StartSyncScheduler runs a sync cycle immediately and then on every tick
// until the context is cancelled.
func StartSyncScheduler(ctx context.Context, hasher *files.Hasher, sync *syncer.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		RunSyncCycle(ctx, hasher, sync)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				RunSyncCycle(ctx, hasher, sync)
			}
		}
	}()

	log.Printf("Sync scheduler started (runs every %s)", interval)
}
