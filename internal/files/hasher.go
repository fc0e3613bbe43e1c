// Package files computes content hashes for catalogued files. Hashing is
// lazy: the crawler only records paths and sizes, and the hashing pass fills
// in SHA-256 digests for files a cloud-synced share actually needs.
package files

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/scrinia/scrinia/internal/database"
)

type Hasher struct {
	db *database.DB
}

func NewHasher(db *database.DB) *Hasher {
	return &Hasher{db: db}
}

// HashPending computes and stores hashes for every file a cloud-synced share
// references that has none yet. A file that cannot be read is logged and
// skipped so one bad path cannot stall the pass. Returns the number of files
// hashed.
func (h *Hasher) HashPending(ctx context.Context) (int, error) {
	pending, err := h.db.FilesNeedingHash(ctx)
	if err != nil {
		return 0, fmt.Errorf("list files needing hash: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	log.Printf("[HASH] Hashing %d files", len(pending))
	hashed := 0
	for _, f := range pending {
		hash, err := HashFile(f.Path)
		if err != nil {
			log.Printf("[HASH] Cannot hash %s: %v", f.Path, err)
			continue
		}
		if err := h.db.UpdateFileHash(ctx, f.ID, hash); err != nil {
			return hashed, fmt.Errorf("store hash for file %d: %w", f.ID, err)
		}
		hashed++
	}
	return hashed, nil
}

// HashFile streams a file through SHA-256 and returns the lowercase hex
// digest.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
