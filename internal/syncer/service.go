// Package syncer reconciles cloud-enabled shares with the relay: it uploads
// missing artifacts and pushes each share's manifest.
package syncer

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/scrinia/scrinia/internal/database"
	"github.com/scrinia/scrinia/pkg/api"
)

// Relay is the subset of the relay client the syncer needs.
type Relay interface {
	ArtifactExists(ctx context.Context, hash string) (bool, error)
	UploadArtifact(ctx context.Context, hash, filename string, data io.Reader) error
	PushManifest(ctx context.Context, manifest *api.SyncRequest) error
}

type Service struct {
	db    *database.DB
	relay Relay
}

func NewService(db *database.DB, relay Relay) *Service {
	return &Service{db: db, relay: relay}
}

// SyncAll runs one sync cycle over every cloud-enabled share. Shares are
// processed sequentially; a failing share is logged and skipped so it cannot
// block the rest of the cycle.
func (s *Service) SyncAll(ctx context.Context) error {
	return s.syncShares(ctx, 0)
}

// SyncUserShares syncs one user's cloud-enabled shares.
func (s *Service) SyncUserShares(ctx context.Context, userID int64) error {
	return s.syncShares(ctx, userID)
}

func (s *Service) syncShares(ctx context.Context, userID int64) error {
	shares, err := s.db.SharesWithCloudSync(ctx, userID)
	if err != nil {
		return fmt.Errorf("list cloud-enabled shares: %w", err)
	}
	if len(shares) == 0 {
		return nil
	}

	log.Printf("[SYNC] Syncing %d shares", len(shares))
	for _, share := range shares {
		if err := s.SyncShare(ctx, share); err != nil {
			log.Printf("[SYNC] Failed to sync share %d (%s): %v", share.ID, share.Name, err)
		}
	}
	return nil
}

// SyncShare reconciles one share with the relay. Files without a computed
// content hash are excluded from this cycle; the lazy hashing pass will pick
// them up before a later one. A single file's upload failure is logged and
// skipped, since the manifest only needs the hash, but an unreachable relay
// aborts the share so lastSyncedAt stays honest.
func (s *Service) SyncShare(ctx context.Context, share *database.Share) error {
	log.Printf("[SYNC] Processing share: %s (%d)", share.Name, share.ID)

	files, err := s.db.GetFiles(ctx, share.UserID, share.TagIDs)
	if err != nil {
		return fmt.Errorf("resolve share files: %w", err)
	}

	var valid []*database.FileHandle
	for _, f := range files {
		if f.Hash == nil || *f.Hash == "" {
			continue
		}
		valid = append(valid, f)
	}

	for _, f := range valid {
		if err := s.ensureArtifact(ctx, f); err != nil {
			return err
		}
	}

	privacyConfig, err := s.privacyConfig(ctx, share)
	if err != nil {
		return err
	}

	manifest := &api.SyncRequest{
		SyncID:        uuid.NewString(),
		ShareID:       share.ID,
		Token:         share.Key,
		Name:          share.Name,
		PrivacyConfig: privacyConfig,
		Files:         make([]api.ManifestFile, 0, len(valid)),
	}
	for _, f := range valid {
		tagNames := make([]string, 0, len(f.Tags))
		for _, tag := range f.Tags {
			tagNames = append(tagNames, tag.Name)
		}
		manifest.Files = append(manifest.Files, api.ManifestFile{
			Hash: *f.Hash,
			Name: f.Name,
			Tags: tagNames,
		})
	}

	if err := s.relay.PushManifest(ctx, manifest); err != nil {
		return err
	}
	if err := s.db.TouchShareSynced(ctx, share.ID); err != nil {
		return fmt.Errorf("record sync time: %w", err)
	}

	log.Printf("[SYNC] Share %s successfully synchronized", share.Name)
	return nil
}

// ensureArtifact uploads a file's bytes unless the relay already has them.
// Re-running a sync with nothing changed performs existence checks only.
func (s *Service) ensureArtifact(ctx context.Context, f *database.FileHandle) error {
	exists, err := s.relay.ArtifactExists(ctx, *f.Hash)
	if err != nil {
		return fmt.Errorf("check artifact %s: %w", *f.Hash, err)
	}
	if exists {
		return nil
	}

	log.Printf("[SYNC] Uploading artifact %s (%s)...", f.Name, *f.Hash)
	file, err := os.Open(f.Path)
	if err != nil {
		log.Printf("[SYNC] Cannot read %s: %v", f.Path, err)
		return nil
	}
	defer file.Close()

	if err := s.relay.UploadArtifact(ctx, *f.Hash, f.Name, file); err != nil {
		// Degraded but acceptable: the manifest entry stays valid and the
		// public download for this one file 404s until a later cycle.
		log.Printf("[SYNC] Upload failed for %s: %v", f.Name, err)
	}
	return nil
}

// privacyConfig serializes the share's profile chain, in chain order, for
// informational display on the relay.
func (s *Service) privacyConfig(ctx context.Context, share *database.Share) ([]api.ProfilePayload, error) {
	payloads := make([]api.ProfilePayload, 0, len(share.PrivacyProfileIDs))
	for _, profileID := range share.PrivacyProfileIDs {
		profile, err := s.db.GetProfile(ctx, share.UserID, profileID)
		if err != nil {
			return nil, fmt.Errorf("load profile %d: %w", profileID, err)
		}
		rules, err := s.db.GetRules(ctx, profileID)
		if err != nil {
			return nil, fmt.Errorf("load rules for profile %d: %w", profileID, err)
		}

		payload := api.ProfilePayload{
			ID:    profile.ID,
			Name:  profile.Name,
			Rules: make([]api.RulePayload, 0, len(rules)),
		}
		for _, rule := range rules {
			payload.Rules = append(payload.Rules, api.RulePayload{
				Type:        rule.Type,
				Pattern:     rule.Pattern,
				Replacement: rule.Replacement,
				IsActive:    rule.IsActive,
			})
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}
