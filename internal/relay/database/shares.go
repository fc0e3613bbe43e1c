package database

import (
	"context"
	"encoding/json"

	"github.com/scrinia/scrinia/pkg/api"
)

// ApplyManifest upserts a synced share and fully replaces its access rules
// in one transaction. A file absent from the new manifest loses access
// atomically; a crash mid-refresh can never leave the share half-updated.
func (db *DB) ApplyManifest(ctx context.Context, tokenHash string, req *api.SyncRequest) error {
	privacyConfig, err := json.Marshal(req.PrivacyConfig)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shares (local_share_id, token_hash, name, privacy_config, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(token_hash) DO UPDATE SET
			name = excluded.name,
			privacy_config = excluded.privacy_config,
			updated_at = excluded.updated_at`,
		req.ShareID, tokenHash, req.Name, string(privacyConfig))
	if err != nil {
		return err
	}

	var shareID int64
	if err := tx.QueryRowContext(ctx,
		"SELECT id FROM shares WHERE token_hash = ?", tokenHash).Scan(&shareID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM access_rules WHERE share_id = ?", shareID); err != nil {
		return err
	}
	for _, file := range req.Files {
		tagNames := file.Tags
		if tagNames == nil {
			tagNames = []string{}
		}
		tags, err := json.Marshal(tagNames)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO access_rules (share_id, artifact_hash, virtual_filename, tags)
			VALUES (?, ?, ?, ?)`,
			shareID, file.Hash, file.Name, string(tags))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (db *DB) GetShareByTokenHash(ctx context.Context, tokenHash string) (*Share, error) {
	var s Share
	err := db.QueryRowContext(ctx, `
		SELECT id, COALESCE(local_share_id, 0), token_hash, name, COALESCE(privacy_config, ''), created_at, updated_at
		FROM shares WHERE token_hash = ?`, tokenHash).
		Scan(&s.ID, &s.LocalShareID, &s.TokenHash, &s.Name, &s.PrivacyConfig, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (db *DB) ListShares(ctx context.Context) ([]*Share, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, COALESCE(local_share_id, 0), token_hash, name, COALESCE(privacy_config, ''), created_at, updated_at
		FROM shares ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []*Share
	for rows.Next() {
		var s Share
		if err := rows.Scan(&s.ID, &s.LocalShareID, &s.TokenHash, &s.Name, &s.PrivacyConfig, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		shares = append(shares, &s)
	}
	return shares, rows.Err()
}

// GetAccessRule returns the grant for (share, artifact), or sql.ErrNoRows if
// this share does not expose the artifact.
func (db *DB) GetAccessRule(ctx context.Context, shareID int64, hash string) (*AccessRule, error) {
	var r AccessRule
	err := db.QueryRowContext(ctx, `
		SELECT share_id, artifact_hash, virtual_filename, COALESCE(tags, '[]')
		FROM access_rules WHERE share_id = ? AND artifact_hash = ?`, shareID, hash).
		Scan(&r.ShareID, &r.ArtifactHash, &r.VirtualFilename, &r.Tags)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FilesForShare joins a share's access rules with artifact metadata for the
// public listing.
func (db *DB) FilesForShare(ctx context.Context, shareID int64) ([]api.ShareFile, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT r.virtual_filename, r.artifact_hash, COALESCE(a.size, 0), COALESCE(a.mime_type, ''), COALESCE(r.tags, '[]')
		FROM access_rules r
		LEFT JOIN artifacts a ON r.artifact_hash = a.hash
		WHERE r.share_id = ?
		ORDER BY r.virtual_filename`, shareID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []api.ShareFile{}
	for rows.Next() {
		var f api.ShareFile
		var tagsJSON string
		if err := rows.Scan(&f.Name, &f.Hash, &f.Size, &f.MimeType, &tagsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tagsJSON), &f.Tags); err != nil || f.Tags == nil {
			f.Tags = []string{}
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
