package database

import (
	"context"
)

// ShareUpdate carries the fields of a share update; nil fields are left
// untouched. Profile and tag lists are replaced wholesale when present.
type ShareUpdate struct {
	Name              *string
	Permissions       *string
	CloudSync         *bool
	PrivacyProfileIDs *[]int64
	TagIDs            *[]int64
}

func (db *DB) CreateShare(ctx context.Context, userID int64, name, key, permissions string, tagIDs, profileIDs []int64) (*Share, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO shares (user_id, name, key, permissions) VALUES (?, ?, ?, ?)",
		userID, name, key, permissions)
	if err != nil {
		return nil, err
	}
	shareID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	// The chain order is persisted explicitly; it drives redaction order.
	for i, profileID := range profileIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO share_privacy_profiles (share_id, privacy_profile_id, sequence) VALUES (?, ?, ?)",
			shareID, profileID, i)
		if err != nil {
			return nil, err
		}
	}
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO share_tags (share_id, tag_id) VALUES (?, ?)", shareID, tagID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &Share{
		ID:                shareID,
		UserID:            userID,
		Name:              name,
		Key:               key,
		Permissions:       permissions,
		PrivacyProfileIDs: profileIDs,
		TagIDs:            tagIDs,
	}, nil
}

func (db *DB) GetShares(ctx context.Context, userID int64) ([]*Share, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, name, key, permissions, cloud_sync, last_synced_at, last_used_at, created_at
		FROM shares
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []*Share
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, share := range shares {
		if err := db.loadShareRefs(ctx, share); err != nil {
			return nil, err
		}
	}
	return shares, nil
}

func (db *DB) GetShare(ctx context.Context, userID, id int64) (*Share, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, user_id, name, key, permissions, cloud_sync, last_synced_at, last_used_at, created_at
		FROM shares
		WHERE id = ? AND user_id = ?`, id, userID)
	share, err := scanShare(row)
	if err != nil {
		return nil, err
	}
	if err := db.loadShareRefs(ctx, share); err != nil {
		return nil, err
	}
	return share, nil
}

// VerifyShareToken resolves a raw share token and records its use.
func (db *DB) VerifyShareToken(ctx context.Context, key string) (*Share, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, user_id, name, key, permissions, cloud_sync, last_synced_at, last_used_at, created_at
		FROM shares
		WHERE key = ?`, key)
	share, err := scanShare(row)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx,
		"UPDATE shares SET last_used_at = CURRENT_TIMESTAMP WHERE id = ?", share.ID); err != nil {
		return nil, err
	}
	if err := db.loadShareRefs(ctx, share); err != nil {
		return nil, err
	}
	return share, nil
}

func (db *DB) UpdateShare(ctx context.Context, userID, id int64, updates ShareUpdate) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM shares WHERE id = ? AND user_id = ?", id, userID).Scan(&exists)
	if err != nil {
		return err
	}

	if updates.Name != nil {
		if _, err := tx.ExecContext(ctx, "UPDATE shares SET name = ? WHERE id = ?", *updates.Name, id); err != nil {
			return err
		}
	}
	if updates.Permissions != nil {
		if _, err := tx.ExecContext(ctx, "UPDATE shares SET permissions = ? WHERE id = ?", *updates.Permissions, id); err != nil {
			return err
		}
	}
	if updates.CloudSync != nil {
		if _, err := tx.ExecContext(ctx, "UPDATE shares SET cloud_sync = ? WHERE id = ?", boolToInt(*updates.CloudSync), id); err != nil {
			return err
		}
	}

	if updates.PrivacyProfileIDs != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM share_privacy_profiles WHERE share_id = ?", id); err != nil {
			return err
		}
		for i, profileID := range *updates.PrivacyProfileIDs {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO share_privacy_profiles (share_id, privacy_profile_id, sequence) VALUES (?, ?, ?)",
				id, profileID, i)
			if err != nil {
				return err
			}
		}
	}
	if updates.TagIDs != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM share_tags WHERE share_id = ?", id); err != nil {
			return err
		}
		for _, tagID := range *updates.TagIDs {
			if _, err := tx.ExecContext(ctx, "INSERT INTO share_tags (share_id, tag_id) VALUES (?, ?)", id, tagID); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (db *DB) DeleteShare(ctx context.Context, userID, id int64) (bool, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM shares WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SharesWithCloudSync lists every share with cloud sync enabled, for the
// periodic sync driver. Pass a userID of 0 for all users.
func (db *DB) SharesWithCloudSync(ctx context.Context, userID int64) ([]*Share, error) {
	query := `
		SELECT id, user_id, name, key, permissions, cloud_sync, last_synced_at, last_used_at, created_at
		FROM shares
		WHERE cloud_sync = 1`
	args := []any{}
	if userID != 0 {
		query += " AND user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []*Share
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, share := range shares {
		if err := db.loadShareRefs(ctx, share); err != nil {
			return nil, err
		}
	}
	return shares, nil
}

// TouchShareSynced records a successful manifest push.
func (db *DB) TouchShareSynced(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx,
		"UPDATE shares SET last_synced_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShare(row rowScanner) (*Share, error) {
	var s Share
	var cloudSync int
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Key, &s.Permissions,
		&cloudSync, &s.LastSyncedAt, &s.LastUsedAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.CloudSync = cloudSync != 0
	return &s, nil
}

func (db *DB) loadShareRefs(ctx context.Context, share *Share) error {
	rows, err := db.QueryContext(ctx, `
		SELECT privacy_profile_id
		FROM share_privacy_profiles
		WHERE share_id = ?
		ORDER BY sequence`, share.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	share.PrivacyProfileIDs = []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		share.PrivacyProfileIDs = append(share.PrivacyProfileIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tagRows, err := db.QueryContext(ctx,
		"SELECT tag_id FROM share_tags WHERE share_id = ?", share.ID)
	if err != nil {
		return err
	}
	defer tagRows.Close()

	share.TagIDs = []int64{}
	for tagRows.Next() {
		var id int64
		if err := tagRows.Scan(&id); err != nil {
			return err
		}
		share.TagIDs = append(share.TagIDs, id)
	}
	return tagRows.Err()
}
