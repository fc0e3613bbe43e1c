package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// UpsertFile records a filesystem entry under a scope. The crawler calls this
// for every file it visits; size changes reset the stored content hash so it
// is recomputed before the next sync.
func (db *DB) UpsertFile(ctx context.Context, scopeID int64, path string, size int64, mimeType string) (int64, error) {
	name := filepath.Base(path)
	extension := strings.ToLower(filepath.Ext(path))

	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO file_handles (scope_id, path, name, extension, size, mime_type, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(scope_id, path) DO UPDATE SET
			size = excluded.size,
			updated_at = excluded.updated_at,
			hash = CASE WHEN file_handles.size != excluded.size THEN NULL ELSE file_handles.hash END
		RETURNING id`,
		scopeID, path, name, extension, size, mimeType).Scan(&id)
	return id, err
}

func (db *DB) RemoveFile(ctx context.Context, scopeID int64, path string) error {
	_, err := db.ExecContext(ctx,
		"DELETE FROM file_handles WHERE scope_id = ? AND path = ?", scopeID, path)
	return err
}

// GetFiles lists a user's files. When allowedTagIDs is non-empty, only files
// bearing at least one of those tags are returned.
func (db *DB) GetFiles(ctx context.Context, userID int64, allowedTagIDs []int64) ([]*FileHandle, error) {
	query := `
		SELECT DISTINCT f.id, f.scope_id, f.path, f.name, f.extension, f.size, f.mime_type, f.hash, f.updated_at
		FROM file_handles f
		JOIN scopes s ON f.scope_id = s.id`
	args := []any{}

	if len(allowedTagIDs) > 0 {
		query += " JOIN file_tags ft ON f.id = ft.file_id AND ft.tag_id IN (" + placeholders(len(allowedTagIDs)) + ")"
		for _, id := range allowedTagIDs {
			args = append(args, id)
		}
	}
	query += " WHERE s.user_id = ? ORDER BY f.path"
	args = append(args, userID)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*FileHandle
	for rows.Next() {
		var f FileHandle
		if err := rows.Scan(&f.ID, &f.ScopeID, &f.Path, &f.Name, &f.Extension, &f.Size, &f.MimeType, &f.Hash, &f.UpdatedAt); err != nil {
			return nil, err
		}
		files = append(files, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, f := range files {
		tags, err := db.tagsForFile(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		f.Tags = tags
	}
	return files, nil
}

func (db *DB) GetFile(ctx context.Context, userID, id int64) (*FileHandle, error) {
	var f FileHandle
	err := db.QueryRowContext(ctx, `
		SELECT f.id, f.scope_id, f.path, f.name, f.extension, f.size, f.mime_type, f.hash, f.updated_at
		FROM file_handles f
		JOIN scopes s ON f.scope_id = s.id
		WHERE f.id = ? AND s.user_id = ?`, id, userID).
		Scan(&f.ID, &f.ScopeID, &f.Path, &f.Name, &f.Extension, &f.Size, &f.MimeType, &f.Hash, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	tags, err := db.tagsForFile(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	f.Tags = tags
	return &f, nil
}

// FileHasAnyTag reports whether the file carries at least one of the tags.
func (db *DB) FileHasAnyTag(ctx context.Context, fileID int64, tagIDs []int64) (bool, error) {
	if len(tagIDs) == 0 {
		return false, nil
	}
	args := []any{fileID}
	for _, id := range tagIDs {
		args = append(args, id)
	}
	var one int
	err := db.QueryRowContext(ctx,
		"SELECT 1 FROM file_tags WHERE file_id = ? AND tag_id IN ("+placeholders(len(tagIDs))+")",
		args...).Scan(&one)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (db *DB) UpdateFileHash(ctx context.Context, fileID int64, hash string) error {
	_, err := db.ExecContext(ctx, "UPDATE file_handles SET hash = ? WHERE id = ?", hash, fileID)
	return err
}

// FilesNeedingHash lists files that belong to a cloud-synced share's tag set
// but have no content hash yet. These are the candidates for the lazy
// hashing pass; everything else can wait.
func (db *DB) FilesNeedingHash(ctx context.Context) ([]*FileHandle, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT f.id, f.scope_id, f.path, f.name, f.extension, f.size, f.mime_type, f.hash, f.updated_at
		FROM file_handles f
		JOIN file_tags ft ON f.id = ft.file_id
		JOIN share_tags st ON ft.tag_id = st.tag_id
		JOIN shares s ON st.share_id = s.id
		WHERE s.cloud_sync = 1 AND f.hash IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*FileHandle
	for rows.Next() {
		var f FileHandle
		if err := rows.Scan(&f.ID, &f.ScopeID, &f.Path, &f.Name, &f.Extension, &f.Size, &f.MimeType, &f.Hash, &f.UpdatedAt); err != nil {
			return nil, err
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}

func (db *DB) tagsForFile(ctx context.Context, fileID int64) ([]Tag, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.name, t.color
		FROM tags t
		JOIN file_tags ft ON t.id = ft.tag_id
		WHERE ft.file_id = ?
		ORDER BY t.name`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Color); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
