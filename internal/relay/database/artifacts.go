package database

import "context"

// InsertArtifact records artifact metadata, ignoring conflicts: the first
// writer wins, and by the hash guarantee later writers carried identical bytes.
func (db *DB) InsertArtifact(ctx context.Context, hash string, size int64, mimeType, storedPath string) error {
	_, err := db.ExecContext(ctx, `
		INSERT OR IGNORE INTO artifacts (hash, size, mime_type, stored_path)
		VALUES (?, ?, ?, ?)`,
		hash, size, mimeType, storedPath)
	return err
}

func (db *DB) GetArtifact(ctx context.Context, hash string) (*Artifact, error) {
	var a Artifact
	err := db.QueryRowContext(ctx, `
		SELECT hash, size, COALESCE(mime_type, ''), stored_path, created_at
		FROM artifacts WHERE hash = ?`, hash).
		Scan(&a.Hash, &a.Size, &a.MimeType, &a.StoredPath, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (db *DB) DeleteArtifact(ctx context.Context, hash string) (bool, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM artifacts WHERE hash = ?", hash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
