package database

import "context"

func (db *DB) CreateTag(ctx context.Context, userID int64, name string, color *string) (*Tag, error) {
	res, err := db.ExecContext(ctx,
		"INSERT INTO tags (user_id, name, color) VALUES (?, ?, ?)", userID, name, color)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Tag{ID: id, UserID: userID, Name: name, Color: color}, nil
}

func (db *DB) GetTags(ctx context.Context, userID int64) ([]*Tag, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, user_id, name, color FROM tags WHERE user_id = ? ORDER BY name", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Color); err != nil {
			return nil, err
		}
		tags = append(tags, &t)
	}
	return tags, rows.Err()
}

func (db *DB) DeleteTag(ctx context.Context, userID, id int64) (bool, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM tags WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (db *DB) TagFile(ctx context.Context, fileID, tagID int64) error {
	_, err := db.ExecContext(ctx,
		"INSERT OR IGNORE INTO file_tags (file_id, tag_id) VALUES (?, ?)", fileID, tagID)
	return err
}

func (db *DB) UntagFile(ctx context.Context, fileID, tagID int64) error {
	_, err := db.ExecContext(ctx,
		"DELETE FROM file_tags WHERE file_id = ? AND tag_id = ?", fileID, tagID)
	return err
}
