package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/scrinia/scrinia/internal/privacy"
)

func (db *DB) CreateProfile(ctx context.Context, userID int64, name string) (*PrivacyProfile, error) {
	res, err := db.ExecContext(ctx, "INSERT INTO privacy_profiles (user_id, name) VALUES (?, ?)", userID, name)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &PrivacyProfile{ID: id, UserID: userID, Name: name}, nil
}

func (db *DB) GetProfiles(ctx context.Context, userID int64) ([]*PrivacyProfile, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT p.id, p.user_id, p.name, COUNT(r.id)
		FROM privacy_profiles p
		LEFT JOIN privacy_rules r ON p.id = r.profile_id
		WHERE p.user_id = ?
		GROUP BY p.id
		ORDER BY p.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*PrivacyProfile
	for rows.Next() {
		var p PrivacyProfile
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.RuleCount); err != nil {
			return nil, err
		}
		profiles = append(profiles, &p)
	}
	return profiles, rows.Err()
}

func (db *DB) GetProfile(ctx context.Context, userID, id int64) (*PrivacyProfile, error) {
	var p PrivacyProfile
	err := db.QueryRowContext(ctx,
		"SELECT id, user_id, name FROM privacy_profiles WHERE id = ? AND user_id = ?", id, userID).
		Scan(&p.ID, &p.UserID, &p.Name)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile renames a profile and replaces its entire rule list.
// Rules are bulk-replaced (delete-all-then-reinsert), so rule IDs are not
// stable across an edit.
func (db *DB) UpdateProfile(ctx context.Context, userID, id int64, name string, rules []PrivacyRule) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE privacy_profiles SET name = ? WHERE id = ? AND user_id = ?", name, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM privacy_rules WHERE profile_id = ?", id); err != nil {
		return err
	}
	for i, rule := range rules {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO privacy_rules (profile_id, type, pattern, replacement, is_active, sequence)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, rule.Type, rule.Pattern, rule.Replacement, boolToInt(rule.IsActive), i)
		if err != nil {
			return fmt.Errorf("insert rule %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func (db *DB) DeleteProfile(ctx context.Context, userID, id int64) (bool, error) {
	res, err := db.ExecContext(ctx,
		"DELETE FROM privacy_profiles WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetRules returns a profile's rules in their persisted order.
func (db *DB) GetRules(ctx context.Context, profileID int64) ([]*PrivacyRule, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, profile_id, type, pattern, replacement, is_active, sequence
		FROM privacy_rules
		WHERE profile_id = ?
		ORDER BY sequence, id`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*PrivacyRule
	for rows.Next() {
		var r PrivacyRule
		var active int
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.Type, &r.Pattern, &r.Replacement, &active, &r.Sequence); err != nil {
			return nil, err
		}
		r.IsActive = active != 0
		rules = append(rules, &r)
	}
	return rules, rows.Err()
}

func (db *DB) AddRule(ctx context.Context, profileID int64, ruleType, pattern, replacement string) (*PrivacyRule, error) {
	var next int
	err := db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(sequence) + 1, 0) FROM privacy_rules WHERE profile_id = ?", profileID).Scan(&next)
	if err != nil {
		return nil, err
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO privacy_rules (profile_id, type, pattern, replacement, is_active, sequence)
		VALUES (?, ?, ?, ?, 1, ?)`,
		profileID, ruleType, pattern, replacement, next)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &PrivacyRule{
		ID:          id,
		ProfileID:   profileID,
		Type:        ruleType,
		Pattern:     pattern,
		Replacement: replacement,
		IsActive:    true,
		Sequence:    next,
	}, nil
}

func (db *DB) DeleteRule(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, "DELETE FROM privacy_rules WHERE id = ?", id)
	return err
}

func (db *DB) ToggleRule(ctx context.Context, id int64, isActive bool) error {
	_, err := db.ExecContext(ctx,
		"UPDATE privacy_rules SET is_active = ? WHERE id = ?", boolToInt(isActive), id)
	return err
}

// RulesForProfile adapts stored rules to the redaction engine's rule type.
func (db *DB) RulesForProfile(ctx context.Context, profileID int64) ([]privacy.Rule, error) {
	stored, err := db.GetRules(ctx, profileID)
	if err != nil {
		return nil, err
	}
	rules := make([]privacy.Rule, 0, len(stored))
	for _, r := range stored {
		rules = append(rules, privacy.Rule{
			ID:          r.ID,
			Type:        privacy.RuleType(r.Type),
			Pattern:     r.Pattern,
			Replacement: r.Replacement,
			Active:      r.IsActive,
		})
	}
	return rules, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
