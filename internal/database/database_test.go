package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, ctx context.Context, db *DB) int64 {
	t.Helper()
	user, err := db.CreateUser(ctx, "tester", "hash")
	require.NoError(t, err)
	return user.ID
}

func TestProfileRuleOrdering(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	userID := createTestUser(t, ctx, db)

	profile, err := db.CreateProfile(ctx, userID, "default")
	require.NoError(t, err)

	_, err = db.AddRule(ctx, profile.ID, "LITERAL", "first", "[1]")
	require.NoError(t, err)
	_, err = db.AddRule(ctx, profile.ID, "LITERAL", "second", "[2]")
	require.NoError(t, err)
	_, err = db.AddRule(ctx, profile.ID, "EMAIL", "", "[EMAIL]")
	require.NoError(t, err)

	rules, err := db.GetRules(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, rules, 3)

	// Insertion order is preserved through the explicit sequence column.
	assert.Equal(t, "first", rules[0].Pattern)
	assert.Equal(t, "second", rules[1].Pattern)
	assert.Equal(t, "EMAIL", rules[2].Type)
	assert.Equal(t, []int{0, 1, 2}, []int{rules[0].Sequence, rules[1].Sequence, rules[2].Sequence})
}

func TestUpdateProfileReplacesRules(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	userID := createTestUser(t, ctx, db)

	profile, err := db.CreateProfile(ctx, userID, "default")
	require.NoError(t, err)
	old, err := db.AddRule(ctx, profile.ID, "LITERAL", "old", "[OLD]")
	require.NoError(t, err)

	err = db.UpdateProfile(ctx, userID, profile.ID, "renamed", []PrivacyRule{
		{Type: "REGEX", Pattern: `\d+`, Replacement: "[N]", IsActive: true},
		{Type: "LITERAL", Pattern: "x", Replacement: "[X]", IsActive: false},
	})
	require.NoError(t, err)

	rules, err := db.GetRules(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	// Bulk replace: old rule IDs do not survive an edit.
	assert.NotEqual(t, old.ID, rules[0].ID)
	assert.Equal(t, "REGEX", rules[0].Type)
	assert.True(t, rules[0].IsActive)
	assert.False(t, rules[1].IsActive)

	profiles, err := db.GetProfiles(ctx, userID)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "renamed", profiles[0].Name)
	assert.Equal(t, 2, profiles[0].RuleCount)
}

func TestDeleteProfileCascadesToRules(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	userID := createTestUser(t, ctx, db)

	profile, err := db.CreateProfile(ctx, userID, "default")
	require.NoError(t, err)
	_, err = db.AddRule(ctx, profile.ID, "LITERAL", "a", "[A]")
	require.NoError(t, err)

	deleted, err := db.DeleteProfile(ctx, userID, profile.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	rules, err := db.GetRules(ctx, profile.ID)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestShareChainOrderPreserved(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	userID := createTestUser(t, ctx, db)

	p1, err := db.CreateProfile(ctx, userID, "one")
	require.NoError(t, err)
	p2, err := db.CreateProfile(ctx, userID, "two")
	require.NoError(t, err)

	share, err := db.CreateShare(ctx, userID, "docs", "tz_abc", "all", nil, []int64{p2.ID, p1.ID})
	require.NoError(t, err)

	got, err := db.GetShare(ctx, userID, share.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{p2.ID, p1.ID}, got.PrivacyProfileIDs)

	// Reversing the chain on update sticks.
	chain := []int64{p1.ID, p2.ID}
	err = db.UpdateShare(ctx, userID, share.ID, ShareUpdate{PrivacyProfileIDs: &chain})
	require.NoError(t, err)

	got, err = db.GetShare(ctx, userID, share.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{p1.ID, p2.ID}, got.PrivacyProfileIDs)
}

func TestVerifyShareTokenUpdatesLastUsed(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	userID := createTestUser(t, ctx, db)

	_, err := db.CreateShare(ctx, userID, "docs", "tz_secret", "all", nil, nil)
	require.NoError(t, err)

	share, err := db.VerifyShareToken(ctx, "tz_secret")
	require.NoError(t, err)
	assert.Equal(t, "docs", share.Name)

	got, err := db.GetShare(ctx, userID, share.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastUsedAt)

	_, err = db.VerifyShareToken(ctx, "tz_wrong")
	assert.Error(t, err)
}

func TestGetFilesTagFilter(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	userID := createTestUser(t, ctx, db)

	scope, err := db.CreateScope(ctx, userID, "/data", "data")
	require.NoError(t, err)

	docs, err := db.CreateTag(ctx, userID, "docs", nil)
	require.NoError(t, err)
	pics, err := db.CreateTag(ctx, userID, "pics", nil)
	require.NoError(t, err)

	readme, err := db.UpsertFile(ctx, scope.ID, "/data/readme.md", 10, "text/plain")
	require.NoError(t, err)
	photo, err := db.UpsertFile(ctx, scope.ID, "/data/photo.png", 20, "image")
	require.NoError(t, err)
	require.NoError(t, db.TagFile(ctx, readme, docs.ID))
	require.NoError(t, db.TagFile(ctx, photo, pics.ID))

	// No tag restriction: everything.
	all, err := db.GetFiles(ctx, userID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Restricted to docs: only the readme.
	filtered, err := db.GetFiles(ctx, userID, []int64{docs.ID})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "readme.md", filtered[0].Name)
	require.Len(t, filtered[0].Tags, 1)
	assert.Equal(t, "docs", filtered[0].Tags[0].Name)
}

func TestUpsertFileResetsHashOnSizeChange(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	userID := createTestUser(t, ctx, db)

	scope, err := db.CreateScope(ctx, userID, "/data", "data")
	require.NoError(t, err)

	id, err := db.UpsertFile(ctx, scope.ID, "/data/a.txt", 10, "text/plain")
	require.NoError(t, err)
	require.NoError(t, db.UpdateFileHash(ctx, id, "deadbeef"))

	// Same size: hash survives.
	_, err = db.UpsertFile(ctx, scope.ID, "/data/a.txt", 10, "text/plain")
	require.NoError(t, err)
	f, err := db.GetFile(ctx, userID, id)
	require.NoError(t, err)
	require.NotNil(t, f.Hash)
	assert.Equal(t, "deadbeef", *f.Hash)

	// Changed size: stale hash is dropped and must be recomputed.
	_, err = db.UpsertFile(ctx, scope.ID, "/data/a.txt", 11, "text/plain")
	require.NoError(t, err)
	f, err = db.GetFile(ctx, userID, id)
	require.NoError(t, err)
	assert.Nil(t, f.Hash)
}

func TestFilesNeedingHash(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	userID := createTestUser(t, ctx, db)

	scope, err := db.CreateScope(ctx, userID, "/data", "data")
	require.NoError(t, err)
	tag, err := db.CreateTag(ctx, userID, "shared", nil)
	require.NoError(t, err)

	inShare, err := db.UpsertFile(ctx, scope.ID, "/data/in.txt", 10, "text/plain")
	require.NoError(t, err)
	require.NoError(t, db.TagFile(ctx, inShare, tag.ID))
	_, err = db.UpsertFile(ctx, scope.ID, "/data/out.txt", 10, "text/plain")
	require.NoError(t, err)

	share, err := db.CreateShare(ctx, userID, "s", "tz_k", "all", []int64{tag.ID}, nil)
	require.NoError(t, err)
	sync := true
	require.NoError(t, db.UpdateShare(ctx, userID, share.ID, ShareUpdate{CloudSync: &sync}))

	// Only the file reachable through a cloud-synced share needs hashing.
	files, err := db.FilesNeedingHash(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "in.txt", files[0].Name)

	require.NoError(t, db.UpdateFileHash(ctx, inShare, "abc123"))
	files, err = db.FilesNeedingHash(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestSharesWithCloudSync(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	userID := createTestUser(t, ctx, db)

	s1, err := db.CreateShare(ctx, userID, "synced", "tz_1", "all", nil, nil)
	require.NoError(t, err)
	_, err = db.CreateShare(ctx, userID, "local-only", "tz_2", "all", nil, nil)
	require.NoError(t, err)

	sync := true
	require.NoError(t, db.UpdateShare(ctx, userID, s1.ID, ShareUpdate{CloudSync: &sync}))

	shares, err := db.SharesWithCloudSync(ctx, 0)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "synced", shares[0].Name)

	require.NoError(t, db.TouchShareSynced(ctx, s1.ID))
	got, err := db.GetShare(ctx, userID, s1.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastSyncedAt)
}
