package api

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrinia/scrinia/internal/relay/database"
	"github.com/scrinia/scrinia/internal/relay/store"
	"github.com/scrinia/scrinia/pkg/api"
)

func setupRelay(t *testing.T) (*database.DB, store.Store, *httptest.Server) {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	blobs, err := store.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	server := httptest.NewServer(NewRouter(db, blobs))
	t.Cleanup(server.Close)
	return db, blobs, server
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func uploadArtifact(t *testing.T, server *httptest.Server, hash string, content []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "upload.bin")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/artifacts/"+hash, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func pushManifest(t *testing.T, server *httptest.Server, req api.SyncRequest) *http.Response {
	t.Helper()
	payload, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(server.URL+"/api/v1/sync", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func head(t *testing.T, server *httptest.Server, hash string) int {
	t.Helper()
	resp, err := http.Head(server.URL + "/api/v1/artifacts/" + hash)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestArtifactUploadAndHead(t *testing.T) {
	_, _, server := setupRelay(t)
	content := []byte("artifact body")
	hash := sha256Hex(content)

	assert.Equal(t, http.StatusNotFound, head(t, server, hash))

	resp := uploadArtifact(t, server, hash, content)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var upload api.UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&upload))
	assert.True(t, upload.Success)
	assert.Equal(t, hash, upload.Hash)

	assert.Equal(t, http.StatusOK, head(t, server, hash))
}

func TestArtifactUploadIdempotent(t *testing.T) {
	db, _, server := setupRelay(t)
	content := []byte("same bytes twice")
	hash := sha256Hex(content)

	resp := uploadArtifact(t, server, hash, content)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = uploadArtifact(t, server, hash, content)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Exactly one metadata row survives the duplicate upload.
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM artifacts WHERE hash = ?", hash).Scan(&count))
	assert.Equal(t, 1, count)
	assert.Equal(t, http.StatusOK, head(t, server, hash))
}

func TestArtifactUploadHashMismatch(t *testing.T) {
	db, _, server := setupRelay(t)
	claimed := sha256Hex([]byte("what the caller claims"))

	resp := uploadArtifact(t, server, claimed, []byte("entirely different bytes"))
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "Hash mismatch", errResp.Error)

	// No metadata row, no stored bytes.
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM artifacts").Scan(&count))
	assert.Equal(t, 0, count)
	assert.Equal(t, http.StatusNotFound, head(t, server, claimed))
}

func TestArtifactHeadDanglingRow(t *testing.T) {
	db, blobs, server := setupRelay(t)
	content := []byte("soon to vanish")
	hash := sha256Hex(content)

	resp := uploadArtifact(t, server, hash, content)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Simulate partial data loss: bytes gone, metadata row still present.
	require.NoError(t, blobs.Delete(context.Background(), hash))
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM artifacts WHERE hash = ?", hash).Scan(&count))
	require.Equal(t, 1, count)

	// The dangling row reports not-found, forcing a re-upload.
	assert.Equal(t, http.StatusNotFound, head(t, server, hash))
}

func TestSyncManifestAndPublicShare(t *testing.T) {
	_, _, server := setupRelay(t)

	contentA := []byte("file a")
	contentB := []byte("file b")
	hashA := sha256Hex(contentA)
	hashB := sha256Hex(contentB)
	for hash, content := range map[string][]byte{hashA: contentA, hashB: contentB} {
		resp := uploadArtifact(t, server, hash, content)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := pushManifest(t, server, api.SyncRequest{
		ShareID: 1,
		Token:   "tz_token",
		Name:    "My Documents",
		PrivacyConfig: []api.ProfilePayload{
			{ID: 1, Name: "default", Rules: []api.RulePayload{
				{Type: "EMAIL", Replacement: "[EMAIL]", IsActive: true},
			}},
		},
		Files: []api.ManifestFile{
			{Hash: hashA, Name: "a.txt", Tags: []string{"docs"}},
			{Hash: hashB, Name: "b.txt"},
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The public listing shows exactly the manifest's files.
	shareResp, err := http.Get(server.URL + "/api/v1/pub/share/tz_token")
	require.NoError(t, err)
	defer shareResp.Body.Close()
	require.Equal(t, http.StatusOK, shareResp.StatusCode)

	var view api.ShareView
	require.NoError(t, json.NewDecoder(shareResp.Body).Decode(&view))
	assert.Equal(t, "My Documents", view.Name)
	require.Len(t, view.Files, 2)
	assert.Equal(t, "a.txt", view.Files[0].Name)
	assert.Equal(t, []string{"docs"}, view.Files[0].Tags)
	assert.NotNil(t, view.PrivacyConfig)

	// Unknown token is a 404.
	notFound, err := http.Get(server.URL + "/api/v1/pub/share/tz_wrong")
	require.NoError(t, err)
	notFound.Body.Close()
	assert.Equal(t, http.StatusNotFound, notFound.StatusCode)
}

func TestSyncManifestFullReplaceRevokes(t *testing.T) {
	_, _, server := setupRelay(t)

	contentA := []byte("keep me")
	contentB := []byte("drop me")
	hashA := sha256Hex(contentA)
	hashB := sha256Hex(contentB)
	for hash, content := range map[string][]byte{hashA: contentA, hashB: contentB} {
		resp := uploadArtifact(t, server, hash, content)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	first := pushManifest(t, server, api.SyncRequest{
		ShareID: 1, Token: "tz_token", Name: "share",
		Files: []api.ManifestFile{{Hash: hashA, Name: "a.txt"}, {Hash: hashB, Name: "b.txt"}},
	})
	first.Body.Close()
	require.Equal(t, http.StatusOK, first.StatusCode)

	// Second sync drops b.txt from the manifest.
	second := pushManifest(t, server, api.SyncRequest{
		ShareID: 1, Token: "tz_token", Name: "share",
		Files: []api.ManifestFile{{Hash: hashA, Name: "a.txt"}},
	})
	second.Body.Close()
	require.Equal(t, http.StatusOK, second.StatusCode)

	shareResp, err := http.Get(server.URL + "/api/v1/pub/share/tz_token")
	require.NoError(t, err)
	defer shareResp.Body.Close()
	var view api.ShareView
	require.NoError(t, json.NewDecoder(shareResp.Body).Decode(&view))
	require.Len(t, view.Files, 1)
	assert.Equal(t, "a.txt", view.Files[0].Name)

	// The revoked artifact still exists in the store, so the failure is an
	// access failure, not absence.
	download, err := http.Get(server.URL + "/api/v1/pub/share/tz_token/download/" + hashB)
	require.NoError(t, err)
	download.Body.Close()
	assert.Equal(t, http.StatusForbidden, download.StatusCode)
}

func TestPublicDownload(t *testing.T) {
	_, _, server := setupRelay(t)

	content := []byte("downloadable content")
	hash := sha256Hex(content)
	resp := uploadArtifact(t, server, hash, content)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	push := pushManifest(t, server, api.SyncRequest{
		ShareID: 1, Token: "tz_token", Name: "share",
		Files: []api.ManifestFile{{Hash: hash, Name: "report.txt"}},
	})
	push.Body.Close()
	require.Equal(t, http.StatusOK, push.StatusCode)

	download, err := http.Get(server.URL + "/api/v1/pub/share/tz_token/download/" + hash)
	require.NoError(t, err)
	defer download.Body.Close()
	require.Equal(t, http.StatusOK, download.StatusCode)

	// The same artifact is served under the share's virtual filename.
	assert.Equal(t, `inline; filename="report.txt"`, download.Header.Get("Content-Disposition"))

	var body bytes.Buffer
	_, err = body.ReadFrom(download.Body)
	require.NoError(t, err)
	assert.Equal(t, content, body.Bytes())
}

func TestPublicDownloadWithoutAccessRule(t *testing.T) {
	_, _, server := setupRelay(t)

	visible := []byte("granted")
	hidden := []byte("not granted")
	visibleHash := sha256Hex(visible)
	hiddenHash := sha256Hex(hidden)
	for hash, content := range map[string][]byte{visibleHash: visible, hiddenHash: hidden} {
		resp := uploadArtifact(t, server, hash, content)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	push := pushManifest(t, server, api.SyncRequest{
		ShareID: 1, Token: "tz_token", Name: "share",
		Files: []api.ManifestFile{{Hash: visibleHash, Name: "visible.txt"}},
	})
	push.Body.Close()
	require.Equal(t, http.StatusOK, push.StatusCode)

	// The artifact exists in the store but carries no access rule under this
	// share: 403, not 404.
	download, err := http.Get(server.URL + "/api/v1/pub/share/tz_token/download/" + hiddenHash)
	require.NoError(t, err)
	download.Body.Close()
	assert.Equal(t, http.StatusForbidden, download.StatusCode)
}

func TestSyncValidation(t *testing.T) {
	_, _, server := setupRelay(t)

	resp := pushManifest(t, server, api.SyncRequest{Name: "no token or id"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp api.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "Missing share metadata", errResp.Error)
}

func TestArtifactDelete(t *testing.T) {
	_, _, server := setupRelay(t)

	content := []byte("to be removed")
	hash := sha256Hex(content)
	resp := uploadArtifact(t, server, hash, content)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/artifacts/"+hash, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	require.Equal(t, http.StatusOK, del.StatusCode)

	assert.Equal(t, http.StatusNotFound, head(t, server, hash))

	// Deleting again is a 404.
	again, err := http.DefaultClient.Do(req.Clone(context.Background()))
	require.NoError(t, err)
	again.Body.Close()
	assert.Equal(t, http.StatusNotFound, again.StatusCode)
}
