// Package relayclient is the catalogue server's HTTP client for the relay.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/scrinia/scrinia/pkg/api"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a relay client. The timeout bounds every call so an
// unreachable relay cannot stall a sync cycle.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ArtifactExists issues a HEAD existence check for a hash.
func (c *Client) ArtifactExists(ctx context.Context, hash string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/api/v1/artifacts/"+hash, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("artifact existence check failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %d from artifact check", resp.StatusCode)
	}
}

// UploadArtifact streams file bytes to the relay as a multipart upload. The
// relay recomputes the hash and rejects a mismatch.
func (c *Client) UploadArtifact(ctx context.Context, hash, filename string, data io.Reader) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, data); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/artifacts/"+hash, pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("artifact upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("artifact upload rejected: %s", readError(resp))
	}
	return nil
}

// PushManifest sends a share's sync payload to the relay.
func (c *Client) PushManifest(ctx context.Context, manifest *api.SyncRequest) error {
	payload, err := json.Marshal(manifest)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/sync", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("manifest push failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("manifest push rejected: %s", readError(resp))
	}

	var syncResp api.SyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&syncResp); err != nil {
		return fmt.Errorf("decode sync response: %w", err)
	}
	if !syncResp.Success {
		return fmt.Errorf("relay reported unsuccessful sync")
	}
	return nil
}

func readError(resp *http.Response) string {
	var errResp api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		return fmt.Sprintf("%s (status %d)", errResp.Error, resp.StatusCode)
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
