// Package api defines the wire types exchanged between the catalogue server
// and the relay.
package api

import "encoding/json"

// RulePayload is a privacy rule as carried inside a sync manifest. The relay
// stores it for informational display only; it never applies redaction.
type RulePayload struct {
	Type        string `json:"type"`
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	IsActive    bool   `json:"isActive"`
}

// ProfilePayload is one privacy profile with its rules, in chain order.
type ProfilePayload struct {
	ID    int64         `json:"id"`
	Name  string        `json:"name"`
	Rules []RulePayload `json:"rules"`
}

// ManifestFile grants access to one artifact under a share-specific virtual
// filename. Tags travel by name: tag ids are not stable across databases.
type ManifestFile struct {
	Hash string   `json:"hash"`
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`
}

// SyncRequest is the manifest pushed to POST /api/v1/sync. The token is sent
// raw; the relay hashes it before storage and never persists the plaintext.
// SyncID correlates one push across catalogue and relay logs.
type SyncRequest struct {
	SyncID        string           `json:"syncId"`
	ShareID       int64            `json:"shareId"`
	Token         string           `json:"token"`
	Name          string           `json:"name"`
	PrivacyConfig []ProfilePayload `json:"privacyConfig"`
	Files         []ManifestFile   `json:"files"`
}

type SyncResponse struct {
	Success bool `json:"success"`
}

type UploadResponse struct {
	Success bool   `json:"success"`
	Hash    string `json:"hash"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ShareFile is one accessible file in a public share listing.
type ShareFile struct {
	Name     string   `json:"name"`
	Hash     string   `json:"hash"`
	Size     int64    `json:"size"`
	MimeType string   `json:"mimeType"`
	Tags     []string `json:"tags"`
}

// ShareView is the public metadata of a synced share.
type ShareView struct {
	Name          string          `json:"name"`
	PrivacyConfig json.RawMessage `json:"privacyConfig"`
	Files         []ShareFile     `json:"files"`
}
