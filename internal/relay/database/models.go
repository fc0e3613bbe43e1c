package database

type Artifact struct {
	Hash       string `json:"hash"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mimeType"`
	StoredPath string `json:"-"`
	CreatedAt  string `json:"createdAt"`
}

type Share struct {
	ID            int64  `json:"id"`
	LocalShareID  int64  `json:"localShareId"`
	TokenHash     string `json:"-"`
	Name          string `json:"name"`
	PrivacyConfig string `json:"privacyConfig"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

type AccessRule struct {
	ShareID         int64  `json:"shareId"`
	ArtifactHash    string `json:"artifactHash"`
	VirtualFilename string `json:"virtualFilename"`
	Tags            string `json:"tags"`
}
