package database

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	CreatedAt    string `json:"createdAt"`
}

type Scope struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	Path      string `json:"path"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type Tag struct {
	ID     int64   `json:"id"`
	UserID int64   `json:"userId"`
	Name   string  `json:"name"`
	Color  *string `json:"color"`
}

type FileHandle struct {
	ID        int64   `json:"id"`
	ScopeID   int64   `json:"scopeId"`
	Path      string  `json:"path"`
	Name      string  `json:"name"`
	Extension string  `json:"extension"`
	Size      int64   `json:"size"`
	MimeType  *string `json:"mimeType"`
	Hash      *string `json:"hash"`
	UpdatedAt string  `json:"updatedAt"`
	Tags      []Tag   `json:"tags"`
}

type PrivacyProfile struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	Name      string `json:"name"`
	RuleCount int    `json:"ruleCount"`
}

type PrivacyRule struct {
	ID          int64  `json:"id"`
	ProfileID   int64  `json:"profileId"`
	Type        string `json:"type"`
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	IsActive    bool   `json:"isActive"`
	Sequence    int    `json:"sequence"`
}

type Share struct {
	ID                int64   `json:"id"`
	UserID            int64   `json:"userId"`
	Name              string  `json:"name"`
	Key               string  `json:"key"`
	Permissions       string  `json:"permissions"`
	CloudSync         bool    `json:"cloudSync"`
	LastSyncedAt      *string `json:"lastSyncedAt"`
	LastUsedAt        *string `json:"lastUsedAt"`
	CreatedAt         string  `json:"createdAt"`
	PrivacyProfileIDs []int64 `json:"privacyProfileIds"`
	TagIDs            []int64 `json:"tagIds"`
}
