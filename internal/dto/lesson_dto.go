package dto

import "time"

// Asset URL sources.
const (
	AssetSourceExternal = "external"
	AssetSourceSigned   = "signed"
)

// LessonAssetURLResponse resolves a lesson's video reference into a playable
// URL. Source indicates whether the URL is a stored absolute URL or a
// time-limited signed URL against object storage.
type LessonAssetURLResponse struct {
	URL       string     `json:"url"`
	Source    string     `json:"source"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
