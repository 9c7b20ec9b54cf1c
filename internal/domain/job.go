package domain

// JobStatus enumerates job lifecycle states as reported to clients.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// ImageFile describes one rendition of a generated image.
type ImageFile struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
}

// GeneratedImage is one produced image with its thumbnail rendition.
type GeneratedImage struct {
	Full      ImageFile `json:"full"`
	Thumbnail ImageFile `json:"thumbnail"`
	Label     string    `json:"label,omitempty"`
}
