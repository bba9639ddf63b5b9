package downloader

// Media item kinds as reported by the media resolution API.
const (
	KindVideo         = "video"
	KindImage         = "image"
	KindAnimatedImage = "animated_image"
)

// Work is the payload of a successful single-work resolution.
type Work struct {
	Title  string      `json:"title"`
	Author string      `json:"author"`
	Type   string      `json:"type"`
	Items  []MediaItem `json:"items"`
}

// MediaItem is one downloadable element of a work. Which URL fields are set
// depends on Type: video_url for videos, image_url for images, both for
// animated images (still + motion component).
type MediaItem struct {
	Type     string `json:"type"`
	VideoURL string `json:"video_url"`
	ImageURL string `json:"image_url"`
}

// Catalog is the payload of a successful user profile resolution.
type Catalog struct {
	User       UserInfo  `json:"user"`
	WorksCount int       `json:"works_count"`
	Works      []WorkRef `json:"works"`
}

// UserInfo describes the profile owner.
type UserInfo struct {
	Nickname  string `json:"nickname"`
	UID       string `json:"uid"`
	Signature string `json:"signature"`
}

// WorkRef is a lightweight pointer to a work, not yet resolved to media.
type WorkRef struct {
	ShareURL string `json:"share_url"`
	Desc     string `json:"desc"`
	Type     string `json:"type"`
	AwemeID  string `json:"aweme_id"`
}

// Tally accumulates per-work outcomes across one catalog run.
type Tally struct {
	Success int
	Fail    int
	Total   int
}
