package types

// SearchType selects which renderer kind a search parse extracts.
type SearchType string

const (
	// SearchTypeVideo extracts video renderers.
	SearchTypeVideo SearchType = "video"
	// SearchTypeChannel extracts channel renderers.
	SearchTypeChannel SearchType = "channel"
	// SearchTypePlaylist extracts playlist renderers.
	SearchTypePlaylist SearchType = "playlist"
)

// SearchOptions holds caller-supplied search parameters. Zero values use
// defaults: type video, no limit, platform-default language.
type SearchOptions struct {
	Type     SearchType
	Limit    int
	Language string
}

// Thumbnail describes one image variant.
type Thumbnail struct {
	URL    string
	Width  int
	Height int
}

// Uploader describes the channel a video or playlist belongs to.
type Uploader struct {
	ID       string
	Name     string
	URL      string
	Verified bool
	Artist   bool
}

// Video describes one video search result.
type Video struct {
	ID           string
	URL          string
	Title        string
	Thumbnail    Thumbnail
	Uploader     Uploader
	Duration     int // seconds; 0 for live broadcasts
	DurationText string
	Live         bool
	Views        int64
	UploadedAt   string
}

// Channel describes one channel search result.
type Channel struct {
	ID          string
	Name        string
	URL         string
	Icon        Thumbnail
	Verified    bool
	Artist      bool
	Subscribers string
}

// Playlist describes one playlist search result.
type Playlist struct {
	ID         string
	Title      string
	URL        string
	Thumbnail  Thumbnail
	Uploader   Uploader
	VideoCount int
}

// TrackFormat describes one encoded variant of a track.
type TrackFormat struct {
	URL      string
	Preset   string
	Protocol string
	MimeType string
}

// TrackUser describes the account that published a track or track list.
type TrackUser struct {
	ID       int64
	Name     string
	URL      string
	Verified bool
}

// Track describes a resolved audio track.
type Track struct {
	ID         int64
	Title      string
	URL        string
	DurationMS int64
	Genre      string
	ArtworkURL string
	User       TrackUser
	Formats    []TrackFormat
}

// TrackList describes a resolved track playlist.
type TrackList struct {
	ID         int64
	Title      string
	URL        string
	DurationMS int64
	TrackCount int
	Tracks     []Track
	User       TrackUser
}

// StreamType classifies a resolved stream by codec family.
type StreamType string

const (
	// StreamTypeOggOpus marks Ogg/Opus audio streams.
	StreamTypeOggOpus StreamType = "ogg/opus"
	// StreamTypeArbitrary marks streams with no recognized codec family.
	StreamTypeArbitrary StreamType = "arbitrary"
)

// Stream holds a final signed media URL and its codec classification.
type Stream struct {
	URL  string
	Type StreamType
}
