package soundcloud

import "github.com/playfetch/playfetch/types"

// Boundary schemas for the platform's JSON API. Responses decode into
// these types in one step so a malformed payload surfaces as a single
// classified parse failure rather than scattered field lookups.

type apiUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PermalinkURL string `json:"permalink_url"`
	Verified     bool   `json:"verified"`
}

type apiFormat struct {
	Protocol string `json:"protocol"`
	MimeType string `json:"mime_type"`
}

type apiTranscoding struct {
	URL    string    `json:"url"`
	Preset string    `json:"preset"`
	Format apiFormat `json:"format"`
}

type apiMedia struct {
	Transcodings []apiTranscoding `json:"transcodings"`
}

type apiTrack struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	PermalinkURL string   `json:"permalink_url"`
	Duration     int64    `json:"duration"`
	Genre        string   `json:"genre"`
	ArtworkURL   string   `json:"artwork_url"`
	User         apiUser  `json:"user"`
	Media        apiMedia `json:"media"`
}

type apiPlaylist struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	PermalinkURL string     `json:"permalink_url"`
	Duration     int64      `json:"duration"`
	TrackCount   int        `json:"track_count"`
	User         apiUser    `json:"user"`
	Tracks       []apiTrack `json:"tracks"`
}

type streamResponse struct {
	URL string `json:"url"`
}

func (u apiUser) toUser() types.TrackUser {
	return types.TrackUser{
		ID:       u.ID,
		Name:     u.Username,
		URL:      u.PermalinkURL,
		Verified: u.Verified,
	}
}

func (t apiTrack) toTrack() types.Track {
	formats := make([]types.TrackFormat, 0, len(t.Media.Transcodings))
	for _, tc := range t.Media.Transcodings {
		formats = append(formats, types.TrackFormat{
			URL:      tc.URL,
			Preset:   tc.Preset,
			Protocol: tc.Format.Protocol,
			MimeType: tc.Format.MimeType,
		})
	}
	return types.Track{
		ID:         t.ID,
		Title:      t.Title,
		URL:        t.PermalinkURL,
		DurationMS: t.Duration,
		Genre:      t.Genre,
		ArtworkURL: t.ArtworkURL,
		User:       t.User.toUser(),
		Formats:    formats,
	}
}

func (p apiPlaylist) toTrackList() types.TrackList {
	tracks := make([]types.Track, 0, len(p.Tracks))
	for _, t := range p.Tracks {
		tracks = append(tracks, t.toTrack())
	}
	return types.TrackList{
		ID:         p.ID,
		Title:      p.Title,
		URL:        p.PermalinkURL,
		DurationMS: p.Duration,
		TrackCount: p.TrackCount,
		Tracks:     tracks,
		User:       p.User.toUser(),
	}
}
