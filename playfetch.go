// Package playfetch extracts structured media metadata from two media
// platforms and resolves playable stream URLs. One side parses the
// embedded payload of results-page HTML into typed video, channel and
// playlist records; the other resolves track and playlist URLs through
// a credentialed API and fetches final signed stream URLs, optionally
// saving them to disk.
package playfetch

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/playfetch/playfetch/client"
	"github.com/playfetch/playfetch/downloader"
	"github.com/playfetch/playfetch/errs"
	"github.com/playfetch/playfetch/internal/mimeext"
	internalSanitize "github.com/playfetch/playfetch/internal/sanitize"
	"github.com/playfetch/playfetch/soundcloud"
	"github.com/playfetch/playfetch/types"
	"github.com/playfetch/playfetch/youtube/search"
)

// Progress describes current progress of an ongoing stream download.
type Progress struct {
	TotalSize      int64
	DownloadedSize int64
	Percent        float64
}

// Client is the high-level API over both platforms.
//
// Use chainable WithX setters to configure; a zero-configured Client
// works for search parsing, while credentialed operations need a
// client id from the default credential file, WithClientID or
// WithCredentialFile.
type Client struct {
	http       *client.Client
	clientID   string
	language   string
	progressFn func(Progress)
	rateLimit  int64
}

// New creates a Client with default options. A credential persisted at
// the default path is picked up when present; without one,
// credentialed operations fail closed.
func New() *Client {
	return NewWith(client.Config{})
}

// NewWith creates a Client using the given HTTP configuration.
func NewWith(cfg client.Config) *Client {
	c := &Client{http: client.NewWith(cfg)}
	if id, err := soundcloud.LoadCredential(soundcloud.DefaultCredentialPath); err == nil {
		c.clientID = id
	}
	return c
}

// WithHTTPClient sets a custom HTTP client to be used for all network
// calls.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	if httpClient != nil {
		c.http.HTTPClient = httpClient
	}
	return c
}

// WithClientID sets the platform credential directly.
func (c *Client) WithClientID(id string) *Client {
	c.clientID = strings.TrimSpace(id)
	return c
}

// WithCredentialFile loads the platform credential from path,
// replacing any previously loaded id on success.
func (c *Client) WithCredentialFile(path string) *Client {
	if id, err := soundcloud.LoadCredential(path); err == nil {
		c.clientID = id
	}
	return c
}

// WithLanguage sets the locale hint sent with search requests.
func (c *Client) WithLanguage(lang string) *Client {
	c.language = strings.TrimSpace(lang)
	return c
}

// WithProgress registers a callback that receives progress updates
// while a stream is saved to disk.
func (c *Client) WithProgress(f func(Progress)) *Client {
	c.progressFn = f
	return c
}

// WithRateLimit sets a download rate limit in bytes per second. Zero
// disables limiting.
func (c *Client) WithRateLimit(bytesPerSecond int64) *Client {
	if bytesPerSecond < 0 {
		bytesPerSecond = 0
	}
	c.rateLimit = bytesPerSecond
	return c
}

// Search fetches the results page for query and parses it. A nil opts
// defaults to videos with no limit; the client's language applies when
// opts carries none.
func (c *Client) Search(ctx context.Context, query string, opts *types.SearchOptions) (*search.Results, error) {
	return search.New(c.http).Search(ctx, query, c.searchOptions(opts))
}

// SearchVideos fetches up to limit video results for query. Zero limit
// means unbounded.
func (c *Client) SearchVideos(ctx context.Context, query string, limit int) ([]types.Video, error) {
	res, err := c.Search(ctx, query, &types.SearchOptions{Type: types.SearchTypeVideo, Limit: limit})
	if err != nil {
		return nil, err
	}
	return res.Videos, nil
}

// SearchChannels fetches up to limit channel results for query.
func (c *Client) SearchChannels(ctx context.Context, query string, limit int) ([]types.Channel, error) {
	res, err := c.Search(ctx, query, &types.SearchOptions{Type: types.SearchTypeChannel, Limit: limit})
	if err != nil {
		return nil, err
	}
	return res.Channels, nil
}

// SearchPlaylists fetches up to limit playlist results for query.
func (c *Client) SearchPlaylists(ctx context.Context, query string, limit int) ([]types.Playlist, error) {
	res, err := c.Search(ctx, query, &types.SearchOptions{Type: types.SearchTypePlaylist, Limit: limit})
	if err != nil {
		return nil, err
	}
	return res.Playlists, nil
}

// ParseSearchHTML parses an already fetched results page without any
// network access.
func (c *Client) ParseSearchHTML(html string, opts *types.SearchOptions) (*search.Results, error) {
	return search.Parse(html, c.searchOptions(opts))
}

func (c *Client) searchOptions(opts *types.SearchOptions) *types.SearchOptions {
	if c.language == "" {
		return opts
	}
	merged := types.SearchOptions{Language: c.language}
	if opts != nil {
		merged = *opts
		if merged.Language == "" {
			merged.Language = c.language
		}
	}
	return &merged
}

func (c *Client) resolver() *soundcloud.Client {
	return soundcloud.New(c.http, c.clientID)
}

// Resolve converts a platform URL into a track or playlist entity.
func (c *Client) Resolve(ctx context.Context, url string) (*soundcloud.Resolved, error) {
	return c.resolver().Resolve(ctx, url)
}

// Stream resolves url and returns the final signed stream URL of the
// resulting track. A URL resolving to a playlist is ErrState.
func (c *Client) Stream(ctx context.Context, url string) (*types.Stream, error) {
	return c.resolver().StreamFromURL(ctx, url)
}

// StreamTrack returns the final signed stream URL for an already
// resolved track.
func (c *Client) StreamTrack(ctx context.Context, track *types.Track) (*types.Stream, error) {
	return c.resolver().StreamFromTrack(ctx, track)
}

// ProbeClientID reports whether id is currently accepted by the
// platform. Failures read as false, never an error.
func (c *Client) ProbeClientID(ctx context.Context, id string) bool {
	return c.resolver().ProbeClientID(ctx, id)
}

// ResolveKind reports the kind url resolves to: "track", "playlist",
// or "" for anything out of scope. Network failures are returned.
func (c *Client) ResolveKind(ctx context.Context, url string) (string, error) {
	return c.resolver().ResolveKind(ctx, url)
}

// DiscoverClientID scrapes a working client id from the platform's
// script assets. The id is returned, not adopted; pass it to
// WithClientID or persist it with soundcloud.SaveCredential.
func (c *Client) DiscoverClientID(ctx context.Context) (string, error) {
	return c.resolver().DiscoverClientID(ctx)
}

// SaveStream resolves url, fetches its stream and writes it to
// outputPath, returning the resolved track. An empty outputPath
// derives a safe filename from the track title and stream MIME; a
// directory path gets that filename joined onto it.
func (c *Client) SaveStream(ctx context.Context, url, outputPath string) (*types.Track, error) {
	res, err := c.Resolve(ctx, url)
	if err != nil {
		return nil, err
	}
	if res.Track == nil {
		return nil, fmt.Errorf("%w: %q resolved to a playlist, a track is required", errs.ErrState, url)
	}

	stream, err := c.resolver().StreamFromTrack(ctx, res.Track)
	if err != nil {
		return nil, err
	}

	dl := downloader.New(c.http.HTTPClient, func(p downloader.Progress) {
		if c.progressFn != nil {
			c.progressFn(Progress{TotalSize: p.TotalSize, DownloadedSize: p.DownloadedSize, Percent: p.Percent})
		}
	}, c.rateLimit)
	path := deriveOutputPath(outputPath, res.Track)
	if err := dl.Download(ctx, stream.URL, path); err != nil {
		return nil, fmt.Errorf("download failed: %v", err)
	}
	return res.Track, nil
}

// deriveOutputPath keeps explicit file paths as-is and derives a safe
// filename from the track title otherwise.
func deriveOutputPath(outputPath string, track *types.Track) string {
	ext := mimeext.DefaultExt
	if len(track.Formats) > 0 {
		ext = mimeext.ExtFromMime(track.Formats[len(track.Formats)-1].MimeType)
	}
	name := internalSanitize.ToSafeFilename(track.Title, ext)

	if outputPath == "" {
		return name
	}
	if fi, err := os.Stat(outputPath); err == nil && fi.IsDir() {
		return filepath.Join(outputPath, name)
	}
	return outputPath
}
