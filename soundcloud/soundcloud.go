// Package soundcloud resolves platform URLs into typed track and
// playlist records and fetches signed stream URLs for tracks. All
// credentialed calls carry a client id loaded from a local file or
// discovered from the platform's script assets; without one they fail
// closed.
package soundcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/playfetch/playfetch/client"
	"github.com/playfetch/playfetch/errs"
	"github.com/playfetch/playfetch/internal/logger"
	"github.com/playfetch/playfetch/types"
)

var (
	apiBase = "https://api-v2.soundcloud.com"
	pageURL = "https://soundcloud.com"
)

// Resolve response kinds this package constructs. Anything else the
// endpoint returns (users, stations) is out of scope.
const (
	KindTrack    = "track"
	KindPlaylist = "playlist"
)

// Playlist responses carry full objects for the first few tracks and
// id-only stubs for the rest; stubs are hydrated in batches this size.
const hydrateBatchSize = 50

var urlPattern = regexp.MustCompile(`^(?:https?://)?(?:(?:www|m)\.)?(?:soundcloud\.com|snd\.sc)/`)

// MatchURL reports whether raw points into the platform. The scheme
// and a www/m subdomain are optional; the host must be soundcloud.com
// or the snd.sc short domain, followed by a path.
func MatchURL(raw string) bool {
	return urlPattern.MatchString(raw)
}

// Resolved is the outcome of one resolve call. Kind selects which of
// the two entity fields is set; exactly one is non-nil.
type Resolved struct {
	Kind     string
	Track    *types.Track
	Playlist *types.TrackList
}

// Client resolves URLs and streams against the platform API.
type Client struct {
	http     *client.Client
	clientID string
}

// New creates a resolver on top of the given HTTP client. An empty
// clientID is allowed; credentialed operations then fail closed.
func New(httpClient *client.Client, clientID string) *Client {
	return &Client{http: httpClient, clientID: clientID}
}

// ClientID returns the credential the client was built with.
func (c *Client) ClientID() string {
	return c.clientID
}

// Resolve converts a platform URL into a Track or a TrackList. The
// response kind discriminates; an unrecognized kind is ErrValidation.
// Playlists are returned fully hydrated.
func (c *Client) Resolve(ctx context.Context, rawURL string) (*Resolved, error) {
	body, err := c.resolveCall(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, fmt.Errorf("%w: resolve response: %v", errs.ErrParse, err)
	}

	log := logger.L(logger.ComponentSoundCloud)
	switch head.Kind {
	case KindTrack:
		var t apiTrack
		if err := json.Unmarshal(body, &t); err != nil {
			return nil, fmt.Errorf("%w: track response: %v", errs.ErrParse, err)
		}
		if t.ID == 0 {
			return nil, fmt.Errorf("%w: track id missing", errs.ErrParse)
		}
		track := t.toTrack()
		log.Debug("resolved track", zap.Int64("id", track.ID), zap.String("title", track.Title))
		return &Resolved{Kind: KindTrack, Track: &track}, nil

	case KindPlaylist:
		var p apiPlaylist
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("%w: playlist response: %v", errs.ErrParse, err)
		}
		if p.ID == 0 {
			return nil, fmt.Errorf("%w: playlist id missing", errs.ErrParse)
		}
		if err := c.hydrateStubs(ctx, p.Tracks); err != nil {
			return nil, err
		}
		list := p.toTrackList()
		log.Debug("resolved playlist",
			zap.Int64("id", list.ID),
			zap.Int("tracks", len(list.Tracks)))
		return &Resolved{Kind: KindPlaylist, Playlist: &list}, nil
	}
	return nil, fmt.Errorf("%w: kind %q is out of scope", errs.ErrValidation, head.Kind)
}

// ResolveKind reports whether url points at a track or a playlist
// without constructing the entity. An unrecognized kind is ("", nil).
// Network failures are returned to the caller; this probe does not
// swallow them the way ProbeClientID does.
func (c *Client) ResolveKind(ctx context.Context, rawURL string) (string, error) {
	body, err := c.resolveCall(ctx, rawURL)
	if err != nil {
		return "", err
	}
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return "", fmt.Errorf("%w: resolve response: %v", errs.ErrParse, err)
	}
	switch head.Kind {
	case KindTrack, KindPlaylist:
		return head.Kind, nil
	}
	return "", nil
}

// resolveCall guards the credential and URL shape, then issues the one
// resolve round trip. Network failures propagate unchanged.
func (c *Client) resolveCall(ctx context.Context, rawURL string) ([]byte, error) {
	if c.clientID == "" {
		return nil, fmt.Errorf("%w: no client id loaded", errs.ErrConfig)
	}
	if !MatchURL(rawURL) {
		return nil, fmt.Errorf("%w: %q is not a platform URL", errs.ErrValidation, rawURL)
	}

	q := url.Values{}
	q.Set("url", rawURL)
	q.Set("client_id", c.clientID)
	return c.http.GetBody(ctx, apiBase+"/resolve?"+q.Encode())
}

// hydrateStubs replaces id-only track entries in place with full
// objects fetched in batches, keeping the playlist's order.
func (c *Client) hydrateStubs(ctx context.Context, tracks []apiTrack) error {
	var ids []int64
	for _, t := range tracks {
		if t.Title == "" && t.ID != 0 {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	fetched := make(map[int64]apiTrack, len(ids))
	for start := 0; start < len(ids); start += hydrateBatchSize {
		end := start + hydrateBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			batch = append(batch, strconv.FormatInt(id, 10))
		}

		q := url.Values{}
		q.Set("ids", strings.Join(batch, ","))
		q.Set("client_id", c.clientID)
		var page []apiTrack
		if err := c.http.GetJSON(ctx, apiBase+"/tracks?"+q.Encode(), &page); err != nil {
			return err
		}
		for _, t := range page {
			fetched[t.ID] = t
		}
	}

	for i, t := range tracks {
		if full, ok := fetched[t.ID]; ok && t.Title == "" {
			tracks[i] = full
		}
	}
	logger.L(logger.ComponentSoundCloud).Debug("hydrated playlist stubs",
		zap.Int("stubs", len(ids)), zap.Int("fetched", len(fetched)))
	return nil
}
