package soundcloud

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/playfetch/playfetch/errs"
	"github.com/playfetch/playfetch/internal/logger"
	"github.com/playfetch/playfetch/types"
)

// StreamFromURL resolves rawURL and fetches the signed stream URL of
// the resulting track. A URL that resolves to a playlist is ErrState;
// resolve it and pick a track instead.
func (c *Client) StreamFromURL(ctx context.Context, rawURL string) (*types.Stream, error) {
	res, err := c.Resolve(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if res.Track == nil {
		return nil, fmt.Errorf("%w: %q resolved to a playlist, a track is required", errs.ErrState, rawURL)
	}
	return c.StreamFromTrack(ctx, res.Track)
}

// StreamFromTrack fetches the signed stream URL for an already
// resolved track, skipping the resolve round trip. The last listed
// format is used; the platform lists formats worst to best, an
// ordering assumption carried from observed responses.
func (c *Client) StreamFromTrack(ctx context.Context, track *types.Track) (*types.Stream, error) {
	if c.clientID == "" {
		return nil, fmt.Errorf("%w: no client id loaded", errs.ErrConfig)
	}
	if track == nil || len(track.Formats) == 0 {
		return nil, fmt.Errorf("%w: track carries no formats", errs.ErrParse)
	}

	format := track.Formats[len(track.Formats)-1]
	u, err := url.Parse(format.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: format url %q: %v", errs.ErrParse, format.URL, err)
	}
	q := u.Query()
	q.Set("client_id", c.clientID)
	u.RawQuery = q.Encode()

	var sr streamResponse
	if err := c.http.GetJSON(ctx, u.String(), &sr); err != nil {
		return nil, err
	}
	if sr.URL == "" {
		return nil, fmt.Errorf("%w: stream response has no url", errs.ErrParse)
	}

	st := types.StreamTypeArbitrary
	if strings.HasPrefix(format.MimeType, "audio/ogg") {
		st = types.StreamTypeOggOpus
	}
	logger.L(logger.ComponentSoundCloud).Debug("stream resolved",
		zap.String("preset", format.Preset),
		zap.String("type", string(st)))
	return &types.Stream{URL: sr.URL, Type: st}, nil
}
