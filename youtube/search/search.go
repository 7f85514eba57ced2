// Package search parses results-page HTML into typed video, channel
// and playlist records. The envelope path into the embedded payload is
// fixed; individual list entries are allowed to vary and are skipped
// when they do not extract, while a broken envelope aborts the parse.
package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/playfetch/playfetch/client"
	"github.com/playfetch/playfetch/errs"
	"github.com/playfetch/playfetch/internal/jsonwalk"
	"github.com/playfetch/playfetch/internal/logger"
	"github.com/playfetch/playfetch/types"
	"github.com/playfetch/playfetch/youtube/pagedata"
)

var resultsURL = "https://www.youtube.com/results"

var rendererKeys = map[types.SearchType]string{
	types.SearchTypeVideo:    "videoRenderer",
	types.SearchTypeChannel:  "channelRenderer",
	types.SearchTypePlaylist: "playlistRenderer",
}

// Results holds the parsed entries of one search. Only the slice
// matching the requested type is populated.
type Results struct {
	Videos    []types.Video
	Channels  []types.Channel
	Playlists []types.Playlist
}

// Len returns the number of parsed entries across all slices.
func (r *Results) Len() int {
	return len(r.Videos) + len(r.Channels) + len(r.Playlists)
}

// Client fetches results pages and parses them.
type Client struct {
	http *client.Client
}

// New creates a search client on top of the given HTTP client.
func New(httpClient *client.Client) *Client {
	return &Client{http: httpClient}
}

// Search fetches the results page for query and parses it with opts.
func (c *Client) Search(ctx context.Context, query string, opts *types.SearchOptions) (*Results, error) {
	norm, err := normalizeOptions(opts)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", errs.ErrConfig)
	}

	q := url.Values{}
	q.Set("search_query", query)
	if norm.Language != "" {
		q.Set("hl", norm.Language)
	}
	body, err := c.http.GetBody(ctx, resultsURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return Parse(string(body), &norm)
}

// Parse extracts search results from raw results-page HTML. A nil opts
// defaults to videos with no limit. Entries are visited in source order
// and the walk stops as soon as opts.Limit results are collected.
func Parse(html string, opts *types.SearchOptions) (*Results, error) {
	norm, err := normalizeOptions(opts)
	if err != nil {
		return nil, err
	}

	data, err := pagedata.Extract(html)
	if err != nil {
		return nil, err
	}

	sections := jsonwalk.Slice(data,
		"contents", "twoColumnSearchResultsRenderer", "primaryContents", "sectionListRenderer", "contents")
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: results envelope missing", errs.ErrParse)
	}
	entries := jsonwalk.Slice(sections[0], "itemSectionRenderer", "contents")
	if entries == nil {
		return nil, fmt.Errorf("%w: item section missing", errs.ErrParse)
	}

	key := rendererKeys[norm.Type]
	log := logger.L(logger.ComponentSearch)
	res := &Results{}
	for _, entry := range entries {
		if norm.Limit > 0 && res.Len() >= norm.Limit {
			break
		}
		e, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := e[key]; !ok {
			continue
		}

		switch norm.Type {
		case types.SearchTypeVideo:
			v, err := extractVideo(e)
			if err != nil {
				log.Debug("skipping malformed entry", zap.Error(err))
				continue
			}
			res.Videos = append(res.Videos, v)
		case types.SearchTypeChannel:
			ch, err := extractChannel(e)
			if err != nil {
				log.Debug("skipping malformed entry", zap.Error(err))
				continue
			}
			res.Channels = append(res.Channels, ch)
		case types.SearchTypePlaylist:
			pl, err := extractPlaylist(e)
			if err != nil {
				log.Debug("skipping malformed entry", zap.Error(err))
				continue
			}
			res.Playlists = append(res.Playlists, pl)
		}
	}

	log.Debug("parsed results",
		zap.String("type", string(norm.Type)),
		zap.Int("count", res.Len()),
		zap.Int("entries", len(entries)))
	return res, nil
}

func normalizeOptions(opts *types.SearchOptions) (types.SearchOptions, error) {
	norm := types.SearchOptions{}
	if opts != nil {
		norm = *opts
	}
	if norm.Type == "" {
		norm.Type = types.SearchTypeVideo
	}
	if _, ok := rendererKeys[norm.Type]; !ok {
		return norm, fmt.Errorf("%w: unknown search type %q", errs.ErrConfig, norm.Type)
	}
	if norm.Limit < 0 {
		norm.Limit = 0
	}
	return norm, nil
}
