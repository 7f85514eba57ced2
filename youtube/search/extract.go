package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/playfetch/playfetch/errs"
	"github.com/playfetch/playfetch/internal/jsonwalk"
	"github.com/playfetch/playfetch/types"
)

const (
	origin            = "https://www.youtube.com"
	watchURLPrefix    = origin + "/watch?v="
	playlistURLPrefix = origin + "/playlist?list="
)

var nonDigits = regexp.MustCompile(`\D+`)

func extractVideo(entry map[string]any) (types.Video, error) {
	r := jsonwalk.Map(entry, "videoRenderer")
	if r == nil {
		return types.Video{}, fmt.Errorf("%w: videoRenderer missing", errs.ErrParse)
	}
	id := jsonwalk.String(r, "videoId")
	if id == "" {
		return types.Video{}, fmt.Errorf("%w: video id missing", errs.ErrParse)
	}

	v := types.Video{
		ID:           id,
		URL:          watchURLPrefix + id,
		Title:        textOf(jsonwalk.Map(r, "title")),
		DurationText: jsonwalk.String(r, "lengthText", "simpleText"),
		UploadedAt:   jsonwalk.String(r, "publishedTimeText", "simpleText"),
		Thumbnail:    bestThumbnail(jsonwalk.Slice(r, "thumbnail", "thumbnails")),
		Uploader:     uploaderFrom(r, "ownerText"),
	}
	v.Duration = parseDuration(v.DurationText)
	// No duration text means a live broadcast.
	v.Live = v.DurationText == ""
	v.Views = digitsToInt64(jsonwalk.String(r, "viewCountText", "simpleText"))
	return v, nil
}

func extractChannel(entry map[string]any) (types.Channel, error) {
	r := jsonwalk.Map(entry, "channelRenderer")
	if r == nil {
		return types.Channel{}, fmt.Errorf("%w: channelRenderer missing", errs.ErrParse)
	}
	id := jsonwalk.String(r, "channelId")
	if id == "" {
		return types.Channel{}, fmt.Errorf("%w: channel id missing", errs.ErrParse)
	}

	ch := types.Channel{
		ID:          id,
		Name:        textOf(jsonwalk.Map(r, "title")),
		URL:         browseURL(jsonwalk.Map(r, "navigationEndpoint")),
		Icon:        bestThumbnail(jsonwalk.Slice(r, "thumbnail", "thumbnails")),
		Subscribers: jsonwalk.String(r, "subscriberCountText", "simpleText"),
	}
	ch.Verified, ch.Artist = badgeFlags(jsonwalk.Slice(r, "ownerBadges"))
	return ch, nil
}

func extractPlaylist(entry map[string]any) (types.Playlist, error) {
	r := jsonwalk.Map(entry, "playlistRenderer")
	if r == nil {
		return types.Playlist{}, fmt.Errorf("%w: playlistRenderer missing", errs.ErrParse)
	}
	id := jsonwalk.String(r, "playlistId")
	if id == "" {
		return types.Playlist{}, fmt.Errorf("%w: playlist id missing", errs.ErrParse)
	}

	count, err := countToInt(jsonwalk.String(r, "videoCount"))
	if err != nil {
		return types.Playlist{}, err
	}

	// Playlist cards nest their thumbnail list one group deeper.
	list := jsonwalk.Slice(r, "thumbnail", "thumbnails")
	if groups := jsonwalk.Slice(r, "thumbnails"); len(groups) > 0 {
		list = jsonwalk.Slice(groups[0], "thumbnails")
	}

	return types.Playlist{
		ID:         id,
		Title:      textOf(jsonwalk.Map(r, "title")),
		URL:        playlistURLPrefix + id,
		Thumbnail:  bestThumbnail(list),
		Uploader:   uploaderFrom(r, "shortBylineText"),
		VideoCount: count,
	}, nil
}

// uploaderFrom reads channel attribution out of a renderer's byline
// run, with badge flags from the renderer's ownerBadges.
func uploaderFrom(r map[string]any, textKey string) types.Uploader {
	var u types.Uploader
	runs := jsonwalk.Slice(r, textKey, "runs")
	if len(runs) > 0 {
		u.Name = jsonwalk.String(runs[0], "text")
		u.ID = jsonwalk.String(runs[0], "navigationEndpoint", "browseEndpoint", "browseId")
		u.URL = browseURL(jsonwalk.Map(runs[0], "navigationEndpoint"))
	}
	u.Verified, u.Artist = badgeFlags(jsonwalk.Slice(r, "ownerBadges"))
	return u
}

// browseURL resolves a canonical URL from a navigation endpoint,
// preferring the short canonical path and falling back to the
// command-metadata URL, prefixed with the platform origin.
func browseURL(nav map[string]any) string {
	path := jsonwalk.String(nav, "browseEndpoint", "canonicalBaseUrl")
	if path == "" {
		path = jsonwalk.String(nav, "commandMetadata", "webCommandMetadata", "url")
	}
	if path == "" {
		return ""
	}
	return origin + path
}

func badgeFlags(badges []any) (verified, artist bool) {
	for _, b := range badges {
		style := strings.ToLower(jsonwalk.String(b, "metadataBadgeRenderer", "style"))
		if strings.Contains(style, "verified") {
			verified = true
		}
		if strings.Contains(style, "artist") {
			artist = true
		}
	}
	return verified, artist
}

// textOf reads a text node in either of its two shapes, {simpleText}
// or {runs: [{text}]}.
func textOf(node map[string]any) string {
	if s := jsonwalk.String(node, "simpleText"); s != "" {
		return s
	}
	runs := jsonwalk.Slice(node, "runs")
	if len(runs) > 0 {
		return jsonwalk.String(runs[0], "text")
	}
	return ""
}

// bestThumbnail picks the variant with the largest area, falling back
// to the last listed element when the list carries no dimensions.
func bestThumbnail(list []any) types.Thumbnail {
	var best types.Thumbnail
	bestArea := -1
	for _, item := range list {
		t := types.Thumbnail{
			URL:    fixProtocol(jsonwalk.String(item, "url")),
			Width:  int(jsonwalk.Number(item, "width")),
			Height: int(jsonwalk.Number(item, "height")),
		}
		area := t.Width * t.Height
		if area > bestArea || (area == 0 && bestArea <= 0) {
			best, bestArea = t, area
		}
	}
	return best
}

// fixProtocol completes protocol-relative URLs, which channel icons
// are served as.
func fixProtocol(url string) string {
	if strings.HasPrefix(url, "//") {
		return "https:" + url
	}
	return url
}

// parseDuration converts H:MM:SS, MM:SS or SS text into total seconds.
// Empty or unparseable text returns 0.
func parseDuration(text string) int {
	if text == "" {
		return 0
	}
	total := 0
	for _, part := range strings.Split(text, ":") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// digitsToInt64 strips non-digit characters and parses the remainder,
// returning 0 when nothing is left.
func digitsToInt64(text string) int64 {
	digits := nonDigits.ReplaceAllString(text, "")
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// countToInt is the strict variant for counts that must be numeric.
func countToInt(text string) (int, error) {
	digits := nonDigits.ReplaceAllString(text, "")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: count text %q not numeric", errs.ErrParse, text)
	}
	return n, nil
}
