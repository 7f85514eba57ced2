package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/playfetch/playfetch/client"
	"github.com/playfetch/playfetch/errs"
	"github.com/playfetch/playfetch/types"
)

func resultsHTML(entries ...string) string {
	payload := `{"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[{"itemSectionRenderer":{"contents":[` +
		strings.Join(entries, ",") +
		`]}},{"continuationItemRenderer":{"trigger":"CONTINUATION_TRIGGER_ON_ITEM_SHOWN"}}]}}}}}`
	return `<html><body><script nonce="x">var ytInitialData = ` + payload + `;</script></body></html>`
}

func videoEntry(id, title, length, views string) string {
	lengthText := ""
	if length != "" {
		lengthText = fmt.Sprintf(`"lengthText":{"simpleText":"%s"},`, length)
	}
	return fmt.Sprintf(`{"videoRenderer":{
		"videoId":"%s",
		"title":{"runs":[{"text":"%s"}]},
		%s
		"viewCountText":{"simpleText":"%s"},
		"publishedTimeText":{"simpleText":"2 years ago"},
		"thumbnail":{"thumbnails":[
			{"url":"https://i.ytimg.com/vi/%s/default.jpg","width":120,"height":90},
			{"url":"https://i.ytimg.com/vi/%s/hq720.jpg","width":720,"height":404}
		]},
		"ownerText":{"runs":[{"text":"Test Channel","navigationEndpoint":{
			"browseEndpoint":{"browseId":"UCowner","canonicalBaseUrl":"/@testchannel"},
			"commandMetadata":{"webCommandMetadata":{"url":"/channel/UCowner"}}
		}}]},
		"ownerBadges":[{"metadataBadgeRenderer":{"style":"BADGE_STYLE_TYPE_VERIFIED"}}]
	}}`, id, title, lengthText, views, id, id)
}

const channelEntry = `{"channelRenderer":{
	"channelId":"UCchan",
	"title":{"simpleText":"Artist Channel"},
	"navigationEndpoint":{
		"browseEndpoint":{"browseId":"UCchan","canonicalBaseUrl":"/@artistchannel"},
		"commandMetadata":{"webCommandMetadata":{"url":"/channel/UCchan"}}
	},
	"thumbnail":{"thumbnails":[{"url":"//yt3.ggpht.com/small=s88","width":88,"height":88},{"url":"//yt3.ggpht.com/big=s176","width":176,"height":176}]},
	"subscriberCountText":{"simpleText":"1.2M subscribers"},
	"ownerBadges":[{"metadataBadgeRenderer":{"style":"BADGE_STYLE_TYPE_VERIFIED_ARTIST"}}]
}}`

const playlistEntry = `{"playlistRenderer":{
	"playlistId":"PLtest123",
	"title":{"simpleText":"Test Playlist"},
	"videoCount":"25",
	"thumbnails":[{"thumbnails":[{"url":"https://i.ytimg.com/vi/a/default.jpg","width":120,"height":90},{"url":"https://i.ytimg.com/vi/a/hqdefault.jpg","width":336,"height":188}]}],
	"shortBylineText":{"runs":[{"text":"List Owner","navigationEndpoint":{
		"browseEndpoint":{"browseId":"UClist"},
		"commandMetadata":{"webCommandMetadata":{"url":"/channel/UClist"}}
	}}]}
}}`

const adEntry = `{"adSlotRenderer":{"adSlotMetadata":{"slotId":"x"}}}`

func TestParseVideos(t *testing.T) {
	html := resultsHTML(
		adEntry,
		videoEntry("vid1", "First Video", "1:02:03", "1,234,567 views"),
		channelEntry,
		videoEntry("vid2", "Second Video", "02:03", "12 views"),
		videoEntry("vid3", "Third Video", "45", "0 views"),
	)

	res, err := Parse(html, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(res.Videos) != 3 {
		t.Fatalf("Expected 3 videos, got %d", len(res.Videos))
	}
	if len(res.Channels) != 0 || len(res.Playlists) != 0 {
		t.Errorf("Expected only videos populated, got %d channels %d playlists", len(res.Channels), len(res.Playlists))
	}

	v := res.Videos[0]
	if v.ID != "vid1" {
		t.Errorf("Expected ID 'vid1', got '%s'", v.ID)
	}
	if v.URL != "https://www.youtube.com/watch?v=vid1" {
		t.Errorf("Unexpected URL '%s'", v.URL)
	}
	if v.Title != "First Video" {
		t.Errorf("Expected title 'First Video', got '%s'", v.Title)
	}
	if v.Duration != 3723 {
		t.Errorf("Expected duration 3723, got %d", v.Duration)
	}
	if v.Live {
		t.Error("Expected Live false")
	}
	if v.Views != 1234567 {
		t.Errorf("Expected views 1234567, got %d", v.Views)
	}
	if v.Thumbnail.URL != "https://i.ytimg.com/vi/vid1/hq720.jpg" {
		t.Errorf("Expected largest thumbnail, got '%s'", v.Thumbnail.URL)
	}
	if v.Uploader.Name != "Test Channel" {
		t.Errorf("Expected uploader 'Test Channel', got '%s'", v.Uploader.Name)
	}
	if v.Uploader.URL != "https://www.youtube.com/@testchannel" {
		t.Errorf("Expected canonical uploader URL, got '%s'", v.Uploader.URL)
	}
	if !v.Uploader.Verified {
		t.Error("Expected uploader verified")
	}
	if v.Uploader.Artist {
		t.Error("Expected uploader not artist")
	}

	// Source order preserved.
	if res.Videos[1].ID != "vid2" || res.Videos[2].ID != "vid3" {
		t.Errorf("Order not preserved: %s, %s", res.Videos[1].ID, res.Videos[2].ID)
	}
	if res.Videos[1].Duration != 123 || res.Videos[2].Duration != 45 {
		t.Errorf("Durations wrong: %d, %d", res.Videos[1].Duration, res.Videos[2].Duration)
	}
}

func TestParseLimit(t *testing.T) {
	entries := []string{
		videoEntry("a", "A", "1:00", "1 views"),
		videoEntry("b", "B", "2:00", "2 views"),
		videoEntry("c", "C", "3:00", "3 views"),
		videoEntry("d", "D", "4:00", "4 views"),
	}
	html := resultsHTML(entries...)

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"unbounded", 0, 4},
		{"below available", 2, 2},
		{"exactly available", 4, 4},
		{"beyond available", 10, 4},
		{"negative treated as unbounded", -3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(html, &types.SearchOptions{Type: types.SearchTypeVideo, Limit: tt.limit})
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(res.Videos) != tt.want {
				t.Errorf("limit %d -> got %d videos (want %d)", tt.limit, len(res.Videos), tt.want)
			}
		})
	}
}

func TestParseLimitKeepsSourcePrefix(t *testing.T) {
	html := resultsHTML(
		videoEntry("a", "A", "1:00", "1 views"),
		videoEntry("b", "B", "2:00", "2 views"),
		videoEntry("c", "C", "3:00", "3 views"),
	)

	res, err := Parse(html, &types.SearchOptions{Limit: 2})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Videos) != 2 || res.Videos[0].ID != "a" || res.Videos[1].ID != "b" {
		t.Errorf("Expected prefix [a b], got %+v", res.Videos)
	}
}

func TestParseChannels(t *testing.T) {
	html := resultsHTML(
		videoEntry("vid1", "Video", "1:00", "1 views"),
		channelEntry,
	)

	res, err := Parse(html, &types.SearchOptions{Type: types.SearchTypeChannel})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(res.Channels) != 1 {
		t.Fatalf("Expected 1 channel, got %d", len(res.Channels))
	}
	ch := res.Channels[0]
	if ch.ID != "UCchan" {
		t.Errorf("Expected ID 'UCchan', got '%s'", ch.ID)
	}
	if ch.Name != "Artist Channel" {
		t.Errorf("Expected name 'Artist Channel', got '%s'", ch.Name)
	}
	if ch.URL != "https://www.youtube.com/@artistchannel" {
		t.Errorf("Expected canonical URL, got '%s'", ch.URL)
	}
	if ch.Icon.URL != "https://yt3.ggpht.com/big=s176" {
		t.Errorf("Expected protocol-completed largest icon, got '%s'", ch.Icon.URL)
	}
	if ch.Subscribers != "1.2M subscribers" {
		t.Errorf("Expected subscribers text, got '%s'", ch.Subscribers)
	}
	if !ch.Verified || !ch.Artist {
		t.Errorf("Expected verified artist badges, got verified=%v artist=%v", ch.Verified, ch.Artist)
	}
}

func TestParsePlaylists(t *testing.T) {
	html := resultsHTML(playlistEntry, videoEntry("vid1", "Video", "1:00", "1 views"))

	res, err := Parse(html, &types.SearchOptions{Type: types.SearchTypePlaylist})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(res.Playlists) != 1 {
		t.Fatalf("Expected 1 playlist, got %d", len(res.Playlists))
	}
	pl := res.Playlists[0]
	if pl.ID != "PLtest123" {
		t.Errorf("Expected ID 'PLtest123', got '%s'", pl.ID)
	}
	if pl.URL != "https://www.youtube.com/playlist?list=PLtest123" {
		t.Errorf("Unexpected URL '%s'", pl.URL)
	}
	if pl.VideoCount != 25 {
		t.Errorf("Expected 25 videos, got %d", pl.VideoCount)
	}
	if pl.Thumbnail.URL != "https://i.ytimg.com/vi/a/hqdefault.jpg" {
		t.Errorf("Expected largest group thumbnail, got '%s'", pl.Thumbnail.URL)
	}
	if pl.Uploader.Name != "List Owner" {
		t.Errorf("Expected uploader 'List Owner', got '%s'", pl.Uploader.Name)
	}
	if pl.Uploader.URL != "https://www.youtube.com/channel/UClist" {
		t.Errorf("Expected fallback uploader URL, got '%s'", pl.Uploader.URL)
	}
}

func TestParseLiveVideo(t *testing.T) {
	html := resultsHTML(videoEntry("live1", "Live Stream", "", "843 watching"))

	res, err := Parse(html, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Videos) != 1 {
		t.Fatalf("Expected 1 video, got %d", len(res.Videos))
	}

	v := res.Videos[0]
	if !v.Live {
		t.Error("Expected Live true for entry without duration")
	}
	if v.Duration != 0 {
		t.Errorf("Expected duration 0, got %d", v.Duration)
	}
	if v.Views != 843 {
		t.Errorf("Expected views 843, got %d", v.Views)
	}
}

func TestParseSkipsMalformedEntry(t *testing.T) {
	badVideo := `{"videoRenderer":{"title":{"runs":[{"text":"No ID"}]}}}`
	html := resultsHTML(
		videoEntry("good1", "Good", "1:00", "1 views"),
		badVideo,
		videoEntry("good2", "Also Good", "2:00", "2 views"),
	)

	res, err := Parse(html, nil)
	if err != nil {
		t.Fatalf("Expected malformed entry to be skipped, got error: %v", err)
	}
	if len(res.Videos) != 2 {
		t.Fatalf("Expected 2 videos, got %d", len(res.Videos))
	}
	if res.Videos[0].ID != "good1" || res.Videos[1].ID != "good2" {
		t.Errorf("Wrong survivors: %s, %s", res.Videos[0].ID, res.Videos[1].ID)
	}
}

func TestParseSkipsBadPlaylistCount(t *testing.T) {
	bad := strings.Replace(playlistEntry, `"videoCount":"25"`, `"videoCount":"N/A"`, 1)
	html := resultsHTML(bad, playlistEntry)

	res, err := Parse(html, &types.SearchOptions{Type: types.SearchTypePlaylist})
	if err != nil {
		t.Fatalf("Expected bad count entry to be skipped, got error: %v", err)
	}
	if len(res.Playlists) != 1 {
		t.Fatalf("Expected 1 playlist, got %d", len(res.Playlists))
	}
}

func TestParseEnvelopeErrors(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"empty html", ""},
		{"no payload", "<html><body>plain page</body></html>"},
		{"wrong envelope", `<html>var ytInitialData = {"contents":{"somethingElse":{}}};</script></html>`},
		{"empty section list", `<html>var ytInitialData = {"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[]}}}}};</script></html>`},
		{"no item section", `<html>var ytInitialData = {"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[{"continuationItemRenderer":{}}]}}}}};</script></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.html, nil)
			if !errs.IsParse(err) {
				t.Errorf("Expected ErrParse, got %v", err)
			}
		})
	}
}

func TestParseUnknownType(t *testing.T) {
	html := resultsHTML(videoEntry("vid1", "Video", "1:00", "1 views"))

	_, err := Parse(html, &types.SearchOptions{Type: "movie"})
	if !errs.IsConfig(err) {
		t.Errorf("Expected ErrConfig for unknown type, got %v", err)
	}
}

func TestSearchFetchesAndParses(t *testing.T) {
	var gotQuery, gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		gotLang = r.URL.Query().Get("hl")
		_, _ = w.Write([]byte(resultsHTML(videoEntry("vid1", "Fetched", "1:00", "5 views"))))
	}))
	defer server.Close()

	oldURL := resultsURL
	resultsURL = server.URL
	defer func() { resultsURL = oldURL }()

	c := New(client.New())
	res, err := c.Search(context.Background(), "test query", &types.SearchOptions{Language: "en"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if gotQuery != "test query" {
		t.Errorf("Expected search_query 'test query', got '%s'", gotQuery)
	}
	if gotLang != "en" {
		t.Errorf("Expected hl 'en', got '%s'", gotLang)
	}
	if len(res.Videos) != 1 || res.Videos[0].ID != "vid1" {
		t.Errorf("Unexpected results: %+v", res.Videos)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	c := New(client.New())
	_, err := c.Search(context.Background(), "   ", nil)
	if !errs.IsConfig(err) {
		t.Errorf("Expected ErrConfig for empty query, got %v", err)
	}
}

func TestSearchNetworkErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	oldURL := resultsURL
	resultsURL = server.URL
	defer func() { resultsURL = oldURL }()

	c := New(client.New())
	_, err := c.Search(context.Background(), "query", nil)
	if !errs.IsNetwork(err) {
		t.Errorf("Expected ErrNetwork, got %v", err)
	}
}
