package playfetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playfetch/playfetch/errs"
	"github.com/playfetch/playfetch/soundcloud"
	"github.com/playfetch/playfetch/types"
)

// routeTransport serves every request, regardless of host, from the
// given handler. It lets facade tests intercept real API hosts.
type routeTransport struct {
	handler http.Handler
}

func (rt routeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	rt.handler.ServeHTTP(rec, req)
	return rec.Result(), nil
}

func TestOptionChaining(t *testing.T) {
	c := New()
	got := c.
		WithClientID("  abc123  ").
		WithLanguage(" en ").
		WithRateLimit(-5).
		WithProgress(func(Progress) {})

	if got != c {
		t.Fatal("setters must return the same client")
	}
	if c.clientID != "abc123" {
		t.Errorf("clientID = %q, want %q", c.clientID, "abc123")
	}
	if c.language != "en" {
		t.Errorf("language = %q, want %q", c.language, "en")
	}
	if c.rateLimit != 0 {
		t.Errorf("rateLimit = %d, want 0 after negative input", c.rateLimit)
	}
	if c.progressFn == nil {
		t.Error("progressFn not set")
	}
	if c.http == nil {
		t.Fatal("http client not initialized")
	}
}

func TestWithCredentialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cred.json")
	if err := soundcloud.SaveCredential(path, "persisted_id"); err != nil {
		t.Fatalf("SaveCredential() error: %v", err)
	}

	c := New().WithClientID("").WithCredentialFile(path)
	if c.clientID != "persisted_id" {
		t.Errorf("clientID = %q, want %q", c.clientID, "persisted_id")
	}

	// A missing file must not clobber an id that is already set.
	c = New().WithClientID("keep").WithCredentialFile(filepath.Join(t.TempDir(), "absent.json"))
	if c.clientID != "keep" {
		t.Errorf("clientID = %q, want %q", c.clientID, "keep")
	}
}

func TestSearchOptionsMerge(t *testing.T) {
	c := New().WithLanguage("en")

	merged := c.searchOptions(nil)
	if merged == nil || merged.Language != "en" {
		t.Fatalf("searchOptions(nil) = %+v, want language %q", merged, "en")
	}

	merged = c.searchOptions(&types.SearchOptions{Type: types.SearchTypeChannel, Limit: 3})
	if merged.Language != "en" || merged.Type != types.SearchTypeChannel || merged.Limit != 3 {
		t.Errorf("merged = %+v, want language filled and other fields kept", merged)
	}

	merged = c.searchOptions(&types.SearchOptions{Language: "fr"})
	if merged.Language != "fr" {
		t.Errorf("language = %q, explicit option must win", merged.Language)
	}

	plain := New()
	opts := &types.SearchOptions{Limit: 1}
	if got := plain.searchOptions(opts); got != opts {
		t.Error("without a client language the options must pass through untouched")
	}
}

func TestParseSearchHTML(t *testing.T) {
	const page = `<html><script>var ytInitialData = {"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[{"itemSectionRenderer":{"contents":[{"videoRenderer":{"videoId":"dQw4w9WgXcQ","title":{"runs":[{"text":"Test Video"}]},"lengthText":{"simpleText":"3:21"}}}]}}]}}}}};</script></html>`

	res, err := New().ParseSearchHTML(page, nil)
	if err != nil {
		t.Fatalf("ParseSearchHTML() error: %v", err)
	}
	if len(res.Videos) != 1 {
		t.Fatalf("got %d videos, want 1", len(res.Videos))
	}
	v := res.Videos[0]
	if v.ID != "dQw4w9WgXcQ" {
		t.Errorf("ID = %q", v.ID)
	}
	if v.Title != "Test Video" {
		t.Errorf("Title = %q", v.Title)
	}
	if v.Duration != 201 {
		t.Errorf("Duration = %d, want 201", v.Duration)
	}
	if v.URL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("URL = %q", v.URL)
	}
}

func TestDeriveOutputPath(t *testing.T) {
	track := &types.Track{
		Title: "Night Drive",
		Formats: []types.TrackFormat{
			{MimeType: "audio/mpeg"},
			{MimeType: `audio/ogg; codecs="opus"`},
		},
	}

	if got := deriveOutputPath("", track); got != "Night Drive.ogg" {
		t.Errorf("empty path: got %q, want %q", got, "Night Drive.ogg")
	}

	if got := deriveOutputPath("out/custom.bin", track); got != "out/custom.bin" {
		t.Errorf("explicit path: got %q, want it unchanged", got)
	}

	dir := t.TempDir()
	want := filepath.Join(dir, "Night Drive.ogg")
	if got := deriveOutputPath(dir, track); got != want {
		t.Errorf("directory path: got %q, want %q", got, want)
	}

	bare := &types.Track{Title: "Untitled"}
	if got := deriveOutputPath("", bare); got != "Untitled.mp3" {
		t.Errorf("no formats: got %q, want default extension", got)
	}
}

const resolvedTrackJSON = `{
	"kind": "track",
	"id": 42,
	"title": "Night Drive",
	"permalink_url": "https://soundcloud.com/artist/night-drive",
	"duration": 185000,
	"genre": "synthwave",
	"user": {"id": 7, "username": "Artist", "permalink_url": "https://soundcloud.com/artist", "verified": true},
	"media": {"transcodings": [
		{"url": "https://api-v2.soundcloud.com/media/42/progressive", "preset": "opus_0_0",
		 "format": {"protocol": "progressive", "mime_type": "audio/ogg; codecs=\"opus\""}}
	]}
}`

func TestSaveStream(t *testing.T) {
	audio := bytes.Repeat([]byte("opusdata"), 512)

	mux := http.NewServeMux()
	mux.HandleFunc("/resolve", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("client_id") != "test_id" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(resolvedTrackJSON))
	})
	mux.HandleFunc("/media/42/progressive", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"url": "https://cdn.example.com/signed/audio.ogg"}`))
	})
	mux.HandleFunc("/signed/audio.ogg", func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "audio.ogg", time.Time{}, bytes.NewReader(audio))
	})

	var updates []Progress
	c := New().
		WithClientID("test_id").
		WithHTTPClient(&http.Client{Transport: routeTransport{handler: mux}}).
		WithProgress(func(p Progress) { updates = append(updates, p) })

	dir := t.TempDir()
	track, err := c.SaveStream(context.Background(), "https://soundcloud.com/artist/night-drive", dir)
	if err != nil {
		t.Fatalf("SaveStream() error: %v", err)
	}
	if track.Title != "Night Drive" {
		t.Errorf("Title = %q", track.Title)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Night Drive.ogg"))
	if err != nil {
		t.Fatalf("reading saved stream: %v", err)
	}
	if !bytes.Equal(data, audio) {
		t.Errorf("saved %d bytes, want %d matching bytes", len(data), len(audio))
	}

	if len(updates) == 0 {
		t.Fatal("no progress updates delivered")
	}
	last := updates[len(updates)-1]
	if last.DownloadedSize != int64(len(audio)) || last.Percent != 100 {
		t.Errorf("final progress = %+v", last)
	}
}

func TestSaveStreamPlaylistIsStateError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/resolve", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kind": "playlist", "id": 9, "title": "Mix", "tracks": []}`))
	})

	c := New().
		WithClientID("test_id").
		WithHTTPClient(&http.Client{Transport: routeTransport{handler: mux}})

	_, err := c.SaveStream(context.Background(), "https://soundcloud.com/artist/sets/mix", "")
	if !errs.IsState(err) {
		t.Fatalf("err = %v, want state error", err)
	}
}

func TestResolveWithoutCredential(t *testing.T) {
	c := New().WithClientID("")
	_, err := c.Resolve(context.Background(), "https://soundcloud.com/artist/track")
	if !errs.IsConfig(err) {
		t.Fatalf("err = %v, want config error", err)
	}
}
