//go:build e2e

package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/playfetch/playfetch"
)

func TestE2E_Search(t *testing.T) {
	if os.Getenv("PLAYFETCH_E2E") == "" {
		t.Skip("PLAYFETCH_E2E not set")
	}
	query := os.Getenv("PLAYFETCH_E2E_QUERY")
	if query == "" {
		query = "lofi hip hop"
	}
	videos, err := playfetch.New().SearchVideos(context.Background(), query, 5)
	if err != nil {
		t.Fatalf("e2e search failed: %v", err)
	}
	if len(videos) == 0 {
		t.Fatal("e2e search returned no videos")
	}
	for _, v := range videos {
		if v.ID == "" || v.URL == "" {
			t.Errorf("incomplete video: %+v", v)
		}
	}
}

func TestE2E_Resolve(t *testing.T) {
	if os.Getenv("PLAYFETCH_E2E") == "" {
		t.Skip("PLAYFETCH_E2E not set")
	}
	url := os.Getenv("PLAYFETCH_E2E_TRACK")
	if url == "" {
		t.Skip("PLAYFETCH_E2E_TRACK not set")
	}

	pf := playfetch.New()
	ctx := context.Background()

	id, err := pf.DiscoverClientID(ctx)
	if err != nil {
		t.Fatalf("e2e discovery failed: %v", err)
	}
	pf = pf.WithClientID(id)

	res, err := pf.Resolve(ctx, url)
	if err != nil {
		t.Fatalf("e2e resolve failed: %v", err)
	}
	if res.Track == nil {
		t.Fatalf("expected a track, got kind %q", res.Kind)
	}

	stream, err := pf.StreamTrack(ctx, res.Track)
	if err != nil {
		t.Fatalf("e2e stream failed: %v", err)
	}
	if stream.URL == "" {
		t.Fatal("empty stream URL")
	}
}
