package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/playfetch/playfetch"
	"github.com/playfetch/playfetch/client"
	"github.com/playfetch/playfetch/internal/logger"
	"github.com/playfetch/playfetch/soundcloud"
	"github.com/playfetch/playfetch/types"
)

func main() {
	var (
		flagSearch   bool
		flagResolve  bool
		flagStream   bool
		flagProbe    bool
		flagDiscover bool

		flagType       string
		flagLimit      int
		flagLang       string
		flagOutput     string
		flagJSON       bool
		flagClientID   string
		flagCred       string
		flagSave       bool
		flagNoProgress bool
		flagTimeout    time.Duration
		flagUA         string
		flagProxy      string
		flagRateLimit  string
		flagVerbose    bool
	)

	flag.BoolVar(&flagSearch, "search", false, "Search and print results for the query")
	flag.BoolVar(&flagResolve, "resolve", false, "Resolve a track or playlist URL into its metadata")
	flag.BoolVar(&flagStream, "stream", false, "Resolve a track URL and save its stream to disk")
	flag.BoolVar(&flagProbe, "probe", false, "Check whether a client id is currently accepted")
	flag.BoolVar(&flagDiscover, "discover", false, "Scrape a working client id from the platform front page")

	flag.StringVar(&flagType, "type", "video", "Search result type: video, channel or playlist")
	flag.IntVar(&flagLimit, "limit", 0, "Max search results (0 means all on the page)")
	flag.StringVar(&flagLang, "lang", "", "Locale hint for search requests (e.g., 'en')")
	flag.StringVar(&flagOutput, "o", "", "Output path for -stream (file or directory). Empty derives from title + MIME")
	flag.BoolVar(&flagJSON, "json", false, "Print results as indented JSON")
	flag.StringVar(&flagClientID, "client-id", "", "Client id to use, overriding the credential file")
	flag.StringVar(&flagCred, "cred", soundcloud.DefaultCredentialPath, "Credential file path")
	flag.BoolVar(&flagSave, "save", false, "Persist the discovered client id to the credential file")
	flag.BoolVar(&flagNoProgress, "no-progress", false, "Disable progress output for -stream")
	flag.DurationVar(&flagTimeout, "http-timeout", 30*time.Second, "HTTP timeout (e.g., 30s, 1m)")
	flag.StringVar(&flagUA, "ua", "", "Override User-Agent header")
	flag.StringVar(&flagProxy, "proxy", "", "Proxy URL (http/https/socks)")
	flag.StringVar(&flagRateLimit, "rate-limit", "", "Download rate limit (e.g., 2MiB/s, 500KiB/s)")
	flag.BoolVar(&flagVerbose, "verbose", false, "Enable debug logging for all components")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <query | url | client-id>\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "\nModes (without one, platform URLs resolve and anything else searches):")
		fmt.Fprintln(os.Stderr, "  -search -resolve -stream -probe -discover")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flagVerbose {
		cfg := logger.DefaultConfig()
		cfg.Level = "debug"
		logger.Setup(logger.FromEnv(cfg.EnableAll()))
		defer logger.Sync()
	}

	modes := 0
	for _, on := range []bool{flagSearch, flagResolve, flagStream, flagProbe, flagDiscover} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		fmt.Fprintln(os.Stderr, "Pick at most one of -search, -resolve, -stream, -probe, -discover")
		os.Exit(2)
	}

	input := ""
	if flag.NArg() > 0 {
		input = strings.TrimSpace(flag.Arg(0))
	}
	if !flagDiscover && input == "" {
		flag.Usage()
		os.Exit(2)
	}

	pf := playfetch.NewWith(client.Config{Timeout: flagTimeout, UserAgent: flagUA, ProxyURL: flagProxy})
	if flagCred != soundcloud.DefaultCredentialPath {
		pf = pf.WithCredentialFile(flagCred)
	}
	if flagClientID != "" {
		pf = pf.WithClientID(flagClientID)
	}
	if flagLang != "" {
		pf = pf.WithLanguage(flagLang)
	}
	if bps := parseRate(flagRateLimit); bps > 0 {
		pf = pf.WithRateLimit(bps)
	}
	if flagStream && !flagNoProgress {
		pf = pf.WithProgress(func(p playfetch.Progress) {
			if p.TotalSize > 0 {
				_, _ = fmt.Fprintf(os.Stdout, "Downloaded %.1f%%\r", p.Percent)
			}
		})
	}

	ctx := context.Background()

	switch {
	case flagSearch:
		runSearch(ctx, pf, input, flagType, flagLimit, flagJSON)
	case flagResolve:
		runResolve(ctx, pf, input, flagJSON)
	case flagStream:
		runStream(ctx, pf, input, flagOutput)
	case flagProbe:
		runProbe(ctx, pf, input)
	case flagDiscover:
		runDiscover(ctx, pf, flagCred, flagSave, flagJSON)
	default:
		if soundcloud.MatchURL(input) {
			runResolve(ctx, pf, input, flagJSON)
		} else {
			runSearch(ctx, pf, input, flagType, flagLimit, flagJSON)
		}
	}
}

func runSearch(ctx context.Context, pf *playfetch.Client, query, resultType string, limit int, asJSON bool) {
	opts := &types.SearchOptions{Type: types.SearchType(resultType), Limit: limit}
	res, err := pf.Search(ctx, query, opts)
	if err != nil {
		fail(err)
	}
	if asJSON {
		printJSON(res)
		return
	}
	for i, v := range res.Videos {
		length := v.DurationText
		if v.Live {
			length = "LIVE"
		}
		_, _ = fmt.Fprintf(os.Stdout, "%2d. %s (%s) by %s\n    %s\n", i+1, v.Title, length, v.Uploader.Name, v.URL)
	}
	for i, ch := range res.Channels {
		_, _ = fmt.Fprintf(os.Stdout, "%2d. %s (%s)\n    %s\n", i+1, ch.Name, ch.Subscribers, ch.URL)
	}
	for i, p := range res.Playlists {
		_, _ = fmt.Fprintf(os.Stdout, "%2d. %s (%d videos) by %s\n    %s\n", i+1, p.Title, p.VideoCount, p.Uploader.Name, p.URL)
	}
	if res.Len() == 0 {
		fmt.Fprintln(os.Stderr, "No results")
	}
}

func runResolve(ctx context.Context, pf *playfetch.Client, url string, asJSON bool) {
	res, err := pf.Resolve(ctx, url)
	if err != nil {
		fail(err)
	}
	if asJSON {
		printJSON(res)
		return
	}
	if res.Track != nil {
		printTrack(0, res.Track)
		return
	}
	p := res.Playlist
	_, _ = fmt.Fprintf(os.Stdout, "%s by %s (%d tracks, %s)\n%s\n", p.Title, p.User.Name, p.TrackCount, fmtMS(p.DurationMS), p.URL)
	for i := range p.Tracks {
		printTrack(i+1, &p.Tracks[i])
	}
}

func printTrack(index int, t *types.Track) {
	prefix := ""
	if index > 0 {
		prefix = fmt.Sprintf("%2d. ", index)
	}
	_, _ = fmt.Fprintf(os.Stdout, "%s%s by %s (%s)\n    %s\n", prefix, t.Title, t.User.Name, fmtMS(t.DurationMS), t.URL)
}

func runStream(ctx context.Context, pf *playfetch.Client, url, output string) {
	track, err := pf.SaveStream(ctx, url, output)
	if err != nil {
		fail(err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "\nSaved: %s\n", track.Title)
}

func runProbe(ctx context.Context, pf *playfetch.Client, id string) {
	if pf.ProbeClientID(ctx, id) {
		fmt.Fprintln(os.Stdout, "accepted")
		return
	}
	fmt.Fprintln(os.Stdout, "rejected")
	os.Exit(1)
}

func runDiscover(ctx context.Context, pf *playfetch.Client, credPath string, save, asJSON bool) {
	id, err := pf.DiscoverClientID(ctx)
	if err != nil {
		fail(err)
	}
	if asJSON {
		printJSON(map[string]string{"client_id": id})
	} else {
		fmt.Fprintln(os.Stdout, id)
	}
	if save {
		if err := soundcloud.SaveCredential(credPath, id); err != nil {
			fail(err)
		}
		fmt.Fprintf(os.Stderr, "Saved credential to %s\n", credPath)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// fmtMS renders a duration in milliseconds as M:SS or H:MM:SS.
func fmtMS(ms int64) string {
	total := ms / 1000
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// parseRate parses strings like "2MiB/s", "500KiB/s" into bytes per
// second.
func parseRate(s string) int64 {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0
	}
	mul := int64(1)
	s = strings.TrimSpace(strings.TrimSuffix(s, "/S"))
	sfx := ""
	for _, suf := range []string{"KIB", "MIB", "GIB", "KB", "MB", "GB"} {
		if strings.HasSuffix(s, suf) {
			sfx = suf
			s = strings.TrimSpace(strings.TrimSuffix(s, suf))
			break
		}
	}
	var val float64
	if _, err := fmt.Sscanf(s, "%f", &val); err != nil || val <= 0 {
		return 0
	}
	switch sfx {
	case "KIB":
		mul = 1024
	case "MIB":
		mul = 1024 * 1024
	case "GIB":
		mul = 1024 * 1024 * 1024
	case "KB":
		mul = 1000
	case "MB":
		mul = 1000 * 1000
	case "GB":
		mul = 1000 * 1000 * 1000
	}
	return int64(val * float64(mul))
}
