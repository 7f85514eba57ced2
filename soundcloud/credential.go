package soundcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"

	"github.com/playfetch/playfetch/errs"
	"github.com/playfetch/playfetch/internal/logger"
)

// DefaultCredentialPath is where the CLI persists a discovered client
// id between runs.
const DefaultCredentialPath = ".data/soundcloud.json"

type credentialFile struct {
	ClientID string `json:"client_id"`
}

// LoadCredential reads a persisted client id. A missing or unreadable
// file is ErrConfig; credentialed operations fail closed without one.
func LoadCredential(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: credential file: %v", errs.ErrConfig, err)
	}
	var cf credentialFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return "", fmt.Errorf("%w: credential file: %v", errs.ErrConfig, err)
	}
	if cf.ClientID == "" {
		return "", fmt.Errorf("%w: credential file has no client id", errs.ErrConfig)
	}
	return cf.ClientID, nil
}

// SaveCredential persists a client id for later runs, creating the
// parent directory when needed. The file is user-readable only.
func SaveCredential(path, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty client id", errs.ErrConfig)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	raw, err := json.Marshal(credentialFile{ClientID: id})
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0600)
}

// ProbeClientID reports whether id is accepted by the platform. One
// throwaway search with a zero result limit; any failure reads as
// false, never an error. No effect on persisted state.
func (c *Client) ProbeClientID(ctx context.Context, id string) bool {
	q := url.Values{}
	q.Set("client_id", id)
	q.Set("q", "hello")
	q.Set("limit", "0")
	_, err := c.http.GetBody(ctx, apiBase+"/search?"+q.Encode())
	return err == nil
}

var (
	scriptTagPattern = regexp.MustCompile(`<script crossorigin src="([^"]+)"></script>`)
	clientIDPattern  = regexp.MustCompile(`client_id:"([A-Za-z0-9]+)"`)
)

// DiscoverClientID scrapes the landing page for script assets and
// pulls a client id out of them. The id historically sits in the last
// bundle, so assets are tried newest first, and every candidate is
// verified with ProbeClientID before being returned. No asset yielding
// a working id is ErrParse.
func (c *Client) DiscoverClientID(ctx context.Context) (string, error) {
	body, err := c.http.GetBody(ctx, pageURL)
	if err != nil {
		return "", err
	}

	assets := scriptTagPattern.FindAllStringSubmatch(string(body), -1)
	log := logger.L(logger.ComponentSoundCloud)
	for i := len(assets) - 1; i >= 0; i-- {
		src := assets[i][1]
		script, err := c.http.GetBody(ctx, src)
		if err != nil {
			log.Debug("script asset unreachable", zap.String("src", src), zap.Error(err))
			continue
		}
		m := clientIDPattern.FindSubmatch(script)
		if m == nil {
			continue
		}
		id := string(m[1])
		if !c.ProbeClientID(ctx, id) {
			log.Debug("candidate client id rejected", zap.String("src", src))
			continue
		}
		log.Debug("client id discovered", zap.String("src", src))
		return id, nil
	}
	return "", fmt.Errorf("%w: no client id in page assets", errs.ErrParse)
}
