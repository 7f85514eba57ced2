// Package client is the HTTP fetch layer shared by both platforms. It
// issues single-attempt requests: a transport failure or a non-2xx
// status is returned as errs.ErrNetwork and never retried, so callers
// see every failure unchanged.
package client

import (
	"compress/bzip2"
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"

	"github.com/playfetch/playfetch/errs"
	"github.com/playfetch/playfetch/internal/logger"
)

const (
	defaultTimeout = 30 * time.Second

	userAgentValue      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"
	acceptEncodingValue = "gzip, deflate, br"

	successMinCode          = http.StatusOK
	successMaxCodeExclusive = http.StatusMultipleChoices // 300
)

// defaultTransport is a tuned HTTP transport reused across clients.
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ResponseHeaderTimeout: 10 * time.Second,
	ForceAttemptHTTP2:     true,
	// Compression negotiated explicitly; bodies decoded in ReadBody
	DisableCompression: true,
	ReadBufferSize:     16 * 1024,
	WriteBufferSize:    16 * 1024,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// Config holds optional client parameters. Zero values use defaults.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	ProxyURL  string
}

// Client wraps http.Client with default headers and error
// classification.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
}

// New creates a new Client with a tuned Transport and default timeout.
func New() *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: defaultTransport,
		},
		UserAgent: userAgentValue,
	}
}

// NewWith creates a new client with provided config. Zero values use
// defaults.
func NewWith(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = userAgentValue
	}

	tr := defaultTransport.Clone()
	if cfg.ProxyURL != "" {
		if proxyFunc, err := proxyFromURLString(cfg.ProxyURL); err == nil {
			tr.Proxy = proxyFunc
		}
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
		UserAgent: ua,
	}
}

// Get performs one GET request. It sets a desktop-like User-Agent and
// negotiates compressed encodings. Transport failures and non-2xx
// statuses return errs.ErrNetwork; the caller owns the response body on
// success.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrNetwork, err)
	}

	ua := c.UserAgent
	if ua == "" {
		ua = userAgentValue
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", acceptEncodingValue)

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.L(logger.ComponentClient).Debug("request failed",
			zap.String("url", rawURL), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errs.ErrNetwork, err)
	}
	logger.L(logger.ComponentClient).Debug("GET",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < successMinCode || resp.StatusCode >= successMaxCodeExclusive {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d for %s", errs.ErrNetwork, resp.StatusCode, rawURL)
	}
	return resp, nil
}

// GetBody performs Get, decodes the body per its Content-Encoding, and
// closes the response.
func (c *Client) GetBody(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return ReadBody(resp)
}

// GetJSON performs GetBody and unmarshals the result into v. A body
// that is not valid JSON returns errs.ErrParse.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.GetBody(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", errs.ErrParse, rawURL, err)
	}
	return nil
}

// ReadBody reads a response body, decoding gzip, brotli, deflate and
// bzip2 content encodings.
func ReadBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip reader: %v", errs.ErrNetwork, err)
		}
		defer func() { _ = gzReader.Close() }()
		reader = gzReader
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		// raw DEFLATE, no zlib wrapper
		reader = flate.NewReader(resp.Body)
	case "bzip2":
		reader = bzip2.NewReader(resp.Body)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", errs.ErrNetwork, err)
	}
	return body, nil
}

// proxyFromURLString parses a proxy URL and returns a Proxy function.
func proxyFromURLString(raw string) (func(*http.Request) (*url.URL, error), error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return http.ProxyURL(u), nil
}
