// Package downloader saves resolved stream URLs to disk with chunked
// ranged requests, resume from a temporary file, progress reporting
// and optional rate limiting. Unlike the resolve paths, chunk fetches
// retry with doubling backoff; media hosts drop connections routinely
// and a byte range can simply be asked for again.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/playfetch/playfetch/errs"
	"github.com/playfetch/playfetch/internal/logger"
)

const (
	defaultChunkSizeBytes  = 1 << 20 // 1MB
	defaultMaxRetries      = 3       // chunk retries
	temporaryFileSuffix    = ".tmp"  // suffix for temp download
	initialBackoffDuration = 200 * time.Millisecond
	maxBackoffDuration     = 3 * time.Second
	copyBufferSizeBytes    = 32 * 1024 // 32KB

	userAgentValue = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"
)

// Progress holds information about download progress.
type Progress struct {
	TotalSize      int64
	DownloadedSize int64
	Percent        float64
}

// Downloader fetches media files with chunked HTTP range requests,
// simple retry/backoff, and optional rate limiting.
type Downloader struct {
	Client       *http.Client
	ProgressFunc func(Progress)

	chunkSize    int64
	maxRetries   int
	rateLimitBps int64
}

// New creates a downloader with sane defaults. If client is nil, a
// default http.Client is used. rateLimitBps=0 disables limiting.
func New(client *http.Client, progressFunc func(Progress), rateLimitBps int64) *Downloader {
	if client == nil {
		client = &http.Client{}
	}
	return &Downloader{
		Client:       client,
		ProgressFunc: progressFunc,
		chunkSize:    defaultChunkSizeBytes,
		maxRetries:   defaultMaxRetries,
		rateLimitBps: rateLimitBps,
	}
}

// Download fetches urlStr into outputPath. An existing temporary file
// is resumed from its current size; the finished file is renamed into
// place only once complete.
func (d *Downloader) Download(ctx context.Context, urlStr string, outputPath string) error {
	log := logger.L(logger.ComponentDownloader)

	tmpPath := outputPath + temporaryFileSuffix
	outFile, downloaded, err := openOutput(tmpPath)
	if err != nil {
		return err
	}
	defer func() { _ = outFile.Close() }()
	if downloaded > 0 {
		log.Debug("resuming from temp file", zap.Int64("bytes", downloaded))
	}

	totalSize, err := d.detectTotalSize(ctx, urlStr)
	if err != nil {
		log.Debug("total size unknown, streaming to end", zap.Error(err))
		totalSize = 0
	}
	log.Debug("download starting",
		zap.String("path", outputPath),
		zap.Int64("resume_at", downloaded),
		zap.Int64("total", totalSize))

	if totalSize == 0 {
		n, err := d.streamAll(ctx, urlStr, outFile, downloaded)
		if err != nil {
			return err
		}
		downloaded += n
	}
	for downloaded < totalSize {
		end := downloaded + d.chunkSize - 1
		if end >= totalSize {
			end = totalSize - 1
		}
		n, err := d.fetchChunk(ctx, urlStr, outFile, downloaded, end, totalSize)
		if err != nil {
			return err
		}
		downloaded += n
	}

	if downloaded == 0 {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("empty download: 0 bytes written")
	}
	return os.Rename(tmpPath, outputPath)
}

// openOutput opens the temporary file, appending when one already
// exists so an interrupted download resumes.
func openOutput(tmpPath string) (*os.File, int64, error) {
	if _, err := os.Stat(tmpPath); err == nil {
		f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to open tmp for append: %v", err)
		}
		info, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, 0, err
		}
		return f, info.Size(), nil
	}
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create output file: %v", err)
	}
	return f, 0, nil
}

// detectTotalSize tries HEAD first, then a 0-1 ranged GET. Some CDN
// hosts answer HEAD without size headers and only expose the total on
// Content-Range.
func (d *Downloader) detectTotalSize(ctx context.Context, urlStr string) (int64, error) {
	if size, ok := d.probeSize(ctx, http.MethodHead, urlStr); ok {
		return size, nil
	}
	if size, ok := d.probeSize(ctx, http.MethodGet, urlStr); ok {
		return size, nil
	}
	return 0, fmt.Errorf("%w: cannot determine total size", errs.ErrNetwork)
}

func (d *Downloader) probeSize(ctx context.Context, method, urlStr string) (int64, bool) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, nil)
	if err != nil {
		return 0, false
	}
	setDownloadHeaders(req)
	req.Header.Set("Range", "bytes=0-1")

	resp, err := d.Client.Do(req)
	if err != nil {
		return 0, false
	}
	defer func() { _ = resp.Body.Close() }()
	logger.L(logger.ComponentDownloader).Debug("size probe",
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.String("content_range", resp.Header.Get("Content-Range")))
	return sizeFromHeaders(resp.Header)
}

// sizeFromHeaders reads the total size off Content-Range
// ("bytes 0-1/N") or, failing that, Content-Length.
func sizeFromHeaders(h http.Header) (int64, bool) {
	if cr := h.Get("Content-Range"); cr != "" {
		if _, total, ok := strings.Cut(cr, "/"); ok {
			if v, err := strconv.ParseInt(total, 10, 64); err == nil && v > 0 {
				return v, true
			}
		}
	}
	if cl := h.Get("Content-Length"); cl != "" {
		if v, err := strconv.ParseInt(cl, 10, 64); err == nil && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// fetchChunk gets one byte range with retry and doubling backoff,
// writing the body to out. Returns the number of bytes written.
func (d *Downloader) fetchChunk(ctx context.Context, urlStr string, out io.Writer, start, end, total int64) (int64, error) {
	log := logger.L(logger.ComponentDownloader)
	backoff := initialBackoffDuration
	var lastErr error
	for attempt := 0; attempt < d.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoffDuration {
				backoff = maxBackoffDuration
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return 0, err
		}
		setDownloadHeaders(req)
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

		resp, err := d.Client.Do(req)
		if err != nil {
			lastErr = err
			log.Debug("chunk attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 400 {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("HTTP status %d", resp.StatusCode)
			log.Debug("chunk attempt failed", zap.Int("attempt", attempt+1), zap.Error(lastErr))
			continue
		}

		written, err := d.copyBody(resp.Body, out, start, total)
		_ = resp.Body.Close()
		return written, err
	}
	return 0, fmt.Errorf("%w: chunk %d-%d: %v", errs.ErrNetwork, start, end, lastErr)
}

// streamAll fetches the remainder of the resource in one unranged
// request, for servers that expose no usable size.
func (d *Downloader) streamAll(ctx context.Context, urlStr string, out io.Writer, offset int64) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return 0, err
	}
	setDownloadHeaders(req)
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return 0, fmt.Errorf("%w: HTTP status %d", errs.ErrNetwork, resp.StatusCode)
	}
	return d.copyBody(resp.Body, out, offset, 0)
}

// copyBody streams body to out, reporting progress on top of the base
// offset and honoring the rate limit.
func (d *Downloader) copyBody(body io.Reader, out io.Writer, base, total int64) (int64, error) {
	buf := make([]byte, copyBufferSizeBytes)
	var written int64
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("failed to write chunk: %v", werr)
			}
			written += int64(n)
			d.reportProgress(base+written, total)
			d.sleepForRate(int64(n))
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, fmt.Errorf("failed to read response body: %v", rerr)
		}
	}
}

func (d *Downloader) reportProgress(downloaded, total int64) {
	if d.ProgressFunc == nil {
		return
	}
	p := Progress{TotalSize: total, DownloadedSize: downloaded}
	if total > 0 {
		p.Percent = float64(downloaded) / float64(total) * 100
	}
	d.ProgressFunc(p)
}

// sleepForRate enforces a simple rate limit based on bytes written in
// this step.
func (d *Downloader) sleepForRate(written int64) {
	if d.rateLimitBps <= 0 || written <= 0 {
		return
	}
	dur := time.Duration(int64(time.Second) * written / d.rateLimitBps)
	if dur > 0 {
		time.Sleep(dur)
	}
}

func setDownloadHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgentValue)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	// Ranged bytes must arrive unencoded or offsets stop lining up.
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Cache-Control", "no-cache")
}
