package downloader

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"douyin-dl/config"
)

const (
	// downloadReferer is required by the origin to avoid hot-link rejection.
	downloadReferer = "https://www.douyin.com"

	downloadUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	// copyChunkSize is the read/write granularity of the streaming loop.
	copyChunkSize = 8 * 1024
)

// Fetcher streams single remote files to local paths.
type Fetcher struct {
	httpClient  *http.Client
	timeout     time.Duration
	logger      *zap.SugaredLogger
	progressOut io.Writer
}

// NewFetcher creates a file fetcher from the loaded configuration.
func NewFetcher(cfg *config.Config, logger *zap.SugaredLogger) *Fetcher {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureTLS},
	}
	return &Fetcher{
		httpClient:  &http.Client{Transport: transport},
		timeout:     cfg.FetchTimeout,
		logger:      logger,
		progressOut: os.Stdout,
	}
}

// Fetch downloads rawURL to dest. If dest already exists the call succeeds
// immediately without a network request; that existence check is the only
// resumability mechanism across interrupted runs. On any transfer failure the
// destination file is removed so a truncated file is never left at the
// expected path.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		f.logger.Infof("already exists, skipping: %s", filepath.Base(dest))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", dest, err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	req.Header.Set("Referer", downloadReferer)
	req.Header.Set("User-Agent", downloadUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", rawURL, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	// With a known total length the copy loop feeds a progress bar; without
	// one only the final completion line is emitted.
	var w io.Writer = out
	var bar *progressbar.ProgressBar
	if resp.ContentLength > 0 {
		bar = progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(f.progressOut),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetElapsedTime(false),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionShowCount(),
			progressbar.OptionShowBytes(true),
		)
		w = io.MultiWriter(out, bar)
	}

	buf := make([]byte, copyChunkSize)
	_, copyErr := io.CopyBuffer(w, resp.Body, buf)

	if closeErr := out.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		// Never leave a truncated file at the expected path.
		os.Remove(dest)
		return fmt.Errorf("transfer of %s failed: %w", rawURL, copyErr)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	info, err := os.Stat(dest)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dest, err)
	}
	f.logger.Infof("downloaded: %s (%s)", filepath.Base(dest), formatSize(info.Size()))
	return nil
}

// formatSize renders a byte count in KB below 1 MiB and MB above it.
func formatSize(size int64) string {
	kb := float64(size) / 1024
	if kb > 1024 {
		return fmt.Sprintf("%.1f MB", kb/1024)
	}
	return fmt.Sprintf("%.0f KB", kb)
}
