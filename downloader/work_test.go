package downloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"douyin-dl/config"
	"douyin-dl/resolver"
)

// newOriginServer serves fixed bytes for any path and returns its base URL.
func newOriginServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// newMediaAPIServer answers every resolution query with the given envelope.
func newMediaAPIServer(t *testing.T, envelope string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(envelope))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestWorkDownloader(t *testing.T, mediaAPI string) (*WorkDownloader, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		MediaAPI:     mediaAPI,
		DownloadsDir: t.TempDir(),
		MediaTimeout: 5 * time.Second,
		FetchTimeout: 5 * time.Second,
		InsecureTLS:  true,
	}
	logger := zap.NewNop().Sugar()
	fetcher := NewFetcher(cfg, logger)
	fetcher.progressOut = io.Discard
	rc := resolver.NewClient(cfg.InsecureTLS, logger)
	return NewWorkDownloader(rc, fetcher, cfg, logger), cfg
}

func workEnvelope(t *testing.T, work Work) string {
	t.Helper()
	data, err := json.Marshal(work)
	if err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf(`{"code":0,"message":"","data":%s}`, data)
}

func TestDownloadSingleVideoStandalone(t *testing.T) {
	origin := newOriginServer(t, "video-bytes")
	api := newMediaAPIServer(t, workEnvelope(t, Work{
		Title:  "T",
		Author: "A",
		Type:   "video",
		Items:  []MediaItem{{Type: KindVideo, VideoURL: origin.URL + "/a.mp4"}},
	}))

	wd, cfg := newTestWorkDownloader(t, api.URL)
	if err := wd.Download(context.Background(), "https://v.douyin.com/abc", WorkOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Exactly one video collapses to a bare file under the misc directory.
	dest := filepath.Join(cfg.DownloadsDir, miscDirName, "A-T.mp4")
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("expected file at %s: %v", dest, err)
	}
	if string(got) != "video-bytes" {
		t.Errorf("unexpected content %q", got)
	}
}

func TestDownloadSingleVideoWithBaseDir(t *testing.T) {
	origin := newOriginServer(t, "video-bytes")
	api := newMediaAPIServer(t, workEnvelope(t, Work{
		Title:  "T",
		Author: "A",
		Type:   "video",
		Items:  []MediaItem{{Type: KindVideo, VideoURL: origin.URL + "/a.mp4"}},
	}))

	wd, cfg := newTestWorkDownloader(t, api.URL)
	baseDir := filepath.Join(cfg.DownloadsDir, "someone")
	err := wd.Download(context.Background(), "https://v.douyin.com/abc", WorkOptions{
		BaseDir:     baseDir,
		IndexPrefix: "3 ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The fast path is keyed only on item count and kind; with a base dir
	// the file lands directly under it with the index prefix.
	dest := filepath.Join(baseDir, "3 T.mp4")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected file at %s: %v", dest, err)
	}
}

func TestDownloadImageGallery(t *testing.T) {
	origin := newOriginServer(t, "image-bytes")
	api := newMediaAPIServer(t, workEnvelope(t, Work{
		Title:  "T",
		Author: "A",
		Type:   "image",
		Items: []MediaItem{
			{Type: KindImage, ImageURL: origin.URL + "/p1.jpeg"},
			{Type: KindImage, ImageURL: origin.URL + "/p2.png"},
		},
	}))

	wd, cfg := newTestWorkDownloader(t, api.URL)
	if err := wd.Download(context.Background(), "https://v.douyin.com/abc", WorkOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	workDir := filepath.Join(cfg.DownloadsDir, miscDirName, "A-T")
	for _, name := range []string{"1.jpeg", "2.png"} {
		if _, err := os.Stat(filepath.Join(workDir, name)); err != nil {
			t.Errorf("expected %s in work directory: %v", name, err)
		}
	}
}

func TestDownloadSingleImageGetsDirectory(t *testing.T) {
	origin := newOriginServer(t, "image-bytes")
	api := newMediaAPIServer(t, workEnvelope(t, Work{
		Title:  "T",
		Author: "A",
		Type:   "image",
		Items:  []MediaItem{{Type: KindImage, ImageURL: origin.URL + "/p1.jpeg"}},
	}))

	wd, cfg := newTestWorkDownloader(t, api.URL)
	if err := wd.Download(context.Background(), "https://v.douyin.com/abc", WorkOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A single non-video item never takes the bare-file fast path.
	dest := filepath.Join(cfg.DownloadsDir, miscDirName, "A-T", "1.jpeg")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected file at %s: %v", dest, err)
	}
}

func TestDownloadAnimatedImageYieldsTwoFiles(t *testing.T) {
	origin := newOriginServer(t, "bytes")
	api := newMediaAPIServer(t, workEnvelope(t, Work{
		Title:  "T",
		Author: "A",
		Type:   "animated_image",
		Items: []MediaItem{
			{
				Type:     KindAnimatedImage,
				ImageURL: origin.URL + "/still.webp",
				VideoURL: origin.URL + "/motion",
			},
		},
	}))

	wd, cfg := newTestWorkDownloader(t, api.URL)
	if err := wd.Download(context.Background(), "https://v.douyin.com/abc", WorkOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	workDir := filepath.Join(cfg.DownloadsDir, miscDirName, "A-T")
	// Still and motion components share the same 1-based index.
	for _, name := range []string{"1.webp", "1.mp4"} {
		if _, err := os.Stat(filepath.Join(workDir, name)); err != nil {
			t.Errorf("expected %s in work directory: %v", name, err)
		}
	}
}

func TestDownloadUnknownKindSkipped(t *testing.T) {
	origin := newOriginServer(t, "bytes")
	api := newMediaAPIServer(t, workEnvelope(t, Work{
		Title:  "T",
		Author: "A",
		Type:   "mixed",
		Items: []MediaItem{
			{Type: "hologram"},
			{Type: KindImage, ImageURL: origin.URL + "/p.png"},
		},
	}))

	wd, cfg := newTestWorkDownloader(t, api.URL)
	if err := wd.Download(context.Background(), "https://v.douyin.com/abc", WorkOptions{}); err != nil {
		t.Fatalf("unknown kind must not fail the work: %v", err)
	}

	workDir := filepath.Join(cfg.DownloadsDir, miscDirName, "A-T")
	if _, err := os.Stat(filepath.Join(workDir, "2.png")); err != nil {
		t.Errorf("expected sibling item to download: %v", err)
	}
	if _, err := os.Stat(filepath.Join(workDir, "1.png")); !os.IsNotExist(err) {
		t.Errorf("expected nothing written for unknown kind")
	}
}

func TestDownloadItemFailureDoesNotAbortSiblings(t *testing.T) {
	origin := newOriginServer(t, "bytes")
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	t.Cleanup(failing.Close)

	api := newMediaAPIServer(t, workEnvelope(t, Work{
		Title:  "T",
		Author: "A",
		Type:   "image",
		Items: []MediaItem{
			{Type: KindImage, ImageURL: failing.URL + "/p1.jpeg"},
			{Type: KindImage, ImageURL: origin.URL + "/p2.jpeg"},
		},
	}))

	wd, cfg := newTestWorkDownloader(t, api.URL)
	if err := wd.Download(context.Background(), "https://v.douyin.com/abc", WorkOptions{}); err != nil {
		t.Fatalf("item failure must not fail the work: %v", err)
	}

	workDir := filepath.Join(cfg.DownloadsDir, miscDirName, "A-T")
	if _, err := os.Stat(filepath.Join(workDir, "2.jpeg")); err != nil {
		t.Errorf("expected second item despite first failing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(workDir, "1.jpeg")); !os.IsNotExist(err) {
		t.Errorf("expected no file for failed item")
	}
}

func TestDownloadEmptyItemsFails(t *testing.T) {
	api := newMediaAPIServer(t, workEnvelope(t, Work{
		Title:  "T",
		Author: "A",
		Type:   "video",
	}))

	wd, cfg := newTestWorkDownloader(t, api.URL)
	err := wd.Download(context.Background(), "https://v.douyin.com/abc", WorkOptions{})
	if !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}

	entries, _ := os.ReadDir(cfg.DownloadsDir)
	if len(entries) != 0 {
		t.Errorf("expected nothing written, found %d entries", len(entries))
	}
}

func TestDownloadResolutionFailure(t *testing.T) {
	api := newMediaAPIServer(t, `{"code":1,"message":"not found"}`)

	wd, cfg := newTestWorkDownloader(t, api.URL)
	err := wd.Download(context.Background(), "https://v.douyin.com/abc", WorkOptions{})
	if err == nil {
		t.Fatal("expected resolution failure to fail the work")
	}
	if !resolver.IsResolveError(err, resolver.ErrorAPI) {
		t.Errorf("expected api_error, got %v", err)
	}

	entries, _ := os.ReadDir(cfg.DownloadsDir)
	if len(entries) != 0 {
		t.Errorf("expected no file written, found %d entries", len(entries))
	}
}

func TestDownloadSanitizesNames(t *testing.T) {
	origin := newOriginServer(t, "video-bytes")
	api := newMediaAPIServer(t, workEnvelope(t, Work{
		Title:  `bad:title?`,
		Author: `a/b`,
		Type:   "video",
		Items:  []MediaItem{{Type: KindVideo, VideoURL: origin.URL + "/a.mp4"}},
	}))

	wd, cfg := newTestWorkDownloader(t, api.URL)
	if err := wd.Download(context.Background(), "https://v.douyin.com/abc", WorkOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dest := filepath.Join(cfg.DownloadsDir, miscDirName, "ab-badtitle.mp4")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected sanitized path %s: %v", dest, err)
	}
}
