package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"douyin-dl/config"
	"douyin-dl/resolver"
)

// miscDirName collects standalone single-URL downloads that belong to no
// particular user directory.
const miscDirName = "杂"

// knownExts are the recognized media suffixes for extension inference, in
// scan order.
var knownExts = []string{".webp", ".jpeg", ".jpg", ".png", ".gif", ".mp4", ".heic"}

// WorkOptions controls where a work is placed. A zero value means a
// standalone invocation: the work goes under <downloads>/杂/ named
// <author>-<title>. With BaseDir set (the catalog case) files are organized
// under BaseDir named <IndexPrefix><title>.
type WorkOptions struct {
	BaseDir     string
	IndexPrefix string
}

// WorkDownloader resolves one share link and materializes its media items.
type WorkDownloader struct {
	resolver *resolver.Client
	fetcher  *Fetcher
	cfg      *config.Config
	logger   *zap.SugaredLogger
}

// NewWorkDownloader creates a work downloader.
func NewWorkDownloader(rc *resolver.Client, fetcher *Fetcher, cfg *config.Config, logger *zap.SugaredLogger) *WorkDownloader {
	return &WorkDownloader{
		resolver: rc,
		fetcher:  fetcher,
		cfg:      cfg,
		logger:   logger,
	}
}

// Download resolves shareURL against the media API and downloads every item.
// Resolution failure or an empty item list fails the work; individual item
// transfer failures are logged and do not, each item being independent.
func (w *WorkDownloader) Download(ctx context.Context, shareURL string, opts WorkOptions) error {
	w.logger.Infof("resolving work: %s", shareURL)

	data, err := w.resolver.Resolve(ctx, w.cfg.MediaAPI, shareURL, w.cfg.MediaTimeout)
	if err != nil {
		return err
	}

	var work Work
	if err := json.Unmarshal(data, &work); err != nil {
		return fmt.Errorf("unexpected media payload: %w", err)
	}

	title := SanitizeFilename(work.Title)
	author := work.Author
	if author == "" {
		author = "unknown"
	}
	author = SanitizeFilename(author)

	if len(work.Items) == 0 {
		return ErrNoItems
	}

	var workBase, namePrefix string
	if opts.BaseDir == "" {
		workBase = filepath.Join(w.cfg.DownloadsDir, miscDirName)
		namePrefix = author + "-" + title
	} else {
		workBase = opts.BaseDir
		namePrefix = opts.IndexPrefix + title
	}

	w.logger.Infof("author: %s, title: %s, type: %s, items: %d", author, title, work.Type, len(work.Items))

	// A lone video collapses to a bare file; the decision is keyed only on
	// item count and kind, never on whether a base directory was given.
	if len(work.Items) == 1 && work.Items[0].Type == KindVideo {
		if videoURL := work.Items[0].VideoURL; videoURL != "" {
			dest := filepath.Join(workBase, namePrefix+".mp4")
			if err := w.fetcher.Fetch(ctx, videoURL, dest); err != nil {
				w.logger.Warnf("download failed: %v", err)
			}
		}
		return nil
	}

	// Multiple elements, or a single non-video one: sub-directory with
	// 1-based numbered files.
	workDir := filepath.Join(workBase, namePrefix)

	for i, item := range work.Items {
		idx := i + 1
		w.logger.Infof("[%d/%d] type: %s", idx, len(work.Items), item.Type)

		switch item.Type {
		case KindVideo:
			if item.VideoURL != "" {
				w.fetchItem(ctx, item.VideoURL, filepath.Join(workDir, fmt.Sprintf("%d.mp4", idx)))
			}

		case KindImage:
			if item.ImageURL != "" {
				ext := guessExt(item.ImageURL, ".jpeg")
				w.fetchItem(ctx, item.ImageURL, filepath.Join(workDir, fmt.Sprintf("%d%s", idx, ext)))
			}

		case KindAnimatedImage:
			// Animated images carry a still (usually webp) and a motion
			// component (mp4); both share the item's index.
			if item.ImageURL != "" {
				ext := guessExt(item.ImageURL, ".webp")
				w.fetchItem(ctx, item.ImageURL, filepath.Join(workDir, fmt.Sprintf("%d%s", idx, ext)))
			}
			if item.VideoURL != "" {
				w.fetchItem(ctx, item.VideoURL, filepath.Join(workDir, fmt.Sprintf("%d.mp4", idx)))
			}

		default:
			w.logger.Warnf("unknown item type %q, skipping", item.Type)
		}
	}

	return nil
}

// fetchItem downloads one item destination, logging failure instead of
// propagating it so sibling items still get their turn.
func (w *WorkDownloader) fetchItem(ctx context.Context, rawURL, dest string) {
	if err := w.fetcher.Fetch(ctx, rawURL, dest); err != nil {
		w.logger.Warnf("download failed: %v", err)
	}
}

// guessExt infers a file extension by scanning the URL path for a recognized
// suffix, falling back to the kind-specific default.
func guessExt(rawURL, fallback string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	path := strings.ToLower(u.Path)
	for _, ext := range knownExts {
		if strings.Contains(path, ext) {
			return ext
		}
	}
	return fallback
}
