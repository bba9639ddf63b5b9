package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"douyin-dl/config"
	"douyin-dl/resolver"
)

// defaultWorkPace is the delay between consecutive works of a catalog run,
// keeping pressure off the origin and the resolution endpoint.
const defaultWorkPace = 500 * time.Millisecond

// CatalogDownloader downloads every work of a user profile.
type CatalogDownloader struct {
	resolver *resolver.Client
	works    *WorkDownloader
	cfg      *config.Config
	logger   *zap.SugaredLogger
	pace     time.Duration
}

// NewCatalogDownloader creates a catalog downloader.
func NewCatalogDownloader(rc *resolver.Client, works *WorkDownloader, cfg *config.Config, logger *zap.SugaredLogger) *CatalogDownloader {
	return &CatalogDownloader{
		resolver: rc,
		works:    works,
		cfg:      cfg,
		logger:   logger,
		pace:     defaultWorkPace,
	}
}

// Download resolves userURL against the user API (long timeout; enumerating a
// profile can take minutes) and drives the work downloader once per listed
// work inside <downloads>/<nickname>/. Per-work failures are tallied and
// never abort the batch. The returned error is non-nil only when the catalog
// itself could not be resolved; a finished iteration counts as a completed
// run regardless of individual work outcomes.
func (c *CatalogDownloader) Download(ctx context.Context, userURL string) (Tally, error) {
	c.logger.Infof("fetching work list for: %s", userURL)
	c.logger.Infof("querying user API (may take up to %s)...", c.cfg.UserTimeout)

	start := time.Now()
	data, err := c.resolver.Resolve(ctx, c.cfg.UserAPI, userURL, c.cfg.UserTimeout)
	c.logger.Infof("user API answered in %.1fs", time.Since(start).Seconds())
	if err != nil {
		return Tally{}, err
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return Tally{}, fmt.Errorf("unexpected catalog payload: %w", err)
	}

	nickname := catalog.User.Nickname
	if nickname == "" {
		nickname = "unknown_user"
	}
	nickname = SanitizeFilename(nickname)

	worksCount := catalog.WorksCount
	if worksCount == 0 {
		worksCount = len(catalog.Works)
	}

	c.logger.Infof("user: %s, uid: %s, works: %d, fetched: %d",
		nickname, catalog.User.UID, worksCount, len(catalog.Works))
	if catalog.User.Signature != "" {
		c.logger.Infof("signature: %s", catalog.User.Signature)
	}

	if len(catalog.Works) == 0 {
		return Tally{}, ErrNoWorks
	}

	userDir := filepath.Join(c.cfg.DownloadsDir, nickname)
	tally := Tally{Total: len(catalog.Works)}

	for i, ref := range catalog.Works {
		idx := i + 1
		c.logger.Infof("work [%d/%d] (%s) %s", idx, len(catalog.Works), ref.Type, truncateRunes(ref.Desc, 40))
		if ref.AwemeID != "" {
			c.logger.Infof("id: %s", ref.AwemeID)
		}

		if ref.ShareURL == "" {
			c.logger.Warnf("skipping work %d: %v", idx, ErrMissingShareURL)
			tally.Fail++
		} else if err := c.works.Download(ctx, ref.ShareURL, WorkOptions{
			BaseDir:     userDir,
			IndexPrefix: fmt.Sprintf("%d ", idx),
		}); err != nil {
			c.logger.Warnf("work %d failed: %v", idx, err)
			tally.Fail++
		} else {
			tally.Success++
		}

		if idx < len(catalog.Works) {
			time.Sleep(c.pace)
		}
	}

	absDir, err := filepath.Abs(userDir)
	if err != nil {
		absDir = userDir
	}
	c.logger.Infof("finished: %d succeeded, %d failed, %d total", tally.Success, tally.Fail, tally.Total)
	c.logger.Infof("saved to: %s", absDir)

	return tally, nil
}

// truncateRunes shortens s to at most n runes; descriptions are routinely
// multi-byte.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
