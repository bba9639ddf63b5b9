package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"douyin-dl/config"
	"douyin-dl/downloader"
	"douyin-dl/resolver"
)

const usage = `douyin-dl - douyin video/gallery/animated-image downloader

Resolves douyin share links through externally deployed APIs and downloads
all media files to local disk.

Usage:
    douyin-dl <douyin url>

    douyin-dl https://v.douyin.com/y2JACyhjdK8/
    douyin-dl https://www.douyin.com/video/7606413230298820595
    douyin-dl https://www.douyin.com/note/7606955181091438309
    douyin-dl https://www.douyin.com/user/MS4wLjABAAAAZnqWV7JEd23idoozs6TT...

Environment variables:
    DOUYIN_MEDIA_API  - media extraction API base URL (required)
    DOUYIN_USER_API   - user profile API base URL (required)
    DOWNLOADS_DIR     - download root, default "downloads"
`

func main() {
	// Load and validate configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Additional validation
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" {
		fmt.Print(usage)
		fmt.Printf("\nResolved endpoints:\n")
		fmt.Printf("  %s = %s\n", config.EnvMediaAPI, cfg.MediaAPI)
		fmt.Printf("  %s  = %s\n", config.EnvUserAPI, cfg.UserAPI)
		return
	}
	target := os.Args[1]

	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	logger.Infof("media API: %s", cfg.MediaAPI)
	logger.Infof("user API: %s", cfg.UserAPI)
	logger.Infof("target: %s", target)

	rc := resolver.NewClient(cfg.InsecureTLS, logger)
	fetcher := downloader.NewFetcher(cfg, logger)
	works := downloader.NewWorkDownloader(rc, fetcher, cfg, logger)

	ctx := context.Background()

	var runErr error
	if downloader.IsUserURL(target) {
		catalog := downloader.NewCatalogDownloader(rc, works, cfg, logger)
		_, runErr = catalog.Download(ctx, target)
	} else {
		runErr = works.Download(ctx, target, downloader.WorkOptions{})
	}

	if runErr != nil {
		logger.Errorf("download failed: %v", runErr)
		os.Exit(1)
	}
}
