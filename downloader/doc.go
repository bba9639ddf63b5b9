// Package downloader materializes resolved douyin works onto local disk.
//
// The package provides:
//   - Fetcher: streaming single-file download with progress rendering and
//     skip-if-exists semantics
//   - WorkDownloader: per-work layout decision and media-type dispatch
//   - CatalogDownloader: whole-profile batch driving with partial-failure
//     accounting
//   - Filename sanitizing and user-URL classification helpers
//
// Execution is strictly sequential; every network call blocks until
// completion or timeout.
package downloader
