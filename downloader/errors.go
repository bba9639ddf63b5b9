package downloader

import "errors"

var (
	// ErrNoItems is returned when a work resolved successfully but carries
	// nothing downloadable.
	ErrNoItems = errors.New("work has no downloadable items")

	// ErrNoWorks is returned when a user catalog resolved successfully but
	// lists no works.
	ErrNoWorks = errors.New("user has no works")

	// ErrMissingShareURL marks a catalog entry that cannot be resolved.
	ErrMissingShareURL = errors.New("work reference has no share_url")
)
