package downloader

import "strings"

// IsUserURL reports whether a link addresses a user profile page rather than
// a single work. Everything else (short links, /video/, /note/) goes down the
// single-work path, which forwards the string to the resolution API as-is.
func IsUserURL(rawURL string) bool {
	return strings.Contains(rawURL, "/user/")
}
