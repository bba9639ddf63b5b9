package downloader

import (
	"regexp"
	"strings"
)

// forbiddenChars covers everything illegal in a filename on common
// filesystems plus control whitespace that would mangle log output.
var forbiddenChars = regexp.MustCompile(`[\\/:*?"<>|\n\r\t]`)

// fallbackName is used when sanitizing leaves nothing usable.
const fallbackName = "untitled"

// SanitizeFilename strips characters that are illegal in a path segment and
// trims leading/trailing periods and spaces. Total over any input: a string
// that sanitizes to empty yields the fallback token.
func SanitizeFilename(name string) string {
	name = forbiddenChars.ReplaceAllString(name, "")
	name = strings.Trim(name, ". ")
	if name == "" {
		return fallbackName
	}
	return name
}
