package domain

import (
	"regexp"
	"strings"
)

// FallbackVideoID is returned when no video id can be derived from the
// stored reference.
const FallbackVideoID = "0-S5a0eXPoc"

// Recognized URL shapes, tried in order. First captured group wins.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?youtube\.com/watch\?v=([^&]+)`),
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?youtu\.be/([^?]+)`),
	regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?youtube\.com/embed/([^?]+)`),
}

// ExtractVideoID derives the external video id from a stored reference.
//
// Admins sometimes enter a bare id instead of a full URL: anything without
// a slash or a dot is passed through unchanged. Total function: every
// input, malformed URLs included, yields a non-empty id.
func ExtractVideoID(raw string) string {
	if raw == "" {
		return FallbackVideoID
	}
	if !strings.Contains(raw, "/") && !strings.Contains(raw, ".") {
		return raw
	}
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(raw); len(m) > 1 && m[1] != "" {
			return m[1]
		}
	}
	return FallbackVideoID
}
