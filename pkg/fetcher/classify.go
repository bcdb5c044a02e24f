package fetcher

import (
	"strings"

	"github.com/mediagrab/mediagrab/pkg/media"
)

// Classify maps the extraction tool's diagnostic text to a typed error via
// ordered substring checks. The tool publishes no error-code contract, so
// this is best effort; unmatched diagnostics become ExtractionFailed with
// the leading part of the text retained for display.
func Classify(diagnostic string) *media.Error {
	diagnostic = strings.TrimSpace(diagnostic)
	lower := strings.ToLower(diagnostic)

	switch {
	case strings.Contains(lower, "private"):
		return media.NewError(media.KindPrivateContent, "content is private")
	case strings.Contains(diagnostic, "404"),
		strings.Contains(lower, "not exist"),
		strings.Contains(lower, "not found"):
		return media.NewError(media.KindContentNotFound, "content not found")
	case strings.Contains(lower, "login"), strings.Contains(lower, "sign in"):
		return media.NewError(media.KindLoginRequired, "login required")
	}

	if diagnostic == "" {
		diagnostic = "download failed"
	}
	return media.NewError(media.KindExtractionFailed, diagnostic)
}
