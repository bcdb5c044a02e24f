package media

import "fmt"

// ErrorKind classifies fetch failures. Classification from tool diagnostics
// is best effort; anything unrecognized lands in KindExtractionFailed.
type ErrorKind string

const (
	KindInvalidURL          ErrorKind = "invalid_url"
	KindUnsupportedPlatform ErrorKind = "unsupported_platform"
	KindPrivateContent      ErrorKind = "private_content"
	KindContentNotFound     ErrorKind = "content_not_found"
	KindLoginRequired       ErrorKind = "login_required"
	KindSizeLimitExceeded   ErrorKind = "size_limit_exceeded"
	KindTimeout             ErrorKind = "timeout"
	KindToolNotInstalled    ErrorKind = "tool_not_installed"
	KindExtractionFailed    ErrorKind = "extraction_failed"
	KindEnrichmentFailed    ErrorKind = "enrichment_failed"
)

// maxDiagnosticLen bounds how much tool output is kept for display.
const maxDiagnosticLen = 200

// Error is a typed fetch error. It is returned as a value, never panicked.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds an Error, truncating the diagnostic message.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: Truncate(message, maxDiagnosticLen)}
}

// Errorf builds an ExtractionFailed error from a formatted diagnostic.
func Errorf(format string, args ...interface{}) *Error {
	return NewError(KindExtractionFailed, fmt.Sprintf(format, args...))
}

// Truncate shortens s to at most n bytes.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
