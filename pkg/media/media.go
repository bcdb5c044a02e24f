package media

import "github.com/mediagrab/mediagrab/pkg/filestore"

// MediaType describes what kind of media a request targets or a result holds.
type MediaType string

const (
	TypeAudio MediaType = "audio"
	TypeVideo MediaType = "video"
	TypePhoto MediaType = "photo"
	TypeAuto  MediaType = "auto"
)

// Request identifies one piece of media to retrieve. Immutable once created.
type Request struct {
	URL  string
	Type MediaType
}

// FetchResult is the normalized outcome of one adapter invocation, produced
// exactly once per call. On success, ownership of File (and Extra) transfers
// to the caller, which must release every handle it does not hand off.
type FetchResult struct {
	OK              bool
	File            *filestore.Handle
	Title           string
	Author          string
	DurationSeconds int
	Type            MediaType
	Extra           []*filestore.Handle
	Err             *Error
}

// Failure builds a failed FetchResult carrying a typed error.
func Failure(err *Error) FetchResult {
	return FetchResult{OK: false, Err: err}
}

// Handles returns the primary handle followed by any extra handles.
func (r FetchResult) Handles() []*filestore.Handle {
	if r.File == nil {
		return r.Extra
	}
	return append([]*filestore.Handle{r.File}, r.Extra...)
}
