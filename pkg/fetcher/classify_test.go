package fetcher

import (
	"strings"
	"testing"

	"github.com/mediagrab/mediagrab/pkg/media"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		diagnostic string
		want       media.ErrorKind
	}{
		{"private video", "ERROR: This video is private", media.KindPrivateContent},
		{"private uppercase", "ERROR: PRIVATE content", media.KindPrivateContent},
		{"http 404", "ERROR: HTTP Error 404: Not Found", media.KindContentNotFound},
		{"does not exist", "ERROR: this track does not exist", media.KindContentNotFound},
		{"not found", "ERROR: playlist not found", media.KindContentNotFound},
		{"login required", "ERROR: Login required to access this content", media.KindLoginRequired},
		{"sign in prompt", "ERROR: Sign in to confirm your age", media.KindLoginRequired},
		{"unknown error", "ERROR: something unexpected broke", media.KindExtractionFailed},
		{"empty stderr", "", media.KindExtractionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.diagnostic)
			assert.Equal(t, tt.want, err.Kind)
		})
	}
}

func TestClassifyPrivateWinsOverNotFound(t *testing.T) {
	// Ordering matters when stderr matches several heuristics.
	err := Classify("ERROR: private video, HTTP Error 404")
	assert.Equal(t, media.KindPrivateContent, err.Kind)
}

func TestClassifyTruncatesLongDiagnostics(t *testing.T) {
	err := Classify("ERROR: " + strings.Repeat("z", 500))
	assert.LessOrEqual(t, len(err.Message), 200)
}
