package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorTruncatesDiagnostics(t *testing.T) {
	long := strings.Repeat("x", 1000)

	err := NewError(KindExtractionFailed, long)
	require.NotNil(t, err)
	assert.Equal(t, KindExtractionFailed, err.Kind)
	assert.Len(t, err.Message, maxDiagnosticLen)
}

func TestNewErrorKeepsShortMessages(t *testing.T) {
	err := NewError(KindPrivateContent, "this content is private")
	assert.Equal(t, "this content is private", err.Message)
}

func TestErrorString(t *testing.T) {
	err := NewError(KindTimeout, "took too long")
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "took too long")
}

func TestErrorfUsesExtractionFailed(t *testing.T) {
	err := Errorf("exit status %d", 2)
	assert.Equal(t, KindExtractionFailed, err.Kind)
	assert.Equal(t, "exit status 2", err.Message)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "abc", 10, "abc"},
		{"exactly at limit", "abcde", 5, "abcde"},
		{"over limit", "abcdef", 3, "abc"},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}

func TestFailure(t *testing.T) {
	result := Failure(NewError(KindLoginRequired, "sign in"))
	assert.False(t, result.OK)
	require.NotNil(t, result.Err)
	assert.Equal(t, KindLoginRequired, result.Err.Kind)
}

func TestHandlesOrdering(t *testing.T) {
	empty := FetchResult{}
	assert.Nil(t, empty.Handles())
}
