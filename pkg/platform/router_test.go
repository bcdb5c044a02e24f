package platform

import (
	"context"
	"testing"

	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/mediagrab/mediagrab/pkg/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *Router {
	return NewRouter(Deps{Logger: logging.NewTestLogger()})
}

func TestRouterRouting(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"soundcloud track", "https://soundcloud.com/artist/track-name", "soundcloud"},
		{"soundcloud www", "https://www.soundcloud.com/some-artist/some-track", "soundcloud"},
		{"tiktok video", "https://www.tiktok.com/@user.name/video/1234567890", "tiktok"},
		{"tiktok photo", "https://www.tiktok.com/@user/photo/1234567890", "tiktok"},
		{"tiktok short vm", "https://vm.tiktok.com/ZMabcdef", "tiktok"},
		{"tiktok short vt", "https://vt.tiktok.com/ZSabcdef", "tiktok"},
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "youtube"},
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", "youtube"},
		{"instagram reel", "https://www.instagram.com/reel/Cabc123/", "instagram"},
		{"pinterest pin", "https://www.pinterest.com/pin/123456789/", "pinterest"},
		{"pinterest short", "https://pin.it/abc123", "pinterest"},
		{"pinterest regional", "https://pinterest.de/pin/987654321/", "pinterest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := router.Route(tt.url)
			require.NotNil(t, adapter)
			assert.Equal(t, tt.want, adapter.Name())
			assert.Equal(t, tt.want, router.Platform(tt.url))
		})
	}
}

func TestRouterUnsupportedURL(t *testing.T) {
	router := newTestRouter()

	for _, url := range []string{
		"https://example.com/video/123",
		"https://twitter.com/user/status/1",
		"not a url at all",
		"",
	} {
		assert.Nil(t, router.Route(url), url)
		assert.Equal(t, "", router.Platform(url))
	}
}

func TestRouterDownloadInvalidURL(t *testing.T) {
	router := newTestRouter()

	for _, url := range []string{
		"not a url at all",
		"ftp://example.com/file",
		"",
	} {
		result := router.Download(context.Background(), url, media.TypeAuto)
		assert.False(t, result.OK, url)
		require.NotNil(t, result.Err, url)
		assert.Equal(t, media.KindInvalidURL, result.Err.Kind, url)
	}
}

func TestRouterDownloadUnsupported(t *testing.T) {
	router := newTestRouter()

	result := router.Download(context.Background(), "https://example.com/x", media.TypeAuto)
	assert.False(t, result.OK)
	require.NotNil(t, result.Err)
	assert.Equal(t, media.KindUnsupportedPlatform, result.Err.Kind)
}

func TestRouterOrderIsStable(t *testing.T) {
	router := newTestRouter()

	names := make([]string, 0, len(router.adapters))
	for _, a := range router.adapters {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"soundcloud", "tiktok", "youtube", "instagram", "pinterest"}, names)
}

func TestMatchTrimsWhitespace(t *testing.T) {
	router := newTestRouter()
	adapter := router.Route("  https://soundcloud.com/artist/track  ")
	require.NotNil(t, adapter)
	assert.Equal(t, "soundcloud", adapter.Name())
}
