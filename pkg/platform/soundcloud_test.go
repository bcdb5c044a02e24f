package platform

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mediagrab/mediagrab/pkg/fetcher"
	"github.com/mediagrab/mediagrab/pkg/filestore"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/mediagrab/mediagrab/pkg/media"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// soundcloudToolScript answers the metadata probe with JSON and resolves the
// --output template for the fetch, like the real tool would.
const soundcloudToolScript = `
case "$*" in
*--dump-json*)
  printf '%s\n' '{"title":"Artist Name — Track Title","uploader":"someuser","duration":200.5,"thumbnail":""}'
  exit 0
  ;;
esac
tmpl=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "--output" ]; then tmpl="$arg"; fi
  prev="$arg"
done
out=$(printf '%s' "$tmpl" | sed -e 's/%(title)s/Artist Name — Track Title/' -e 's/%(ext)s/mp3/')
printf 'audio-bytes' > "$out"
`

func TestSoundCloudDownload(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "fake-ytdlp")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"+soundcloudToolScript), 0o755))

	fs := afero.NewOsFs()
	logger := logging.NewTestLogger()
	files := filestore.NewStore(fs, logger)

	adapter := NewSoundCloud(Deps{
		Fetcher:     fetcher.New(fs, files, bin, 50*1024*1024, logger),
		Store:       files,
		Client:      &http.Client{},
		DownloadDir: t.TempDir(),
		MaxFileSize: 50 * 1024 * 1024,
		Logger:      logger,
	})

	result := adapter.Download(context.Background(), "https://soundcloud.com/artist/track", media.TypeAudio)
	require.True(t, result.OK, "%v", result.Err)
	require.NotNil(t, result.File)
	assert.Equal(t, "Artist Name", result.Author)
	assert.Equal(t, "Track Title", result.Title)
	assert.Equal(t, media.TypeAudio, result.Type)
	assert.Equal(t, 200, result.DurationSeconds)

	exists, err := afero.Exists(fs, result.File.Path)
	require.NoError(t, err)
	assert.True(t, exists)

	files.Release(result.File)
	assert.Equal(t, 0, files.LiveCount())
}

func TestSoundCloudEmbedArtworkFailureIsTyped(t *testing.T) {
	adapter := NewSoundCloud(Deps{
		Client: &http.Client{Timeout: 50 * time.Millisecond},
		Logger: logging.NewTestLogger(),
	})

	aerr := adapter.embedArtwork(context.Background(), "/nonexistent/file.mp3", "http://127.0.0.1:1/art-large.jpg")
	require.NotNil(t, aerr)
	assert.Equal(t, media.KindEnrichmentFailed, aerr.Kind)

	// No thumbnail means nothing to enrich, not a failure.
	assert.Nil(t, adapter.embedArtwork(context.Background(), "/nonexistent/file.mp3", ""))
}

func TestSoundCloudResolveAuthorTitle(t *testing.T) {
	adapter := NewSoundCloud(Deps{Logger: logging.NewTestLogger()})

	// The file path never exists here, so the tag fallback is skipped.
	const noFile = "/nonexistent/file.mp3"

	tests := []struct {
		name       string
		rawTitle   string
		uploader   string
		wantAuthor string
		wantTitle  string
	}{
		{"separator in title", "Kavinsky - Nightcall", "someuploader", "Kavinsky", "Nightcall"},
		{"uploader fallback", "Nightcall", "Kavinsky", "Kavinsky", "Nightcall"},
		{"unknown fallback", "Nightcall", "", "Unknown", "Nightcall"},
		{"pipe separator", "Artist | Song", "", "Artist", "Song"},
		{"empty title", "", "", "Unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			author, title := adapter.resolveAuthorTitle(tt.rawTitle, tt.uploader, noFile)
			assert.Equal(t, tt.wantAuthor, author)
			assert.Equal(t, tt.wantTitle, title)
		})
	}
}

func TestSoundCloudMatch(t *testing.T) {
	adapter := NewSoundCloud(Deps{})

	assert.True(t, adapter.Match("https://soundcloud.com/kavinsky/nightcall"))
	assert.True(t, adapter.Match("http://www.soundcloud.com/some-artist/some-track-123"))
	assert.False(t, adapter.Match("https://soundcloud.com/kavinsky"))
	assert.False(t, adapter.Match("https://example.com/kavinsky/nightcall"))
}
