// Package fetcher wraps the external extraction tool (yt-dlp) behind a
// typed, timeout-bounded interface. One subprocess per call, never a retry.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mediagrab/mediagrab/pkg/filestore"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/mediagrab/mediagrab/pkg/media"
	"github.com/mediagrab/mediagrab/pkg/toolexec"
	"github.com/spf13/afero"
)

const (
	// DefaultTimeout bounds a fetch when the caller does not override it.
	DefaultTimeout = 180 * time.Second

	defaultAudioFormat = "mp3"
)

// Options control one extraction-tool invocation.
type Options struct {
	ExtractAudio bool
	AudioFormat  string   // Defaults to mp3.
	FormatSpec   string   // Video only. Empty means best under the size ceiling.
	ExtraArgs    []string // Appended verbatim before the URL.
	Timeout      time.Duration
}

// Fetcher invokes the extraction tool as a subprocess and resolves the file
// it produced via a unique-token prefix scan of the output directory.
type Fetcher struct {
	fs          afero.Fs
	store       *filestore.Store
	bin         string
	maxFileSize int64
	logger      *logging.Logger
}

func New(fs afero.Fs, store *filestore.Store, bin string, maxFileSize int64, logger *logging.Logger) *Fetcher {
	if bin == "" {
		bin = "yt-dlp"
	}
	return &Fetcher{fs: fs, store: store, bin: bin, maxFileSize: maxFileSize, logger: logger}
}

// NewToken returns a short per-call unique token used as a filename prefix.
func NewToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// Run downloads url into outputDir and returns a tracked handle to the
// produced file plus the unique token embedded in its name.
func (f *Fetcher) Run(ctx context.Context, url, outputDir string, opts Options) (*filestore.Handle, string, *media.Error) {
	if err := f.fs.MkdirAll(outputDir, 0o755); err != nil {
		return nil, "", media.Errorf("failed to create output dir: %v", err)
	}

	token := NewToken()
	template := filepath.Join(outputDir, token+"_%(title)s.%(ext)s")

	args := f.buildArgs(template, url, opts)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, stderr, exitCode, err := toolexec.Run(runCtx, f.bin, args, "", f.logger)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			f.removeByToken(outputDir, token)
			return nil, "", media.NewError(media.KindTimeout, fmt.Sprintf("download timed out (%s)", timeout))
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, "", media.NewError(media.KindToolNotInstalled, f.bin+" not installed")
		}
		return nil, "", media.Errorf("%v", err)
	}
	if exitCode != 0 {
		return nil, "", Classify(stderr)
	}

	path, found := f.locateByToken(outputDir, token)
	if !found {
		return nil, "", media.NewError(media.KindExtractionFailed, "output not found")
	}

	handle, terr := f.store.Track(path, token)
	if terr != nil {
		return nil, "", media.Errorf("failed to stat output: %v", terr)
	}

	if handle.Size > f.maxFileSize {
		f.store.Release(handle)
		return nil, "", media.NewError(media.KindSizeLimitExceeded,
			fmt.Sprintf("file exceeds %d MB limit", f.maxFileSize/(1024*1024)))
	}

	return handle, token, nil
}

func (f *Fetcher) buildArgs(template, url string, opts Options) []string {
	args := []string{
		"--no-playlist",
		"--no-warnings",
		"--output", template,
	}

	if opts.ExtractAudio {
		format := opts.AudioFormat
		if format == "" {
			format = defaultAudioFormat
		}
		args = append(args,
			"--extract-audio",
			"--audio-format", format,
			"--audio-quality", "0",
		)
	} else {
		spec := opts.FormatSpec
		if spec == "" {
			spec = fmt.Sprintf("best[filesize<%dM]/best", f.maxFileSize/(1024*1024))
		}
		args = append(args, "-f", spec)
	}

	args = append(args, "--add-metadata")
	args = append(args, opts.ExtraArgs...)
	args = append(args, strings.TrimSpace(url))

	return args
}

// locateByToken scans outputDir for the first file carrying the token prefix.
// The tool decides title and extension, so the exact name is not predictable.
func (f *Fetcher) locateByToken(outputDir, token string) (string, bool) {
	infos, err := afero.ReadDir(f.fs, outputDir)
	if err != nil {
		return "", false
	}
	prefix := token + "_"
	for _, info := range infos {
		if !info.IsDir() && strings.HasPrefix(info.Name(), prefix) {
			return filepath.Join(outputDir, info.Name()), true
		}
	}
	return "", false
}

// removeByToken clears any partial output left behind by a killed subprocess.
func (f *Fetcher) removeByToken(outputDir, token string) {
	if path, found := f.locateByToken(outputDir, token); found {
		if err := f.fs.Remove(path); err != nil {
			f.logger.Warn("failed to remove partial download", "path", path, "error", err)
		}
	}
}

// TitleFromHandle derives a display title from the resolved filename with
// the unique-token prefix and extension stripped.
func TitleFromHandle(h *filestore.Handle) string {
	name := filepath.Base(h.Path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.TrimPrefix(name, h.Token+"_")
	if name == "" {
		return "Unknown"
	}
	return name
}
