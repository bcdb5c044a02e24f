package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/mediagrab/mediagrab/pkg/environment"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/mediagrab/mediagrab/pkg/media"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// dirDeliverer copies fetched files into a local output directory; the
// primary file's destination path doubles as the remote reference.
type dirDeliverer struct {
	fs        afero.Fs
	outputDir string
}

func (d *dirDeliverer) Deliver(_ context.Context, result media.FetchResult) (string, error) {
	if err := d.fs.MkdirAll(d.outputDir, 0o755); err != nil {
		return "", err
	}

	var primary string
	for i, h := range result.Handles() {
		dst := filepath.Join(d.outputDir, filepath.Base(h.Path))
		if err := copyFile(d.fs, h.Path, dst); err != nil {
			return "", err
		}
		if i == 0 {
			primary = dst
		}
	}
	return primary, nil
}

func copyFile(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// NewFetchCommand returns the fetch subcommand.
func NewFetchCommand(fs afero.Fs, ctx context.Context, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	var (
		mediaType string
		outputDir string
		subjectID int64
	)

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download media from a supported platform URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]

			c, err := buildCore(fs, env, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			if c.Router.Route(url) == nil {
				return fmt.Errorf("unsupported platform: %s", url)
			}

			entry, err := c.Pipeline.Process(ctx, subjectID, media.Request{
				URL:  url,
				Type: media.MediaType(mediaType),
			}, &dirDeliverer{fs: fs, outputDir: outputDir})
			if err != nil {
				return err
			}

			logger.Info("saved", "file", entry.RemoteRef, "title", entry.Title, "author", entry.Author)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mediaType, "type", "t", string(media.TypeAuto), "media type: audio, video or auto")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "directory to place the downloaded files in")
	cmd.Flags().Int64Var(&subjectID, "subject", 1, "requester id used for rate limiting and history")

	return cmd
}
