package cmd

import (
	"context"

	"github.com/mediagrab/mediagrab/pkg/environment"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/mediagrab/mediagrab/pkg/version"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewRootCommand returns the root command with all subcommands attached.
func NewRootCommand(fs afero.Fs, ctx context.Context, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	cobra.EnableCommandSorting = false
	rootCmd := &cobra.Command{
		Use:     "mediagrab",
		Short:   "Download media from content platforms.",
		Version: version.Version,
		Long: `Mediagrab retrieves audio, video and photo content from supported platforms
(SoundCloud, TikTok, YouTube, Instagram, Pinterest) through yt-dlp and direct
HTTP extraction, with optional interactive tag and artwork editing for audio.`,
	}

	rootCmd.AddCommand(NewFetchCommand(fs, ctx, env, logger))
	rootCmd.AddCommand(NewEditCommand(fs, ctx, env, logger))
	rootCmd.AddCommand(NewSearchCommand(fs, ctx, env, logger))
	rootCmd.AddCommand(NewHistoryCommand(fs, ctx, env, logger))
	rootCmd.AddCommand(NewServeCommand(fs, ctx, env, logger))

	return rootCmd
}
