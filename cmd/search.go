package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mediagrab/mediagrab/pkg/environment"
	"github.com/mediagrab/mediagrab/pkg/fetcher"
	"github.com/mediagrab/mediagrab/pkg/filestore"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	searchTitleStyle = lipgloss.NewStyle().Bold(true)
	searchMetaStyle  = lipgloss.NewStyle().Faint(true)
)

// NewSearchCommand returns the SoundCloud track search subcommand.
func NewSearchCommand(fs afero.Fs, ctx context.Context, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search SoundCloud for tracks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := joinArgs(args)

			files := filestore.NewStore(fs, logger)
			f := fetcher.New(fs, files, env.ToolPath, env.MaxFileSize(), logger)

			results, err := f.Search(ctx, query, limit)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				cmd.Println("No tracks found for", query)
				return nil
			}

			for i, r := range results {
				line := fmt.Sprintf("%2d. %s", i+1, searchTitleStyle.Render(r.Title))
				meta := r.Uploader
				if r.DurationSeconds > 0 {
					meta = fmt.Sprintf("%s, %s", meta, formatDuration(r.DurationSeconds))
				}
				cmd.Println(line)
				cmd.Println("    " + searchMetaStyle.Render(meta))
				cmd.Println("    " + r.URL)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "maximum number of results")

	return cmd
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}

func formatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
