package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mediagrab/mediagrab/pkg/environment"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var historyWhenStyle = lipgloss.NewStyle().Faint(true)

// NewHistoryCommand returns the download history subcommand.
func NewHistoryCommand(fs afero.Fs, ctx context.Context, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	var (
		limit     int
		subjectID int64
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent downloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildCore(fs, env, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			records, err := c.Store.RecentDownloads(subjectID, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				cmd.Println("No downloads recorded yet.")
				return nil
			}

			for _, r := range records {
				title := r.Title
				if title == "" {
					title = r.URL
				}
				line := fmt.Sprintf("%s [%s]", searchTitleStyle.Render(title), r.Platform)
				if r.Artist != "" {
					line += " by " + r.Artist
				}
				cmd.Println(line)
				cmd.Println("  " + historyWhenStyle.Render(humanize.Time(r.DownloadedAt)))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of entries")
	cmd.Flags().Int64Var(&subjectID, "subject", 1, "requester id whose history to show")

	return cmd
}
