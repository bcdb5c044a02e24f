package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mediagrab/mediagrab/pkg/editsession"
	"github.com/mediagrab/mediagrab/pkg/environment"
	"github.com/mediagrab/mediagrab/pkg/fetcher"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Bold(true)
)

// NewEditCommand returns the interactive tag/artwork editor subcommand.
func NewEditCommand(fs afero.Fs, ctx context.Context, env *environment.Environment, logger *logging.Logger) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "edit <file.mp3>",
		Short: "Edit the tags and artwork of an audio file interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := buildCore(fs, env, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			// Work on a temp copy so cancelling never touches the original.
			token := fetcher.NewToken()
			workPath := filepath.Join(env.DownloadDir, token+"_"+filepath.Base(args[0]))
			if err := copyFile(fs, args[0], workPath); err != nil {
				return fmt.Errorf("failed to copy input file: %w", err)
			}

			handle, err := c.Files.Track(workPath, token)
			if err != nil {
				return err
			}

			session, err := c.Sessions.Open(handle)
			if err != nil {
				c.Files.Release(handle)
				return err
			}

			return runEditLoop(cmd, fs, session, outputDir)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "directory to place the saved file in")

	return cmd
}

func runEditLoop(cmd *cobra.Command, fs afero.Fs, session *editsession.Session, outputDir string) error {
	for {
		t := session.Tags()
		cmd.Println(headerStyle.Render("MP3 Tools"))
		cmd.Printf("%s %s\n", labelStyle.Render("Title:"), orDash(t.Title))
		cmd.Printf("%s %s\n\n", labelStyle.Render("Artist:"), orDash(t.Artist))

		var action string
		form := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose an action").
				Options(
					huh.NewOption("Edit title & artist", "edit"),
					huh.NewOption("Replace artwork", "art"),
					huh.NewOption("Delete artwork", "delete-art"),
					huh.NewOption("Save", "save"),
					huh.NewOption("Cancel", "cancel"),
				).
				Value(&action),
		))
		if err := form.Run(); err != nil {
			return session.Cancel()
		}

		switch action {
		case "edit":
			if err := editTags(session); err != nil {
				return err
			}
		case "art":
			if err := replaceArtwork(fs, session); err != nil {
				return err
			}
		case "delete-art":
			if _, err := session.BeginArtEdit(); err != nil {
				return err
			}
			if err := session.DeleteArtwork(); err != nil {
				return err
			}
			cmd.Println("Artwork removed.")
		case "save":
			return saveSession(cmd, fs, session, outputDir)
		case "cancel":
			cmd.Println("Cancelled, file discarded.")
			return session.Cancel()
		}
	}
}

func editTags(session *editsession.Session) error {
	if err := session.BeginTagEdit(); err != nil {
		return err
	}

	var title, artist string
	titleForm := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Track title (empty to cancel)").Value(&title),
	))
	if err := titleForm.Run(); err != nil || title == "" {
		return session.CancelEdit()
	}
	if err := session.SetTitle(title); err != nil {
		return err
	}

	artistForm := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Artist (empty to cancel)").Value(&artist),
	))
	if err := artistForm.Run(); err != nil || artist == "" {
		return session.CancelEdit()
	}
	return session.SetArtist(artist)
}

func replaceArtwork(fs afero.Fs, session *editsession.Session) error {
	if _, err := session.BeginArtEdit(); err != nil {
		return err
	}

	var imagePath string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Path to cover image (empty to cancel)").Value(&imagePath),
	))
	if err := form.Run(); err != nil || imagePath == "" {
		return session.CancelEdit()
	}

	data, err := afero.ReadFile(fs, imagePath)
	if err != nil {
		_ = session.CancelEdit()
		return fmt.Errorf("failed to read image: %w", err)
	}
	return session.SetArtwork(data)
}

func saveSession(cmd *cobra.Command, fs afero.Fs, session *editsession.Session, outputDir string) error {
	err := session.Save(func(path, displayName string) error {
		if mkErr := fs.MkdirAll(outputDir, 0o755); mkErr != nil {
			return mkErr
		}
		dst := filepath.Join(outputDir, displayName)
		if cpErr := copyFile(fs, path, dst); cpErr != nil {
			return cpErr
		}
		cmd.Println("Saved to", dst)
		return nil
	})
	if errors.Is(err, editsession.ErrSessionFinished) {
		return nil
	}
	return err
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
