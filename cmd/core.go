package cmd

import (
	"net/http"
	"time"

	"github.com/mediagrab/mediagrab/pkg/editsession"
	"github.com/mediagrab/mediagrab/pkg/environment"
	"github.com/mediagrab/mediagrab/pkg/fetcher"
	"github.com/mediagrab/mediagrab/pkg/filestore"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/mediagrab/mediagrab/pkg/pipeline"
	"github.com/mediagrab/mediagrab/pkg/platform"
	"github.com/mediagrab/mediagrab/pkg/store"
	"github.com/spf13/afero"
)

// core bundles the wired-up download pipeline for the CLI commands.
type core struct {
	Store    *store.Store
	Files    *filestore.Store
	Fetcher  *fetcher.Fetcher
	Router   *platform.Router
	Sessions *editsession.Manager
	Pipeline *pipeline.Pipeline
}

func buildCore(fs afero.Fs, env *environment.Environment, logger *logging.Logger) (*core, error) {
	st, err := store.Open(env.DatabasePath())
	if err != nil {
		return nil, err
	}

	files := filestore.NewStore(fs, logger)
	f := fetcher.New(fs, files, env.ToolPath, env.MaxFileSize(), logger)

	router := platform.NewRouter(platform.Deps{
		Fetcher:      f,
		Store:        files,
		Client:       &http.Client{Timeout: 60 * time.Second},
		DownloadDir:  env.DownloadDir,
		MaxFileSize:  env.MaxFileSize(),
		SlideshowAPI: env.SlideshowAPI,
		Logger:       logger,
	})

	sessions := editsession.NewManager(files, logger, editsession.DefaultTTL)

	return &core{
		Store:    st,
		Files:    files,
		Fetcher:  f,
		Router:   router,
		Sessions: sessions,
		Pipeline: &pipeline.Pipeline{
			Router:   router,
			Store:    st,
			Files:    files,
			Sessions: sessions,
			Limits: pipeline.Limits{
				MaxRequests: env.RateLimitMax,
				Window:      time.Duration(env.RateLimitWindowSec) * time.Second,
			},
			Logger: logger,
		},
	}, nil
}

func (c *core) Close() {
	c.Store.Close()
}
