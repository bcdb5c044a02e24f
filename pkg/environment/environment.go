package environment

import (
	"path/filepath"

	env "github.com/Netflix/go-env"
	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// Environment holds configuration loaded from the OS environment or defaults.
type Environment struct {
	DownloadDir        string `env:"DOWNLOAD_DIR,default=/tmp/media_downloads"`
	DataDir            string `env:"DATA_DIR"`
	ToolPath           string `env:"YTDLP_PATH,default=yt-dlp"`
	MaxFileSizeMB      int64  `env:"MAX_FILE_SIZE_MB,default=50"`
	HealthPort         int    `env:"HEALTH_PORT,default=8080"`
	FetchTimeoutSec    int    `env:"FETCH_TIMEOUT,default=180"`
	RateLimitMax       int    `env:"RATE_LIMIT_MAX,default=10"`
	RateLimitWindowSec int    `env:"RATE_LIMIT_WINDOW,default=60"`
	SlideshowAPI       string `env:"SLIDESHOW_API,default=https://www.tikwm.com/api/"`
	Extras             env.EnvSet
}

// MaxFileSize returns the transfer size ceiling in bytes.
func (e *Environment) MaxFileSize() int64 {
	return e.MaxFileSizeMB * 1024 * 1024
}

// DatabasePath returns the path of the sqlite database inside DataDir.
func (e *Environment) DatabasePath() string {
	return filepath.Join(e.DataDir, "mediagrab.db")
}

// NewEnvironment loads the environment, reading a local .env file when one
// exists, and makes sure the download and data directories are present.
func NewEnvironment(fs afero.Fs) (*Environment, error) {
	// Missing .env is fine; explicit env vars win either way.
	_ = godotenv.Load()

	environ := &Environment{}
	extras, err := env.UnmarshalFromEnviron(environ)
	if err != nil {
		return nil, err
	}
	environ.Extras = extras

	if environ.DataDir == "" {
		environ.DataDir = filepath.Join(xdg.DataHome, "mediagrab")
	}

	for _, dir := range []string{environ.DownloadDir, environ.DataDir} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	return environ, nil
}
