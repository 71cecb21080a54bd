package server

import (
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the configuration for the conversion service.
type Config struct {
	Port           int    `env:"PORT" env-default:"3001" env-description:"HTTP server port"`
	ScratchDir     string `env:"SCRATCH_DIR" env-default:"" env-description:"Scratch root for per-request workspaces (defaults to the system temp dir)"`
	SofficePath    string `env:"SOFFICE_PATH" env-default:"soffice" env-description:"Converter binary, resolved on PATH when relative"`
	ConvertTimeout string `env:"CONVERT_TIMEOUT" env-default:"60s" env-description:"Wall-clock limit for a PDF conversion (e.g. 60s, 2m)"`
	HTMLTimeout    string `env:"HTML_TIMEOUT" env-default:"90s" env-description:"Wall-clock limit for a spreadsheet HTML export"`
	CacheSize      int    `env:"CACHE_SIZE" env-default:"20" env-description:"Maximum result cache entries"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" env-default:"26214400" env-description:"Maximum upload size in bytes"`
	MaxConcurrent  int64  `env:"MAX_CONCURRENT" env-default:"4" env-description:"Maximum simultaneous converter subprocesses"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// WithPort sets the server port.
func (c Config) WithPort(port int) Config {
	c.Port = port
	return c
}

// WithScratchDir sets the workspace scratch root.
func (c Config) WithScratchDir(dir string) Config {
	c.ScratchDir = dir
	return c
}

// WithSofficePath sets the converter binary path.
func (c Config) WithSofficePath(path string) Config {
	c.SofficePath = path
	return c
}
