// Package config loads the tempo CLI configuration from a TOML file.
package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/askiada/go-tempo/pkg/runtime"
)

// EndpointEnv overrides the runtime endpoint of the configuration file.
const EndpointEnv = "TEMPO_ENDPOINT"

var (
	ErrArtifactsFolderMustBeSet  = errors.New("artifacts folder must be set")
	ErrConcurrencyMustBePositive = errors.New("batch concurrency must be positive")
)

type Config struct {
	ArtifactsFolder string        `toml:"artifacts_folder"`
	Runtime         RuntimeConfig `toml:"runtime"`
	Batch           BatchConfig   `toml:"batch"`
	Log             LogConfig     `toml:"log"`
}

type RuntimeConfig struct {
	Endpoint  string            `toml:"endpoint"`
	Endpoints map[string]string `toml:"endpoints"`
	Timeout   time.Duration     `toml:"timeout"`
	RetryMax  int               `toml:"retry_max"`
}

type BatchConfig struct {
	Concurrency int `toml:"concurrency"`
	BufferSize  int `toml:"buffer_size"`
}

type LogConfig struct {
	Verbose bool `toml:"verbose"`
	NoColor bool `toml:"no_color"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ArtifactsFolder: "artifacts",
		Runtime: RuntimeConfig{
			Endpoint: "http://localhost:8080",
			Timeout:  30 * time.Second,
			RetryMax: 3,
		},
		Batch: BatchConfig{
			Concurrency: 4,
			BufferSize:  16,
		},
	}
}

// Load reads the configuration at path on top of the defaults.
// A missing file is not an error. The endpoint can be overridden with TEMPO_ENDPOINT.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errors.Wrapf(err, "unable to read config %s", path)
		default:
			err = toml.Unmarshal(data, cfg)
			if err != nil {
				return nil, errors.Wrapf(err, "unable to parse config %s", path)
			}
		}
	}

	if endpoint := os.Getenv(EndpointEnv); endpoint != "" {
		cfg.Runtime.Endpoint = endpoint
	}

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.ArtifactsFolder == "" {
		return ErrArtifactsFolderMustBeSet
	}

	if c.Batch.Concurrency < 1 {
		return ErrConcurrencyMustBePositive
	}

	rtCfg := c.RuntimeConfig(nil)

	err := rtCfg.Validate()
	if err != nil {
		return errors.Wrap(err, "invalid runtime")
	}

	return nil
}

// RuntimeConfig converts the runtime section to a V2 client configuration.
func (c *Config) RuntimeConfig(logger *slog.Logger) runtime.Config {
	return runtime.Config{
		Endpoint:  c.Runtime.Endpoint,
		Endpoints: c.Runtime.Endpoints,
		Timeout:   c.Runtime.Timeout,
		RetryMax:  c.Runtime.RetryMax,
		Logger:    logger,
	}
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create config %s", path)
	}
	defer file.Close()

	err = toml.NewEncoder(file).Encode(c)
	if err != nil {
		return errors.Wrapf(err, "unable to encode config %s", path)
	}

	return nil
}
