package runtime

import (
	"log/slog"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultRetryMax     = 3
	defaultRetryWaitMin = 100 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
)

var ErrEndpointMustBeSet = errors.New("endpoint must be set")

// Config configures a V2 client.
type Config struct {
	// Endpoint is the base URL of the serving platform, for example http://localhost:8080.
	Endpoint string
	// Endpoints overrides Endpoint for the listed model names.
	Endpoints map[string]string

	// Optional configuration. A negative RetryMax disables retries.
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       *slog.Logger
}

// Validate checks the mandatory fields and fills the optional ones.
func (c *Config) Validate() error {
	if c.Endpoint == "" && len(c.Endpoints) == 0 {
		return ErrEndpointMustBeSet
	}

	if c.Endpoint != "" {
		err := validateEndpoint(c.Endpoint)
		if err != nil {
			return err
		}
	}

	for name, endpoint := range c.Endpoints {
		err := validateEndpoint(endpoint)
		if err != nil {
			return errors.Wrapf(err, "model %s", name)
		}
	}

	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	switch {
	case c.RetryMax == 0:
		c.RetryMax = defaultRetryMax
	case c.RetryMax < 0:
		c.RetryMax = 0
	}
	if c.RetryWaitMin <= 0 {
		c.RetryWaitMin = defaultRetryWaitMin
	}
	if c.RetryWaitMax <= 0 {
		c.RetryWaitMax = defaultRetryWaitMax
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	return nil
}

func validateEndpoint(endpoint string) error {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return errors.Wrapf(err, "unable to parse endpoint %q", endpoint)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.Errorf("endpoint %q must use http or https", endpoint)
	}

	return nil
}
