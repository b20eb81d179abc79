package pipeline

import (
	"github.com/jonboulle/clockwork"

	"github.com/askiada/go-tempo/pkg/pipeline/model"
)

// Config declares a pipeline.
type Config struct {
	Name        string
	URI         string
	LocalFolder string
	Description string
	Models      Models

	// Optional configuration.
	Clock clockwork.Clock
}

// Validate checks the mandatory fields and fills the optional ones.
func (c *Config) Validate() error {
	err := c.details().Validate()
	if err != nil {
		return err
	}

	err = c.Models.validate(c.Name)
	if err != nil {
		return err
	}

	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}

	return nil
}

func (c *Config) details() model.Details {
	return model.Details{
		Name:        c.Name,
		Platform:    model.TempoPipeline,
		LocalFolder: c.LocalFolder,
		URI:         c.URI,
		Description: c.Description,
	}
}
