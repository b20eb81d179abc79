package cli

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-tempo/pkg/classifier"
	"github.com/askiada/go-tempo/pkg/pipeline/model"
)

// definition is the declared pipeline as printed by describe.
type definition struct {
	Pipeline model.Details            `json:"pipeline" yaml:"pipeline"`
	Models   map[string]model.Details `json:"models" yaml:"models"`
}

type DescribeCmd struct{}

func NewDescribeCmd() *DescribeCmd {
	return &DescribeCmd{}
}

func (c *DescribeCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the pipeline and model definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return errors.Wrap(err, "failed to get format flag")
			}

			st, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			pipe, _, _, err := classifier.GetTempoArtifacts(st.cfg.ArtifactsFolder)
			if err != nil {
				return err
			}

			def := definition{
				Pipeline: pipe.Details(),
				Models:   pipe.Models().Details(),
			}

			switch format {
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)

				err = enc.Encode(def)
				if err != nil {
					return errors.Wrap(err, "unable to encode definition")
				}

				return errors.Wrap(enc.Close(), "unable to encode definition")
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")

				return errors.Wrap(enc.Encode(def), "unable to encode definition")
			default:
				return errors.Errorf("invalid format: %s", format)
			}
		},
	}

	cmd.Flags().StringP("format", "f", "yaml", "output format (yaml, json)")

	return cmd
}
