package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-tempo/pkg/classifier"
	"github.com/askiada/go-tempo/pkg/pipeline/drawer"
)

type GraphCmd struct{}

func NewGraphCmd() *GraphCmd {
	return &GraphCmd{}
}

func (c *GraphCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Write the pipeline graph in DOT format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, err := cmd.Flags().GetString("output")
			if err != nil {
				return errors.Wrap(err, "failed to get output flag")
			}

			st, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			dotDrawer := drawer.NewDOTDrawer(output)

			pipe, _, _, err := classifier.GetTempoArtifacts(st.cfg.ArtifactsFolder, drawer.PipelineDrawer(dotDrawer, nil))
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return errors.Wrap(dotDrawer.Render(cmd.OutOrStdout()), "unable to render graph")
			}

			err = pipe.Finish()
			if err != nil {
				return err
			}

			st.log.Info("graph written", "path", output)

			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "-", "DOT file to write, - for stdout")

	return cmd
}
