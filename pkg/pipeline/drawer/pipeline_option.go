package drawer

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-tempo/pkg/pipeline/measure"
	"github.com/askiada/go-tempo/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m measure.Measure
}

func (pd *pipelineDrawer) New(pipeline model.Details, models map[string]model.Details) error {
	err := pd.AddStep(pipeline.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add pipeline to drawer")
	}

	roles := make([]string, 0, len(models))
	for role := range models {
		roles = append(roles, role)
	}

	sort.Strings(roles)

	for _, role := range roles {
		err := pd.AddStep(models[role].Name)
		if err != nil {
			return errors.Wrapf(err, "unable to add model %s to drawer", role)
		}

		err = pd.AddLink(pipeline.Name, models[role].Name, role)
		if err != nil {
			return errors.Wrapf(err, "unable to link model %s", role)
		}
	}

	return nil
}

func (pd *pipelineDrawer) OnModelOutput(model.Details, string, model.Details, model.Tensor, time.Duration, error) error {
	return nil
}

func (pd *pipelineDrawer) OnPipelineOutput(model.Details, model.Tensor, string, time.Duration, error) error {
	return nil
}

func (pd *pipelineDrawer) Finish() error {
	if pd.m != nil {
		err := pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the pipeline when it finishes. msr is optional, when set its metrics decorate the graph.
func PipelineDrawer(drawer Drawer, msr measure.Measure) model.PipelineOption {
	return &pipelineDrawer{drawer, msr}
}
