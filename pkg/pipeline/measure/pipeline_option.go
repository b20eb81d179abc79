package measure

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-tempo/pkg/pipeline/model"
)

var ErrUnknownMetric = errors.New("no metric registered")

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New(pipeline model.Details, models map[string]model.Details) error {
	pm.AddMetric(pipeline.Name)

	for _, details := range models {
		pm.AddMetric(details.Name)
	}

	return nil
}

func (pm *pipelineMeasure) OnModelOutput(_ model.Details, _ string, details model.Details, _ model.Tensor, duration time.Duration, err error) error {
	return pm.record(details.Name, "", duration, err)
}

func (pm *pipelineMeasure) OnPipelineOutput(pipeline model.Details, _ model.Tensor, tag string, duration time.Duration, err error) error {
	return pm.record(pipeline.Name, tag, duration, err)
}

func (pm *pipelineMeasure) record(name, tag string, duration time.Duration, err error) error {
	mt := pm.GetMetric(name)
	if mt == nil {
		return errors.Wrap(ErrUnknownMetric, name)
	}

	if err != nil {
		mt.AddError()

		return nil
	}

	mt.AddDuration(duration)

	if tag != "" {
		mt.AddTag(tag)
	}

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	return nil
}

// PipelineMeasure records every model and pipeline output into msr.
func PipelineMeasure(msr Measure) model.PipelineOption {
	return &pipelineMeasure{msr}
}
