package pipeline

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-tempo/pkg/pipeline/model"
)

// Func routes a payload through the models of a pipeline.
// It returns the prediction and a tag naming the model that produced it.
type Func func(ctx context.Context, models *Invoker, payload model.Tensor) (model.Tensor, string, error)

// Pipeline is a deployable composite of models. It never changes after New.
type Pipeline struct {
	details model.Details
	models  Models
	fn      Func
	opts    []model.PipelineOption
	clock   clockwork.Clock
}

// New creates a new pipeline.
func New(cfg Config, fn Func, opts ...model.PipelineOption) (*Pipeline, error) {
	if fn == nil {
		return nil, ErrFuncMustBeSet
	}

	err := cfg.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "invalid pipeline config")
	}

	pipe := &Pipeline{
		details: cfg.details(),
		models:  cfg.Models.clone(),
		fn:      fn,
		opts:    opts,
		clock:   cfg.Clock,
	}

	for _, opt := range opts {
		err := opt.New(pipe.details, pipe.models.Details())
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// Details returns the pipeline metadata.
func (p *Pipeline) Details() model.Details {
	return p.details
}

// Models returns the models the pipeline was declared with.
func (p *Pipeline) Models() Models {
	return p.models.clone()
}

// Predict runs the routing function against rt.
func (p *Pipeline) Predict(ctx context.Context, rt model.Runtime, payload model.Tensor) (model.Tensor, string, error) {
	if rt == nil {
		return nil, "", model.ErrRuntimeMustBeSet
	}

	start := p.clock.Now()
	out, tag, err := p.fn(ctx, &Invoker{pipe: p, rt: rt}, payload)
	elapsed := p.clock.Since(start)
	if err != nil {
		out, tag = nil, ""
	}

	for _, opt := range p.opts {
		optErr := opt.OnPipelineOutput(p.details, out, tag, elapsed, err)
		if optErr != nil && err == nil {
			return nil, "", errors.Wrap(optErr, "unable to run pipeline output option")
		}
	}

	if err != nil {
		return nil, "", err
	}

	return out, tag, nil
}

// Prediction is the result of one payload of a batch.
type Prediction struct {
	Output model.Tensor `json:"output"`
	Tag    string       `json:"tag"`
}

// PredictBatch runs independent predictions with at most concurrent of them in flight.
// It stops on the first error. Results keep the order of payloads.
func (p *Pipeline) PredictBatch(ctx context.Context, rt model.Runtime, payloads []model.Tensor, concurrent int) ([]Prediction, error) {
	if concurrent < 1 {
		concurrent = 1
	}

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(concurrent)

	res := make([]Prediction, len(payloads))

	for idx, payload := range payloads {
		errGrp.Go(func() error {
			out, tag, err := p.Predict(dCtx, rt, payload)
			if err != nil {
				return errors.Wrapf(err, "payload %d", idx)
			}

			res[idx] = Prediction{Output: out, Tag: tag}

			return nil
		})
	}

	err := errGrp.Wait()
	if err != nil {
		return nil, err
	}

	return res, nil
}

// Finish runs the finish function of every option.
func (p *Pipeline) Finish() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}
