package stream

import (
	"context"
)

// AddRootStep adds the step feeding the pipeline. stepFn sends values to rootChan and returns when it is done.
// rootChan is closed once stepFn returns.
func AddRootStep[O any](p *Pipeline, name string, stepFn func(ctx context.Context, rootChan chan<- O) error, opts ...StepOption[O]) (*Step[O], error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	step := newStep(p, name, opts...)

	p.addGoFn(name, func(ctx context.Context) error {
		defer close(step.Output)

		start := p.clock.Now()

		err := stepFn(ctx, step.Output)
		if step.metric != nil {
			if err != nil {
				step.metric.AddError()
			} else {
				step.metric.AddDuration(p.clock.Since(start))
			}
		}

		return err
	})

	return step, nil
}
