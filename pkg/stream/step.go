package stream

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-tempo/pkg/pipeline/measure"
)

// Step is the output side of a step. Output is closed when the step is done.
type Step[O any] struct {
	Name       string
	Output     chan O
	concurrent int
	bufferSize int
	metric     measure.Metric
}

func newStep[O any](p *Pipeline, name string, opts ...StepOption[O]) *Step[O] {
	step := &Step[O]{
		Name: name,
	}

	for _, opt := range opts {
		opt(step)
	}

	if step.concurrent < 1 {
		step.concurrent = 1
	}

	if step.bufferSize < 0 {
		step.bufferSize = 0
	}

	step.Output = make(chan O, step.bufferSize)
	step.metric = p.metric(name)

	return step
}

func sequentialOneToOneFn[I any, O any](ctx context.Context, p *Pipeline, goIdx int, input *Step[I], output *Step[O], oneToOneFn func(context.Context, I) (O, error)) error {
	for {
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}

			start := p.clock.Now()

			out, err := oneToOneFn(ctx, in)
			if err != nil {
				if output.metric != nil {
					output.metric.AddError()
				}

				return errors.Wrapf(err, "go routine %d", goIdx)
			}

			if output.metric != nil {
				output.metric.AddDuration(p.clock.Since(start))
			}

			// the context is checked again so running goroutines stop feeding a cancelled pipeline
			select {
			case <-ctx.Done():
				return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
			case output.Output <- out:
			}
		}
	}
}

func oneToOne[I any, O any](ctx context.Context, p *Pipeline, input *Step[I], output *Step[O], oneToOneFn func(context.Context, I) (O, error)) error {
	if output.concurrent == 1 {
		return sequentialOneToOneFn(ctx, p, 0, input, output, oneToOneFn)
	}

	errGrp, dCtx := errgroup.WithContext(ctx)
	// each consumer stops as soon as one of them fails
	for goIdx := 0; goIdx < output.concurrent; goIdx++ {
		localGoIdx := goIdx
		errGrp.Go(func() error {
			return sequentialOneToOneFn(dCtx, p, localGoIdx, input, output, oneToOneFn)
		})
	}

	return errGrp.Wait()
}

// AddStepOneToOne adds a step calling oneToOneFn once for each value of input.
// With StepConcurrency the output order is not guaranteed.
func AddStepOneToOne[I any, O any](p *Pipeline, name string, input *Step[I], oneToOneFn func(context.Context, I) (O, error), opts ...StepOption[O]) (*Step[O], error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	if input == nil {
		return nil, ErrInputMustBeSet
	}

	step := newStep(p, name, opts...)

	p.addGoFn(name, func(ctx context.Context) error {
		defer close(step.Output)

		return oneToOne(ctx, p, input, step, oneToOneFn)
	})

	return step, nil
}
