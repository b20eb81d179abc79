package stream

import (
	"context"
)

// AddSink adds the last step of the pipeline. sinkFn is called sequentially for each value of input.
func AddSink[I any](p *Pipeline, name string, input *Step[I], sinkFn func(ctx context.Context, input I) error) error {
	if p == nil {
		return ErrPipelineMustBeSet
	}

	if input == nil {
		return ErrInputMustBeSet
	}

	metric := p.metric(name)

	p.addGoFn(name, func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case in, ok := <-input.Output:
				if !ok {
					return nil
				}

				start := p.clock.Now()

				err := sinkFn(ctx, in)
				if err != nil {
					if metric != nil {
						metric.AddError()
					}

					return err
				}

				if metric != nil {
					metric.AddDuration(p.clock.Since(start))
				}
			}
		}
	})

	return nil
}
