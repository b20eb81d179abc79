package stream

import (
	"github.com/jonboulle/clockwork"

	"github.com/askiada/go-tempo/pkg/pipeline/measure"
)

// Option configures a Pipeline.
type Option func(p *Pipeline)

// WithMeasure records the duration and errors of every step in msr, one metric per step name.
func WithMeasure(msr measure.Measure) Option {
	return func(p *Pipeline) {
		p.measure = msr
	}
}

// WithClock sets the clock used to time the steps.
func WithClock(clock clockwork.Clock) Option {
	return func(p *Pipeline) {
		p.clock = clock
	}
}

// StepOption configures a step.
type StepOption[O any] func(s *Step[O])

// StepConcurrency sets the number of goroutines consuming the input of a step.
func StepConcurrency[O any](concurrent int) StepOption[O] {
	return func(s *Step[O]) {
		s.concurrent = concurrent
	}
}

// StepBufferSize sets the capacity of the output channel of a step.
func StepBufferSize[O any](size int) StepOption[O] {
	return func(s *Step[O]) {
		s.bufferSize = size
	}
}
