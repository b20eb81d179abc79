package stream

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/askiada/go-tempo/pkg/pipeline/measure"
)

// Pipeline is a pipeline of steps.
type Pipeline struct {
	errcList *errorChans
	measure  measure.Measure
	clock    clockwork.Clock
	running  atomic.Bool

	mu   sync.Mutex
	goFn []func(ctx context.Context)
}

// New creates a new pipeline.
func New(opts ...Option) *Pipeline {
	pipe := &Pipeline{
		errcList: &errorChans{},
	}

	for _, opt := range opts {
		opt(pipe)
	}

	if pipe.clock == nil {
		pipe.clock = clockwork.NewRealClock()
	}

	return pipe
}

func (p *Pipeline) addGoFn(name string, fn func(ctx context.Context) error) {
	errC := make(chan error, 1)
	p.errcList.add(newErrorChan(name, errC))

	p.mu.Lock()
	defer p.mu.Unlock()

	p.goFn = append(p.goFn, func(ctx context.Context) {
		defer close(errC)

		err := fn(ctx)
		if err != nil {
			errC <- err
		}
	})
}

func (p *Pipeline) metric(name string) measure.Metric {
	if p.measure == nil {
		return nil
	}

	return p.measure.AddMetric(name)
}

// Run starts every step and waits for all of them to finish.
// The first error cancels the remaining steps and is returned once they have stopped.
func (p *Pipeline) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	dCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	goFn := p.goFn
	p.mu.Unlock()

	for _, fn := range goFn {
		go fn(dCtx)
	}

	var firstErr error

	for err := range mergeErrors(p.errcList.all()...) {
		if err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	return firstErr
}
