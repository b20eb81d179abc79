package pipeline

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-tempo/pkg/pipeline/model"
)

// Invoker calls the models of one pipeline through the runtime bound for a prediction.
type Invoker struct {
	pipe *Pipeline
	rt   model.Runtime
}

// Model returns the model declared for role.
func (inv *Invoker) Model(role string) (*model.Model, bool) {
	mdl, ok := inv.pipe.models[role]

	return mdl, ok
}

// Predict invokes the model declared for role.
func (inv *Invoker) Predict(ctx context.Context, role string, input model.Tensor) (model.Tensor, error) {
	mdl, ok := inv.pipe.models[role]
	if !ok {
		return nil, errors.Wrapf(ErrModelNotDeclared, "role %s in pipeline %s", role, inv.pipe.details.Name)
	}

	start := inv.pipe.clock.Now()
	out, err := mdl.Predict(ctx, inv.rt, input)
	elapsed := inv.pipe.clock.Since(start)
	if err != nil {
		out = nil
	}

	for _, opt := range inv.pipe.opts {
		optErr := opt.OnModelOutput(inv.pipe.details, role, mdl.Details(), out, elapsed, err)
		if optErr != nil && err == nil {
			return nil, errors.Wrap(optErr, "unable to run model output option")
		}
	}

	if err != nil {
		return nil, err
	}

	return out, nil
}
