package pipeline_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-tempo/pkg/pipeline"
	"github.com/askiada/go-tempo/pkg/pipeline/model"
)

func newTestModel(t *testing.T, name string) *model.Model {
	t.Helper()

	mdl, err := model.New(model.Details{
		Name:        name,
		Platform:    model.Custom,
		LocalFolder: "/artifacts/" + name,
		URI:         "s3://tempo/test/" + name,
	})
	require.NoError(t, err)

	return mdl
}

func newTestConfig(t *testing.T) pipeline.Config {
	t.Helper()

	return pipeline.Config{
		Name:        "test-pipeline",
		URI:         "s3://tempo/test/pipeline",
		LocalFolder: "/artifacts/pipeline",
		Models: pipeline.Models{
			"first":  newTestModel(t, "first-model"),
			"second": newTestModel(t, "second-model"),
		},
	}
}

type modelOutput struct {
	role     string
	name     string
	output   model.Tensor
	duration time.Duration
	err      error
}

type pipelineOutput struct {
	output   model.Tensor
	tag      string
	duration time.Duration
	err      error
}

type recordOption struct {
	mu        sync.Mutex
	pipeline  model.Details
	models    map[string]model.Details
	modelOuts []modelOutput
	pipeOuts  []pipelineOutput
	finished  int
	newErr    error
	modelErr  error
	pipeErr   error
	finishErr error
}

func (r *recordOption) New(pipe model.Details, models map[string]model.Details) error {
	r.pipeline = pipe
	r.models = models

	return r.newErr
}

func (r *recordOption) OnModelOutput(_ model.Details, role string, details model.Details, output model.Tensor, duration time.Duration, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modelOuts = append(r.modelOuts, modelOutput{role: role, name: details.Name, output: output, duration: duration, err: err})

	return r.modelErr
}

func (r *recordOption) OnPipelineOutput(_ model.Details, output model.Tensor, tag string, duration time.Duration, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pipeOuts = append(r.pipeOuts, pipelineOutput{output: output, tag: tag, duration: duration, err: err})

	return r.pipeErr
}

func (r *recordOption) Finish() error {
	r.finished++

	return r.finishErr
}

var _ model.PipelineOption = (*recordOption)(nil)

// echoRuntime copies the payload, scaled by ten for the second model.
func echoRuntime() model.Runtime {
	return model.RuntimeFunc(func(_ context.Context, details model.Details, input model.Tensor) (model.Tensor, error) {
		out := make(model.Tensor, len(input))
		copy(out, input)

		if details.Name == "second-model" {
			for i := range out {
				out[i] *= 10
			}
		}

		return out, nil
	})
}

func chainFunc(ctx context.Context, models *pipeline.Invoker, payload model.Tensor) (model.Tensor, string, error) {
	out, err := models.Predict(ctx, "first", payload)
	if err != nil {
		return nil, "", err
	}

	out, err = models.Predict(ctx, "second", out)
	if err != nil {
		return nil, "", err
	}

	return out, "chained", nil
}
