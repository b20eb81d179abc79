package metrics_test

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-tempo/pkg/classifier"
	"github.com/askiada/go-tempo/pkg/pipeline/metrics"
	"github.com/askiada/go-tempo/pkg/pipeline/model"
)

func TestPipelineMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewPedanticRegistry()

	pipe, _, _, err := classifier.GetTempoArtifacts("artifacts", metrics.PipelineMetrics(reg))
	require.NoError(t, err)

	rt := model.RuntimeFunc(func(_ context.Context, details model.Details, input model.Tensor) (model.Tensor, error) {
		if details.Name == classifier.SKLearnModelName {
			return input, nil
		}

		if input[0] < 0 {
			return nil, assert.AnError
		}

		return model.Tensor{0.7}, nil
	})

	for _, payload := range []model.Tensor{{1}, {1}, {0}, {-1}} {
		_, _, _ = pipe.Predict(context.Background(), rt, payload)
	}

	expected := `
# HELP tempo_pipeline_predictions_total Total number of pipeline predictions by routing tag
# TYPE tempo_pipeline_predictions_total counter
tempo_pipeline_predictions_total{pipeline="classifier",tag="sklearn prediction"} 2
tempo_pipeline_predictions_total{pipeline="classifier",tag="xgboost prediction"} 1
# HELP tempo_pipeline_prediction_errors_total Total number of pipeline predictions that failed
# TYPE tempo_pipeline_prediction_errors_total counter
tempo_pipeline_prediction_errors_total{pipeline="classifier"} 1
# HELP tempo_model_requests_total Total number of model invocations made by a pipeline
# TYPE tempo_model_requests_total counter
tempo_model_requests_total{model="test-iris-sklearn",pipeline="classifier",platform="sklearn",role="sklearn"} 4
tempo_model_requests_total{model="test-iris-xgboost",pipeline="classifier",platform="xgboost",role="xgboost"} 2
# HELP tempo_model_request_errors_total Total number of model invocations that failed
# TYPE tempo_model_request_errors_total counter
tempo_model_request_errors_total{model="test-iris-xgboost",pipeline="classifier",platform="xgboost",role="xgboost"} 1
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"tempo_pipeline_predictions_total",
		"tempo_pipeline_prediction_errors_total",
		"tempo_model_requests_total",
		"tempo_model_request_errors_total",
	)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "tempo_model_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, pipe.Finish())
}

func TestPipelineMetricsRegisterTwice(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	_, _, _, err := classifier.GetTempoArtifacts("artifacts", metrics.PipelineMetrics(reg))
	require.NoError(t, err)

	_, _, _, err = classifier.GetTempoArtifacts("artifacts", metrics.PipelineMetrics(reg))
	require.Error(t, err)
}
