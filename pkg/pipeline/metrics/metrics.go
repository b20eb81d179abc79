// Package metrics exports pipeline and model calls as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/askiada/go-tempo/pkg/pipeline/model"
)

const namespace = "tempo"

type collectors struct {
	modelRequests    *prometheus.CounterVec
	modelErrors      *prometheus.CounterVec
	modelDuration    *prometheus.HistogramVec
	pipelineRequests *prometheus.CounterVec
	pipelineErrors   *prometheus.CounterVec
	pipelineDuration *prometheus.HistogramVec
}

func newCollectors() *collectors {
	return &collectors{
		modelRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_requests_total",
			Help:      "Total number of model invocations made by a pipeline",
		},
			[]string{"pipeline", "role", "model", "platform"},
		),
		modelErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_request_errors_total",
			Help:      "Total number of model invocations that failed",
		},
			[]string{"pipeline", "role", "model", "platform"},
		),
		modelDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_request_duration_seconds",
			Help:      "Duration of model invocations",
			Buckets:   prometheus.DefBuckets,
		},
			[]string{"pipeline", "role", "model"},
		),
		pipelineRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_predictions_total",
			Help:      "Total number of pipeline predictions by routing tag",
		},
			[]string{"pipeline", "tag"},
		),
		pipelineErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_prediction_errors_total",
			Help:      "Total number of pipeline predictions that failed",
		},
			[]string{"pipeline"},
		),
		pipelineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_prediction_duration_seconds",
			Help:      "Duration of pipeline predictions",
			Buckets:   prometheus.DefBuckets,
		},
			[]string{"pipeline"},
		),
	}
}

func (c *collectors) all() []prometheus.Collector {
	return []prometheus.Collector{
		c.modelRequests,
		c.modelErrors,
		c.modelDuration,
		c.pipelineRequests,
		c.pipelineErrors,
		c.pipelineDuration,
	}
}

type pipelineMetrics struct {
	registerer prometheus.Registerer
	c          *collectors
}

func (pm *pipelineMetrics) New(model.Details, map[string]model.Details) error {
	for _, collector := range pm.c.all() {
		err := pm.registerer.Register(collector)
		if err != nil {
			return errors.Wrap(err, "unable to register collector")
		}
	}

	return nil
}

func (pm *pipelineMetrics) OnModelOutput(pipeline model.Details, role string, details model.Details, _ model.Tensor, duration time.Duration, err error) error {
	pm.c.modelRequests.WithLabelValues(pipeline.Name, role, details.Name, details.Platform.String()).Inc()

	if err != nil {
		pm.c.modelErrors.WithLabelValues(pipeline.Name, role, details.Name, details.Platform.String()).Inc()

		return nil
	}

	pm.c.modelDuration.WithLabelValues(pipeline.Name, role, details.Name).Observe(duration.Seconds())

	return nil
}

func (pm *pipelineMetrics) OnPipelineOutput(pipeline model.Details, _ model.Tensor, tag string, duration time.Duration, err error) error {
	if err != nil {
		pm.c.pipelineErrors.WithLabelValues(pipeline.Name).Inc()

		return nil
	}

	pm.c.pipelineRequests.WithLabelValues(pipeline.Name, tag).Inc()
	pm.c.pipelineDuration.WithLabelValues(pipeline.Name).Observe(duration.Seconds())

	return nil
}

func (pm *pipelineMetrics) Finish() error {
	return nil
}

// PipelineMetrics registers the pipeline collectors on registerer when the pipeline is created.
// One registerer can serve a single pipeline.
func PipelineMetrics(registerer prometheus.Registerer) model.PipelineOption {
	return &pipelineMetrics{
		registerer: registerer,
		c:          newCollectors(),
	}
}
