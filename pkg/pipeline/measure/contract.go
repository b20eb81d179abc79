package measure

import "time"

// Measure keeps one metric per pipeline or model name.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric accumulates the outcome of the calls made to a pipeline or a model.
type Metric interface {
	AddDuration(elapsed time.Duration)
	AddError()
	AddTag(tag string)
	AVGDuration() time.Duration
	Total() int64
	Errors() int64
	Tags() map[string]int64
}
