package model

import "time"

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New(pipeline Details, models map[string]Details) error
	// OnModelOutput runs everytime a model invoked by the pipeline returns.
	// output is nil when err is not.
	OnModelOutput(pipeline Details, role string, details Details, output Tensor, duration time.Duration, err error) error
	// OnPipelineOutput runs everytime the pipeline returns a prediction or an error.
	OnPipelineOutput(pipeline Details, output Tensor, tag string, duration time.Duration, err error) error
	// Finish runs once the caller is done with the pipeline.
	Finish() error
}
