// Package logger writes the outputs of a pipeline and of every model it calls to a slog.Logger.
package logger

import (
	"log/slog"
	"time"

	"github.com/askiada/go-tempo/pkg/pipeline/model"
)

type pipelineLogger struct {
	log *slog.Logger
}

func (pl *pipelineLogger) New(pipeline model.Details, models map[string]model.Details) error {
	pl.log.Debug("pipeline declared", "pipeline", pipeline.Name, "uri", pipeline.URI, "models", len(models))

	return nil
}

// OnModelOutput logs intermediate results before the routing function acts on them.
func (pl *pipelineLogger) OnModelOutput(pipeline model.Details, role string, details model.Details, output model.Tensor, duration time.Duration, err error) error {
	if err != nil {
		pl.log.Warn("model failed", "pipeline", pipeline.Name, "role", role, "model", details.Name, "duration", duration, "error", err)

		return nil
	}

	pl.log.Debug("model output", "pipeline", pipeline.Name, "role", role, "model", details.Name, "output", output, "duration", duration)

	return nil
}

func (pl *pipelineLogger) OnPipelineOutput(pipeline model.Details, output model.Tensor, tag string, duration time.Duration, err error) error {
	if err != nil {
		pl.log.Error("pipeline failed", "pipeline", pipeline.Name, "duration", duration, "error", err)

		return nil
	}

	pl.log.Info("pipeline output", "pipeline", pipeline.Name, "tag", tag, "output", output, "duration", duration)

	return nil
}

func (pl *pipelineLogger) Finish() error {
	return nil
}

// PipelineLogger logs through log, slog.Default when log is nil.
func PipelineLogger(log *slog.Logger) model.PipelineOption {
	if log == nil {
		log = slog.Default()
	}

	return &pipelineLogger{log: log}
}
