// Package pipeline composes model references into a deployable inference pipeline.
//
// A pipeline is declared in two steps. First the models it may call are grouped by role in a Models value,
// then New binds that grouping to a routing function. The routing function receives the grouping as an
// explicit Invoker parameter and can only reach the models it was declared with.
//
// Models are never executed in-process. Every call goes through a model.Runtime supplied at prediction
// time, so the same pipeline definition can be pointed at any serving platform. Errors returned by the
// runtime reach the caller unmodified.
//
// Options implementing model.PipelineOption observe every model output and every pipeline output. The measure,
// drawer, logger and metrics packages provide them.
package pipeline
