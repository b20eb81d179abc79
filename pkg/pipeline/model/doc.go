// Package model provides the data structures shared by pipelines and the runtimes that execute them.
// It defines model references, their metadata, the tensors exchanged with a runtime,
// and the options a pipeline notifies while it runs.
package model
