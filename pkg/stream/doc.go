// Package stream runs a batch of payloads through a channel based pipeline of steps.
//
// A root step produces values, one to one steps transform them with a configurable number of goroutines and a
// sink consumes them. Every step runs in its own goroutine and reports errors on its own channel. Run merges those
// channels and stops the whole pipeline on the first error.
package stream
