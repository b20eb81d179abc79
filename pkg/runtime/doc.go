// Package runtime implements model.Runtime against a serving platform speaking the Open Inference
// Protocol (also called the V2 inference protocol).
//
// The client only sends inference requests. Hosting models and moving their artifacts around is the job
// of the platform.
package runtime
