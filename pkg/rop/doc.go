// Package rop provides the Result type used to thread a pipeline run through
// its steps railway style: once a step fails or is cancelled, the remaining
// steps are bypassed and the failure travels to the end unchanged.
//
// Subpackages:
// - solo: single-value primitives (Switch, Map, Try, Tee, Finally)
// - chain: fluent wrapper used by the pipeline driver
package rop
