// Package activity keeps the diagnostic record of every
// (stage, worker, line, before, after) event of a pipeline run.
package activity
