// Package pipeline drives one run: load the input into a line store, serve
// Read, Uppercase, Replace and Write with one worker pool each, and write the
// result. A stage starts only after the previous pool has fully drained. A
// stage with zero workers is passed through by the driver itself.
//
// Every step returns a rop.Result; Execute folds the final result into a
// process exit status.
package pipeline
