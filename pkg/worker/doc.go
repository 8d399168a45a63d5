// Package worker implements the per-stage worker pool.
//
// Workers of one stage do not partition the lines between them. Each worker
// scans the whole index space and races the others through the line's gate;
// whoever wins the claim processes the line. A worker stops after a full pass
// in which it claimed nothing, and the pool has drained once every worker
// has stopped.
package worker
