// Package config loads stagepipe settings from the environment
// (kelseyhightower/envconfig) and from the `run` command line. Flags win over
// environment variables. Everything is validated before any worker starts.
//
// Environment variables:
//   - STAGEPIPE_OUTPUT: output file (default output.txt)
//   - STAGEPIPE_CAPACITY: line store capacity (default 100)
//   - STAGEPIPE_MAX_WORKERS: upper bound for any pool size (default 1024)
//   - STAGEPIPE_METRICS_FILE: prometheus text file written after a run
//   - STAGEPIPE_LOG_LEVEL, STAGEPIPE_LOG_DEV: logger settings
package config
