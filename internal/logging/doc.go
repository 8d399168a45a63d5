// Package logging builds the zap logger used across stagepipe.
//
// Two modes:
//   - Development: console output, one human-readable line per event
//   - Production: JSON output for machine parsing
//
// Example Usage:
//
//	logger := logging.NewOrNop(logging.DefaultConfig())
//	logger.Info("stage drained", zap.String("stage", "upper"))
package logging
