package pipeline

import (
	"errors"
	"fmt"

	"github.com/ib-77/stagepipe/pkg/failure"
	"github.com/ib-77/stagepipe/pkg/gate"
	"github.com/ib-77/stagepipe/pkg/linestore"
)

var (
	ErrInvalidPoolSize = errors.New("invalid pool size")
	ErrMissingInput    = errors.New("input path is required")
	ErrMissingOutput   = errors.New("output path is required")
)

// PoolSizes is the number of workers per stage. Zero skips the stage.
type PoolSizes struct {
	Read    int
	Upper   int
	Replace int
	Write   int
}

// For returns the pool size configured for stage.
func (p PoolSizes) For(stage gate.Stage) int {
	switch stage {
	case gate.Read:
		return p.Read
	case gate.Uppercased:
		return p.Upper
	case gate.Replaced:
		return p.Replace
	case gate.Written:
		return p.Write
	default:
		return 0
	}
}

// Config is everything a Driver needs for one run.
type Config struct {
	Input    string
	Output   string
	Capacity int

	// MaxWorkers bounds each pool; zero or less means no bound.
	MaxWorkers int
	Pools      PoolSizes
}

// Validate reports configuration errors before any worker starts.
func (c Config) Validate() error {
	if c.Input == "" {
		return failure.Config("validate", ErrMissingInput)
	}
	if c.Output == "" {
		return failure.Config("validate", ErrMissingOutput)
	}
	if c.Capacity <= 0 {
		return failure.Config("validate", fmt.Errorf("%w: got %d", linestore.ErrInvalidCapacity, c.Capacity))
	}
	for _, stage := range gate.Stages() {
		n := c.Pools.For(stage)
		if n < 0 {
			return failure.Config("validate", fmt.Errorf("%w: %s has %d", ErrInvalidPoolSize, stage, n))
		}
		if c.MaxWorkers > 0 && n > c.MaxWorkers {
			return failure.Config("validate", fmt.Errorf("%w: %s has %d, limit is %d",
				ErrInvalidPoolSize, stage, n, c.MaxWorkers))
		}
	}
	return nil
}
