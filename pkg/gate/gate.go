package gate

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ib-77/stagepipe/pkg/failure"
)

var (
	ErrNotClaimed = errors.New("stage completed without a claim")
	ErrStageOrder = errors.New("stage completed out of order")
)

// Stage is the highest stage completed for a line.
type Stage int32

const (
	Loaded Stage = iota
	Read
	Uppercased
	Replaced
	Written
)

// String returns the string representation of the stage
func (s Stage) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Read:
		return "read"
	case Uppercased:
		return "upper"
	case Replaced:
		return "replace"
	case Written:
		return "write"
	default:
		return fmt.Sprintf("stage(%d)", int32(s))
	}
}

// Prev returns the marker a line must carry before s may claim it.
func (s Stage) Prev() Stage {
	return s - 1
}

// Valid reports whether s is one of the four pipeline stages.
func (s Stage) Valid() bool {
	return s >= Read && s <= Written
}

// Stages lists the pipeline stages in execution order.
func Stages() []Stage {
	return []Stage{Read, Uppercased, Replaced, Written}
}

const claimedBit = 1

// Gate tracks one line's completed stage and who currently owns it.
// The marker and the claim live in a single word so that the eligibility
// check and the claim are one compare-and-swap.
type Gate struct {
	state atomic.Int32 // stage<<1 | claimedBit
}

func pack(s Stage, claimed bool) int32 {
	v := int32(s) << 1
	if claimed {
		v |= claimedBit
	}
	return v
}

func New(initial Stage) *Gate {
	g := &Gate{}
	g.state.Store(pack(initial, false))
	return g
}

// TryClaim takes exclusive ownership of the line for stage s. It succeeds
// for exactly one caller and only while the line sits unclaimed at s.Prev().
// It never blocks.
func (g *Gate) TryClaim(s Stage) bool {
	if !s.Valid() {
		return false
	}
	return g.state.CompareAndSwap(pack(s.Prev(), false), pack(s.Prev(), true))
}

// Complete advances the marker to s and releases the claim. Any state other
// than "claimed at s.Prev()" is a synchronization defect.
func (g *Gate) Complete(s Stage) error {
	if !s.Valid() {
		return failure.Internal("complete", fmt.Errorf("%w: %s is not a pipeline stage", ErrStageOrder, s))
	}
	if g.state.CompareAndSwap(pack(s.Prev(), true), pack(s, false)) {
		return nil
	}

	cur := g.state.Load()
	at, claimed := Stage(cur>>1), cur&claimedBit != 0
	switch {
	case at == s.Prev() && !claimed:
		return failure.Internal("complete", fmt.Errorf("%w: %s", ErrNotClaimed, s))
	case at >= s:
		return failure.Internal("complete", fmt.Errorf("%w: %s completed twice (at %s)", ErrStageOrder, s, at))
	default:
		return failure.Internal("complete", fmt.Errorf("%w: %s after %s", ErrStageOrder, s, at))
	}
}

// Stage returns the highest completed stage.
func (g *Gate) Stage() Stage {
	return Stage(g.state.Load() >> 1)
}

// Claimed reports whether a worker currently owns the line.
func (g *Gate) Claimed() bool {
	return g.state.Load()&claimedBit != 0
}
