package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ib-77/stagepipe/pkg/activity"
	"github.com/ib-77/stagepipe/pkg/failure"
	"github.com/ib-77/stagepipe/pkg/gate"
	"github.com/ib-77/stagepipe/pkg/transform"
)

var ErrEmptyPool = errors.New("pool needs at least one worker")

// Claims is the view of the line store a worker needs.
type Claims interface {
	Len() int
	TryClaim(i int, stage gate.Stage) bool
	Get(i int) string
	Set(i int, content string)
	Complete(i int, stage gate.Stage) error
}

// Recorder receives one entry per completed claim.
type Recorder interface {
	Append(stage gate.Stage, worker, line int, before, after string) activity.Entry
}

// Pool runs Size workers for one stage.
type Pool struct {
	Stage     gate.Stage
	Size      int
	Transform transform.Func
}

func New(stage gate.Stage, size int) *Pool {
	return &Pool{Stage: stage, Size: size, Transform: transform.For(stage)}
}

// Stats summarizes a drained pool.
type Stats struct {
	Stage   gate.Stage
	Workers int
	Claimed int64
	Misses  int64
	Passes  int64
	Elapsed time.Duration
}

type counters struct {
	claimed atomic.Int64
	misses  atomic.Int64
	passes  atomic.Int64
}

// Run starts the workers and blocks until every one of them has finished a
// pass without claiming anything. The first Complete failure stops the whole
// pool and is returned; so is cancellation of ctx.
func (p *Pool) Run(ctx context.Context, claims Claims, rec Recorder) (Stats, error) {
	stats := Stats{Stage: p.Stage, Workers: p.Size}
	if p.Size <= 0 {
		return stats, failure.Config("pool", fmt.Errorf("%w: %s has %d", ErrEmptyPool, p.Stage, p.Size))
	}
	if !p.Stage.Valid() {
		return stats, failure.Internal("pool", fmt.Errorf("%w: %s", gate.ErrStageOrder, p.Stage))
	}

	fn := p.Transform
	if fn == nil {
		fn = transform.For(p.Stage)
	}

	var c counters
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for id := 1; id <= p.Size; id++ {
		g.Go(func() error {
			return locomotive(gctx, id, p.Stage, fn, claims, rec, &c)
		})
	}
	err := g.Wait()

	stats.Claimed = c.claimed.Load()
	stats.Misses = c.misses.Load()
	stats.Passes = c.passes.Load()
	stats.Elapsed = time.Since(start)
	return stats, err
}

// locomotive is one worker: scan every line in index order, take what is
// eligible, and stop after a pass that took nothing.
func locomotive(ctx context.Context, id int, stage gate.Stage, fn transform.Func,
	claims Claims, rec Recorder, c *counters) error {

	n := claims.Len()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.passes.Add(1)

		took := 0
		for i := 0; i < n; i++ {
			if !claims.TryClaim(i, stage) {
				c.misses.Add(1)
				continue
			}

			before := claims.Get(i)
			after := fn(before)
			claims.Set(i, after)
			rec.Append(stage, id, i, before, after)

			if err := claims.Complete(i, stage); err != nil {
				return err
			}
			took++
			c.claimed.Add(1)

			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if took == 0 {
			return nil
		}
		runtime.Gosched()
	}
}
