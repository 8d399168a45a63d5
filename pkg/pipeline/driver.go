package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ib-77/stagepipe/internal/logging"
	"github.com/ib-77/stagepipe/internal/monitoring"
	"github.com/ib-77/stagepipe/pkg/activity"
	"github.com/ib-77/stagepipe/pkg/failure"
	"github.com/ib-77/stagepipe/pkg/gate"
	"github.com/ib-77/stagepipe/pkg/linestore"
	"github.com/ib-77/stagepipe/pkg/rop"
	"github.com/ib-77/stagepipe/pkg/rop/chain"
	"github.com/ib-77/stagepipe/pkg/worker"
)

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger for driver events and the activity log.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics records the run into m.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(d *Driver) {
		d.metrics = m
	}
}

// Driver runs the four stages in order with a full barrier between them.
type Driver struct {
	cfg     Config
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

func New(cfg Config, opts ...Option) *Driver {
	d := &Driver{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// StageReport describes how one stage was served.
type StageReport struct {
	Stage   gate.Stage
	Workers int
	Skipped bool
	Claimed int64
	Misses  int64
	Elapsed time.Duration
}

// Report is the outcome of a successful run.
type Report struct {
	RunID    uuid.UUID
	Lines    int
	Blank    int
	Stages   []StageReport
	Output   string
	Activity *activity.Log
}

// run is the state threaded through the railway steps.
type run struct {
	cfg    Config
	logger *zap.Logger
	store  *linestore.Store
	log    *activity.Log
	stages []StageReport
}

// Run executes validate, load, the four stages and the flush. The first
// failing step short-circuits the rest, so no output file exists unless the
// Write stage drained. Every step keeps the id of the first Result, which is
// the run id carried by the report, the activity log and the log lines.
func (d *Driver) Run(ctx context.Context) rop.Result[*Report] {
	start := rop.Success(d.cfg)
	runID := start.Id()
	logger := d.logger.With(zap.String("run_id", runID.String()))

	validated := chain.Then(chain.Start(ctx, start), func(_ context.Context, cfg Config) rop.Result[*run] {
		if err := cfg.Validate(); err != nil {
			return rop.Fail[*run](err)
		}
		return rop.Success(&run{
			cfg:    cfg,
			logger: logger,
			log:    activity.New(runID, logging.Unfiltered(logger.Named("activity"))),
		})
	})
	loaded := chain.ThenTry(validated, d.load)
	staged := chain.ThenTry(loaded, d.runStages)
	flushed := chain.ThenTry(staged, d.flush)

	return chain.Map(flushed, func(_ context.Context, r *run) *Report {
		return r.report()
	}).Ensure(func(_ context.Context, rep *Report) {
		logger.Info("run complete",
			zap.Int("lines", rep.Lines),
			zap.Int("blank", rep.Blank),
			zap.Int("entries", rep.Activity.Len()),
			zap.String("output", rep.Output))
	}).Result()
}

// Execute runs the pipeline and returns the process exit status.
func (d *Driver) Execute(ctx context.Context) int {
	res := d.Run(ctx)
	logger := d.logger.With(zap.String("run_id", res.Id().String()))

	return chain.Finally(chain.Start(ctx, res),
		func(_ context.Context, _ *Report) int {
			return failure.ExitOK
		},
		func(_ context.Context, err error) int {
			code := failure.ExitCode(err)
			logger.Error("run failed",
				zap.Error(err),
				zap.Stringer("kind", failure.KindOf(err)),
				zap.Int("exit_code", code))
			return code
		},
		func(_ context.Context, err error) int {
			logger.Warn("run cancelled", zap.Error(err))
			return failure.ExitCancelled
		})
}

func (d *Driver) load(_ context.Context, r *run) (*run, error) {
	r.store = linestore.New(r.cfg.Capacity)
	n, err := r.store.Load(r.cfg.Input)
	if err != nil {
		return nil, err
	}

	if d.metrics != nil {
		d.metrics.LinesLoaded.Set(float64(n))
	}
	r.logger.Info("input loaded",
		zap.String("input", r.cfg.Input),
		zap.Int("lines", n),
		zap.Int("blank", r.store.Blanks()),
		zap.Int("capacity", r.store.Capacity()))
	return r, nil
}

func (d *Driver) runStages(ctx context.Context, r *run) (*run, error) {
	for _, stage := range gate.Stages() {
		var (
			rep StageReport
			err error
		)
		if size := r.cfg.Pools.For(stage); size == 0 {
			rep, err = r.skip(ctx, stage)
		} else {
			rep, err = r.drain(ctx, stage, size)
		}
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage, err)
		}
		if err := r.store.Verify(stage); err != nil {
			return nil, err
		}

		r.stages = append(r.stages, rep)
		d.observe(rep)
	}
	return r, nil
}

func (d *Driver) observe(rep StageReport) {
	if d.metrics == nil {
		return
	}
	if rep.Skipped {
		d.metrics.ObserveSkip(rep.Stage.String())
		return
	}
	d.metrics.ObserveStage(rep.Stage.String(), rep.Workers, rep.Claimed, rep.Misses, rep.Elapsed)
}

// drain runs a pool for stage and returns once every worker has exited.
func (r *run) drain(ctx context.Context, stage gate.Stage, size int) (StageReport, error) {
	r.logger.Info("stage started", zap.Stringer("stage", stage), zap.Int("workers", size))

	stats, err := worker.New(stage, size).Run(ctx, r.store, r.log)
	rep := StageReport{
		Stage:   stage,
		Workers: stats.Workers,
		Claimed: stats.Claimed,
		Misses:  stats.Misses,
		Elapsed: stats.Elapsed,
	}
	if err != nil {
		return rep, err
	}

	r.logger.Info("stage drained",
		zap.Stringer("stage", stage),
		zap.Int64("claimed", stats.Claimed),
		zap.Int64("passes", stats.Passes),
		zap.Duration("elapsed", stats.Elapsed))
	return rep, nil
}

// skip advances every eligible line past stage without transforming it.
func (r *run) skip(ctx context.Context, stage gate.Stage) (StageReport, error) {
	r.logger.Warn("stage skipped, no workers", zap.Stringer("stage", stage))

	rep := StageReport{Stage: stage, Skipped: true}
	start := time.Now()
	for i := 0; i < r.store.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if !r.store.TryClaim(i, stage) {
			continue
		}
		content := r.store.Get(i)
		r.log.Append(stage, activity.DriverWorker, i, content, content)
		if err := r.store.Complete(i, stage); err != nil {
			return rep, err
		}
		rep.Claimed++
	}
	rep.Elapsed = time.Since(start)
	return rep, nil
}

func (d *Driver) flush(_ context.Context, r *run) (*run, error) {
	if err := renameio.WriteFile(r.cfg.Output, r.store.Render(), 0o644); err != nil {
		return nil, failure.Resource("flush", err)
	}
	if d.metrics != nil {
		d.metrics.ActivityEntries.Add(float64(r.log.Len()))
	}
	r.logger.Info("output written", zap.String("output", r.cfg.Output))
	return r, nil
}

func (r *run) report() *Report {
	return &Report{
		RunID:    r.log.RunID(),
		Lines:    r.store.Len(),
		Blank:    r.store.Blanks(),
		Stages:   r.stages,
		Output:   r.cfg.Output,
		Activity: r.log,
	}
}
