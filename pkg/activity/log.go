package activity

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ib-77/stagepipe/pkg/gate"
)

// DriverWorker is the worker ordinal recorded when the driver passes a line
// through a stage that has no pool.
const DriverWorker = 0

// Entry records one stage transition of one line.
type Entry struct {
	Seq    uint64
	RunID  uuid.UUID
	Time   time.Time
	Stage  gate.Stage
	Worker int
	Line   int
	Before string
	After  string
}

// Skipped reports whether the driver passed the line through without a worker.
func (e Entry) Skipped() bool {
	return e.Worker == DriverWorker
}

var labels = map[gate.Stage]string{
	gate.Read:       "Read",
	gate.Uppercased: "Upper",
	gate.Replaced:   "Replace",
	gate.Written:    "Write",
}

// Label renders the thread-type-and-id column, e.g. "Upper_2".
func (e Entry) Label() string {
	name, ok := labels[e.Stage]
	if !ok {
		name = e.Stage.String()
	}
	if e.Skipped() {
		return name + "_-"
	}
	return fmt.Sprintf("%s_%d", name, e.Worker)
}

func (e Entry) String() string {
	if e.Skipped() {
		return fmt.Sprintf("%-12s skipped line %d %q", e.Label(), e.Line, e.Before)
	}
	return fmt.Sprintf("%-12s line %d %q -> %q", e.Label(), e.Line, e.Before, e.After)
}

// Log is an append-only record of stage transitions, safe for concurrent
// use. Sequence numbers follow append order and each entry is mirrored to
// the logger while the lock is held, so the console never reorders entries.
type Log struct {
	runID  uuid.UUID
	logger *zap.Logger

	mu      sync.Mutex
	entries []Entry
}

func New(runID uuid.UUID, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{runID: runID, logger: logger}
}

func (l *Log) RunID() uuid.UUID {
	return l.runID
}

// Append records a transition and returns the stored entry.
func (l *Log) Append(stage gate.Stage, worker, line int, before, after string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{
		Seq:    uint64(len(l.entries)) + 1,
		RunID:  l.runID,
		Time:   time.Now().UTC(),
		Stage:  stage,
		Worker: worker,
		Line:   line,
		Before: before,
		After:  after,
	}
	l.entries = append(l.entries, e)

	l.logger.Info(e.String(),
		zap.Uint64("seq", e.Seq),
		zap.String("stage", stage.String()),
		zap.Int("worker", worker),
		zap.Int("line", line),
	)
	return e
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of every entry in append order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// ForLine returns the entries of one line in append order.
func (l *Log) ForLine(line int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Entry
	for _, e := range l.entries {
		if e.Line == line {
			out = append(out, e)
		}
	}
	return out
}
