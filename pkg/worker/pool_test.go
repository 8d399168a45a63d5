package worker

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/stagepipe/pkg/activity"
	"github.com/ib-77/stagepipe/pkg/failure"
	"github.com/ib-77/stagepipe/pkg/gate"
	"github.com/ib-77/stagepipe/pkg/linestore"
)

func loadStore(t *testing.T, input string) *linestore.Store {
	t.Helper()
	s := linestore.New(linestore.DefaultCapacity)
	_, err := s.LoadFrom(strings.NewReader(input))
	require.NoError(t, err)
	return s
}

func runStages(t *testing.T, s *linestore.Store, log *activity.Log, sizes ...int) {
	t.Helper()
	for i, stage := range gate.Stages() {
		stats, err := New(stage, sizes[i]).Run(context.Background(), s, log)
		require.NoError(t, err, "stage %s", stage)
		require.NoError(t, s.Verify(stage))
		assert.Equal(t, sizes[i], stats.Workers)
	}
}

func TestRun_SingleWorkerAllStages(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "hello world\nFoo Bar\n\nBaz")
	log := activity.New(uuid.New(), nil)

	runStages(t, s, log, 1, 1, 1, 1)

	assert.Equal(t, []string{"HELLO_WORLD", "FOO_BAR", "", "BAZ"}, s.Contents())
	// three non-blank lines, four stages each
	assert.Equal(t, 12, log.Len())
}

func TestRun_EveryLineClaimedOncePerStage(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := range 100 {
		fmt.Fprintf(&b, "line %d of the input\n", i)
	}

	for _, n := range []int{1, 2, 4, 8, 16} {
		t.Run(fmt.Sprintf("workers=%d", n), func(t *testing.T) {
			t.Parallel()

			s := loadStore(t, b.String())
			log := activity.New(uuid.New(), nil)
			runStages(t, s, log, n, n, n, n)

			for i := range s.Len() {
				entries := log.ForLine(i)
				require.Len(t, entries, 4, "line %d", i)
				for j, e := range entries {
					assert.Equal(t, gate.Stages()[j], e.Stage, "line %d entry %d", i, j)
					assert.GreaterOrEqual(t, e.Worker, 1)
					assert.LessOrEqual(t, e.Worker, n)
				}
				assert.Equal(t, fmt.Sprintf("LINE_%d_OF_THE_INPUT", i), s.Get(i))
			}
		})
	}
}

func TestRun_StatsCountClaims(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "a\nb\n\nc")
	log := activity.New(uuid.New(), nil)

	stats, err := New(gate.Read, 3).Run(context.Background(), s, log)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.Claimed)
	assert.GreaterOrEqual(t, stats.Passes, int64(3), "each worker makes at least one pass")
	assert.Positive(t, stats.Misses)
}

func TestRun_LaterStageWaitsForPredecessor(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "a b\nc d")
	log := activity.New(uuid.New(), nil)

	// nothing has been read yet, so uppercase finds no eligible line
	stats, err := New(gate.Uppercased, 2).Run(context.Background(), s, log)
	require.NoError(t, err)
	assert.Zero(t, stats.Claimed)
	assert.Equal(t, []string{"a b", "c d"}, s.Contents())
	assert.Error(t, s.Verify(gate.Uppercased))
}

func TestRun_EmptyPool(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "a")
	_, err := New(gate.Read, 0).Run(context.Background(), s, activity.New(uuid.New(), nil))
	assert.ErrorIs(t, err, ErrEmptyPool)
	assert.Equal(t, failure.KindConfig, failure.KindOf(err))
}

func TestRun_InvalidStage(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "a")
	_, err := New(gate.Loaded, 1).Run(context.Background(), s, activity.New(uuid.New(), nil))
	assert.True(t, failure.IsInternal(err))
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := loadStore(t, "a\nb")
	_, err := New(gate.Read, 2).Run(ctx, s, activity.New(uuid.New(), nil))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, gate.Loaded, s.Stage(0))
}

// doubleCompleter completes every claim twice to simulate a broken store.
type doubleCompleter struct {
	*linestore.Store
}

func (d doubleCompleter) Complete(i int, stage gate.Stage) error {
	if err := d.Store.Complete(i, stage); err != nil {
		return err
	}
	return d.Store.Complete(i, stage)
}

func TestRun_InternalErrorStopsPool(t *testing.T) {
	t.Parallel()

	s := loadStore(t, "a\nb\nc")
	_, err := New(gate.Read, 2).Run(context.Background(), doubleCompleter{s}, activity.New(uuid.New(), nil))
	require.Error(t, err)
	assert.True(t, failure.IsInternal(err))
	assert.ErrorIs(t, err, gate.ErrStageOrder)
}
