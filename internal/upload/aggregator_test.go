package upload

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type promptRecorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *promptRecorder) prompt(_ Key, refs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, refs)
}

func (r *promptRecorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.calls))
	copy(out, r.calls)
	return out
}

type persistRecorder struct {
	mu      sync.Mutex
	refs    []string
	failOn  string
	failErr error
}

func (r *persistRecorder) persist(_ Key, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ref == r.failOn {
		return r.failErr
	}
	r.refs = append(r.refs, ref)
	return nil
}

func newAggregator(delay time.Duration) (*Aggregator, *persistRecorder, *promptRecorder) {
	pe := &persistRecorder{}
	pr := &promptRecorder{}
	return NewAggregator(NewMemStore(), delay, pe.persist, pr.prompt), pe, pr
}

func waitForPrompts(t *testing.T, pr *promptRecorder, want int) [][]string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if calls := pr.snapshot(); len(calls) >= want {
			return calls
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d prompts, got %d", want, len(pr.snapshot()))
	return nil
}

func TestBurstCollapsesIntoOnePrompt(t *testing.T) {
	agg, pe, pr := newAggregator(60 * time.Millisecond)
	key := Key{UserID: 7, ResourceID: "task-1"}

	require.NoError(t, agg.Add(key, "a1"))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, agg.Add(key, "a2"))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, agg.Add(key, "a3"))

	calls := waitForPrompts(t, pr, 1)
	require.Len(t, calls, 1)
	require.Equal(t, []string{"a1", "a2", "a3"}, calls[0])

	// no second prompt for the same burst
	time.Sleep(100 * time.Millisecond)
	require.Len(t, pr.snapshot(), 1)

	require.Equal(t, []string{"a1", "a2", "a3"}, pe.refs)
}

func TestGapLongerThanDelaySplitsBursts(t *testing.T) {
	agg, _, pr := newAggregator(40 * time.Millisecond)
	key := Key{UserID: 7, ResourceID: "task-1"}

	require.NoError(t, agg.Add(key, "a1"))
	waitForPrompts(t, pr, 1)
	require.NoError(t, agg.Add(key, "a2"))

	calls := waitForPrompts(t, pr, 2)
	require.Equal(t, []string{"a1"}, calls[0])
	require.Equal(t, []string{"a2"}, calls[1])
}

func TestKeysDebounceIndependently(t *testing.T) {
	agg, _, pr := newAggregator(50 * time.Millisecond)
	k1 := Key{UserID: 1, ResourceID: "task-1"}
	k2 := Key{UserID: 2, ResourceID: "task-1"}

	require.NoError(t, agg.Add(k1, "x"))
	require.NoError(t, agg.Add(k2, "y"))

	calls := waitForPrompts(t, pr, 2)
	require.ElementsMatch(t, [][]string{{"x"}, {"y"}}, calls)
}

func TestFinishReturnsPendingAndSuppressesPrompt(t *testing.T) {
	agg, _, pr := newAggregator(50 * time.Millisecond)
	key := Key{UserID: 7, ResourceID: "task-1"}

	require.NoError(t, agg.Add(key, "a1"))
	require.NoError(t, agg.Add(key, "a2"))
	refs := agg.Finish(key)
	require.Equal(t, []string{"a1", "a2"}, refs)

	time.Sleep(100 * time.Millisecond)
	require.Empty(t, pr.snapshot())
}

func TestCancelDropsPendingButKeepsPersisted(t *testing.T) {
	agg, pe, pr := newAggregator(50 * time.Millisecond)
	key := Key{UserID: 7, ResourceID: "task-1"}

	require.NoError(t, agg.Add(key, "a1"))
	agg.Cancel(key)

	time.Sleep(100 * time.Millisecond)
	require.Empty(t, pr.snapshot())
	require.Equal(t, []string{"a1"}, pe.refs)
}

func TestPersistFailureKeepsRefOutOfPrompt(t *testing.T) {
	pe := &persistRecorder{failOn: "bad", failErr: errors.New("disk full")}
	pr := &promptRecorder{}
	agg := NewAggregator(NewMemStore(), 40*time.Millisecond, pe.persist, pr.prompt)
	key := Key{UserID: 7, ResourceID: "task-1"}

	require.NoError(t, agg.Add(key, "a1"))
	require.Error(t, agg.Add(key, "bad"))

	calls := waitForPrompts(t, pr, 1)
	require.Equal(t, []string{"a1"}, calls[0])
}
