package upload

import (
	"sync"
	"time"

	"github.com/mkrivosheev/taskgram/pkg/utils"
)

// Key identifies one in-flight attachment burst: a user working on one
// logical resource (a task being created or completed).
type Key struct {
	UserID     uint
	ResourceID string
}

// PromptFunc is the "ask for the next step" side effect, invoked once per
// settled burst with the refs accumulated so far.
type PromptFunc func(key Key, refs []string)

// PersistFunc stores one attachment ref durably. It runs on every event,
// before any timer bookkeeping, so data safety never depends on the
// debounce window. Ordering is the persistence layer's concern; the
// aggregator's pending state is ephemeral.
type PersistFunc func(key Key, ref string) error

// SessionStore keeps the ephemeral pending state for each key. The
// in-memory implementation below is single-process by design; the
// interface exists so a shared timer service can replace it without
// touching callers.
type SessionStore interface {
	// Append records a ref and returns the refreshed token for the key.
	Append(key Key, ref string) (token uint64, count int)
	// TakeIfCurrent removes and returns the pending refs only when token
	// still matches the latest token stored for the key.
	TakeIfCurrent(key Key, token uint64) ([]string, bool)
	// Remove drops the key outright and returns whatever was pending.
	Remove(key Key) []string
}

// Aggregator coalesces a burst of attachment events into a single prompt.
// Each registered delayed action carries a monotonically increasing
// token: cancelling the previous timer is necessary but not sufficient,
// because a just-cancelled action can already be mid-execution when the
// next event registers.
type Aggregator struct {
	store   SessionStore
	persist PersistFunc
	prompt  PromptFunc
	delay   time.Duration

	mu     sync.Mutex
	timers map[Key]*time.Timer
}

func NewAggregator(store SessionStore, delay time.Duration, persist PersistFunc, prompt PromptFunc) *Aggregator {
	return &Aggregator{
		store:   store,
		persist: persist,
		prompt:  prompt,
		delay:   delay,
		timers:  make(map[Key]*time.Timer),
	}
}

// Add handles one attachment event: persist first, then reset the
// delayed prompt for this key.
func (a *Aggregator) Add(key Key, ref string) error {
	if err := a.persist(key, ref); err != nil {
		// an un-persisted ref must never be reported in a prompt
		return err
	}
	token, _ := a.store.Append(key, ref)

	a.mu.Lock()
	if t, ok := a.timers[key]; ok {
		t.Stop()
	}
	a.timers[key] = time.AfterFunc(a.delay, func() {
		a.fire(key, token)
	})
	a.mu.Unlock()
	return nil
}

func (a *Aggregator) fire(key Key, token uint64) {
	refs, ok := a.store.TakeIfCurrent(key, token)
	if !ok {
		// superseded by a newer event; stale firings are no-ops
		return
	}
	a.mu.Lock()
	delete(a.timers, key)
	a.mu.Unlock()
	utils.Log.Debugf("upload burst settled for user %d resource %s: %d attachments", key.UserID, key.ResourceID, len(refs))
	a.prompt(key, refs)
}

// Finish ends the surrounding flow explicitly and returns the refs that
// were still pending. No prompt fires afterwards.
func (a *Aggregator) Finish(key Key) []string {
	a.cancelTimer(key)
	return a.store.Remove(key)
}

// Cancel aborts the flow, dropping pending state. Attachments already
// persisted stay persisted.
func (a *Aggregator) Cancel(key Key) {
	a.cancelTimer(key)
	a.store.Remove(key)
}

func (a *Aggregator) cancelTimer(key Key) {
	a.mu.Lock()
	if t, ok := a.timers[key]; ok {
		t.Stop()
		delete(a.timers, key)
	}
	a.mu.Unlock()
}
