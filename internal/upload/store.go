package upload

import "sync"

type pending struct {
	refs  []string
	token uint64
}

// MemStore is the default SessionStore: a mutex-guarded map plus a
// process-wide monotonic token source. A restart loses only un-fired
// prompts, never persisted attachments.
type MemStore struct {
	mu      sync.Mutex
	entries map[Key]*pending
	next    uint64
}

func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[Key]*pending)}
}

func (s *MemStore) Append(key Key, ref string) (uint64, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &pending{}
		s.entries[key] = e
	}
	e.refs = append(e.refs, ref)
	s.next++
	e.token = s.next
	return e.token, len(e.refs)
}

func (s *MemStore) TakeIfCurrent(key Key, token uint64) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.token != token {
		return nil, false
	}
	delete(s.entries, key)
	return e.refs, true
}

func (s *MemStore) Remove(key Key) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	delete(s.entries, key)
	return e.refs
}
