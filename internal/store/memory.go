package store

import (
	"context"
	"sync"

	"github.com/tourneyops/match-engine/internal/match"
)

// Memory is an in-process Store for tests and single-node deployments.
type Memory struct {
	mu      sync.Mutex
	records map[string]Snapshot
	subs    map[string]map[int]chan<- Snapshot
	nextSub int
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]Snapshot),
		subs:    make(map[string]map[int]chan<- Snapshot),
	}
}

func (s *Memory) Create(_ context.Context, m match.Match) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[m.ID]; ok {
		return Snapshot{}, ErrConflict
	}
	snap := Snapshot{Version: 1, Match: m.Clone()}
	s.records[m.ID] = snap
	return snap, nil
}

func (s *Memory) Read(_ context.Context, id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.records[id]
	if !ok {
		return Snapshot{}, match.ErrNotFound
	}
	return Snapshot{Version: snap.Version, Match: snap.Match.Clone()}, nil
}

func (s *Memory) ConditionalWrite(_ context.Context, id string, expected int, m match.Match) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.records[id]
	if !ok {
		return Snapshot{}, match.ErrNotFound
	}
	if cur.Version != expected {
		return Snapshot{}, ErrConflict
	}
	snap := Snapshot{Version: expected + 1, Match: m.Clone()}
	s.records[id] = snap
	s.fanout(id, snap)
	return snap, nil
}

func (s *Memory) Subscribe(id string, out chan<- Snapshot) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs[id] == nil {
		s.subs[id] = make(map[int]chan<- Snapshot)
	}
	key := s.nextSub
	s.nextSub++
	s.subs[id][key] = out

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[id], key)
	}, nil
}

// fanout is called with the lock held; sends are non-blocking so a stalled
// subscriber only misses updates, it cannot stall a write.
func (s *Memory) fanout(id string, snap Snapshot) {
	for _, ch := range s.subs[id] {
		select {
		case ch <- snap:
		default:
		}
	}
}
