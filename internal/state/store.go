package state

import (
	"sync"

	"go.uber.org/zap"
)

// Kind groups actions whose responses compete for the same state slice.
type Kind string

const (
	KindWeather Kind = "weather"
	KindVideo   Kind = "video"
	KindSave    Kind = "save"
	KindUpdate  Kind = "update"
	KindDelete  Kind = "delete"
	KindHistory Kind = "history"
	KindExport  Kind = "export"
)

// Ticket identifies one in-flight action.
type Ticket struct {
	Kind       Kind
	Generation uint64
}

type Store struct {
	mu          sync.RWMutex
	state       State
	generations map[Kind]uint64
	logger      *zap.Logger
}

func NewStore(logger *zap.Logger) *Store {
	return &Store{
		generations: make(map[Kind]uint64),
		logger:      logger,
	}
}

// Begin starts an action of the given kind: it supersedes any in-flight
// action of that kind and clears the error.
func (s *Store) Begin(kind Kind) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generations[kind]++
	s.state = Reduce(s.state, ErrorCleared{})

	return Ticket{Kind: kind, Generation: s.generations[kind]}
}

// Current reports whether t is still the latest action of its kind.
func (s *Store) Current(t Ticket) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generations[t.Kind] == t.Generation
}

// Commit applies events on behalf of t. Nothing is applied and false is
// returned when a newer action of the same kind has begun since.
func (s *Store) Commit(t Ticket, events ...Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generations[t.Kind] != t.Generation {
		s.logger.Debug("Discarding stale action result",
			zap.String("kind", string(t.Kind)),
			zap.Uint64("generation", t.Generation),
			zap.Uint64("latest", s.generations[t.Kind]))
		return false
	}

	for _, e := range events {
		s.state = Reduce(s.state, e)
	}
	return true
}

// Apply runs events unconditionally, for direct input edits.
func (s *Store) Apply(events ...Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		s.state = Reduce(s.state, e)
	}
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}
