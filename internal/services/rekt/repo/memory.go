package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"rektwatch/internal/services/rekt/domain"

	"github.com/google/uuid"
)

// Memory keeps events in a slice sorted by (Timestamp, SourceEventID)
type Memory struct {
	mu   sync.RWMutex
	seen map[string]struct{}
	evs  []domain.Event
}

var _ domain.Store = (*Memory)(nil)

// NewMemory returns an empty store
func NewMemory() *Memory { return &Memory{seen: map[string]struct{}{}} }

func before(a domain.Event, ts time.Time, id string) bool {
	if !a.Timestamp.Equal(ts) {
		return a.Timestamp.Before(ts)
	}
	return a.SourceEventID < id
}

// Exists implements domain.Store
func (m *Memory) Exists(_ context.Context, sourceID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.seen[sourceID]
	return ok, nil
}

// InsertIfAbsent implements domain.Store
func (m *Memory) InsertIfAbsent(_ context.Context, e domain.Event) (bool, error) {
	if err := checkEvent(e); err != nil {
		return false, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Timestamp = e.Timestamp.UTC()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.seen[e.SourceEventID]; dup {
		return false, nil
	}
	m.seen[e.SourceEventID] = struct{}{}
	i := sort.Search(len(m.evs), func(i int) bool { return !before(m.evs[i], e.Timestamp, e.SourceEventID) })
	m.evs = append(m.evs, domain.Event{})
	copy(m.evs[i+1:], m.evs[i:])
	m.evs[i] = e
	return true, nil
}

// InRange implements domain.Store
func (m *Memory) InRange(_ context.Context, start, end time.Time) ([]domain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lo := sort.Search(len(m.evs), func(i int) bool { return !m.evs[i].Timestamp.Before(start) })
	hi := sort.Search(len(m.evs), func(i int) bool { return !m.evs[i].Timestamp.Before(end) })
	if lo >= hi {
		return []domain.Event{}, nil
	}
	return append([]domain.Event(nil), m.evs[lo:hi]...), nil
}

// All implements domain.Store
func (m *Memory) All(_ context.Context) ([]domain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Event{}, m.evs...), nil
}

// Count implements domain.Store
func (m *Memory) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.evs)), nil
}
