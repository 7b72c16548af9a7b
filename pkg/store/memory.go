package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"tableflip.dev/factlog/pkg/fact"
)

// Memory is a Persistence held in memory, for tests and dry runs. It hands
// out copies, so callers may keep and mutate what they get.
type Memory struct {
	mu       sync.Mutex
	facts    map[int64]*fact.Fact
	lastPK   int64
	now      func() time.Time
	watchers []chan Event
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock fixes the store's notion of now.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory returns a store seeded with facts, which keep their pks.
func NewMemory(facts []*fact.Fact, opts ...MemoryOption) *Memory {
	m := &Memory{
		facts: make(map[int64]*fact.Fact, len(facts)),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, f := range facts {
		m.facts[f.PK] = clean(f)
		m.lastPK = max(m.lastPK, f.PK)
	}
	return m
}

func (m *Memory) snapshot() []*fact.Fact {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]*fact.Fact, 0, len(m.facts))
	for _, f := range m.facts {
		all = append(all, clean(f))
	}
	return all
}

func (m *Memory) Antecedent(_ context.Context, f *fact.Fact) (*fact.Fact, error) {
	return antecedent(m.snapshot(), f), nil
}

func (m *Memory) Subsequent(_ context.Context, f *fact.Fact) (*fact.Fact, error) {
	return subsequent(m.snapshot(), f), nil
}

func (m *Memory) Surrounding(_ context.Context, t time.Time, inclusive bool) ([]*fact.Fact, error) {
	return surrounding(m.snapshot(), t, inclusive), nil
}

func (m *Memory) GetAll(_ context.Context, q fact.Query) ([]*fact.Fact, error) {
	return query(m.snapshot(), q), nil
}

func (m *Memory) Get(_ context.Context, pk int64) (*fact.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.facts[pk]
	if !ok {
		return nil, fmt.Errorf("%w: #%d", ErrNotFound, pk)
	}
	return clean(f), nil
}

func (m *Memory) Now() time.Time {
	return m.now()
}

func (m *Memory) Save(_ context.Context, facts []*fact.Fact) ([]*fact.Fact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make([]*fact.Fact, 0, len(facts))
	var changed []int64
	for _, f := range facts {
		_, stored := m.facts[f.PK]
		if f.Deleted {
			if stored {
				delete(m.facts, f.PK)
				changed = append(changed, f.PK)
			}
			continue
		}
		out := clean(f)
		if !stored {
			m.lastPK++
			out.PK = m.lastPK
		}
		m.facts[out.PK] = out
		saved = append(saved, clean(out))
		changed = append(changed, out.PK)
	}
	for _, ch := range m.watchers {
		for _, pk := range changed {
			select {
			case ch <- Event{Type: EventFactChanged, PK: pk}:
			default:
			}
		}
	}
	return saved, nil
}

// Watch reports every fact a Save touches.
func (m *Memory) Watch(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 64)
	m.mu.Lock()
	m.watchers = append(m.watchers, ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		m.watchers = slices.DeleteFunc(m.watchers, func(c chan Event) bool { return c == ch })
		close(ch)
	}()
	return ch, nil
}
