package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Kumar-s75/DisasterOps/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu        sync.Mutex
	centers   map[string]model.ReliefCenter
	zones     map[string]model.DisasterZone
	solutions map[string]model.AllocationSolution
	solOrder  []string // insertion order, newest last
}

func NewMemory() *Memory {
	return &Memory{
		centers:   map[string]model.ReliefCenter{},
		zones:     map[string]model.DisasterZone{},
		solutions: map[string]model.AllocationSolution{},
	}
}

func (m *Memory) CreateCenter(ctx context.Context, c model.ReliefCenter) (model.ReliefCenter, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	if c.Location.ID == "" {
		c.Location.ID = uuid.NewString()
	}
	c.Location.Kind = model.KindReliefCenter
	m.centers[c.Location.ID] = c
	return c, nil
}

func (m *Memory) GetCenter(ctx context.Context, id string) (model.ReliefCenter, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	c, ok := m.centers[id]
	if !ok { return model.ReliefCenter{}, ErrNotFound }
	return c, nil
}

func (m *Memory) ListCenters(ctx context.Context) ([]model.ReliefCenter, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	out := make([]model.ReliefCenter, 0, len(m.centers))
	for _, c := range m.centers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location.ID < out[j].Location.ID })
	return out, nil
}

func (m *Memory) UpdateCenterResources(ctx context.Context, id string, resources []model.Resource) (model.ReliefCenter, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	c, ok := m.centers[id]
	if !ok { return model.ReliefCenter{}, ErrNotFound }
	c.Resources = append([]model.Resource(nil), resources...)
	m.centers[id] = c
	return c, nil
}

func (m *Memory) CreateZone(ctx context.Context, z model.DisasterZone) (model.DisasterZone, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	if z.Location.ID == "" {
		z.Location.ID = uuid.NewString()
	}
	z.Location.Kind = model.KindDisasterZone
	m.zones[z.Location.ID] = z
	return z, nil
}

func (m *Memory) GetZone(ctx context.Context, id string) (model.DisasterZone, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	z, ok := m.zones[id]
	if !ok { return model.DisasterZone{}, ErrNotFound }
	return z, nil
}

func (m *Memory) ListZones(ctx context.Context) ([]model.DisasterZone, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	out := make([]model.DisasterZone, 0, len(m.zones))
	for _, z := range m.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location.ID < out[j].Location.ID })
	return out, nil
}

func (m *Memory) DeleteZone(ctx context.Context, id string) error {
	m.mu.Lock(); defer m.mu.Unlock()
	if _, ok := m.zones[id]; !ok { return ErrNotFound }
	delete(m.zones, id)
	return nil
}

func (m *Memory) SaveSolution(ctx context.Context, s model.AllocationSolution) error {
	m.mu.Lock(); defer m.mu.Unlock()
	if _, ok := m.solutions[s.ID]; !ok {
		m.solOrder = append(m.solOrder, s.ID)
	}
	m.solutions[s.ID] = s
	return nil
}

func (m *Memory) GetSolution(ctx context.Context, id string) (model.AllocationSolution, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	s, ok := m.solutions[id]
	if !ok { return model.AllocationSolution{}, ErrNotFound }
	return s, nil
}

// ListSolutions returns recent runs newest first, optionally filtered by
// algorithm name.
func (m *Memory) ListSolutions(ctx context.Context, algorithm string, limit int) ([]model.AllocationSolution, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	if limit <= 0 { limit = 50 }
	out := []model.AllocationSolution{}
	for i := len(m.solOrder) - 1; i >= 0 && len(out) < limit; i-- {
		s := m.solutions[m.solOrder[i]]
		if algorithm == "" || s.Algorithm == algorithm {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
