package store

import (
	"context"
	"sort"
	"sync"

	"github.com/fairyhunter13/product-catalog-service/internal/model"
)

// Memory is a mutex-guarded in-process Store. It assigns ids the way the SQL
// store does (monotonic, starting at 1) so handler and integration tests can
// assert on them.
type Memory struct {
	mu     sync.RWMutex
	m      map[int64]model.Product
	nextID int64
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{m: make(map[int64]model.Product)}
}

func (s *Memory) FindAll(_ context.Context) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Memory) FindByID(_ context.Context, id int64) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	if !ok {
		return model.Product{}, model.ErrNotFound
	}
	return p, nil
}

func (s *Memory) Insert(_ context.Context, p model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.m[p.ID] = p
	return p, nil
}

func (s *Memory) Update(_ context.Context, p model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[p.ID]; !ok {
		return model.Product{}, model.ErrNotFound
	}
	s.m[p.ID] = p
	return p, nil
}

func (s *Memory) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return model.ErrNotFound
	}
	delete(s.m, id)
	return nil
}
