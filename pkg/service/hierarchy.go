// Package service contains the application services behind the HTTP API:
// registration of reusable hierarchies and the run lifecycle facade.
package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/catface996/opstack-executor-sub002/pkg/config"
)

// Hierarchy is a registered, reusable hierarchy definition. The config is
// validated at registration; runs started from it only need a task.
type Hierarchy struct {
	ID        string                  `json:"hierarchy_id"`
	Name      string                  `json:"name,omitempty"`
	Config    *config.HierarchyConfig `json:"hierarchy"`
	CreatedAt time.Time               `json:"created_at"`
}

// HierarchyService stores registered hierarchies in memory.
type HierarchyService struct {
	mu     sync.RWMutex
	items  map[string]*Hierarchy
	logger *slog.Logger
}

// NewHierarchyService creates an empty hierarchy store.
func NewHierarchyService(logger *slog.Logger) *HierarchyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HierarchyService{
		items:  make(map[string]*Hierarchy),
		logger: logger.With("component", "service.hierarchy"),
	}
}

// Create validates and registers a hierarchy definition, returning the stored
// record with its assigned id.
func (s *HierarchyService) Create(name string, cfg *config.HierarchyConfig) (*Hierarchy, error) {
	if err := cfg.ValidateDefinition(); err != nil {
		return nil, err
	}

	h := &Hierarchy{
		ID:        uuid.New().String(),
		Name:      name,
		Config:    cfg,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.items[h.ID] = h
	s.mu.Unlock()

	s.logger.Info("hierarchy registered", "hierarchy_id", h.ID, "teams", len(cfg.Teams))
	return h, nil
}

// Get returns a registered hierarchy, or ErrHierarchyNotFound.
func (s *HierarchyService) Get(id string) (*Hierarchy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.items[id]
	if !ok {
		return nil, ErrHierarchyNotFound
	}
	return h, nil
}

// List returns a page of hierarchies ordered newest first, plus the total
// count. page is 1-based.
func (s *HierarchyService) List(page, size int) ([]*Hierarchy, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	s.mu.RLock()
	all := make([]*Hierarchy, 0, len(s.items))
	for _, h := range s.items {
		all = append(all, h)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	start := (page - 1) * size
	if start >= total {
		return nil, total
	}
	end := start + size
	if end > total {
		end = total
	}
	return all[start:end], total
}
