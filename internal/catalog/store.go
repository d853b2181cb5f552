package catalog

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/javajoker/storefront-backend/internal/models"
)

var ErrNotLoaded = errors.New("catalog not loaded")

// Store holds the catalog snapshot served to shoppers. Readers always get
// the last successfully loaded snapshot; a failed reload leaves it intact.
type Store struct {
	mu       sync.RWMutex
	products []models.Product
	byID     map[uint64]int
	loadedAt time.Time
}

func NewStore() *Store {
	return &Store{byID: map[uint64]int{}}
}

// Replace swaps in a new snapshot. The slice is copied.
func (s *Store) Replace(products []models.Product) {
	snapshot := slices.Clone(products)
	index := make(map[uint64]int, len(snapshot))
	for i, p := range snapshot {
		index[p.ID] = i
	}

	s.mu.Lock()
	s.products = snapshot
	s.byID = index
	s.loadedAt = time.Now()
	s.mu.Unlock()
}

// Products returns the current snapshot. Callers must not modify it.
func (s *Store) Products() ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.loadedAt.IsZero() {
		return nil, ErrNotLoaded
	}
	return s.products, nil
}

func (s *Store) Get(id uint64) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return models.Product{}, false
	}
	return s.products[i], true
}

func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
