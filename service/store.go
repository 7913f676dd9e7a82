package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Vecinus/vecinus/config"
	"github.com/Vecinus/vecinus/model"
)

// ActaStore is an in-memory, ordered store of minutes documents. Newly
// published actas are prepended, so the slice is always most-recent-first.
// In production, this should be replaced with a database
type ActaStore struct {
	actas    []model.Acta
	mu       sync.RWMutex
	maxActas int // Maximum actas to keep, 0 = unlimited
}

var (
	globalStore *ActaStore
	storeOnce   sync.Once
)

// NewActaStore creates a standalone store keeping at most maxActas entries,
// 0 for unlimited.
func NewActaStore(maxActas int) *ActaStore {
	if maxActas < 0 {
		maxActas = 0
	}
	return &ActaStore{maxActas: maxActas}
}

// InitActaStore initializes the global acta store with configuration
func InitActaStore(cfg *config.StoreConfig) {
	storeOnce.Do(func() {
		maxActas := cfg.MaxActas
		if maxActas < 0 {
			maxActas = 0
		}
		globalStore = &ActaStore{
			maxActas: maxActas,
		}
		slog.Info("acta store initialized", "max_actas", maxActas)
	})
}

// GetActaStore returns the global acta store. An access before InitActaStore
// settles the singleton on defaults; the shared Once keeps a concurrent Init
// from replacing a store already handed out.
func GetActaStore() *ActaStore {
	storeOnce.Do(func() {
		globalStore = &ActaStore{
			maxActas: 100, // Default: keep 100 actas
		}
		slog.Warn("acta store accessed before initialization, using defaults")
	})
	return globalStore
}

// Prepend inserts a newly published acta at the head of the collection.
func (s *ActaStore) Prepend(acta model.Acta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acta.UpdatedAt = time.Now()
	s.actas = append([]model.Acta{acta}, s.actas...)
	s.trimLocked()
}

// Replace swaps the stored acta matching the given one's ID, keeping its
// position and the collection length. Returns false when no entry matches.
func (s *ActaStore) Replace(acta model.Acta) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.actas {
		if s.actas[i].ID == acta.ID {
			acta.UpdatedAt = time.Now()
			s.actas[i] = acta
			return true
		}
	}
	return false
}

// Get returns the acta with the given id, or false when absent.
func (s *ActaStore) Get(id string) (model.Acta, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.actas {
		if s.actas[i].ID == id {
			return s.actas[i], true
		}
	}
	return model.Acta{}, false
}

// ListByCommunity returns the community's actas, most recent first.
func (s *ActaStore) ListByCommunity(community string) []model.Acta {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Acta
	for i := range s.actas {
		if s.actas[i].Community == community {
			result = append(result, s.actas[i])
		}
	}
	return result
}

// Delete removes the acta with the given id.
func (s *ActaStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.actas {
		if s.actas[i].ID == id {
			s.actas = append(s.actas[:i], s.actas[i+1:]...)
			return
		}
	}
}

// trimLocked drops the oldest entries when the store exceeds maxActas.
// Must be called with lock held
func (s *ActaStore) trimLocked() {
	if s.maxActas <= 0 {
		return // Unlimited
	}

	for len(s.actas) > s.maxActas {
		oldest := s.actas[len(s.actas)-1]
		slog.Info("auto-cleaning old acta",
			"acta_id", oldest.ID,
			"created_at", oldest.CreatedAt,
		)
		s.actas = s.actas[:len(s.actas)-1]
	}
}

// Count returns the number of actas in the store
func (s *ActaStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.actas)
}

// Seed loads an initial set of actas, most recent first. Used at startup to
// load the demo data until real persistence lands.
func (s *ActaStore) Seed(actas []model.Acta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actas = append(s.actas, actas...)
	s.trimLocked()
}
