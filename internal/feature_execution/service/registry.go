package service

import (
	"sync"

	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/domain"
)

// Registry is the in-memory ordered feature list for one open project.
// While a session is live it is the single source of truth; the fallback
// store only mirrors it.
type Registry struct {
	mu       sync.RWMutex
	features []domain.Feature
}

// NewRegistry creates a registry seeded with an initial feature list.
func NewRegistry(initial []domain.Feature) *Registry {
	features := make([]domain.Feature, len(initial))
	copy(features, initial)
	return &Registry{features: features}
}

// Snapshot returns a copy of the current ordered list.
func (r *Registry) Snapshot() []domain.Feature {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Feature, len(r.features))
	copy(out, r.features)
	return out
}

// Len returns the number of features in the registry.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.features)
}

// Append adds a feature to the end of the list.
func (r *Registry) Append(f domain.Feature) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.features = append(r.features, f)
}

// Reset discards the current list and reseeds it, as when the feature
// history is re-read from the remote store.
func (r *Registry) Reset(features []domain.Feature) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.features = make([]domain.Feature, len(features))
	copy(r.features, features)
}

// Replace swaps the feature with the same id for the updated copy,
// preserving order. It reports whether a match was found.
func (r *Registry) Replace(updated domain.Feature) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.features {
		if r.features[i].ID == updated.ID {
			r.features[i] = updated
			return true
		}
	}
	return false
}
