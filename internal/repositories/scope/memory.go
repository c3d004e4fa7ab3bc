package scope

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sadaqat12/snapconnect/internal/domain"
)

type MemoryRepository struct {
	mu     sync.Mutex
	scopes map[string]*domain.Scope
	// owned reports whether content still references a scope; purge skips
	// those. Nil means "never".
	owned func(scopeID string) bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{scopes: make(map[string]*domain.Scope)}
}

// WithOwnership sets the content check used by PurgeExpired.
func (r *MemoryRepository) WithOwnership(owned func(scopeID string) bool) *MemoryRepository {
	r.owned = owned
	return r
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) Create(_ context.Context, scope domain.Scope) (*domain.Scope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scopes[scope.ID]; ok {
		return nil, ErrAlreadyExists
	}
	return r.store(scope), nil
}

func (r *MemoryRepository) Upsert(_ context.Context, scope domain.Scope) (*domain.Scope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.scopes[scope.ID]; ok {
		if existing.Status != domain.StatusActive {
			return nil, ErrNotFound
		}
		return existing.Clone(), nil
	}
	return r.store(scope), nil
}

func (r *MemoryRepository) store(scope domain.Scope) *domain.Scope {
	if scope.Status == "" {
		scope.Status = domain.StatusActive
	}
	if scope.CreatedAt.IsZero() {
		scope.CreatedAt = time.Now()
	}
	stored := scope.Clone()
	r.scopes[scope.ID] = stored
	return stored.Clone()
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*domain.Scope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	scope, ok := r.scopes[id]
	if !ok || scope.Status != domain.StatusActive {
		return nil, ErrNotFound
	}
	return scope.Clone(), nil
}

func (r *MemoryRepository) AddViewer(_ context.Context, id string, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	scope, ok := r.scopes[id]
	if !ok || scope.Status != domain.StatusActive {
		return false, nil
	}
	if !scope.IsMember(userID) || slices.Contains(scope.Viewers, userID) {
		return false, nil
	}
	scope.Viewers = append(scope.Viewers, userID)
	return true, nil
}

func (r *MemoryRepository) ActiveStoryFor(_ context.Context, creatorID string, now time.Time) (*domain.Scope, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *domain.Scope
	for _, scope := range r.scopes {
		if scope.Kind != domain.ScopeStory || scope.CreatorID != creatorID || !scope.IsActive(now) {
			continue
		}
		if latest == nil || scope.CreatedAt.After(latest.CreatedAt) {
			latest = scope
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest.Clone(), nil
}

func (r *MemoryRepository) ExpireStories(_ context.Context, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for id, scope := range r.scopes {
		if scope.Kind != domain.ScopeStory || scope.Status != domain.StatusActive || scope.ExpiresAt == nil {
			continue
		}
		if !scope.ExpiresAt.After(now) {
			scope.Status = domain.StatusExpired
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *MemoryRepository) PurgeExpired(_ context.Context, olderThan time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var purged int64
	for id, scope := range r.scopes {
		if scope.Status != domain.StatusExpired || scope.ExpiresAt == nil || !scope.ExpiresAt.Before(cutoff) {
			continue
		}
		if r.owned != nil && r.owned(id) {
			continue
		}
		delete(r.scopes, id)
		purged++
	}
	return purged, nil
}
