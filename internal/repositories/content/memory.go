package content

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/sadaqat12/snapconnect/internal/domain"
	"github.com/sadaqat12/snapconnect/internal/repositories"
)

// MemoryRepository keeps items in process. Every method holds the mutex for
// its whole body, which gives the same per-item atomicity as the guarded
// UPDATE statements of the pgx repository.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[string]*domain.ContentItem
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]*domain.ContentItem),
		now:   time.Now,
	}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) Create(_ context.Context, item domain.ContentItem) (*domain.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ID]; ok {
		return nil, ErrAlreadyExists
	}
	if item.Version == 0 {
		item.Version = 1
	}
	if item.Status == "" {
		item.Status = domain.StatusActive
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = r.now()
	}

	stored := item.Clone()
	r.items[item.ID] = stored
	return stored.Clone(), nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*domain.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.active(id)
	if !ok {
		return nil, ErrNotFound
	}
	return item.Clone(), nil
}

func (r *MemoryRepository) ListActiveByScope(_ context.Context, scopeID string) ([]*domain.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.ContentItem
	for _, item := range r.items {
		if item.ScopeID == scopeID && item.IsActive() {
			out = append(out, item.Clone())
		}
	}
	sortByCreation(out)
	return out, nil
}

func (r *MemoryRepository) AddToSet(_ context.Context, id string, field domain.SetField, userID string) (*domain.ContentItem, bool, error) {
	if !field.Valid() {
		return nil, false, repositories.ErrBadQuery
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.active(id)
	if !ok {
		return nil, false, ErrNotFound
	}
	if !item.InAudience(userID) {
		return nil, false, ErrNotInAudience
	}

	set := setRef(item, field)
	if slices.Contains(*set, userID) {
		return item.Clone(), false, nil
	}
	*set = append(*set, userID)
	item.Version++
	return item.Clone(), true, nil
}

func (r *MemoryRepository) RemoveFromSet(_ context.Context, id string, field domain.SetField, userID string) (*domain.ContentItem, bool, error) {
	if !field.Valid() {
		return nil, false, repositories.ErrBadQuery
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.active(id)
	if !ok {
		return nil, false, ErrNotFound
	}

	set := setRef(item, field)
	idx := slices.Index(*set, userID)
	if idx < 0 {
		if !item.InAudience(userID) {
			return nil, false, ErrNotInAudience
		}
		return item.Clone(), false, nil
	}
	*set = slices.Delete(*set, idx, idx+1)
	item.Version++
	return item.Clone(), true, nil
}

func (r *MemoryRepository) Finalize(_ context.Context, id string, guard FinalizeGuard) (*domain.FinalizedItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.active(id)
	if !ok {
		return nil, ErrNotFound
	}
	if guard.Unsaved && item.IsSaved() {
		return nil, ErrFinalizeRejected
	}
	if guard.ExpiredBy != nil && (item.ExpiresAt == nil || item.ExpiresAt.After(*guard.ExpiredBy)) {
		return nil, ErrFinalizeRejected
	}

	now := guard.Now
	if now.IsZero() {
		now = r.now()
	}
	item.Status = domain.StatusExpired
	item.FinalizedAt = &now
	item.Version++

	return &domain.FinalizedItem{
		ID:          item.ID,
		Kind:        item.Kind,
		ScopeID:     item.ScopeID,
		CreatorID:   item.CreatorID,
		MediaPath:   item.MediaPath,
		Version:     item.Version,
		FinalizedAt: now,
	}, nil
}

func (r *MemoryRepository) SweepCandidates(_ context.Context, now time.Time, limit int) ([]*domain.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.ContentItem
	for _, item := range r.items {
		if !item.IsActive() {
			continue
		}
		if sweepCandidate(item, now) {
			out = append(out, item.Clone())
		}
	}
	sortByCreation(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// sweepCandidate mirrors the SQL filter used by the pgx repository.
func sweepCandidate(item *domain.ContentItem, now time.Time) bool {
	if item.ExpiresAt != nil && !item.ExpiresAt.After(now) {
		return true
	}
	if item.Kind == domain.KindStoryEntry || item.IsSaved() || len(item.ViewedBy) == 0 {
		return false
	}
	for _, member := range item.Audience {
		if member == item.CreatorID {
			continue
		}
		if !slices.Contains(item.ViewedBy, member) {
			return false
		}
	}
	return true
}

func (r *MemoryRepository) MediaReferenced(_ context.Context, path string, excludingID string) (bool, error) {
	if path == "" {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.items {
		if id != excludingID && item.IsActive() && item.MediaPath == path {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) PurgeTombstones(_ context.Context, olderThan time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-olderThan)
	var purged int64
	for id, item := range r.items {
		if item.IsActive() || item.FinalizedAt == nil {
			continue
		}
		if item.FinalizedAt.Before(cutoff) {
			delete(r.items, id)
			purged++
		}
	}
	return purged, nil
}

// Tombstone returns a finalized item, for tests that assert on the terminal
// state.
func (r *MemoryRepository) Tombstone(id string) (*domain.ContentItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.IsActive() {
		return nil, false
	}
	return item.Clone(), true
}

func (r *MemoryRepository) active(id string) (*domain.ContentItem, bool) {
	item, ok := r.items[id]
	if !ok || !item.IsActive() {
		return nil, false
	}
	return item, true
}

func setRef(item *domain.ContentItem, field domain.SetField) *[]string {
	switch field {
	case domain.FieldSavedBy:
		return &item.SavedBy
	case domain.FieldReadBy:
		return &item.ReadBy
	default:
		return &item.ViewedBy
	}
}

func sortByCreation(items []*domain.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

// OwnsScope reports whether any row, tombstones included, still points at
// scopeID.
func (r *MemoryRepository) OwnsScope(scopeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.ScopeID == scopeID {
			return true
		}
	}
	return false
}
