package audit

import (
	"context"
	"sort"
	"sync"

	"eventmis/internal/store"

	"gorm.io/gorm"
)

// Repository is the persistence contract for audit entries.
//
// It MUST be append-only.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context) ([]Entry, error)
}

// GormRepo stores entries in the audit_trail table.
// Writes join the transaction carried on ctx, if any.
type GormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo { return &GormRepo{db: db} }

func (r *GormRepo) Append(ctx context.Context, e Entry) error {
	return store.Conn(ctx, r.db).Create(&e).Error
}

func (r *GormRepo) List(ctx context.Context) ([]Entry, error) {
	var out []Entry
	err := store.Conn(ctx, r.db).
		Order("timestamp DESC").
		Order("id DESC").
		Find(&out).Error
	return out, err
}

// MemoryRepo is a simple in-memory append-only repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu      sync.Mutex
	entries []Entry

	// FailWith, when set, is returned by Append.
	FailWith error
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Entry, error) {
	out := r.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Entries returns entries in insertion order.
func (r *MemoryRepo) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
