package reporting

import (
	"context"
	"strings"
	"sync"

	"eventmis/internal/audit"
	"eventmis/internal/events"
	"eventmis/internal/financial"
	"eventmis/internal/messaging"
	"eventmis/internal/store"

	"gorm.io/gorm"
)

// Repository abstracts the reads reporting needs.
// Audit entries come back newest first.
type Repository interface {
	ListEntries(ctx context.Context) ([]audit.Entry, error)
	EventStatusCounts(ctx context.Context) (map[string]int, error)
	PendingWebsiteBookings(ctx context.Context) (int, error)
	ArchivedCount(ctx context.Context) (int, error)
	FinancialTotals(ctx context.Context) (income, expense float64, err error)
	UnreadInbox(ctx context.Context) (int, error)
}

type GormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo { return &GormRepo{db: db} }

func (r *GormRepo) ListEntries(ctx context.Context) ([]audit.Entry, error) {
	return audit.NewGormRepo(r.db).List(ctx)
}

func (r *GormRepo) EventStatusCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		EventStatus string
		N           int
	}
	err := store.Conn(ctx, r.db).Model(&events.Event{}).
		Select("event_status, COUNT(*) AS n").
		Group("event_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.EventStatus] = row.N
	}
	return out, nil
}

func (r *GormRepo) PendingWebsiteBookings(ctx context.Context) (int, error) {
	var n int64
	err := store.Conn(ctx, r.db).Model(&events.Event{}).
		Where("event_status = ? AND remarks LIKE ?", events.StatusPending, "%"+events.WebsiteMarker+"%").
		Count(&n).Error
	return int(n), err
}

func (r *GormRepo) ArchivedCount(ctx context.Context) (int, error) {
	var n int64
	err := store.Conn(ctx, r.db).Model(&events.ArchivedEvent{}).Count(&n).Error
	return int(n), err
}

func (r *GormRepo) FinancialTotals(ctx context.Context) (float64, float64, error) {
	var rows []struct {
		Type  string
		Total float64
	}
	err := store.Conn(ctx, r.db).Model(&financial.Record{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	var income, expense float64
	for _, row := range rows {
		switch financial.Type(row.Type) {
		case financial.TypeIncome:
			income += row.Total
		case financial.TypeExpense:
			expense += row.Total
		}
	}
	return income, expense, nil
}

func (r *GormRepo) UnreadInbox(ctx context.Context) (int, error) {
	var n int64
	err := store.Conn(ctx, r.db).Model(&messaging.Message{}).
		Where("type = ? AND is_read = ?", messaging.TypeInbox, false).
		Count(&n).Error
	return int(n), err
}

// MemoryRepo is a simple in-memory reporting repository for tests.
type MemoryRepo struct {
	mu sync.Mutex

	Entries  []audit.Entry
	Events   []events.Event
	Archived int
	Records  []financial.Record
	Messages []messaging.Message
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListEntries(ctx context.Context) ([]audit.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]audit.Entry, len(r.Entries))
	copy(out, r.Entries)
	return out, nil
}

func (r *MemoryRepo) EventStatusCounts(ctx context.Context) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for _, e := range r.Events {
		out[string(e.EventStatus)]++
	}
	return out, nil
}

func (r *MemoryRepo) PendingWebsiteBookings(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.Events {
		if e.EventStatus == events.StatusPending && strings.Contains(e.Remarks, events.WebsiteMarker) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) ArchivedCount(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Archived, nil
}

func (r *MemoryRepo) FinancialTotals(ctx context.Context) (float64, float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var income, expense float64
	for _, rec := range r.Records {
		switch rec.Type {
		case financial.TypeIncome:
			income += rec.Amount
		case financial.TypeExpense:
			expense += rec.Amount
		}
	}
	return income, expense, nil
}

func (r *MemoryRepo) UnreadInbox(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.Messages {
		if m.Type == messaging.TypeInbox && !m.Read {
			n++
		}
	}
	return n, nil
}
