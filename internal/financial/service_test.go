package financial

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventmis/internal/audit"
	"eventmis/internal/store"
	"eventmis/internal/store/storetest"
)

const actor = "staff@eventmis.com"

func newService(t *testing.T) (*Service, *audit.Service) {
	t.Helper()
	db := storetest.Open(t, &Record{}, &audit.Entry{})
	a := audit.NewService(audit.NewGormRepo(db))
	return NewService(db, store.NewTransactor(db), a), a
}

func amount(v float64) *float64 { return &v }

func TestCreate_DefaultsAndAudit(t *testing.T) {
	svc, a := newService(t)
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }

	rec, err := svc.Create(context.Background(), actor, CreateInput{EventName: "Santos Baptism", Amount: amount(3200), Category: "Catering"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.Type != TypeExpense || rec.Status != StatusPending || !rec.Date.Equal(now) {
		t.Fatalf("unexpected defaults: %+v", rec)
	}
	es, _ := a.List(context.Background())
	if len(es) != 1 || es[0].Entity != "FinancialRecord" || es[0].Action != audit.ActionCreate {
		t.Fatalf("expected one CREATE FinancialRecord entry, got %+v", es)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	bad := []CreateInput{
		{Amount: amount(1), Category: "Venue"},
		{EventName: "x", Category: "Venue"},
		{EventName: "x", Amount: amount(0), Category: "Venue"},
		{EventName: "x", Amount: amount(10), Category: "Flowers"},
		{EventName: "x", Amount: amount(10), Category: "Venue", Type: "Refund"},
		{EventName: "x", Amount: amount(10), Category: "Venue", Status: "Overdue"},
		{EventName: "x", Amount: amount(10), Category: "Venue", Date: "next week"},
	}
	for i, in := range bad {
		if _, err := svc.Create(ctx, actor, in); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("case %d: expected ErrInvalidArgument, got %v", i, err)
		}
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc, a := newService(t)
	ctx := context.Background()
	rec, _ := svc.Create(ctx, actor, CreateInput{EventName: "Gala", Amount: amount(100), Category: "Venue"})

	paid := "Paid"
	got, err := svc.Update(ctx, actor, rec.ID, UpdateInput{Status: &paid, Amount: amount(150)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != StatusPaid || got.Amount != 150 || got.EventName != "Gala" {
		t.Fatalf("unexpected update result: %+v", got)
	}

	if err := svc.Delete(ctx, actor, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, actor, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	es, _ := a.List(ctx)
	if len(es) != 3 || es[0].Action != audit.ActionDelete {
		t.Fatalf("expected CREATE, UPDATE, DELETE entries, got %d", len(es))
	}
}

func TestList_DateDescending(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, d := range []string{"2025-01-10", "2025-03-01", "2025-02-14"} {
		if _, err := svc.Create(ctx, actor, CreateInput{EventName: d, Amount: amount(1), Category: "Venue", Date: d}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	got, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got[0].EventName != "2025-03-01" || got[2].EventName != "2025-01-10" {
		t.Fatalf("unexpected order: %s, %s, %s", got[0].EventName, got[1].EventName, got[2].EventName)
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize([]Record{
		{Type: TypeIncome, Amount: 25000, Category: CategoryVenue},
		{Type: TypeExpense, Amount: 4999.75, Category: CategoryCatering},
		{Type: TypeExpense, Amount: 1000.25, Category: CategoryCatering},
	})
	if got.Income != 25000 || got.Expense != 6000 || got.Net != 19000 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.ByCategory[CategoryCatering] != 6000 || got.Count != 3 {
		t.Fatalf("unexpected category sums: %+v", got.ByCategory)
	}
}
