package store_test

import (
	"context"
	"errors"
	"testing"

	"eventmis/internal/store"
	"eventmis/internal/store/storetest"
)

type widget struct {
	ID   string `gorm:"primaryKey"`
	Name string
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	db := storetest.Open(t, &widget{})
	tr := store.NewTransactor(db)

	err := tr.WithinTx(context.Background(), func(ctx context.Context) error {
		if !store.InTx(ctx) {
			t.Fatalf("expected tx on ctx")
		}
		return store.Conn(ctx, db).Create(&widget{ID: "w1", Name: "a"}).Error
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var n int64
	db.Model(&widget{}).Count(&n)
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db := storetest.Open(t, &widget{})
	tr := store.NewTransactor(db)
	boom := errors.New("boom")

	err := tr.WithinTx(context.Background(), func(ctx context.Context) error {
		if err := store.Conn(ctx, db).Create(&widget{ID: "w1"}).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var n int64
	db.Model(&widget{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected rollback, got %d rows", n)
	}
}

func TestWithinTx_NestedJoinsOuter(t *testing.T) {
	db := storetest.Open(t, &widget{})
	tr := store.NewTransactor(db)
	boom := errors.New("outer failed")

	err := tr.WithinTx(context.Background(), func(ctx context.Context) error {
		if err := tr.WithinTx(ctx, func(ctx context.Context) error {
			return store.Conn(ctx, db).Create(&widget{ID: "inner"}).Error
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected outer error, got %v", err)
	}

	var n int64
	db.Model(&widget{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected inner write rolled back with outer, got %d rows", n)
	}
}
