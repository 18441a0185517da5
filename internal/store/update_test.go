package store_test

import (
	"context"
	"errors"
	"testing"

	"eventmis/internal/store"
	"eventmis/internal/store/storetest"
)

func TestUpdateAll_WritesExistingRow(t *testing.T) {
	db := storetest.Open(t, &widget{})
	ctx := context.Background()
	if err := db.Create(&widget{ID: "w1", Name: "a"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := store.UpdateAll(ctx, db, &widget{ID: "w1", Name: ""}); err != nil {
		t.Fatalf("update: %v", err)
	}
	var got widget
	db.First(&got, "id = ?", "w1")
	if got.Name != "" {
		t.Fatalf("zero value not written: %+v", got)
	}
}

func TestUpdateAll_NeverInserts(t *testing.T) {
	db := storetest.Open(t, &widget{})

	err := store.UpdateAll(context.Background(), db, &widget{ID: "gone", Name: "b"})
	if !errors.Is(err, store.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
	var n int64
	db.Model(&widget{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected no rows, got %d", n)
	}
}
