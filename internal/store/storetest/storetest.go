// Package storetest opens throwaway SQLite databases for package tests.
package storetest

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"eventmis/internal/store"

	"gorm.io/gorm"
)

// Open returns an in-memory database private to t with the given models migrated.
func Open(t testing.TB, models ...any) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := store.OpenSQLite(dsn, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := store.Migrate(db, models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(db) })
	return db
}
