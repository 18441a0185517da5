package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNoRows reports that a write matched no row.
var ErrNoRows = errors.New("store: no rows affected")

// UpdateAll overwrites every column of row, matched by its primary key.
// Unlike gorm's Save it never falls back to an insert, so a row removed by a
// concurrent transaction stays removed and the caller gets ErrNoRows.
func UpdateAll(ctx context.Context, db *gorm.DB, row any) error {
	res := Conn(ctx, db).Model(row).Select("*").Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRows
	}
	return nil
}
