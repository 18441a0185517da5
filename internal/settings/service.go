package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eventmis/internal/audit"
	"eventmis/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidArgument = errors.New("invalid argument")

type Auditor interface {
	Record(ctx context.Context, action audit.Action, entity, entityID, details, actor string, changes any) error
}

// Service reads and writes the single settings row.
type Service struct {
	db    *gorm.DB
	tx    *store.Transactor
	audit Auditor
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *gorm.DB, tx *store.Transactor, auditor Auditor) *Service {
	return &Service{db: db, tx: tx, audit: auditor, clock: time.Now}
}

// Get returns the settings row, creating it with defaults on first use.
func (s *Service) Get(ctx context.Context) (AppSettings, error) {
	var out AppSettings
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.load(ctx)
		return err
	})
	return out, err
}

// Save merges patch over the stored row. Keys not present keep their value;
// unknown keys are rejected.
func (s *Service) Save(ctx context.Context, actor string, patch json.RawMessage) (AppSettings, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil || fields == nil {
		return AppSettings{}, fmt.Errorf("%w: settings must be a JSON object", ErrInvalidArgument)
	}
	for _, k := range []string{"id", "createdAt", "updatedAt"} {
		delete(fields, k)
	}

	var out AppSettings
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		before, err := s.load(ctx)
		if err != nil {
			return err
		}
		after, err := merge(before, fields)
		if err != nil {
			return err
		}
		if err := validate(after); err != nil {
			return err
		}
		after.UpdatedAt = s.clock().UTC()
		if err := store.UpdateAll(ctx, s.db, &after); err != nil {
			return err
		}
		out = after
		return s.audit.Record(ctx, audit.ActionUpdate, audit.EntityAppSettings, fmt.Sprint(after.ID),
			"Updated system settings", actor, audit.BeforeAfter{Before: before, After: after})
	})
	if err != nil {
		return AppSettings{}, err
	}
	return out, nil
}

// load reads the settings row, inserting the defaults first when it is
// missing. The row always has id SingletonID, so racing first reads insert at
// most one row.
func (s *Service) load(ctx context.Context) (AppSettings, error) {
	row, err := s.find(ctx)
	if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
		return row, err
	}
	if err := s.insertDefaults(ctx); err != nil {
		return AppSettings{}, err
	}
	return s.find(ctx)
}

func (s *Service) find(ctx context.Context) (AppSettings, error) {
	var row AppSettings
	err := store.Conn(ctx, s.db).Where("id = ?", SingletonID).First(&row).Error
	return row, err
}

func (s *Service) insertDefaults(ctx context.Context) error {
	row := Defaults()
	row.ID = SingletonID
	now := s.clock().UTC()
	row.CreatedAt, row.UpdatedAt = now, now
	return store.Conn(ctx, s.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func merge(base AppSettings, fields map[string]json.RawMessage) (AppSettings, error) {
	raw, err := json.Marshal(base)
	if err != nil {
		return AppSettings{}, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return AppSettings{}, err
	}
	for k, v := range fields {
		if _, ok := m[k]; !ok {
			return AppSettings{}, fmt.Errorf("%w: unknown setting %q", ErrInvalidArgument, k)
		}
		m[k] = v
	}
	merged, err := json.Marshal(m)
	if err != nil {
		return AppSettings{}, err
	}
	var out AppSettings
	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return AppSettings{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	out.ID = base.ID
	out.CreatedAt = base.CreatedAt
	return out, nil
}

func validate(s AppSettings) error {
	if s.TaxRate < 0 || s.TaxRate > 100 {
		return fmt.Errorf("%w: taxRate must be between 0 and 100", ErrInvalidArgument)
	}
	for name, v := range map[string]float64{
		"basePriceBasic":     s.BasePriceBasic,
		"basePriceStandard":  s.BasePriceStandard,
		"basePricePremium":   s.BasePricePremium,
		"basePriceDeluxe":    s.BasePriceDeluxe,
		"additionalGuestFee": s.AdditionalGuestFee,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidArgument, name)
		}
	}
	if s.IncludedGuests < 0 || s.ReminderDays < 0 || s.MinAdvanceBookingDays < 0 {
		return fmt.Errorf("%w: day and guest counts must not be negative", ErrInvalidArgument)
	}
	if s.MaxGuestsPerEvent < 1 {
		return fmt.Errorf("%w: maxGuestsPerEvent must be at least 1", ErrInvalidArgument)
	}
	return nil
}
