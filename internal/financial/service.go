package financial

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"eventmis/internal/audit"
	"eventmis/internal/store"
	"eventmis/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("financial record not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

type Auditor interface {
	Record(ctx context.Context, action audit.Action, entity, entityID, details, actor string, changes any) error
}

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

type CreateInput struct {
	Type        string   `json:"type"`
	EventName   string   `json:"eventName"`
	Amount      *float64 `json:"amount"`
	Category    string   `json:"category"`
	Status      string   `json:"status"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
}

// UpdateInput is a partial update; nil keeps the stored value.
type UpdateInput struct {
	Type        *string  `json:"type"`
	EventName   *string  `json:"eventName"`
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
	Status      *string  `json:"status"`
	Date        *string  `json:"date"`
	Description *string  `json:"description"`
}

func (s *Service) Create(ctx context.Context, actor string, in CreateInput) (Record, error) {
	if strings.TrimSpace(in.EventName) == "" || in.Amount == nil || strings.TrimSpace(in.Category) == "" {
		return Record{}, fmt.Errorf("%w: missing required fields: eventName, amount, category", ErrInvalidArgument)
	}
	now := s.clock().UTC()
	rec := Record{
		ID:          uuid.NewString(),
		Type:        Type(orDefault(in.Type, string(TypeExpense))),
		EventName:   strings.TrimSpace(in.EventName),
		Amount:      *in.Amount,
		Category:    Category(strings.TrimSpace(in.Category)),
		Status:      Status(orDefault(in.Status, string(StatusPending))),
		Date:        now,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if strings.TrimSpace(in.Date) != "" {
		d, _, err := utils.ParseDate(in.Date)
		if err != nil {
			return Record{}, fmt.Errorf("%w: date: %v", ErrInvalidArgument, err)
		}
		rec.Date = d
	}
	if err := validate(rec); err != nil {
		return Record{}, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := store.Conn(ctx, s.db).Create(&rec).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, audit.ActionCreate, audit.EntityFinancialRecord, rec.ID,
			"Created financial record: "+rec.EventName, actor, rec)
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// List returns records, most recent date first.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	out := []Record{}
	if err := store.Conn(ctx, s.db).Order("date DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return find(ctx, s.db, id)
}

func (s *Service) Update(ctx context.Context, actor, id string, in UpdateInput) (Record, error) {
	if strings.TrimSpace(id) == "" {
		return Record{}, fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	var out Record
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		before, err := find(ctx, s.db, id)
		if err != nil {
			return err
		}
		after := before
		if in.Type != nil {
			after.Type = Type(strings.TrimSpace(*in.Type))
		}
		if in.EventName != nil {
			if strings.TrimSpace(*in.EventName) == "" {
				return fmt.Errorf("%w: eventName cannot be empty", ErrInvalidArgument)
			}
			after.EventName = strings.TrimSpace(*in.EventName)
		}
		if in.Amount != nil {
			after.Amount = *in.Amount
		}
		if in.Category != nil {
			after.Category = Category(strings.TrimSpace(*in.Category))
		}
		if in.Status != nil {
			after.Status = Status(strings.TrimSpace(*in.Status))
		}
		if in.Date != nil {
			d, _, err := utils.ParseDate(*in.Date)
			if err != nil {
				return fmt.Errorf("%w: date: %v", ErrInvalidArgument, err)
			}
			after.Date = d
		}
		if in.Description != nil {
			after.Description = *in.Description
		}
		if err := validate(after); err != nil {
			return err
		}

		if err := store.UpdateAll(ctx, s.db, &after); err != nil {
			if errors.Is(err, store.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		out = after
		return s.audit.Record(ctx, audit.ActionUpdate, audit.EntityFinancialRecord, after.ID,
			"Updated financial record: "+after.EventName, actor, audit.BeforeAfter{Before: before, After: after})
	})
	if err != nil {
		return Record{}, err
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, actor, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := find(ctx, s.db, id)
		if err != nil {
			return err
		}
		res := store.Conn(ctx, s.db).Where("id = ?", id).Delete(&Record{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return s.audit.Record(ctx, audit.ActionDelete, audit.EntityFinancialRecord, id,
			"Deleted financial record: "+existing.EventName, actor, existing)
	})
}

// Totals sums every record. Amounts are rounded to centavos.
func (s *Service) Totals(ctx context.Context) (Totals, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return Totals{}, err
	}
	return Summarize(recs), nil
}

func Summarize(recs []Record) Totals {
	out := Totals{ByCategory: map[Category]float64{}, Count: len(recs)}
	for _, r := range recs {
		switch r.Type {
		case TypeIncome:
			out.Income += r.Amount
		case TypeExpense:
			out.Expense += r.Amount
		}
		out.ByCategory[r.Category] += r.Amount
	}
	out.Income = round2(out.Income)
	out.Expense = round2(out.Expense)
	out.Net = round2(out.Income - out.Expense)
	for k, v := range out.ByCategory {
		out.ByCategory[k] = round2(v)
	}
	return out
}

func find(ctx context.Context, db *gorm.DB, id string) (Record, error) {
	var r Record
	if err := store.Conn(ctx, db).Where("id = ?", id).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return r, nil
}

func validate(r Record) error {
	if !r.Type.Valid() {
		return fmt.Errorf("%w: type must be Income or Expense", ErrInvalidArgument)
	}
	if !(r.Amount > 0) || math.IsInf(r.Amount, 0) {
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidArgument)
	}
	if !r.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidArgument, r.Category)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: status must be one of Pending, Paid, Received", ErrInvalidArgument)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
