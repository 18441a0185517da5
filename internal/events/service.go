package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventmis/internal/audit"
	"eventmis/internal/store"
	"eventmis/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("event not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Auditor records one audit entry on the caller's transaction.
type Auditor interface {
	Record(ctx context.Context, action audit.Action, entity, entityID, details, actor string, changes any) error
}

// Observer receives archive/restore outcomes ("ok", "not_found", "error").
type Observer interface {
	LifecycleOutcome(op, outcome string)
}

// Service owns the event lifecycle: create, update, archive, restore and
// permanent delete.
//
// Invariants:
//   - Every mutation and its audit entry commit in one transaction.
//   - Archive and restore move a row between tables atomically; a concurrent
//     second attempt finds nothing to delete and rolls back with ErrNotFound.
type Service struct {
	db       *gorm.DB
	tx       *store.Transactor
	audit    Auditor
	observer Observer
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *gorm.DB, tx *store.Transactor, auditor Auditor) *Service {
	return &Service{db: db, tx: tx, audit: auditor, clock: time.Now}
}

func (s *Service) WithObserver(o Observer) *Service {
	s.observer = o
	return s
}

type CreateInput struct {
	ClientName     string   `json:"clientName"`
	ContactNumber  string   `json:"contactNumber"`
	Email          string   `json:"email"`
	EventTitle     string   `json:"eventTitle"`
	EventTheme     string   `json:"eventTheme"`
	PackageType    string   `json:"packageType"`
	EventDate      string   `json:"eventDate"`
	EventTime      string   `json:"eventTime"`
	Venue          string   `json:"venue"`
	NumberOfGuests *int     `json:"numberOfGuests"`
	PaymentStatus  string   `json:"paymentStatus"`
	TotalAmount    *float64 `json:"totalAmount"`
	Remarks        string   `json:"remarks"`
	EventStatus    string   `json:"eventStatus"`
	Gallery        []string `json:"gallery"`
}

// UpdateInput is a partial update. A nil field keeps the stored value; an
// empty string clears an optional text field and is rejected for required ones.
type UpdateInput struct {
	ClientName     *string   `json:"clientName"`
	ContactNumber  *string   `json:"contactNumber"`
	Email          *string   `json:"email"`
	EventTitle     *string   `json:"eventTitle"`
	EventTheme     *string   `json:"eventTheme"`
	PackageType    *string   `json:"packageType"`
	EventDate      *string   `json:"eventDate"`
	EventTime      *string   `json:"eventTime"`
	Venue          *string   `json:"venue"`
	NumberOfGuests *int      `json:"numberOfGuests"`
	PaymentStatus  *string   `json:"paymentStatus"`
	TotalAmount    *float64  `json:"totalAmount"`
	Remarks        *string   `json:"remarks"`
	EventStatus    *string   `json:"eventStatus"`
	Gallery        *[]string `json:"gallery"`
}

type ListFilter struct {
	ApprovedOnly bool
	Status       string
}

func (s *Service) Create(ctx context.Context, actor string, in CreateInput) (Event, error) {
	b, err := bookingFromInput(in)
	if err != nil {
		return Event{}, err
	}
	now := s.clock().UTC()
	ev := Event{ID: uuid.NewString(), Booking: b, CreatedAt: now, UpdatedAt: now}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := store.Conn(ctx, s.db).Create(&ev).Error; err != nil {
			return err
		}
		return s.audit.Record(ctx, audit.ActionCreate, audit.EntityEvent, ev.ID,
			fmt.Sprintf("Created booking: %s for %s", ev.EventTitle, ev.ClientName), actor, ev)
	})
	if err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Event, error) {
	q := store.Conn(ctx, s.db).Order("created_at DESC").Order("id DESC")
	switch {
	case f.ApprovedOnly:
		q = q.Where("event_status = ?", StatusApproved)
	case strings.TrimSpace(f.Status) != "":
		q = q.Where("event_status = ?", strings.TrimSpace(f.Status))
	}
	out := []Event{}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	return findEvent(ctx, s.db, id)
}

func (s *Service) Update(ctx context.Context, actor, id string, in UpdateInput) (Event, error) {
	if strings.TrimSpace(id) == "" {
		return Event{}, fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	var out Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		before, err := findEvent(ctx, s.db, id)
		if err != nil {
			return err
		}
		after := before
		after.Gallery = append(datatypes.JSONSlice[string]{}, before.Gallery...)
		if err := applyUpdate(&after.Booking, in); err != nil {
			return err
		}
		after.UpdatedAt = s.clock().UTC()

		if err := store.UpdateAll(ctx, s.db, &after); err != nil {
			return notFoundIfGone(err)
		}
		out = after
		return s.audit.Record(ctx, audit.ActionUpdate, audit.EntityEvent, after.ID,
			fmt.Sprintf("Updated booking: %s for %s", after.EventTitle, after.ClientName), actor,
			audit.BeforeAfter{Before: before, After: after})
	})
	if err != nil {
		return Event{}, err
	}
	return out, nil
}

// Archive moves an active event into the archive.
func (s *Service) Archive(ctx context.Context, actor, id string) (ArchivedEvent, error) {
	if strings.TrimSpace(id) == "" {
		return ArchivedEvent{}, fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	var out ArchivedEvent
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ev, err := findEvent(ctx, s.db, id)
		if err != nil {
			return err
		}
		now := s.clock().UTC()
		out = ArchivedEvent{
			ID:              uuid.NewString(),
			OriginalEventID: ev.ID,
			Booking:         ev.Booking,
			ArchivedAt:      now,
			CreatedAt:       ev.CreatedAt,
			UpdatedAt:       now,
		}
		conn := store.Conn(ctx, s.db)
		if err := conn.Create(&out).Error; err != nil {
			return err
		}
		res := conn.Where("id = ?", ev.ID).Delete(&Event{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return s.audit.Record(ctx, audit.ActionArchive, audit.EntityEvent, ev.ID,
			fmt.Sprintf("Archived booking: %s for %s", ev.EventTitle, ev.ClientName), actor, ev)
	})
	s.observe("archive", err)
	if err != nil {
		return ArchivedEvent{}, err
	}
	return out, nil
}

type restoreChanges struct {
	FromArchivedID string `json:"fromArchivedId"`
	Restored       Event  `json:"restored"`
}

// Restore recreates an active event from an archived one. The new event gets a
// fresh id, keeps the original createdAt, and goes back to Pending.
func (s *Service) Restore(ctx context.Context, actor, archivedID string) (Event, error) {
	if strings.TrimSpace(archivedID) == "" {
		return Event{}, fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	var out Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := findArchived(ctx, s.db, archivedID)
		if err != nil {
			return err
		}
		out = Event{
			ID:        uuid.NewString(),
			Booking:   a.Booking,
			CreatedAt: a.CreatedAt,
			UpdatedAt: s.clock().UTC(),
		}
		out.EventStatus = StatusPending
		if out.CreatedAt.IsZero() {
			out.CreatedAt = out.UpdatedAt
		}

		conn := store.Conn(ctx, s.db)
		if err := conn.Create(&out).Error; err != nil {
			return err
		}
		res := conn.Where("id = ?", a.ID).Delete(&ArchivedEvent{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return s.audit.Record(ctx, audit.ActionRestore, audit.EntityEvent, out.ID,
			fmt.Sprintf("Restored booking: %s for %s", out.EventTitle, out.ClientName), actor,
			restoreChanges{FromArchivedID: a.ID, Restored: out})
	})
	s.observe("restore", err)
	if err != nil {
		return Event{}, err
	}
	return out, nil
}

// PermanentDelete removes an archived event for good.
func (s *Service) PermanentDelete(ctx context.Context, actor, archivedID string) (ArchivedEvent, error) {
	if strings.TrimSpace(archivedID) == "" {
		return ArchivedEvent{}, fmt.Errorf("%w: id is required", ErrInvalidArgument)
	}
	var out ArchivedEvent
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := findArchived(ctx, s.db, archivedID)
		if err != nil {
			return err
		}
		res := store.Conn(ctx, s.db).Where("id = ?", a.ID).Delete(&ArchivedEvent{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		out = a
		return s.audit.Record(ctx, audit.ActionDelete, audit.EntityArchivedEvent, a.ID,
			fmt.Sprintf("Permanently deleted archived booking: %s for %s", a.EventTitle, a.ClientName), actor, a)
	})
	s.observe("permanent_delete", err)
	if err != nil {
		return ArchivedEvent{}, err
	}
	return out, nil
}

func (s *Service) ListArchived(ctx context.Context) ([]ArchivedEvent, error) {
	out := []ArchivedEvent{}
	err := store.Conn(ctx, s.db).Order("archived_at DESC").Order("id DESC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) observe(op string, err error) {
	if s.observer == nil {
		return
	}
	switch {
	case err == nil:
		s.observer.LifecycleOutcome(op, "ok")
	case errors.Is(err, ErrNotFound):
		s.observer.LifecycleOutcome(op, "not_found")
	default:
		s.observer.LifecycleOutcome(op, "error")
	}
}

func notFoundIfGone(err error) error {
	if errors.Is(err, store.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func findEvent(ctx context.Context, db *gorm.DB, id string) (Event, error) {
	var ev Event
	if err := store.Conn(ctx, db).Where("id = ?", id).First(&ev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Event{}, ErrNotFound
		}
		return Event{}, err
	}
	if ev.Gallery == nil {
		ev.Gallery = datatypes.JSONSlice[string]{}
	}
	return ev, nil
}

func findArchived(ctx context.Context, db *gorm.DB, id string) (ArchivedEvent, error) {
	var a ArchivedEvent
	if err := store.Conn(ctx, db).Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ArchivedEvent{}, ErrNotFound
		}
		return ArchivedEvent{}, err
	}
	if a.Gallery == nil {
		a.Gallery = datatypes.JSONSlice[string]{}
	}
	return a, nil
}

// bookingFromInput validates a create request and applies defaults.
func bookingFromInput(in CreateInput) (Booking, error) {
	var missing []string
	for _, f := range []struct{ name, v string }{
		{"clientName", in.ClientName},
		{"eventTitle", in.EventTitle},
		{"eventDate", in.EventDate},
		{"venue", in.Venue},
	} {
		if strings.TrimSpace(f.v) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return Booking{}, fmt.Errorf("%w: missing required fields: %s", ErrInvalidArgument, strings.Join(missing, ", "))
	}

	date, _, err := utils.ParseDate(in.EventDate)
	if err != nil {
		return Booking{}, fmt.Errorf("%w: eventDate: %v", ErrInvalidArgument, err)
	}

	b := Booking{
		ClientName:     strings.TrimSpace(in.ClientName),
		ContactNumber:  strings.TrimSpace(in.ContactNumber),
		Email:          strings.TrimSpace(in.Email),
		EventTitle:     strings.TrimSpace(in.EventTitle),
		EventTheme:     orDefault(in.EventTheme, DefaultTheme),
		PackageType:    orDefault(in.PackageType, DefaultPackage),
		EventDate:      date,
		EventTime:      strings.TrimSpace(in.EventTime),
		Venue:          strings.TrimSpace(in.Venue),
		NumberOfGuests: DefaultNumberOfGuests,
		PaymentStatus:  PaymentStatus(orDefault(in.PaymentStatus, string(PaymentPending))),
		TotalAmount:    DefaultTotalAmount,
		Remarks:        in.Remarks,
		EventStatus:    Status(orDefault(in.EventStatus, string(StatusPending))),
		Gallery:        normalizeGallery(in.Gallery),
	}
	if in.NumberOfGuests != nil {
		b.NumberOfGuests = *in.NumberOfGuests
	}
	if in.TotalAmount != nil {
		b.TotalAmount = *in.TotalAmount
	}
	return b, validateBooking(b)
}

func applyUpdate(b *Booking, in UpdateInput) error {
	required := func(field string, dst *string, v *string) error {
		if v == nil {
			return nil
		}
		if strings.TrimSpace(*v) == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidArgument, field)
		}
		*dst = strings.TrimSpace(*v)
		return nil
	}
	optional := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}

	for _, r := range []struct {
		field string
		dst   *string
		v     *string
	}{
		{"clientName", &b.ClientName, in.ClientName},
		{"eventTitle", &b.EventTitle, in.EventTitle},
		{"venue", &b.Venue, in.Venue},
		{"eventTheme", &b.EventTheme, in.EventTheme},
		{"packageType", &b.PackageType, in.PackageType},
	} {
		if err := required(r.field, r.dst, r.v); err != nil {
			return err
		}
	}
	optional(&b.ContactNumber, in.ContactNumber)
	optional(&b.Email, in.Email)
	optional(&b.EventTime, in.EventTime)
	if in.Remarks != nil {
		b.Remarks = *in.Remarks
	}

	if in.EventDate != nil {
		d, _, err := utils.ParseDate(*in.EventDate)
		if err != nil {
			return fmt.Errorf("%w: eventDate: %v", ErrInvalidArgument, err)
		}
		b.EventDate = d
	}
	if in.NumberOfGuests != nil {
		b.NumberOfGuests = *in.NumberOfGuests
	}
	if in.TotalAmount != nil {
		b.TotalAmount = *in.TotalAmount
	}
	if in.PaymentStatus != nil {
		b.PaymentStatus = PaymentStatus(strings.TrimSpace(*in.PaymentStatus))
	}
	if in.EventStatus != nil {
		b.EventStatus = Status(strings.TrimSpace(*in.EventStatus))
	}
	if in.Gallery != nil {
		b.Gallery = normalizeGallery(*in.Gallery)
	}
	return validateBooking(*b)
}

func validateBooking(b Booking) error {
	if b.NumberOfGuests < 1 {
		return fmt.Errorf("%w: numberOfGuests must be at least 1", ErrInvalidArgument)
	}
	if b.TotalAmount < 0 {
		return fmt.Errorf("%w: totalAmount must not be negative", ErrInvalidArgument)
	}
	if !b.PaymentStatus.Valid() {
		return fmt.Errorf("%w: paymentStatus must be one of Pending, Paid, Partial", ErrInvalidArgument)
	}
	if !b.EventStatus.Valid() {
		return fmt.Errorf("%w: eventStatus must be one of Pending, Approved, Completed, Cancelled", ErrInvalidArgument)
	}
	return nil
}

func normalizeGallery(in []string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	for _, g := range in {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
