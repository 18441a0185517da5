package intake

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"eventmis/internal/audit"
	"eventmis/internal/events"
	"eventmis/internal/messaging"
	"eventmis/internal/settings"
	"eventmis/internal/store"
	"eventmis/internal/store/storetest"

	"gorm.io/gorm"
)

const systemActor = "admin@eventmis.com"

type fixture struct {
	svc      *Service
	db       *gorm.DB
	audit    *audit.Service
	events   *events.Service
	messages *messaging.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := storetest.Open(t, &events.Event{}, &messaging.Message{}, &settings.AppSettings{}, &audit.Entry{})
	tx := store.NewTransactor(db)
	a := audit.NewService(audit.NewGormRepo(db))
	ev := events.NewService(db, tx, a)
	msgs := messaging.NewService(db, tx, a)
	svc := NewService(tx, ev, msgs, settings.NewService(db, tx, a), systemActor)
	svc.clock = func() time.Time { return time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC) }
	return fixture{svc: svc, db: db, audit: a, events: ev, messages: msgs}
}

func validBooking() BookingForm {
	return BookingForm{
		Name:          "Maria Santos",
		Email:         "maria@example.com",
		Phone:         "09171234567",
		EventType:     "Baby Shower",
		PreferredDate: "2026-03-14",
		GuestCount:    60,
		Budget:        Budget15to25k,
	}
}

func TestSubmitBooking_CreatesEventAndNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.SubmitBooking(ctx, validBooking())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	ev := res.Event
	if ev.EventTheme != "Twinkle Star" || ev.PackageType != "Standard" || ev.Venue != PendingVenue {
		t.Fatalf("unexpected booking: %+v", ev.Booking)
	}
	if ev.EventStatus != events.StatusPending || !ev.IsWebsiteBooking() {
		t.Fatalf("expected pending website booking, got %+v", ev.Booking)
	}
	// Standard 20000 + 10 extra guests * 500, plus 12% tax.
	if ev.TotalAmount != 28000 || res.Quote.Total != 28000 {
		t.Fatalf("unexpected total %v / %+v", ev.TotalAmount, res.Quote)
	}
	if ev.EventTitle != "Baby Shower for Maria Santos" {
		t.Fatalf("unexpected title %q", ev.EventTitle)
	}

	msgs, _ := f.messages.List(ctx)
	if len(msgs) != 1 || msgs[0].Recipient != AdminRecipient || msgs[0].Type != messaging.TypeInbox {
		t.Fatalf("expected one admin inbox message, got %+v", msgs)
	}
	if !strings.HasPrefix(msgs[0].Subject, "New Event Booking - Baby Shower") {
		t.Fatalf("unexpected subject %q", msgs[0].Subject)
	}

	entries, _ := f.audit.List(ctx)
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.User != systemActor || e.Action != audit.ActionCreate {
			t.Fatalf("unexpected audit entry %+v", e)
		}
	}
}

type failingSender struct{}

func (failingSender) Send(context.Context, string, messaging.SendInput) (messaging.Message, error) {
	return messaging.Message{}, errors.New("mailbox down")
}

func TestSubmitBooking_RollsBackWhenNotificationFails(t *testing.T) {
	f := newFixture(t)
	f.svc.messages = failingSender{}
	ctx := context.Background()

	if _, err := f.svc.SubmitBooking(ctx, validBooking()); err == nil {
		t.Fatalf("expected error")
	}
	evs, _ := f.events.List(ctx, events.ListFilter{})
	if len(evs) != 0 {
		t.Fatalf("expected event creation to roll back, got %d events", len(evs))
	}
	if entries, _ := f.audit.List(ctx); len(entries) != 0 {
		t.Fatalf("expected no audit entries, got %d", len(entries))
	}
}

func TestSubmitBooking_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]func(*BookingForm){
		"missing name":  func(b *BookingForm) { b.Name = " " },
		"zero guests":   func(b *BookingForm) { b.GuestCount = 0 },
		"too many":      func(b *BookingForm) { b.GuestCount = 500 },
		"bad date":      func(b *BookingForm) { b.PreferredDate = "next spring" },
		"short notice":  func(b *BookingForm) { b.PreferredDate = "2026-01-10" },
		"missing event": func(b *BookingForm) { b.EventType = "" },
	}
	for name, mutate := range cases {
		b := validBooking()
		mutate(&b)
		if _, err := f.svc.SubmitBooking(ctx, b); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%s: expected ErrInvalidArgument, got %v", name, err)
		}
	}
}

func TestMappings(t *testing.T) {
	if ThemeFor("Corporate Event") != "Professional" || ThemeFor("Gender Reveal") != "Custom" {
		t.Fatalf("unexpected theme mapping")
	}
	if PackageFor(BudgetUnder15k) != "Basic" || PackageFor(Budget35to50k) != "Deluxe" || PackageFor("Above ₱50,000") != "Custom" {
		t.Fatalf("unexpected package mapping")
	}
}

func TestSubmitContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.svc.SubmitContact(ctx, ContactForm{
		FirstName: "Ana", LastName: "Cruz", Email: "ana@example.com",
		Subject: "Pricing", Message: "Do you do weekends?", Rating: 5,
	})
	if err != nil {
		t.Fatalf("contact: %v", err)
	}
	if m.Subject != "Contact Form: Pricing - Ana Cruz" || m.Recipient != AdminRecipient {
		t.Fatalf("unexpected message %+v", m)
	}
	if !strings.Contains(m.Body, "Do you do weekends?") || !strings.Contains(m.Body, "5 stars") {
		t.Fatalf("unexpected body %q", m.Body)
	}

	if _, err := f.svc.SubmitContact(ctx, ContactForm{FirstName: "Ana"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
