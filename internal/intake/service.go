package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventmis/internal/events"
	"eventmis/internal/messaging"
	"eventmis/internal/pricing"
	"eventmis/internal/settings"
	"eventmis/internal/store"
	"eventmis/pkg/logger"
	"eventmis/pkg/utils"
)

var ErrInvalidArgument = errors.New("invalid argument")

const (
	AdminRecipient = "Admin"
	PendingVenue   = "To be confirmed by admin"
	DefaultTime    = "2:00 PM"
)

type EventCreator interface {
	Create(ctx context.Context, actor string, in events.CreateInput) (events.Event, error)
}

type MessageSender interface {
	Send(ctx context.Context, actor string, in messaging.SendInput) (messaging.Message, error)
}

type SettingsReader interface {
	Get(ctx context.Context) (settings.AppSettings, error)
}

// Service turns public website forms into back-office records. Writes are
// attributed to a fixed system actor.
type Service struct {
	tx       *store.Transactor
	events   EventCreator
	messages MessageSender
	settings SettingsReader
	actor    string
	clock    func() time.Time
}

func NewService(tx *store.Transactor, ev EventCreator, msgs MessageSender, st SettingsReader, systemActor string) *Service {
	return &Service{tx: tx, events: ev, messages: msgs, settings: st, actor: systemActor, clock: time.Now}
}

type BookingResult struct {
	Event        events.Event      `json:"event"`
	Notification messaging.Message `json:"notification"`
	Quote        pricing.Estimate  `json:"quote"`
}

// SubmitBooking creates a pending event and an admin notification in one
// transaction.
func (s *Service) SubmitBooking(ctx context.Context, f BookingForm) (BookingResult, error) {
	f = trimBooking(f)
	if f.Name == "" || f.Email == "" || f.Phone == "" || f.EventType == "" || f.PreferredDate == "" || f.Budget == "" {
		return BookingResult{}, fmt.Errorf("%w: please fill in all required fields", ErrInvalidArgument)
	}
	if f.GuestCount < 1 {
		return BookingResult{}, fmt.Errorf("%w: guestCount must be at least 1", ErrInvalidArgument)
	}
	date, _, err := utils.ParseDate(f.PreferredDate)
	if err != nil {
		return BookingResult{}, fmt.Errorf("%w: preferredDate: %v", ErrInvalidArgument, err)
	}

	var out BookingResult
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cfg, err := s.settings.Get(ctx)
		if err != nil {
			return err
		}
		if cfg.MaxGuestsPerEvent > 0 && f.GuestCount > cfg.MaxGuestsPerEvent {
			return fmt.Errorf("%w: guestCount must not exceed %d", ErrInvalidArgument, cfg.MaxGuestsPerEvent)
		}
		earliest := startOfDay(s.clock().UTC()).AddDate(0, 0, cfg.MinAdvanceBookingDays)
		if date.Before(earliest) {
			return fmt.Errorf("%w: bookings must be made at least %d days in advance", ErrInvalidArgument, cfg.MinAdvanceBookingDays)
		}

		pkg := PackageFor(f.Budget)
		q, err := pricing.Quote(cfg.Rates(), pkg, f.GuestCount)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		guests, total := f.GuestCount, q.Total
		theme := ThemeFor(f.EventType)

		ev, err := s.events.Create(ctx, s.actor, events.CreateInput{
			ClientName:     f.Name,
			ContactNumber:  f.Phone,
			Email:          f.Email,
			EventTitle:     fmt.Sprintf("%s for %s", f.EventType, f.Name),
			EventTheme:     theme,
			PackageType:    pkg,
			EventDate:      date.Format(utils.DateLayout),
			EventTime:      DefaultTime,
			Venue:          PendingVenue,
			NumberOfGuests: &guests,
			PaymentStatus:  string(events.PaymentPending),
			TotalAmount:    &total,
			Remarks:        bookingRemarks(f),
			EventStatus:    string(events.StatusPending),
		})
		if err != nil {
			return err
		}
		msg, err := s.messages.Send(ctx, s.actor, messaging.SendInput{
			Recipient: AdminRecipient,
			Subject:   fmt.Sprintf("New Event Booking - %s for %s", f.EventType, f.Name),
			Body:      bookingNotice(f, theme, q),
			Type:      string(messaging.TypeInbox),
		})
		if err != nil {
			return err
		}
		out = BookingResult{Event: ev, Notification: msg, Quote: q}
		return nil
	})
	if err != nil {
		return BookingResult{}, err
	}
	logger.From(ctx).Info("website booking received", "event_id", out.Event.ID, "package", out.Event.PackageType)
	return out, nil
}

// SubmitContact files a contact form as an admin inbox message.
func (s *Service) SubmitContact(ctx context.Context, f ContactForm) (messaging.Message, error) {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Message = strings.TrimSpace(f.Message)
	if f.FirstName == "" || f.LastName == "" || f.Email == "" || f.Subject == "" || f.Message == "" {
		return messaging.Message{}, fmt.Errorf("%w: please fill in all required fields", ErrInvalidArgument)
	}
	if f.Rating < 0 || f.Rating > 5 {
		return messaging.Message{}, fmt.Errorf("%w: rating must be between 0 and 5", ErrInvalidArgument)
	}

	name := f.FirstName + " " + f.LastName
	var b strings.Builder
	b.WriteString("NEW CONTACT FORM MESSAGE RECEIVED:\n\n")
	fmt.Fprintf(&b, "Contact Information:\nName: %s\nEmail: %s\nPhone: %s\n\n", name, f.Email, f.Phone)
	if f.Rating > 0 {
		fmt.Fprintf(&b, "Star Rating: %d stars\n\n", f.Rating)
	}
	fmt.Fprintf(&b, "Subject: %s\n\nMessage:\n%s\n\n", f.Subject, f.Message)
	b.WriteString("---\nThis message was submitted from the website contact form.")

	return s.messages.Send(ctx, s.actor, messaging.SendInput{
		Recipient: AdminRecipient,
		Subject:   fmt.Sprintf("Contact Form: %s - %s", f.Subject, name),
		Body:      b.String(),
		Type:      string(messaging.TypeInbox),
	})
}

func bookingRemarks(f BookingForm) string {
	req := f.SpecialRequests
	if req == "" {
		req = "None specified"
	}
	return fmt.Sprintf("Event Type: %s\nBudget Range: %s\nSpecial Requests: %s\n\n%s.",
		f.EventType, f.Budget, req, events.WebsiteMarker)
}

func bookingNotice(f BookingForm, theme string, q pricing.Estimate) string {
	req := f.SpecialRequests
	if req == "" {
		req = "No special requests mentioned"
	}
	var b strings.Builder
	b.WriteString("NEW EVENT BOOKING RECEIVED:\n\n")
	fmt.Fprintf(&b, "Client Information:\nName: %s\nEmail: %s\nPhone: %s\n\n", f.Name, f.Email, f.Phone)
	fmt.Fprintf(&b, "Event Details:\nType: %s\nTitle: %s for %s\nPreferred Date: %s\nExpected Guests: %d\nBudget Range: %s\nTheme: %s\n",
		f.EventType, f.EventType, f.Name, f.PreferredDate, f.GuestCount, f.Budget, theme)
	fmt.Fprintf(&b, "Quoted Total: %s %.2f (%s package)\n\n", q.Currency, q.Total, q.Package)
	fmt.Fprintf(&b, "Special Requests:\n%s\n\n", req)
	b.WriteString("Event booking has been created in the Events module with status \"Pending\".\n")
	b.WriteString("Please review and confirm the booking details.\n\n---\nThis booking was submitted from the website reservation form.")
	return b.String()
}

func trimBooking(f BookingForm) BookingForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.EventType = strings.TrimSpace(f.EventType)
	f.PreferredDate = strings.TrimSpace(f.PreferredDate)
	f.Budget = strings.TrimSpace(f.Budget)
	f.SpecialRequests = strings.TrimSpace(f.SpecialRequests)
	return f
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
