package events

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Booking holds the business fields shared by active and archived events.
type Booking struct {
	ClientName     string                      `json:"clientName" gorm:"size:255;not null"`
	ContactNumber  string                      `json:"contactNumber" gorm:"size:64"`
	Email          string                      `json:"email" gorm:"size:255"`
	EventTitle     string                      `json:"eventTitle" gorm:"size:255;not null"`
	EventTheme     string                      `json:"eventTheme" gorm:"size:128;not null"`
	PackageType    string                      `json:"packageType" gorm:"size:64;not null"`
	EventDate      time.Time                   `json:"eventDate" gorm:"not null;index"`
	EventTime      string                      `json:"eventTime" gorm:"size:32"`
	Venue          string                      `json:"venue" gorm:"size:255;not null"`
	NumberOfGuests int                         `json:"numberOfGuests" gorm:"not null"`
	PaymentStatus  PaymentStatus               `json:"paymentStatus" gorm:"size:32;not null"`
	TotalAmount    float64                     `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	Remarks        string                      `json:"remarks" gorm:"type:text"`
	EventStatus    Status                      `json:"eventStatus" gorm:"size:32;not null;index"`
	Gallery        datatypes.JSONSlice[string] `json:"gallery"`
}

// IsWebsiteBooking reports whether the booking came through the public form.
func (b Booking) IsWebsiteBooking() bool {
	return strings.Contains(b.Remarks, WebsiteMarker)
}

// Event is an active booking.
type Event struct {
	ID      string `json:"id" gorm:"primaryKey;size:36"`
	Booking `gorm:"embedded"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Event) TableName() string { return "events" }

// ArchivedEvent is a copy of an Event taken when it was archived.
// An Event and its ArchivedEvent never coexist.
type ArchivedEvent struct {
	ID              string `json:"id" gorm:"primaryKey;size:36"`
	OriginalEventID string `json:"originalEventId" gorm:"size:36;index"`
	Booking         `gorm:"embedded"`

	ArchivedAt time.Time `json:"archivedAt" gorm:"not null;index"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (ArchivedEvent) TableName() string { return "archived_events" }

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Statuses lists every event status, in workflow order.
var Statuses = []Status{StatusPending, StatusApproved, StatusCompleted, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPartial PaymentStatus = "Partial"
)

var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentPaid, PaymentPartial}

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentPartial:
		return true
	}
	return false
}

// Themes and packages are open strings. These are the values the admin UI
// offers; anything else came from the public form.
var (
	KnownThemes   = []string{"Twinkle Star", "Boho Baby", "Teddy Bear"}
	KnownPackages = []string{"Basic", "Standard", "Premium", "Deluxe"}
)

func IsKnownTheme(v string) bool   { return contains(KnownThemes, v) }
func IsKnownPackage(v string) bool { return contains(KnownPackages, v) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// WebsiteMarker is embedded in remarks of bookings created by public intake.
const WebsiteMarker = "Submitted via website reservation form"

const (
	DefaultTheme          = "Twinkle Star"
	DefaultPackage        = "Basic"
	DefaultTotalAmount    = 15000.0
	DefaultNumberOfGuests = 50
)
