package intake

import "strings"

// BookingForm is the public reservation form.
type BookingForm struct {
	Name            string `json:"name" binding:"required,max=255"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required,max=64"`
	EventType       string `json:"eventType" binding:"required"`
	PreferredDate   string `json:"preferredDate" binding:"required"`
	GuestCount      int    `json:"guestCount" binding:"required,min=1"`
	Budget          string `json:"budget" binding:"required"`
	SpecialRequests string `json:"specialRequests" binding:"max=4000"`
}

// ContactForm is the public contact form.
type ContactForm struct {
	FirstName string `json:"firstName" binding:"required,max=255"`
	LastName  string `json:"lastName" binding:"required,max=255"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"max=64"`
	Subject   string `json:"subject" binding:"required,max=255"`
	Message   string `json:"message" binding:"required,max=4000"`
	Rating    int    `json:"rating" binding:"min=0,max=5"`
}

// Budget ranges offered on the reservation form.
const (
	BudgetUnder15k = "Under ₱15,000"
	Budget15to25k  = "₱15,000 - ₱25,000"
	Budget25to35k  = "₱25,000 - ₱35,000"
	Budget35to50k  = "₱35,000 - ₱50,000"
)

// ThemeFor maps the form's event type to a booking theme.
func ThemeFor(eventType string) string {
	switch strings.TrimSpace(eventType) {
	case "Baby Shower":
		return "Twinkle Star"
	case "Bridal Shower":
		return "Elegant Rose"
	case "Birthday Party":
		return "Celebration"
	case "Corporate Event":
		return "Professional"
	default:
		return "Custom"
	}
}

// PackageFor maps a budget range to a package. Ranges above the Deluxe
// band are booked as Custom.
func PackageFor(budget string) string {
	switch strings.TrimSpace(budget) {
	case BudgetUnder15k:
		return "Basic"
	case Budget15to25k:
		return "Standard"
	case Budget25to35k:
		return "Premium"
	case Budget35to50k:
		return "Deluxe"
	default:
		return "Custom"
	}
}
