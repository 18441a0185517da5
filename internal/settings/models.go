package settings

import (
	"time"

	"eventmis/internal/pricing"
)

// SingletonID is the primary key of the only settings row.
const SingletonID uint = 1

// AppSettings is the single configuration row.
type AppSettings struct {
	ID uint `json:"id" gorm:"primaryKey"`

	SystemTitle string `json:"systemTitle" gorm:"size:255"`
	SystemEmail string `json:"systemEmail" gorm:"size:255"`
	SystemPhone string `json:"systemPhone" gorm:"size:64"`
	Currency    string `json:"currency" gorm:"size:8"`

	CompanyName    string  `json:"companyName" gorm:"size:255"`
	CompanyAddress string  `json:"companyAddress" gorm:"size:512"`
	BusinessHours  string  `json:"businessHours" gorm:"size:255"`
	TaxRate        float64 `json:"taxRate" gorm:"type:decimal(5,2)"`

	BasePriceBasic     float64 `json:"basePriceBasic" gorm:"type:decimal(12,2)"`
	BasePriceStandard  float64 `json:"basePriceStandard" gorm:"type:decimal(12,2)"`
	BasePricePremium   float64 `json:"basePricePremium" gorm:"type:decimal(12,2)"`
	BasePriceDeluxe    float64 `json:"basePriceDeluxe" gorm:"type:decimal(12,2)"`
	AdditionalGuestFee float64 `json:"additionalGuestFee" gorm:"type:decimal(12,2)"`
	IncludedGuests     int     `json:"includedGuests"`

	EmailNotifications        bool   `json:"emailNotifications"`
	ReminderDays              int    `json:"reminderDays"`
	ConfirmationEmailTemplate string `json:"confirmationEmailTemplate" gorm:"type:text"`

	MaxGuestsPerEvent     int `json:"maxGuestsPerEvent"`
	MinAdvanceBookingDays int `json:"minAdvanceBookingDays"`

	LandingPageSubtitle string `json:"landingPageSubtitle" gorm:"size:512"`
	AboutUsTitle        string `json:"aboutUsTitle" gorm:"size:255"`
	AboutUsContent      string `json:"aboutUsContent" gorm:"type:text"`
	ContactEmail        string `json:"contactEmail" gorm:"size:255"`
	ContactPhone        string `json:"contactPhone" gorm:"size:64"`
	LogoURL             string `json:"logoUrl" gorm:"type:text"`
	TitleLogoURL        string `json:"titleLogoUrl" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (AppSettings) TableName() string { return "app_settings" }

// Defaults is the row created on first read.
func Defaults() AppSettings {
	return AppSettings{
		SystemTitle: "Tiny Steps Event MIS",
		SystemEmail: "admin@eventmis.com",
		SystemPhone: "+63 912 345 6789",
		Currency:    "PHP",

		CompanyName:    "Tiny Steps Events",
		CompanyAddress: "123 Event Street, Celebration City, Philippines",
		BusinessHours:  "Mon-Fri: 9AM-6PM, Sat: 9AM-4PM",
		TaxRate:        12,

		BasePriceBasic:     15000,
		BasePriceStandard:  20000,
		BasePricePremium:   25000,
		BasePriceDeluxe:    35000,
		AdditionalGuestFee: 500,
		IncludedGuests:     50,

		EmailNotifications: true,
		ReminderDays:       7,
		ConfirmationEmailTemplate: "Dear {clientName},\n\nYour event booking for {eventTitle} has been confirmed!\n\n" +
			"Event Details:\nDate: {eventDate}\nTime: {eventTime}\nVenue: {venue}\nGuests: {numberOfGuests}\n\n" +
			"Total Amount: ₱{totalAmount}\n\nThank you for choosing Tiny Steps Events!",

		MaxGuestsPerEvent:     200,
		MinAdvanceBookingDays: 30,

		LandingPageSubtitle: "Creating Magical Moments for Your Special Day",
		AboutUsTitle:        "About Tiny Steps Events",
		AboutUsContent:      "We specialize in creating unforgettable baby shower experiences with our themed packages designed to celebrate the joy of new beginnings.",
		ContactEmail:        "info@tinystepsevents.com",
		ContactPhone:        "+63 912 345 6789",
		LogoURL:             "/placeholder.svg",
		TitleLogoURL:        "/placeholder.svg",
	}
}

// Public is the subset shown on marketing pages.
type Public struct {
	SystemTitle         string  `json:"systemTitle"`
	Currency            string  `json:"currency"`
	CompanyName         string  `json:"companyName"`
	CompanyAddress      string  `json:"companyAddress"`
	BusinessHours       string  `json:"businessHours"`
	BasePriceBasic      float64 `json:"basePriceBasic"`
	BasePriceStandard   float64 `json:"basePriceStandard"`
	BasePricePremium    float64 `json:"basePricePremium"`
	BasePriceDeluxe     float64 `json:"basePriceDeluxe"`
	AdditionalGuestFee  float64 `json:"additionalGuestFee"`
	IncludedGuests      int     `json:"includedGuests"`
	TaxRate             float64 `json:"taxRate"`
	LandingPageSubtitle string  `json:"landingPageSubtitle"`
	AboutUsTitle        string  `json:"aboutUsTitle"`
	AboutUsContent      string  `json:"aboutUsContent"`
	ContactEmail        string  `json:"contactEmail"`
	ContactPhone        string  `json:"contactPhone"`
	LogoURL             string  `json:"logoUrl"`
	TitleLogoURL        string  `json:"titleLogoUrl"`
}

func (s AppSettings) Public() Public {
	return Public{
		SystemTitle:         s.SystemTitle,
		Currency:            s.Currency,
		CompanyName:         s.CompanyName,
		CompanyAddress:      s.CompanyAddress,
		BusinessHours:       s.BusinessHours,
		BasePriceBasic:      s.BasePriceBasic,
		BasePriceStandard:   s.BasePriceStandard,
		BasePricePremium:    s.BasePricePremium,
		BasePriceDeluxe:     s.BasePriceDeluxe,
		AdditionalGuestFee:  s.AdditionalGuestFee,
		IncludedGuests:      s.IncludedGuests,
		TaxRate:             s.TaxRate,
		LandingPageSubtitle: s.LandingPageSubtitle,
		AboutUsTitle:        s.AboutUsTitle,
		AboutUsContent:      s.AboutUsContent,
		ContactEmail:        s.ContactEmail,
		ContactPhone:        s.ContactPhone,
		LogoURL:             s.LogoURL,
		TitleLogoURL:        s.TitleLogoURL,
	}
}

// Rates extracts the pricing inputs.
func (s AppSettings) Rates() pricing.Rates {
	return pricing.Rates{
		BasePriceBasic:     s.BasePriceBasic,
		BasePriceStandard:  s.BasePriceStandard,
		BasePricePremium:   s.BasePricePremium,
		BasePriceDeluxe:    s.BasePriceDeluxe,
		AdditionalGuestFee: s.AdditionalGuestFee,
		IncludedGuests:     s.IncludedGuests,
		TaxRate:            s.TaxRate,
		Currency:           s.Currency,
	}
}
