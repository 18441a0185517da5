package pricing

// Package names as offered on the booking form.
const (
	PackageBasic    = "Basic"
	PackageStandard = "Standard"
	PackagePremium  = "Premium"
	PackageDeluxe   = "Deluxe"
)

// Rates are the pricing inputs taken from the settings row.
type Rates struct {
	BasePriceBasic     float64
	BasePriceStandard  float64
	BasePricePremium   float64
	BasePriceDeluxe    float64
	AdditionalGuestFee float64
	IncludedGuests     int
	// TaxRate is a percentage, e.g. 12 for 12%.
	TaxRate  float64
	Currency string
}

// Estimate is a computed package price. Amounts are in currency units rounded to
// two decimals.
type Estimate struct {
	Package     string  `json:"package"`
	Guests      int     `json:"guests"`
	ExtraGuests int     `json:"extraGuests"`
	BasePrice   float64 `json:"basePrice"`
	GuestFees   float64 `json:"guestFees"`
	Subtotal    float64 `json:"subtotal"`
	TaxRate     float64 `json:"taxRate"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
}
