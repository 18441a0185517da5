package pricing

import (
	"errors"
	"math"
	"strings"
)

var ErrInvalidQuoteReq = errors.New("invalid quote request")

// Quote prices a package for a guest count.
//
// Contract:
// - An unknown or empty package is priced as Basic.
// - Guests above IncludedGuests pay AdditionalGuestFee each.
// - Tax is TaxRate percent of the subtotal.
// - Every amount is rounded to centavos.
func Quote(r Rates, packageType string, guests int) (Estimate, error) {
	if guests < 0 {
		return Estimate{}, ErrInvalidQuoteReq
	}
	pkg, base := basePrice(r, packageType)

	extra := 0
	if r.IncludedGuests >= 0 && guests > r.IncludedGuests {
		extra = guests - r.IncludedGuests
	}
	fees := round2(float64(extra) * r.AdditionalGuestFee)
	subtotal := round2(base + fees)
	tax := round2(subtotal * r.TaxRate / 100)

	return Estimate{
		Package:     pkg,
		Guests:      guests,
		ExtraGuests: extra,
		BasePrice:   round2(base),
		GuestFees:   fees,
		Subtotal:    subtotal,
		TaxRate:     r.TaxRate,
		Tax:         tax,
		Total:       round2(subtotal + tax),
		Currency:    r.Currency,
	}, nil
}

func basePrice(r Rates, packageType string) (string, float64) {
	switch strings.ToLower(strings.TrimSpace(packageType)) {
	case "standard":
		return PackageStandard, r.BasePriceStandard
	case "premium":
		return PackagePremium, r.BasePricePremium
	case "deluxe":
		return PackageDeluxe, r.BasePriceDeluxe
	default:
		return PackageBasic, r.BasePriceBasic
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
