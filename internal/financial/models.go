package financial

import "time"

// Record is an income or expense line. It is linked to a booking only by
// its free-text EventName.
type Record struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Type        Type      `json:"type" gorm:"size:16;not null;index"`
	EventName   string    `json:"eventName" gorm:"size:255;not null;index"`
	Amount      float64   `json:"amount" gorm:"type:decimal(12,2);not null"`
	Category    Category  `json:"category" gorm:"size:32;not null;index"`
	Status      Status    `json:"status" gorm:"size:16;not null"`
	Date        time.Time `json:"date" gorm:"not null;index"`
	Description string    `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Record) TableName() string { return "financial_records" }

type Type string

const (
	TypeIncome  Type = "Income"
	TypeExpense Type = "Expense"
)

func (t Type) Valid() bool { return t == TypeIncome || t == TypeExpense }

type Status string

const (
	StatusPending  Status = "Pending"
	StatusPaid     Status = "Paid"
	StatusReceived Status = "Received"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusReceived:
		return true
	}
	return false
}

type Category string

const (
	CategoryVenue          Category = "Venue"
	CategoryCatering       Category = "Catering"
	CategoryDecorations    Category = "Decorations"
	CategoryPhotography    Category = "Photography"
	CategoryTransportation Category = "Transportation"
	CategoryMiscellaneous  Category = "Miscellaneous"
)

var Categories = []Category{
	CategoryVenue, CategoryCatering, CategoryDecorations,
	CategoryPhotography, CategoryTransportation, CategoryMiscellaneous,
}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Totals sums records by type and category.
type Totals struct {
	Income     float64              `json:"income"`
	Expense    float64              `json:"expense"`
	Net        float64              `json:"net"`
	ByCategory map[Category]float64 `json:"byCategory"`
	Count      int                  `json:"count"`
}
