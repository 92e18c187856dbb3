package core

import (
	"errors"
	"strings"
)

// LbPerKg converts a per-kilogram rate to a per-pound rate.
const LbPerKg = 2.20462

// WeightUnit is the unit string used for weight-priced grocery items.
// Anything else (notably "each") carries no per-pound rate.
const WeightUnit = "per kg/per lb"

// GroceryCategory is the implicit category of every grocery record.
const GroceryCategory = "Grocery"

// Record is one logged purchase. Expense and grocery variants share this
// shape; grocery-only fields are zero for expenses. IDs are assigned by the
// store on append and are unique only within a record type.
type Record struct {
	ID                string  `json:"id"`
	Date              Date    `json:"date"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	Price             float64 `json:"price"`
	Store             string  `json:"store"`
	AdditionalDetails string  `json:"additionalDetails"`
	IsLongTermBuy     bool    `json:"isLongTermBuy"`
	ExpectedDuration  int     `json:"expectedDuration"`
	DurationUnit      string  `json:"durationUnit"`
	IsGrocery         bool    `json:"isGrocery"`
	Unit              string  `json:"unit"`

	// Grocery only.
	Quantity       string  `json:"quantity,omitempty"`
	SubCategory    string  `json:"subCategory,omitempty"`
	SellerRate     float64 `json:"sellerRate,omitempty"`
	SellerRateInLb float64 `json:"sellerRateInLb,omitempty"`
}

// Budget is one category budget row: a spending ceiling for the period.
type Budget struct {
	Category string  `json:"category"`
	Budget   float64 `json:"budget"`
}

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyName     = errors.New("empty name")
	ErrNegativePrice = errors.New("negative price")
	ErrNotFound      = errors.New("not found")
)

// Validate checks the fields a form submission must provide. Zero prices are
// legal; the parser and manual entry both produce them.
func (r Record) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if r.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}

// EffectiveCategory returns the category used for aggregation: every grocery
// record rolls up under "Grocery" regardless of its stored category field.
func (r Record) EffectiveCategory() string {
	if r.IsGrocery {
		return GroceryCategory
	}
	return r.Category
}

// SyncSellerRate recomputes the derived per-pound rate from the canonical
// per-kilogram rate. Only weight-priced items carry the derived value.
func (r *Record) SyncSellerRate() {
	if r.Unit == WeightUnit && r.SellerRate > 0 {
		r.SellerRateInLb = r.SellerRate / LbPerKg
		return
	}
	if r.Unit != WeightUnit {
		r.SellerRateInLb = 0
	}
}
