package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Sheet row layout. Field-to-column positions are fixed by the existing
// spreadsheets and must not change: dashboards and historical data depend on
// them.
//
//	expense:  [id, date, name, category, price, store, details,
//	           isLongTermBuy, expectedDuration, durationUnit, isGrocery, unit]
//	grocery:  [id, date, name, price, store, details, isLongTermBuy,
//	           expectedDuration, durationUnit, quantity, subCategory, unit,
//	           sellerRate, sellerRateInLb, isGrocery]
//	budget:   [category, budget]
const (
	ExpenseColumns = 12
	GroceryColumns = 15
)

// Row encodes the record for its sheet, dispatching on the record type.
func (r Record) Row() []any {
	if r.IsGrocery {
		return r.groceryRow()
	}
	return r.expenseRow()
}

func (r Record) expenseRow() []any {
	return []any{
		r.ID,
		r.Date.String(),
		r.Name,
		r.Category,
		formatPrice(r.Price),
		r.Store,
		r.AdditionalDetails,
		yesNo(r.IsLongTermBuy),
		formatOptionalInt(r.ExpectedDuration),
		r.DurationUnit,
		"No",
		r.Unit,
	}
}

func (r Record) groceryRow() []any {
	return []any{
		r.ID,
		r.Date.String(),
		r.Name,
		formatPrice(r.Price),
		r.Store,
		r.AdditionalDetails,
		yesNo(r.IsLongTermBuy),
		formatOptionalInt(r.ExpectedDuration),
		r.DurationUnit,
		r.Quantity,
		r.SubCategory,
		r.Unit,
		formatOptionalFloat(r.SellerRate),
		formatOptionalFloat(r.SellerRateInLb),
		"Yes",
	}
}

// BudgetRow encodes a budget table row.
func (b Budget) BudgetRow() []any {
	return []any{b.Category, formatPrice(b.Budget)}
}

// RecordFromRow decodes a sheet row into a Record. Decoding is best-effort:
// rows without a parseable date or with an empty id are reported unusable and
// skipped by callers, matching how the sheet has always been read.
func RecordFromRow(cols []string, grocery bool) (Record, bool) {
	want := ExpenseColumns
	if grocery {
		want = GroceryColumns
	}
	cols = padded(cols, want)

	if strings.TrimSpace(cols[0]) == "" {
		return Record{}, false
	}
	date, err := ParseDate(cols[1])
	if err != nil {
		return Record{}, false
	}

	r := Record{
		ID:        strings.TrimSpace(cols[0]),
		Date:      date,
		Name:      strings.TrimSpace(cols[2]),
		IsGrocery: grocery,
	}
	if grocery {
		r.Category = GroceryCategory
		r.Price = parsePrice(cols[3])
		r.Store = strings.TrimSpace(cols[4])
		r.AdditionalDetails = strings.TrimSpace(cols[5])
		r.IsLongTermBuy = isYes(cols[6])
		r.ExpectedDuration = parseOptionalInt(cols[7])
		r.DurationUnit = strings.TrimSpace(cols[8])
		r.Quantity = strings.TrimSpace(cols[9])
		r.SubCategory = strings.TrimSpace(cols[10])
		r.Unit = strings.TrimSpace(cols[11])
		r.SellerRate = parsePrice(cols[12])
		r.SellerRateInLb = parsePrice(cols[13])
		return r, true
	}
	r.Category = strings.TrimSpace(cols[3])
	r.Price = parsePrice(cols[4])
	r.Store = strings.TrimSpace(cols[5])
	r.AdditionalDetails = strings.TrimSpace(cols[6])
	r.IsLongTermBuy = isYes(cols[7])
	r.ExpectedDuration = parseOptionalInt(cols[8])
	r.DurationUnit = strings.TrimSpace(cols[9])
	// cols[10] (isGrocery) is always "No" on the expense sheet.
	r.Unit = strings.TrimSpace(cols[11])
	return r, true
}

// BudgetFromRow decodes a [category, budget] row.
func BudgetFromRow(cols []string) (Budget, bool) {
	cols = padded(cols, 2)
	category := strings.TrimSpace(cols[0])
	if category == "" {
		return Budget{}, false
	}
	return Budget{Category: category, Budget: parsePrice(cols[1])}, true
}

// ToStrings flattens a sheet row of interface values to trimmed strings.
func ToStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func padded(cols []string, n int) []string {
	if len(cols) >= n {
		return cols
	}
	out := make([]string, n)
	copy(out, cols)
	return out
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func isYes(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "Yes")
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func formatOptionalInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func formatOptionalFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parsePrice(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	s = strings.TrimPrefix(s, "$")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseOptionalInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
