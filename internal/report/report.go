// Package report computes read-side aggregations over records and budgets.
// All functions are pure: they take the full record set and return derived
// views, leaving filtering and ordering decisions here rather than in the
// persistence layer.
package report

import (
	"sort"
	"strings"

	"github.com/pspuri91/expense-tracker/internal/core"
)

// CategoryAmount is an amount aggregated under a single category name.
type CategoryAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// BudgetLine compares configured budget against actual spend for one category.
type BudgetLine struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Budget   float64 `json:"budget"`
}

// MonthRollup is the per-month slice of a yearly overview.
type MonthRollup struct {
	Year       int              `json:"year"`
	Month      int              `json:"month"` // 1-12
	Total      float64          `json:"total"`
	ByCategory []CategoryAmount `json:"byCategory"`
}

// StoreShare is one store's slice of total spending.
type StoreShare struct {
	Store      string  `json:"store"`
	Total      float64 `json:"total"`
	Percentage float64 `json:"percentage"`
}

// TotalCategory is the synthetic budget row holding the grand total.
const TotalCategory = "Total"

// BudgetSummary builds one line per configured budget category for the given
// UTC month and year. The Grocery line sums every grocery record regardless of
// its stored category; every other line sums non-grocery records whose
// category matches exactly (case-sensitive). The Total line's spend is always
// recomputed as the sum of the other lines; when the budgets already carry a
// Total row it keeps its position and configured budget, otherwise a Total
// line is appended whose budget is the sum of all configured budgets.
func BudgetSummary(records []core.Record, budgets []core.Budget, month, year int) []BudgetLine {
	var grocerySpent float64
	byCategory := map[string]float64{}
	for _, r := range records {
		if !r.Date.InMonth(year, month) {
			continue
		}
		if r.IsGrocery {
			grocerySpent += r.Price
			continue
		}
		byCategory[r.Category] += r.Price
	}

	var grand float64
	lines := make([]BudgetLine, 0, len(budgets)+1)
	for _, b := range budgets {
		line := BudgetLine{Category: b.Category, Budget: b.Budget}
		switch b.Category {
		case TotalCategory:
			// filled in below once the grand total is known
		case core.GroceryCategory:
			line.Total = grocerySpent
		default:
			line.Total = byCategory[b.Category]
		}
		if b.Category != TotalCategory {
			grand += line.Total
		}
		lines = append(lines, line)
	}

	for i := range lines {
		if lines[i].Category == TotalCategory {
			lines[i].Total = grand
			return lines
		}
	}
	var budgetSum float64
	for _, l := range lines {
		budgetSum += l.Budget
	}
	return append(lines, BudgetLine{Category: TotalCategory, Total: grand, Budget: budgetSum})
}

// YearlyRollup aggregates spending per UTC month for the given year. The
// result always has exactly 12 entries, January first, months without records
// zero-filled. Grocery records are bucketed under the Grocery category; within
// a month, categories keep first-seen order.
func YearlyRollup(records []core.Record, year int) []MonthRollup {
	type bucket struct {
		total float64
		byCat map[string]float64
		order []string
	}
	buckets := [12]*bucket{}

	for _, r := range records {
		if r.Date.Year() != year {
			continue
		}
		m := r.Date.Month() - 1
		b := buckets[m]
		if b == nil {
			b = &bucket{byCat: map[string]float64{}}
			buckets[m] = b
		}
		cat := r.EffectiveCategory()
		if _, seen := b.byCat[cat]; !seen {
			b.order = append(b.order, cat)
		}
		b.byCat[cat] += r.Price
		b.total += r.Price
	}

	out := make([]MonthRollup, 12)
	for i := range out {
		out[i] = MonthRollup{Year: year, Month: i + 1, ByCategory: []CategoryAmount{}}
		b := buckets[i]
		if b == nil {
			continue
		}
		out[i].Total = b.total
		for _, name := range b.order {
			out[i].ByCategory = append(out[i].ByCategory, CategoryAmount{Name: name, Amount: b.byCat[name]})
		}
	}
	return out
}

// StoreDistribution breaks total spending down by store, largest first.
// Records without a store are excluded. Percentages are shares of the summed
// total across the included records; with stores present but a zero total the
// shares are NaN, mirroring the unguarded division upstream consumers expect.
func StoreDistribution(records []core.Record) []StoreShare {
	totals := map[string]float64{}
	order := make([]string, 0)
	var grand float64
	for _, r := range records {
		if r.Store == "" {
			continue
		}
		if _, seen := totals[r.Store]; !seen {
			order = append(order, r.Store)
		}
		totals[r.Store] += r.Price
		grand += r.Price
	}

	shares := make([]StoreShare, 0, len(order))
	for _, store := range order {
		shares = append(shares, StoreShare{
			Store:      store,
			Total:      totals[store],
			Percentage: totals[store] / grand * 100,
		})
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].Total > shares[j].Total })
	return shares
}

// NameHistory returns every record whose name matches case-insensitively,
// newest first. Ties on date keep input order.
func NameHistory(records []core.Record, name string) []core.Record {
	out := make([]core.Record, 0)
	for _, r := range records {
		if strings.EqualFold(r.Name, name) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out
}

// SubCategoryTotals sums grocery spending per sub-category for the given UTC
// month and year. Records without a sub-category are skipped. Sub-categories
// keep first-seen order.
func SubCategoryTotals(records []core.Record, month, year int) []CategoryAmount {
	totals := map[string]float64{}
	order := make([]string, 0)
	for _, r := range records {
		if !r.IsGrocery || r.SubCategory == "" || !r.Date.InMonth(year, month) {
			continue
		}
		if _, seen := totals[r.SubCategory]; !seen {
			order = append(order, r.SubCategory)
		}
		totals[r.SubCategory] += r.Price
	}
	out := make([]CategoryAmount, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryAmount{Name: name, Amount: totals[name]})
	}
	return out
}
