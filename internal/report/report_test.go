package report

import (
	"math"
	"testing"

	"github.com/pspuri91/expense-tracker/internal/core"
)

func rec(id string, date core.Date, name, category string, price float64, store string, grocery bool) core.Record {
	return core.Record{ID: id, Date: date, Name: name, Category: category, Price: price, Store: store, IsGrocery: grocery}
}

func grocRec(id string, date core.Date, name string, price float64, sub string) core.Record {
	r := rec(id, date, name, core.GroceryCategory, price, "Store", true)
	r.SubCategory = sub
	return r
}

func TestBudgetSummary(t *testing.T) {
	march := core.NewDate(2024, 3, 15)
	april := core.NewDate(2024, 4, 2)
	records := []core.Record{
		rec("1", march, "Bus", "Transport", 10, "", false),
		rec("2", march, "Train", "Transport", 5, "", false),
		rec("3", march, "Shoes", "Clothing", 40, "Mall", false),
		rec("4", april, "Taxi", "Transport", 99, "", false),
		grocRec("5", march, "Milk", 3.5, "Dairy"),
		grocRec("6", march, "Bread", 2.5, "Bakery"),
		// non-grocery record with the Grocery category does not count
		// toward the Grocery line
		rec("7", march, "Gift card", core.GroceryCategory, 25, "", false),
	}
	budgets := []core.Budget{
		{Category: "Transport", Budget: 50},
		{Category: core.GroceryCategory, Budget: 200},
		{Category: "Clothing", Budget: 80},
	}

	lines := BudgetSummary(records, budgets, 3, 2024)
	if len(lines) != 4 {
		t.Fatalf("len(lines) = %d, want 4", len(lines))
	}
	want := []BudgetLine{
		{Category: "Transport", Total: 15, Budget: 50},
		{Category: core.GroceryCategory, Total: 6, Budget: 200},
		{Category: "Clothing", Total: 40, Budget: 80},
		{Category: "Total", Total: 61, Budget: 330},
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("lines[%d] = %+v, want %+v", i, lines[i], w)
		}
	}
}

func TestBudgetSummaryExistingTotalRow(t *testing.T) {
	march := core.NewDate(2024, 3, 15)
	records := []core.Record{
		rec("1", march, "Bus", "Transport", 10, "", false),
	}
	budgets := []core.Budget{
		{Category: "Transport", Budget: 50},
		{Category: "Total", Budget: 999},
		{Category: "Clothing", Budget: 80},
	}

	lines := BudgetSummary(records, budgets, 3, 2024)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	// configured Total keeps its position and budget; spend is recomputed
	if lines[1].Category != "Total" || lines[1].Budget != 999 || lines[1].Total != 10 {
		t.Errorf("Total line = %+v, want position 1, budget 999, total 10", lines[1])
	}
}

func TestBudgetSummaryCaseSensitiveCategories(t *testing.T) {
	march := core.NewDate(2024, 3, 1)
	records := []core.Record{
		rec("1", march, "Bus", "transport", 10, "", false),
	}
	budgets := []core.Budget{{Category: "Transport", Budget: 50}}

	lines := BudgetSummary(records, budgets, 3, 2024)
	if lines[0].Total != 0 {
		t.Errorf("Transport total = %v, want 0 for case mismatch", lines[0].Total)
	}
}

func TestYearlyRollup(t *testing.T) {
	records := []core.Record{
		rec("1", core.NewDate(2024, 1, 10), "Bus", "Transport", 10, "", false),
		rec("2", core.NewDate(2024, 1, 20), "Shoes", "Clothing", 40, "", false),
		grocRec("3", core.NewDate(2024, 1, 5), "Milk", 3, ""),
		rec("4", core.NewDate(2023, 6, 1), "Old", "Transport", 99, "", false),
		rec("5", core.NewDate(2024, 12, 31), "Gift", "Other", 20, "", false),
	}

	rollup := YearlyRollup(records, 2024)
	if len(rollup) != 12 {
		t.Fatalf("len(rollup) = %d, want 12", len(rollup))
	}
	jan := rollup[0]
	if jan.Month != 1 || jan.Total != 53 {
		t.Fatalf("January = %+v, want month 1 total 53", jan)
	}
	wantCats := []CategoryAmount{
		{Name: "Transport", Amount: 10},
		{Name: "Clothing", Amount: 40},
		{Name: core.GroceryCategory, Amount: 3},
	}
	if len(jan.ByCategory) != len(wantCats) {
		t.Fatalf("January categories = %+v", jan.ByCategory)
	}
	for i, w := range wantCats {
		if jan.ByCategory[i] != w {
			t.Errorf("January category %d = %+v, want %+v", i, jan.ByCategory[i], w)
		}
	}
	for m := 2; m <= 11; m++ {
		if rollup[m-1].Total != 0 || len(rollup[m-1].ByCategory) != 0 {
			t.Errorf("month %d not zero-filled: %+v", m, rollup[m-1])
		}
	}
	if rollup[11].Total != 20 {
		t.Errorf("December total = %v, want 20", rollup[11].Total)
	}
}

func TestStoreDistribution(t *testing.T) {
	d := core.NewDate(2024, 3, 1)
	records := []core.Record{
		rec("1", d, "Milk", core.GroceryCategory, 30, "Walmart", true),
		rec("2", d, "Bus", "Transport", 10, "", false), // no store, excluded
		rec("3", d, "Shoes", "Clothing", 60, "Mall", false),
		rec("4", d, "Bread", core.GroceryCategory, 10, "Walmart", true),
	}

	shares := StoreDistribution(records)
	if len(shares) != 2 {
		t.Fatalf("len(shares) = %d, want 2", len(shares))
	}
	if shares[0].Store != "Mall" || shares[0].Total != 60 || shares[0].Percentage != 60 {
		t.Errorf("shares[0] = %+v, want Mall 60 at 60%%", shares[0])
	}
	if shares[1].Store != "Walmart" || shares[1].Total != 40 || shares[1].Percentage != 40 {
		t.Errorf("shares[1] = %+v, want Walmart 40 at 40%%", shares[1])
	}
}

func TestStoreDistributionZeroTotal(t *testing.T) {
	d := core.NewDate(2024, 3, 1)
	shares := StoreDistribution([]core.Record{
		rec("1", d, "Free", "Other", 0, "Mall", false),
	})
	if len(shares) != 1 {
		t.Fatalf("len(shares) = %d, want 1", len(shares))
	}
	if !math.IsNaN(shares[0].Percentage) {
		t.Errorf("Percentage = %v, want NaN for zero total", shares[0].Percentage)
	}
}

func TestStoreDistributionEmpty(t *testing.T) {
	if got := StoreDistribution(nil); len(got) != 0 {
		t.Errorf("StoreDistribution(nil) = %+v, want empty", got)
	}
}

func TestNameHistory(t *testing.T) {
	records := []core.Record{
		rec("1", core.NewDate(2024, 1, 1), "Milk", core.GroceryCategory, 3, "A", true),
		rec("2", core.NewDate(2024, 3, 1), "MILK", core.GroceryCategory, 4, "B", true),
		rec("3", core.NewDate(2024, 2, 1), "milk", "Other", 5, "C", false),
		rec("4", core.NewDate(2024, 2, 1), "Bread", core.GroceryCategory, 2, "A", true),
	}

	got := NameHistory(records, "Milk")
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	wantIDs := []string{"2", "3", "1"}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("got[%d].ID = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestNameHistoryNoMatch(t *testing.T) {
	records := []core.Record{
		rec("1", core.NewDate(2024, 1, 1), "Milk", core.GroceryCategory, 3, "A", true),
	}
	if got := NameHistory(records, "Cheese"); len(got) != 0 {
		t.Errorf("got %+v, want empty", got)
	}
}

func TestSubCategoryTotals(t *testing.T) {
	records := []core.Record{
		grocRec("1", core.NewDate(2024, 3, 1), "Milk", 3, "Dairy"),
		grocRec("2", core.NewDate(2024, 3, 5), "Cheese", 7, "Dairy"),
		grocRec("3", core.NewDate(2024, 3, 9), "Bread", 2, "Bakery"),
		grocRec("4", core.NewDate(2024, 3, 9), "Misc", 9, ""),                        // no sub-category
		grocRec("5", core.NewDate(2024, 4, 1), "Milk", 4, "Dairy"),                   // other month
		rec("6", core.NewDate(2024, 3, 2), "Shoes", "Clothing", 50, "Mall", false),   // not grocery
	}

	got := SubCategoryTotals(records, 3, 2024)
	want := []CategoryAmount{
		{Name: "Dairy", Amount: 10},
		{Name: "Bakery", Amount: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
