package core

import (
	"math"
	"testing"
)

func TestRecordValidate(t *testing.T) {
	good := Record{Date: NewDate(2024, 1, 5), Name: "Milk", Price: 3.5}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// Zero price is legal.
	free := Record{Date: NewDate(2024, 1, 5), Name: "Sample"}
	if err := free.Validate(); err != nil {
		t.Fatalf("zero price should validate, got %v", err)
	}

	bads := []Record{
		{Name: "Milk", Price: 1},                              // zero date
		{Date: NewDate(2024, 1, 5), Name: "  ", Price: 1},     // blank name
		{Date: NewDate(2024, 1, 5), Name: "Milk", Price: -1},  // negative price
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Errorf("case %d expected error", i)
		}
	}
}

func TestEffectiveCategory(t *testing.T) {
	g := Record{IsGrocery: true, Category: "whatever"}
	if got := g.EffectiveCategory(); got != GroceryCategory {
		t.Errorf("grocery EffectiveCategory = %q, want %q", got, GroceryCategory)
	}
	e := Record{Category: "Transport"}
	if got := e.EffectiveCategory(); got != "Transport" {
		t.Errorf("expense EffectiveCategory = %q, want Transport", got)
	}
}

func TestSyncSellerRate(t *testing.T) {
	r := Record{IsGrocery: true, Unit: WeightUnit, SellerRate: 11.0231}
	r.SyncSellerRate()
	if math.Abs(r.SellerRateInLb-11.0231/LbPerKg) > 1e-9 {
		t.Errorf("SellerRateInLb = %v, want %v", r.SellerRateInLb, 11.0231/LbPerKg)
	}

	// "each" items carry no per-pound rate.
	each := Record{IsGrocery: true, Unit: "each", SellerRate: 4, SellerRateInLb: 2}
	each.SyncSellerRate()
	if each.SellerRateInLb != 0 {
		t.Errorf("each-unit SellerRateInLb = %v, want 0", each.SellerRateInLb)
	}

	// A zero rate leaves the stored per-pound value alone: the sheet may hold
	// hand-entered values we tolerate rather than clobber.
	hand := Record{IsGrocery: true, Unit: WeightUnit, SellerRateInLb: 1.25}
	hand.SyncSellerRate()
	if hand.SellerRateInLb != 1.25 {
		t.Errorf("hand-entered SellerRateInLb = %v, want 1.25", hand.SellerRateInLb)
	}
}
