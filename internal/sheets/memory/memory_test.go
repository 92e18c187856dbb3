package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/pspuri91/expense-tracker/internal/core"
)

func testRecord(name string, grocery bool) core.Record {
	return core.Record{
		Date:      core.NewDate(2024, 3, 15),
		Name:      name,
		Category:  "Transport",
		Price:     10,
		IsGrocery: grocery,
	}
}

func TestAppendAssignsSequentialIDs(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	first, err := s.Append(ctx, testRecord("Bus", false))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if first.ID != "2" {
		t.Errorf("first expense id = %s, want 2", first.ID)
	}
	second, _ := s.Append(ctx, testRecord("Train", false))
	if second.ID != "3" {
		t.Errorf("second expense id = %s, want 3", second.ID)
	}

	// groceries number independently, they live in their own tab
	g, _ := s.Append(ctx, testRecord("Milk", true))
	if g.ID != "2" {
		t.Errorf("first grocery id = %s, want 2", g.ID)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := New(nil)
	r := testRecord("", false)
	if _, err := s.Append(context.Background(), r); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("Append(empty name) = %v, want ErrEmptyName", err)
	}
}

func TestListRecordsMergesTabs(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	s.Append(ctx, testRecord("Bus", false))
	s.Append(ctx, testRecord("Milk", true))

	records, err := s.ListRecords(ctx)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].Name != "Bus" || records[1].Name != "Milk" {
		t.Errorf("order = %s, %s; want expenses first", records[0].Name, records[1].Name)
	}
}

func TestUpdate(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	stored, _ := s.Append(ctx, testRecord("Bus", false))

	stored.Price = 12.5
	if err := s.Update(ctx, stored); err != nil {
		t.Fatalf("Update: %v", err)
	}
	records, _ := s.ListRecords(ctx)
	if records[0].Price != 12.5 {
		t.Errorf("Price = %v, want 12.5", records[0].Price)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s := New(nil)
	r := testRecord("Bus", false)
	r.ID = "99"
	if err := s.Update(context.Background(), r); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update(unknown id) = %v, want ErrNotFound", err)
	}
}

func TestBudgets(t *testing.T) {
	s := New([]core.Budget{
		{Category: "Transport", Budget: 50},
		{Category: core.GroceryCategory, Budget: 200},
	})
	ctx := context.Background()

	budgets, err := s.ListBudgets(ctx)
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(budgets) != 2 || budgets[0].Category != "Transport" {
		t.Fatalf("budgets = %+v", budgets)
	}

	if err := s.UpdateBudget(ctx, "Transport", 75); err != nil {
		t.Fatalf("UpdateBudget: %v", err)
	}
	budgets, _ = s.ListBudgets(ctx)
	if budgets[0].Budget != 75 {
		t.Errorf("Transport budget = %v, want 75", budgets[0].Budget)
	}

	if err := s.UpdateBudget(ctx, "Missing", 10); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateBudget(missing) = %v, want ErrNotFound", err)
	}
}
