package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pspuri91/expense-tracker/internal/core"
	"github.com/pspuri91/expense-tracker/internal/log"
	"github.com/pspuri91/expense-tracker/internal/report"
	"github.com/pspuri91/expense-tracker/internal/services"
	"github.com/pspuri91/expense-tracker/internal/sheets/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store := memory.New([]core.Budget{
		{Category: "Grocery", Budget: 200},
		{Category: "Transport", Budget: 100},
		{Category: "Total", Budget: 300},
	})
	logger := log.New(log.DefaultConfig())
	lookups := services.NewLookupService(store, logger, nil, time.Minute)

	srv := NewServer("127.0.0.1:0", store, lookups, nil, time.Minute, logger)
	t.Cleanup(srv.limiter.stop)
	return srv
}

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	if w := doRequest(t, srv, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("healthz = %d %q, want 200 ok", w.Code, w.Body.String())
	}
	if w := doRequest(t, srv, http.MethodGet, "/readyz", ""); w.Code != http.StatusOK || w.Body.String() != "ready" {
		t.Errorf("readyz = %d %q, want 200 ready", w.Code, w.Body.String())
	}
}

func TestCreateAndListRecords(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-01-15","name":"Bus pass","category":"Transport","price":40,"store":"Metro"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	created := decodeBody[messageResponse](t, w)
	if created.ID != "2" {
		t.Errorf("first record id = %q, want %q", created.ID, "2")
	}

	w = doRequest(t, srv, http.MethodGet, "/api/records", "")
	records := decodeBody[[]core.Record](t, w)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].ID != "2" || records[0].Name != "Bus pass" || records[0].Date.String() != "2025-01-15" {
		t.Errorf("unexpected record %+v", records[0])
	}

	// Month filtering only applies when both parameters are present.
	w = doRequest(t, srv, http.MethodGet, "/api/records?month=2&year=2025", "")
	if filtered := decodeBody[[]core.Record](t, w); len(filtered) != 0 {
		t.Errorf("got %d records for empty month, want 0", len(filtered))
	}
	w = doRequest(t, srv, http.MethodGet, "/api/records?month=1&year=2025", "")
	if filtered := decodeBody[[]core.Record](t, w); len(filtered) != 1 {
		t.Errorf("got %d records for January, want 1", len(filtered))
	}
}

func TestCreateRecordValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty values", `{"values":[]}`},
		{"missing name", `{"values":[{"date":"2025-01-15","price":5}]}`},
		{"negative price", `{"values":[{"date":"2025-01-15","name":"Milk","price":-1}]}`},
		{"missing date", `{"values":[{"name":"Milk","price":5}]}`},
		{"malformed json", `{"values":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doRequest(t, srv, http.MethodPost, "/api/records", tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestUpdateRecord(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-01-15","name":"Bus pass","category":"Transport","price":40}]}`)

	w := doRequest(t, srv, http.MethodPut, "/api/records",
		`{"id":"2","values":{"date":"2025-01-15","name":"Bus pass","category":"Transport","price":45}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}

	// The read cache must not serve the stale record.
	w = doRequest(t, srv, http.MethodGet, "/api/records", "")
	records := decodeBody[[]core.Record](t, w)
	if len(records) != 1 || records[0].Price != 45 {
		t.Errorf("got %+v, want one record with price 45", records)
	}
}

func TestSellerRateDerivedOnWrite(t *testing.T) {
	srv := newTestServer(t)

	// The per-pound rate is derived from the per-kg rate regardless of what
	// the client sends, on every backend.
	w := doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-01-15","name":"Beef","isGrocery":true,"price":20,"unit":"per kg/per lb","sellerRate":10,"sellerRateInLb":99}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}

	w = doRequest(t, srv, http.MethodGet, "/api/records", "")
	records := decodeBody[[]core.Record](t, w)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if want := 10 / core.LbPerKg; records[0].SellerRateInLb != want {
		t.Errorf("SellerRateInLb = %v, want %v", records[0].SellerRateInLb, want)
	}

	// Switching off the weight unit clears the derived rate on update.
	w = doRequest(t, srv, http.MethodPut, "/api/records",
		`{"id":"2","values":{"date":"2025-01-15","name":"Beef","isGrocery":true,"price":20,"unit":"each","sellerRate":10,"sellerRateInLb":99}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}

	w = doRequest(t, srv, http.MethodGet, "/api/records", "")
	records = decodeBody[[]core.Record](t, w)
	if records[0].SellerRateInLb != 0 {
		t.Errorf("SellerRateInLb after unit change = %v, want 0", records[0].SellerRateInLb)
	}
}

func TestUpdateRecordNotFound(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodPut, "/api/records",
		`{"id":"99","values":{"date":"2025-01-15","name":"Ghost","price":1}}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestBudgetSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-03-10","name":"Bus pass","category":"Transport","price":40}]}`)
	doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-03-12","name":"Milk","isGrocery":true,"price":25}]}`)

	w := doRequest(t, srv, http.MethodGet, "/api/budget?month=3&year=2025", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeBody[budgetResponse](t, w)

	if resp.TotalExpenses != 65 {
		t.Errorf("totalExpenses = %v, want 65", resp.TotalExpenses)
	}
	want := map[string]report.BudgetLine{
		"Grocery":   {Category: "Grocery", Total: 25, Budget: 200},
		"Transport": {Category: "Transport", Total: 40, Budget: 100},
		"Total":     {Category: "Total", Total: 65, Budget: 300},
	}
	for _, line := range resp.BudgetData {
		if w, ok := want[line.Category]; ok && line != w {
			t.Errorf("line %s = %+v, want %+v", line.Category, line, w)
		}
	}
}

func TestUpdateBudgetEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodPut, "/api/budget", `{"category":"Transport","budget":150}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	w = doRequest(t, srv, http.MethodGet, "/api/budget?month=1&year=2025", "")
	resp := decodeBody[budgetResponse](t, w)
	found := false
	for _, line := range resp.BudgetData {
		if line.Category == "Transport" {
			found = true
			if line.Budget != 150 {
				t.Errorf("Transport budget = %v, want 150", line.Budget)
			}
		}
	}
	if !found {
		t.Error("Transport line missing from summary")
	}

	if w := doRequest(t, srv, http.MethodPut, "/api/budget", `{"category":"Nope","budget":5}`); w.Code != http.StatusNotFound {
		t.Errorf("unknown category status = %d, want 404", w.Code)
	}
	if w := doRequest(t, srv, http.MethodPut, "/api/budget", `{"category":"Transport","budget":-5}`); w.Code != http.StatusBadRequest {
		t.Errorf("negative budget status = %d, want 400", w.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-01-10","name":"Milk","isGrocery":true,"price":4}]}`)
	doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-02-10","name":"MILK","isGrocery":true,"price":5}]}`)
	doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-01-20","name":"Bread","isGrocery":true,"price":3}]}`)

	if w := doRequest(t, srv, http.MethodGet, "/api/records/history", ""); w.Code != http.StatusBadRequest {
		t.Errorf("missing name status = %d, want 400", w.Code)
	}

	w := doRequest(t, srv, http.MethodGet, "/api/records/history?name=milk", "")
	records := decodeBody[[]core.Record](t, w)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Price != 5 || records[1].Price != 4 {
		t.Errorf("history not newest first: %+v", records)
	}
}

func TestYearlyOverviewEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-06-10","name":"Milk","isGrocery":true,"price":10}]}`)

	w := doRequest(t, srv, http.MethodGet, "/api/overview/yearly?year=2025", "")
	months := decodeBody[[]report.MonthRollup](t, w)
	if len(months) != 12 {
		t.Fatalf("got %d months, want 12", len(months))
	}
	if months[5].Total != 10 {
		t.Errorf("June total = %v, want 10", months[5].Total)
	}
	if months[0].Total != 0 || months[0].ByCategory == nil {
		t.Errorf("empty month not zero-filled: %+v", months[0])
	}
}

func TestStoreDistributionEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-01-10","name":"Milk","isGrocery":true,"price":60,"store":"Walmart"}]}`)
	doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-01-11","name":"Socks","category":"Clothing","price":40,"store":"Mall"}]}`)

	w := doRequest(t, srv, http.MethodGet, "/api/stores/distribution", "")
	shares := decodeBody[[]report.StoreShare](t, w)
	if len(shares) != 2 {
		t.Fatalf("got %d shares, want 2", len(shares))
	}
	if shares[0].Store != "Walmart" || shares[0].Percentage != 60 {
		t.Errorf("top share = %+v, want Walmart at 60%%", shares[0])
	}

	// Narrowed to a month with no spending, the distribution is empty.
	w = doRequest(t, srv, http.MethodGet, "/api/stores/distribution?month=2&year=2025", "")
	if shares := decodeBody[[]report.StoreShare](t, w); len(shares) != 0 {
		t.Errorf("got %d shares for empty month, want 0", len(shares))
	}
}

func TestLookupEndpoints(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-01-10","name":"Milk","isGrocery":true,"price":4,"store":"Walmart","subCategory":"Dairy"}]}`)
	doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-01-11","name":"Bus pass","category":"Transport","price":40,"store":"Metro"}]}`)

	w := doRequest(t, srv, http.MethodGet, "/api/stores", "")
	stores := decodeBody[[]string](t, w)
	if len(stores) != 2 {
		t.Errorf("stores = %v, want 2 entries", stores)
	}

	w = doRequest(t, srv, http.MethodGet, "/api/names", "")
	names := decodeBody[[]string](t, w)
	if len(names) != 2 {
		t.Errorf("names = %v, want 2 entries", names)
	}

	w = doRequest(t, srv, http.MethodGet, "/api/subcategories", "")
	subs := decodeBody[[]string](t, w)
	if len(subs) != 1 || subs[0] != "Dairy" {
		t.Errorf("subcategories = %v, want [Dairy]", subs)
	}
}

func TestGrocerySubCategoriesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-01-10","name":"Milk","isGrocery":true,"price":4,"subCategory":"Dairy"}]}`)
	doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-01-12","name":"Cheese","isGrocery":true,"price":6,"subCategory":"Dairy"}]}`)

	w := doRequest(t, srv, http.MethodGet, "/api/grocery-subcategories?month=1&year=2025", "")
	totals := decodeBody[[]report.CategoryAmount](t, w)
	if len(totals) != 1 || totals[0].Name != "Dairy" || totals[0].Amount != 10 {
		t.Errorf("totals = %+v, want Dairy 10", totals)
	}
}

func TestReceiptParseEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, http.MethodPost, "/api/records",
		`{"values":[{"date":"2025-01-10","name":"Milk","isGrocery":true,"price":4,"store":"Walmart"}]}`)

	if w := doRequest(t, srv, http.MethodPost, "/api/receipt/parse", `{"text":""}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty text status = %d, want 400", w.Code)
	}

	w := doRequest(t, srv, http.MethodPost, "/api/receipt/parse",
		`{"text":"WALMART\n01/15/2025\nMILK 2% $4.29"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	parsed := decodeBody[map[string]any](t, w)
	if parsed["store"] != "Walmart" {
		t.Errorf("store = %v, want Walmart", parsed["store"])
	}
	if parsed["date"] != "2025-01-15" {
		t.Errorf("date = %v, want 2025-01-15", parsed["date"])
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	srv := newTestServer(t)

	var last *httptest.ResponseRecorder
	for i := 0; i < 61; i++ {
		last = doRequest(t, srv, http.MethodPost, "/api/receipt/parse", `{"text":"x"}`)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status after 61 requests = %d, want 429", last.Code)
	}
	if last.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want 60", last.Header().Get("Retry-After"))
	}
	if hits := srv.limiter.rateLimitHits(); hits != 1 {
		t.Errorf("rateLimitHits = %d, want 1", hits)
	}

	// Reads are never rate limited.
	if w := doRequest(t, srv, http.MethodGet, "/api/records", ""); w.Code != http.StatusOK {
		t.Errorf("GET status = %d, want 200", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/records", "")
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}
