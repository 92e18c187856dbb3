package http

import (
	"net/http"

	"github.com/pspuri91/expense-tracker/internal/core"
	"github.com/pspuri91/expense-tracker/internal/report"
)

// handleYearlyOverview serves twelve month rows for the requested year, every
// month present even when empty.
func (s *Server) handleYearlyOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	records, err := s.listRecords(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "failed to list records")
		return
	}

	year := ParseYearParam(r.URL.Query())
	writeJSON(w, http.StatusOK, report.YearlyRollup(records, year))
}

// handleStoreDistribution serves per-store spending shares, narrowed to one
// UTC month when both month and year parameters are present, all-time
// otherwise.
func (s *Server) handleStoreDistribution(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	records, err := s.listRecords(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "failed to list records")
		return
	}

	query := r.URL.Query()
	if query.Get("month") != "" && query.Get("year") != "" {
		params := ParseMonthParams(query)
		filtered := make([]core.Record, 0, len(records))
		for _, rec := range records {
			if rec.Date.InMonth(params.Year, params.Month) {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	writeJSON(w, http.StatusOK, report.StoreDistribution(records))
}

// handleGrocerySubCategories serves grocery spending per sub-category for one
// UTC month.
func (s *Server) handleGrocerySubCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	records, err := s.listRecords(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "failed to list records")
		return
	}

	params := ParseMonthParams(r.URL.Query())
	writeJSON(w, http.StatusOK, report.SubCategoryTotals(records, params.Month, params.Year))
}
