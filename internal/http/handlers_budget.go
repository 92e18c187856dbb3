package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pspuri91/expense-tracker/internal/report"
)

// budgetResponse pairs the per-category lines with the month's grand total.
type budgetResponse struct {
	BudgetData    []report.BudgetLine `json:"budgetData"`
	TotalExpenses float64             `json:"totalExpenses"`
}

type updateBudgetRequest struct {
	Category string  `json:"category"`
	Budget   float64 `json:"budget"`
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.budgetSummary(w, r)
	case http.MethodPut:
		s.updateBudget(w, r)
	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// budgetSummary serves the month's budget-versus-spend lines. Summaries are
// cached per month until the next mutation.
func (s *Server) budgetSummary(w http.ResponseWriter, r *http.Request) {
	params := ParseMonthParams(r.URL.Query())
	key := fmt.Sprintf("%d-%d", params.Year, params.Month)

	if cached, ok := s.summaries.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	records, err := s.listRecords(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "failed to list records")
		return
	}
	budgets, err := s.store.ListBudgets(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "failed to list budgets")
		return
	}

	lines := report.BudgetSummary(records, budgets, params.Month, params.Year)

	total := 0.0
	for _, line := range lines {
		if line.Category != report.TotalCategory {
			total += line.Total
		}
	}

	resp := budgetResponse{BudgetData: lines, TotalExpenses: total}
	s.summaries.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) updateBudget(w http.ResponseWriter, r *http.Request) {
	var req updateBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		writeError(w, http.StatusBadRequest, "missing category")
		return
	}
	if req.Budget < 0 {
		writeError(w, http.StatusBadRequest, "budget must not be negative")
		return
	}

	if err := s.store.UpdateBudget(r.Context(), req.Category, req.Budget); err != nil {
		writeStoreError(w, r, err, "failed to update budget")
		return
	}

	s.summaries.Purge()
	writeJSON(w, http.StatusOK, messageResponse{Message: "Budget updated successfully"})
}
