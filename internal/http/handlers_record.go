package http

import (
	"net/http"
	"strings"

	"github.com/pspuri91/expense-tracker/internal/core"
	"github.com/pspuri91/expense-tracker/internal/log"
	"github.com/pspuri91/expense-tracker/internal/report"
)

// createRecordRequest mirrors the entry form submission: a single new record
// wrapped in a values array.
type createRecordRequest struct {
	Values []core.Record `json:"values"`
}

// updateRecordRequest carries the target id alongside the replacement fields.
type updateRecordRequest struct {
	ID     string      `json:"id"`
	Values core.Record `json:"values"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRecordsHandler(w, r)
	case http.MethodPost:
		s.createRecord(w, r)
	case http.MethodPut:
		s.updateRecord(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// listRecordsHandler returns every record, optionally narrowed to one UTC
// month when both month and year query parameters are present.
func (s *Server) listRecordsHandler(w http.ResponseWriter, r *http.Request) {
	records, err := s.listRecords(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "failed to list records")
		return
	}

	query := r.URL.Query()
	if query.Get("month") != "" && query.Get("year") != "" {
		params := ParseMonthParams(query)
		filtered := make([]core.Record, 0)
		for _, rec := range records {
			if rec.Date.InMonth(params.Year, params.Month) {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Values) == 0 {
		writeError(w, http.StatusBadRequest, "invalid or empty values")
		return
	}

	record := req.Values[0]
	record.ID = "" // the store assigns ids
	record.SyncSellerRate()
	if err := record.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, err := s.store.Append(r.Context(), record)
	if err != nil {
		writeStoreError(w, r, err, "failed to append record")
		return
	}

	s.invalidate()
	log.FromContext(r.Context()).InfoContext(r.Context(), "record created",
		log.FieldRecordID, stored.ID,
		log.FieldRecordName, stored.Name,
		log.FieldGrocery, stored.IsGrocery)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Data appended successfully", ID: stored.ID})
}

func (s *Server) updateRecord(w http.ResponseWriter, r *http.Request) {
	var req updateRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "missing record id")
		return
	}

	record := req.Values
	record.ID = req.ID
	record.SyncSellerRate()
	if err := record.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.Update(r.Context(), record); err != nil {
		writeStoreError(w, r, err, "failed to update record")
		return
	}

	s.invalidate()
	writeJSON(w, http.StatusOK, messageResponse{Message: "Record updated successfully"})
}

// handleHistory lists every record matching a name, newest first. The match
// is exact but case-insensitive.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name parameter")
		return
	}

	records, err := s.listRecords(r.Context())
	if err != nil {
		writeStoreError(w, r, err, "failed to list records")
		return
	}

	writeJSON(w, http.StatusOK, report.NameHistory(records, name))
}
