package http

import (
	"net/http"
	"strings"

	"github.com/pspuri91/expense-tracker/internal/log"
	"github.com/pspuri91/expense-tracker/internal/receipt"
)

type parseReceiptRequest struct {
	Text string `json:"text"`
}

// handleReceiptParse extracts a best-effort partial record from OCR text.
// Known store names sharpen the fuzzy store match; if the lookup fails the
// parser simply runs without them.
func (s *Server) handleReceiptParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req parseReceiptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "missing receipt text")
		return
	}

	var knownStores []string
	if s.lookups != nil {
		stores, err := s.lookups.Stores(r.Context())
		if err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(),
				"store lookup failed, parsing receipt without known stores",
				log.FieldError, err)
		} else {
			knownStores = stores
		}
	}

	writeJSON(w, http.StatusOK, receipt.Parse(req.Text, knownStores))
}
