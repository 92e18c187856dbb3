package http

import (
	"context"
	"net/http"
)

// The lookup endpoints feed entry-form dropdowns: distinct stores and names
// across both record types, and sub-categories from groceries only.

func (s *Server) handleStores(w http.ResponseWriter, r *http.Request) {
	s.lookup(w, r, s.lookups.Stores, "failed to list stores")
}

func (s *Server) handleNames(w http.ResponseWriter, r *http.Request) {
	s.lookup(w, r, s.lookups.Names, "failed to list names")
}

func (s *Server) handleSubCategories(w http.ResponseWriter, r *http.Request) {
	s.lookup(w, r, s.lookups.SubCategories, "failed to list sub-categories")
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request, fetch func(context.Context) ([]string, error), msg string) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	values, err := fetch(r.Context())
	if err != nil {
		writeStoreError(w, r, err, msg)
		return
	}
	if values == nil {
		values = []string{}
	}

	writeJSON(w, http.StatusOK, values)
}
