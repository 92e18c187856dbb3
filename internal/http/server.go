// Package http exposes the tracker's JSON API: record entry and edits,
// budget configuration, the read-side reports, form lookups, and the
// receipt parser.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/pspuri91/expense-tracker/internal/cache"
	"github.com/pspuri91/expense-tracker/internal/core"
	"github.com/pspuri91/expense-tracker/internal/log"
	"github.com/pspuri91/expense-tracker/internal/middleware/trace"
	"github.com/pspuri91/expense-tracker/internal/services"
	"github.com/pspuri91/expense-tracker/internal/sheets"
)

const recordsCacheKey = "records"

// Server wraps http.Server with the tracker's routes, caches, and rate
// limiting. Read endpoints serve from short-lived caches that every mutation
// purges, so a sheet-backed store is not re-read on each request.
type Server struct {
	http.Server

	store   sheets.Store
	lookups *services.LookupService
	logger  *log.Logger

	records   *cache.LRU[[]core.Record]
	summaries *cache.LRU[budgetResponse]
	limiter   *rateLimiter
	tracer    *trace.Middleware
}

// NewServer builds a Server listening on addr. manager may be nil when no
// background cache sweeping is wanted (tests).
func NewServer(addr string, store sheets.Store, lookups *services.LookupService, manager *cache.Manager, cacheTTL time.Duration, logger *log.Logger) *Server {
	s := &Server{
		store:     store,
		lookups:   lookups,
		logger:    logger.WithComponent(log.ComponentHTTP),
		records:   cache.NewLRU[[]core.Record](1, cacheTTL),
		summaries: cache.NewLRU[budgetResponse](24, cacheTTL),
		limiter:   newRateLimiter(),
	}
	s.tracer = trace.NewMiddleware(extractClientIP, logger)

	if manager != nil {
		manager.Register(s.records)
		manager.Register(s.summaries)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/records", s.handleRecords)
	mux.HandleFunc("/api/records/history", s.handleHistory)
	mux.HandleFunc("/api/budget", s.handleBudget)
	mux.HandleFunc("/api/overview/yearly", s.handleYearlyOverview)
	mux.HandleFunc("/api/stores/distribution", s.handleStoreDistribution)
	mux.HandleFunc("/api/stores", s.handleStores)
	mux.HandleFunc("/api/names", s.handleNames)
	mux.HandleFunc("/api/subcategories", s.handleSubCategories)
	mux.HandleFunc("/api/grocery-subcategories", s.handleGrocerySubCategories)
	mux.HandleFunc("/api/receipt/parse", s.handleReceiptParse)

	s.Addr = addr
	s.Handler = log.Middleware(logger)(s.tracer.Middleware(s.withSecurity(mux)))
	s.ReadHeaderTimeout = 10 * time.Second

	return s
}

// withSecurity adds security headers and applies the per-IP rate limit to
// mutating methods.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.limiter.allow(extractClientIP(r)) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the rate limiter's cleanup goroutine, then drains in-flight
// requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()
	s.logger.InfoContext(ctx, "rate limiter stopped",
		"rate_limit_hits", s.limiter.rateLimitHits())
	return s.Server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// listRecords returns the merged record set, served from cache when fresh.
func (s *Server) listRecords(ctx context.Context) ([]core.Record, error) {
	if cached, ok := s.records.Get(recordsCacheKey); ok {
		return cached, nil
	}

	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	s.records.Set(recordsCacheKey, records)
	return records, nil
}

// invalidate drops every derived view after a mutation.
func (s *Server) invalidate() {
	s.records.Purge()
	s.summaries.Purge()
	if s.lookups != nil {
		s.lookups.Invalidate()
	}
}
