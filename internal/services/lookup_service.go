package services

import (
	"context"
	"time"

	"github.com/pspuri91/expense-tracker/internal/cache"
	"github.com/pspuri91/expense-tracker/internal/log"
	ports "github.com/pspuri91/expense-tracker/internal/sheets"
)

// Cache keys; each lookup cache holds a single entry.
const (
	storesKey        = "stores"
	namesKey         = "names"
	subCategoriesKey = "subcategories"
)

// LookupService serves the typeahead vocabularies (store names, record
// names, grocery sub-categories) from read-through caches over the record
// set. Mutations must call Invalidate so the next read sees fresh data.
type LookupService struct {
	lister ports.RecordLister
	logger *log.Logger

	stores        *cache.LRU[[]string]
	names         *cache.LRU[[]string]
	subCategories *cache.LRU[[]string]
}

// NewLookupService builds the service and registers its caches with the
// manager for expiry sweeps.
func NewLookupService(lister ports.RecordLister, logger *log.Logger, manager *cache.Manager, ttl time.Duration) *LookupService {
	s := &LookupService{
		lister:        lister,
		logger:        logger.WithComponent(log.ComponentLookup),
		stores:        cache.NewLRU[[]string](1, ttl),
		names:         cache.NewLRU[[]string](1, ttl),
		subCategories: cache.NewLRU[[]string](1, ttl),
	}
	if manager != nil {
		manager.Register(s.stores)
		manager.Register(s.names)
		manager.Register(s.subCategories)
	}
	return s
}

// Stores returns the distinct non-empty store names, first-seen order.
func (s *LookupService) Stores(ctx context.Context) ([]string, error) {
	if cached, ok := s.stores.Get(storesKey); ok {
		return cached, nil
	}
	records, err := s.lister.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0)
	seen := map[string]struct{}{}
	for _, r := range records {
		collect(&out, seen, r.Store)
	}
	s.refreshed(ctx, s.stores, storesKey, out)
	return out, nil
}

// Names returns the distinct non-empty record names, first-seen order.
func (s *LookupService) Names(ctx context.Context) ([]string, error) {
	if cached, ok := s.names.Get(namesKey); ok {
		return cached, nil
	}
	records, err := s.lister.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0)
	seen := map[string]struct{}{}
	for _, r := range records {
		collect(&out, seen, r.Name)
	}
	s.refreshed(ctx, s.names, namesKey, out)
	return out, nil
}

// SubCategories returns the distinct non-empty grocery sub-categories,
// first-seen order.
func (s *LookupService) SubCategories(ctx context.Context) ([]string, error) {
	if cached, ok := s.subCategories.Get(subCategoriesKey); ok {
		return cached, nil
	}
	records, err := s.lister.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0)
	seen := map[string]struct{}{}
	for _, r := range records {
		if !r.IsGrocery {
			continue
		}
		collect(&out, seen, r.SubCategory)
	}
	s.refreshed(ctx, s.subCategories, subCategoriesKey, out)
	return out, nil
}

// Invalidate drops every cached vocabulary. Call after any record mutation.
func (s *LookupService) Invalidate() {
	s.stores.Purge()
	s.names.Purge()
	s.subCategories.Purge()
}

func (s *LookupService) refreshed(ctx context.Context, c *cache.LRU[[]string], key string, values []string) {
	c.Set(key, values)
	s.logger.DebugContext(ctx, "lookup cache refreshed", "key", key, "values", len(values))
}

func collect(out *[]string, seen map[string]struct{}, v string) {
	if v == "" {
		return
	}
	if _, ok := seen[v]; ok {
		return
	}
	seen[v] = struct{}{}
	*out = append(*out, v)
}
