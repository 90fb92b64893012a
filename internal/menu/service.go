package menu

import (
	"context"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/jimmynenos/ordering-backend/pkg/errors"
	"github.com/jimmynenos/ordering-backend/pkg/logger"
	"github.com/jimmynenos/ordering-backend/pkg/metrics"
)

// Service owns the current search index and the catalog load path. Reads and
// the wholesale index swap on reload are the only synchronized operations;
// the index itself is immutable once built.
type Service struct {
	mu      sync.RWMutex
	index   *Index
	fetcher Fetcher
	cache   *Cache
	logg    *logger.Logger
	metrics *metrics.OrderingMetrics
}

func NewService(fetcher Fetcher, cache *Cache, logg *logger.Logger, m *metrics.OrderingMetrics) (*Service, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("catalog fetcher required")
	}
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		logg:    logg,
		metrics: m,
	}, nil
}

// Load obtains the catalog (cache first, then upstream) and swaps in a fresh
// index. On upstream failure with no index already loaded the service stays
// unavailable; an existing index is kept so ordering can continue on stale
// data only if it was loaded this process lifetime.
func (s *Service) Load(ctx context.Context) error {
	start := time.Now()

	items, hit, err := s.cache.Get(ctx)
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "menu cache read failed")
	}
	source := "cache"

	if !hit {
		source = "upstream"
		items, err = s.fetcher.FetchMenu(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu catalog")
		}
		if cacheErr := s.cache.Put(ctx, items); cacheErr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", cacheErr.Error()), "menu cache write failed")
		}
	}

	index := NewIndex(items)

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()

	s.metrics.ObserveMenuLoad(source, time.Since(start))
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"items": index.Len(), "source": source})
		s.logg.Info(ctx, "menu catalog loaded")
	}
	return nil
}

// Index returns the current index, or a dependency error when no catalog has
// been obtained yet. Callers must treat the error as "service temporarily
// unavailable" and refuse ordering.
func (s *Service) Index() (*Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "menu is not available right now")
	}
	return s.index, nil
}

// Search runs a ranked fuzzy search against the current index.
func (s *Service) Search(query string, limit int, minScore float64) ([]Match, error) {
	ix, err := s.Index()
	if err != nil {
		return nil, err
	}
	matches := ix.Search(query, limit, minScore)
	s.metrics.IncSearch(len(matches) > 0)
	return matches, nil
}

// ResolveItem resolves a single definitive item, or nil when nothing clears
// the stricter cutoff. Zero minScore uses the built-in cutoff.
func (s *Service) ResolveItem(query string, minScore float64) (*Item, error) {
	ix, err := s.Index()
	if err != nil {
		return nil, err
	}
	return ix.ResolveItem(query, minScore), nil
}

// ItemByID looks up a catalog item by exact id.
func (s *Service) ItemByID(id ItemID) (*Item, error) {
	ix, err := s.Index()
	if err != nil {
		return nil, err
	}
	return ix.ItemByID(id), nil
}

// ItemByName looks up a catalog item by exact (case-insensitive) name.
func (s *Service) ItemByName(name string) (*Item, error) {
	ix, err := s.Index()
	if err != nil {
		return nil, err
	}
	return ix.ItemByName(name), nil
}

// Suggestions returns loose name suggestions for a query. Zero minScore uses
// the built-in cutoff.
func (s *Service) Suggestions(query string, limit int, minScore float64) ([]string, error) {
	ix, err := s.Index()
	if err != nil {
		return nil, err
	}
	return ix.Suggestions(query, limit, minScore), nil
}

// Categories lists all category names.
func (s *Service) Categories() ([]string, error) {
	ix, err := s.Index()
	if err != nil {
		return nil, err
	}
	return ix.Categories(), nil
}

// ItemsInCategory lists a category's items.
func (s *Service) ItemsInCategory(category string) ([]*Item, error) {
	ix, err := s.Index()
	if err != nil {
		return nil, err
	}
	return ix.ItemsInCategory(category), nil
}

// Summary renders the spoken-menu overview.
func (s *Service) Summary(maxPerCategory int) (string, error) {
	ix, err := s.Index()
	if err != nil {
		return "", err
	}
	return ix.Summary(maxPerCategory), nil
}
