package services

import (
	"context"
	"strings"

	"github.com/poofware/rental-service/internal/cache"
	"github.com/poofware/rental-service/internal/constants"
	"github.com/poofware/rental-service/internal/dtos"
	"github.com/poofware/rental-service/internal/models"
	"github.com/poofware/rental-service/internal/repositories"
	"github.com/poofware/rental-service/internal/utils"
)

const msgSearchQueryRequired = "Query parameter 'q' is required."

// SearchService ranks active properties against free text. City and
// country outweigh the title, the title outweighs the address, and the
// description counts least.
type SearchService interface {
	Search(ctx context.Context, q string) ([]dtos.PropertySummary, error)
	// RebuildIndex recomputes every property's search vector.
	RebuildIndex(ctx context.Context) error
}

type searchService struct {
	propertyRepo repositories.PropertyRepository
	cache        cache.Store
}

func NewSearchService(propertyRepo repositories.PropertyRepository, store cache.Store) SearchService {
	return &searchService{propertyRepo: propertyRepo, cache: store}
}

func (s *searchService) Search(ctx context.Context, q string) ([]dtos.PropertySummary, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, utils.NewValidationError(msgSearchQueryRequired, nil)
	}

	key := cache.Key(constants.SearchCachePrefix, map[string]string{"q": strings.ToLower(q)})
	var cached []dtos.PropertySummary
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	listings, err := s.propertyRepo.Search(ctx, q, constants.SearchResultLimit)
	if err != nil {
		return nil, utils.NewInternalError("Search failed", err)
	}
	results := mapSlice(listings, func(l *models.PropertyListing) dtos.PropertySummary {
		return toPropertySummary(l, true)
	})
	s.cache.Set(ctx, key, results, constants.SearchCacheTTL)
	return results, nil
}

func (s *searchService) RebuildIndex(ctx context.Context) error {
	n, err := s.propertyRepo.RefreshSearchVectors(ctx)
	if err != nil {
		return err
	}
	utils.Logger.Infof("Search index rebuilt: %d properties refreshed", n)
	if n > 0 {
		invalidate(ctx, s.cache, constants.SearchCachePrefix)
	}
	return nil
}
