package movies

import (
	"context"
	"fmt"
	"strings"

	"github.com/Coddedx/MoviePx-API/internal/cache"
	"github.com/Coddedx/MoviePx-API/internal/logger"
)

// Service serves movie metadata cache-aside: OMDb is only consulted on a
// cache miss, and successful responses are written back with the cache
// TTL. Cache failures degrade to a direct OMDb call, never an error.
type Service struct {
	omdb  *OMDbClient
	cache *cache.Cache
}

func NewService(omdb *OMDbClient, cache *cache.Cache) *Service {
	return &Service{omdb: omdb, cache: cache}
}

func searchKey(title string, page int) string {
	return fmt.Sprintf("search:%s:%d", strings.ToLower(title), page)
}

func (s *Service) Search(ctx context.Context, title string, page int) (*SearchResult, error) {
	key := searchKey(title, page)

	var cached SearchResult
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("movie cache read failed", map[string]any{"key": key, "error": err.Error()})
	}
	if hit {
		return &cached, nil
	}

	result, err := s.omdb.Search(ctx, title, page)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, result); err != nil {
		logger.Warn("movie cache write failed", map[string]any{"key": key, "error": err.Error()})
	}

	return result, nil
}

func (s *Service) Get(ctx context.Context, imdbID string) (*Movie, error) {
	key := "title:" + imdbID

	var cached Movie
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("movie cache read failed", map[string]any{"key": key, "error": err.Error()})
	}
	if hit {
		return &cached, nil
	}

	movie, err := s.omdb.GetByID(ctx, imdbID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, movie); err != nil {
		logger.Warn("movie cache write failed", map[string]any{"key": key, "error": err.Error()})
	}

	return movie, nil
}
