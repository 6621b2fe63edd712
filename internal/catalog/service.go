package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/wodhub/internal/apperr"
)

//go:generate mockgen -source=$GOFILE -destination=catalog_mocks_test.go -package=catalog_test

type catalogRepo interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListExercises(ctx context.Context, categoryID *int) ([]Exercise, error)
	CategoryExists(ctx context.Context, id int) (bool, error)
	Seed(ctx context.Context, categories []SeedCategory) (bool, error)
}

const (
	megabyte             = 1024 * 1024
	categoriesCacheKey   = "categories"
	exercisesCachePrefix = "exercises::"
)

// Service serves the read-only exercise catalog through a freecache layer.
type Service struct {
	repo  catalogRepo
	cache *freecache.Cache
	ttl   time.Duration
}

func NewService(repo catalogRepo, cacheSizeMB int, ttl time.Duration) *Service {
	if cacheSizeMB <= 0 {
		cacheSizeMB = 1
	}
	return &Service{
		repo:  repo,
		cache: freecache.NewCache(cacheSizeMB * megabyte),
		ttl:   ttl,
	}
}

func (s *Service) fromCache(key string, v any) bool {
	b, err := s.cache.Get([]byte(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		log.Errorf("catalog cache, unmarshal %s: %s", key, err)
		return false
	}
	log.Tracef("catalog cache hit: %s", key)
	return true
}

func (s *Service) toCache(key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("catalog cache, marshal %s: %s", key, err)
		return
	}
	if err := s.cache.Set([]byte(key), b, int(s.ttl.Seconds())); err != nil {
		log.Errorf("catalog cache, set %s: %s", key, err)
	}
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if s.fromCache(categoriesCacheKey, &categories) {
		return categories, nil
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []Category{}
	}

	s.toCache(categoriesCacheKey, categories)
	return categories, nil
}

func (s *Service) Exercises(ctx context.Context, categoryID *int) ([]Exercise, error) {
	key := exercisesCachePrefix + "all"
	if categoryID != nil {
		key = exercisesCachePrefix + strconv.Itoa(*categoryID)
	}

	var exercises []Exercise
	if s.fromCache(key, &exercises) {
		return exercises, nil
	}

	if categoryID != nil {
		exists, err := s.repo.CategoryExists(ctx, *categoryID)
		if err != nil {
			return nil, fmt.Errorf("check category: %w", err)
		}
		if !exists {
			return nil, apperr.New(apperr.KindNotFound, ErrCategoryNotFound)
		}
	}

	exercises, err := s.repo.ListExercises(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	if exercises == nil {
		exercises = []Exercise{}
	}

	s.toCache(key, exercises)
	return exercises, nil
}

// Seed inserts DefaultCatalog when the catalog is empty and drops cached entries.
func (s *Service) Seed(ctx context.Context) (bool, error) {
	seeded, err := s.repo.Seed(ctx, DefaultCatalog)
	if err != nil {
		return false, fmt.Errorf("seed catalog: %w", err)
	}
	if seeded {
		s.cache.Clear()
		log.Infof("exercise catalog seeded with %d categories", len(DefaultCatalog))
	}
	return seeded, nil
}
