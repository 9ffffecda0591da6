package services

import (
	"context"
	"strings"
	"time"

	"github.com/dreamshare/dreamshare/internal/models"
	"github.com/dreamshare/dreamshare/internal/repository"
	"github.com/dreamshare/dreamshare/pkg/cache"
	"github.com/dreamshare/dreamshare/pkg/logger"
)

const popularTagsCacheKey = "tags:popular"

type TagService struct {
	tagRepo  *repository.TagRepository
	cache    *cache.RedisClient
	cacheTTL time.Duration
	logger   *logger.Logger
}

func NewTagService(
	tagRepo *repository.TagRepository,
	cache *cache.RedisClient,
	cacheTTL time.Duration,
	logger *logger.Logger,
) *TagService {
	return &TagService{
		tagRepo:  tagRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Resolve maps raw tag names to tag rows, creating missing ones.
// Names are trimmed and deduplicated; empty names are dropped.
func (s *TagService) Resolve(ctx context.Context, names []string) ([]models.Tag, error) {
	seen := make(map[string]bool, len(names))
	tags := make([]models.Tag, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, err := s.tagRepo.GetOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

// Popular serves the tag usage ranking, cache-aside through redis.
func (s *TagService) Popular(ctx context.Context, limit int) ([]repository.PopularTag, error) {
	if s.cache != nil {
		var cached []repository.PopularTag
		if err := s.cache.GetJSON(ctx, popularTagsCacheKey, &cached); err == nil {
			if len(cached) > limit {
				cached = cached[:limit]
			}
			return cached, nil
		} else if !cache.IsNil(err) {
			s.logger.WithError(err).Warn("Failed to read popular tags cache")
		}
	}

	tags, err := s.tagRepo.Popular(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, popularTagsCacheKey, tags, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache popular tags")
		}
	}

	return tags, nil
}
