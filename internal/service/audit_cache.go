package service

import (
	"context"
	"encoding/json"
	"time"

	"paperaudit/internal/cache"
	"paperaudit/internal/domain"
	"paperaudit/internal/logger"
	"paperaudit/internal/util"

	"go.uber.org/zap"
)

// AuditCacheService caches audit verdicts keyed by a hash of the question
// content, so resubmitting identical content does not trigger another
// model call.
type AuditCacheService struct {
	cache domain.Cache
	ttl   time.Duration
}

func NewAuditCacheService(c domain.Cache, ttl time.Duration) *AuditCacheService {
	return &AuditCacheService{cache: c, ttl: ttl}
}

// Get returns the cached audit result for the given content, or (nil, nil)
// on a cache miss. A corrupt entry is deleted and treated as a miss.
func (s *AuditCacheService) Get(ctx context.Context, content domain.QuestionContent) (*domain.AuditResult, error) {
	key, err := s.key(content)
	if err != nil {
		return nil, err
	}

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if err == domain.ErrCacheMiss {
			return nil, nil
		}
		return nil, err
	}

	var result domain.AuditResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		logger.Get().Warn("deleting corrupt audit cache entry",
			zap.String("key", key), zap.Error(err))
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			logger.Get().Warn("failed to delete corrupt audit cache entry",
				zap.String("key", key), zap.Error(delErr))
		}
		return nil, nil
	}
	return &result, nil
}

// Put stores an audit result under the hash of the content it was produced
// for. Failures are returned but safe to ignore; the cache is best effort.
func (s *AuditCacheService) Put(ctx context.Context, content domain.QuestionContent, result *domain.AuditResult) error {
	key, err := s.key(content)
	if err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return domain.NewInternalError("failed to encode audit result for caching", err)
	}
	return s.cache.Set(ctx, key, string(data), s.ttl)
}

func (s *AuditCacheService) key(content domain.QuestionContent) (string, error) {
	hash, err := util.ContentHash(content)
	if err != nil {
		return "", domain.NewInternalError("failed to hash question content", err)
	}
	return cache.AuditResultKey(hash), nil
}
