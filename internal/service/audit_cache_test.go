package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paperaudit/internal/domain"
)

func TestAuditCacheService(t *testing.T) {
	content := domain.QuestionContent{Text: "What is 2+2?", Answer: "4", Solution: "2+2=4"}
	ctx := context.Background()

	t.Run("miss returns nil without error", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss).Once()

		svc := NewAuditCacheService(cache, time.Hour)
		result, err := svc.Get(ctx, content)
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("put then get round-trips through the same key", func(t *testing.T) {
		cache := new(MockCache)
		stored := passingResult(content)
		payload, err := json.Marshal(&stored)
		require.NoError(t, err)

		var key string
		cache.On("Set", mock.Anything, mock.Anything, string(payload), time.Hour).
			Run(func(args mock.Arguments) {
				key = args.String(1)
			}).Return(nil).Once()

		svc := NewAuditCacheService(cache, time.Hour)
		require.NoError(t, svc.Put(ctx, content, &stored))
		assert.Contains(t, key, "audit:result:")

		cache.On("Get", mock.Anything, key).Return(string(payload), nil).Once()
		result, err := svc.Get(ctx, content)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, stored.Status, result.Status)
		assert.Equal(t, stored.Clean, result.Clean)
		cache.AssertExpectations(t)
	})

	t.Run("corrupt entry is deleted and treated as a miss", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Get", mock.Anything, mock.Anything).Return("{not json", nil).Once()
		cache.On("Delete", mock.Anything, mock.Anything).Return(nil).Once()

		svc := NewAuditCacheService(cache, time.Hour)
		result, err := svc.Get(ctx, content)
		require.NoError(t, err)
		assert.Nil(t, result)
		cache.AssertExpectations(t)
	})

	t.Run("backend failure surfaces", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Get", mock.Anything, mock.Anything).Return("", assert.AnError).Once()

		svc := NewAuditCacheService(cache, time.Hour)
		_, err := svc.Get(ctx, content)
		assert.Error(t, err)
	})
}
