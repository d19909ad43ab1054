package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"paperaudit/internal/domain"
)

type MockPaperStore struct {
	mock.Mock
}

var _ domain.PaperStore = (*MockPaperStore)(nil)

func (m *MockPaperStore) List(ctx context.Context) ([]domain.Paper, error) {
	args := m.Called(ctx)
	if papers, ok := args.Get(0).([]domain.Paper); ok {
		return papers, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaperStore) GetByID(ctx context.Context, id string) (*domain.Paper, error) {
	args := m.Called(ctx, id)
	if paper, ok := args.Get(0).(*domain.Paper); ok {
		return paper, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaperStore) Save(ctx context.Context, paper *domain.Paper) error {
	args := m.Called(ctx, paper)
	return args.Error(0)
}

func (m *MockPaperStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAuditClient struct {
	mock.Mock
}

var _ domain.AuditClient = (*MockAuditClient)(nil)

func (m *MockAuditClient) AuditQuestion(ctx context.Context, content domain.QuestionContent) (*domain.AuditResult, error) {
	args := m.Called(ctx, content)
	if result, ok := args.Get(0).(*domain.AuditResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditClient) AuditRaw(ctx context.Context, text string) ([]domain.AuditResult, error) {
	args := m.Called(ctx, text)
	if results, ok := args.Get(0).([]domain.AuditResult); ok {
		return results, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditClient) AuditDocument(ctx context.Context, data []byte, mimeType string) ([]domain.AuditResult, error) {
	args := m.Called(ctx, data, mimeType)
	if results, ok := args.Get(0).([]domain.AuditResult); ok {
		return results, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockExtractionClient struct {
	mock.Mock
}

var _ domain.ExtractionClient = (*MockExtractionClient)(nil)

func (m *MockExtractionClient) Supports(mimeType string) bool {
	args := m.Called(mimeType)
	return args.Bool(0)
}

func (m *MockExtractionClient) ExtractText(data []byte, mimeType string) (string, error) {
	args := m.Called(data, mimeType)
	return args.String(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

var _ domain.Cache = (*MockCache)(nil)

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
