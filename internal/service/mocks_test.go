package service

import (
	"context"
	"time"

	"curricula/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockCurriculumRepository ---
type MockCurriculumRepository struct {
	mock.Mock
}

func (m *MockCurriculumRepository) SaveBuild(ctx context.Context, build *domain.MasterCurriculum) error {
	args := m.Called(ctx, build)
	return args.Error(0)
}

func (m *MockCurriculumRepository) GetLatestBuild(ctx context.Context, discipline string) (*domain.MasterCurriculum, error) {
	args := m.Called(ctx, discipline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MasterCurriculum), args.Error(1)
}

func (m *MockCurriculumRepository) GetConcepts(ctx context.Context, buildID string) ([]*domain.CurriculumConcept, error) {
	args := m.Called(ctx, buildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CurriculumConcept), args.Error(1)
}

func (m *MockCurriculumRepository) ListBuilds(ctx context.Context, discipline string) ([]*domain.MasterCurriculum, error) {
	args := m.Called(ctx, discipline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MasterCurriculum), args.Error(1)
}

// --- MockTransactionManager ---
// Runs fn directly so repository expectations still apply.
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

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
