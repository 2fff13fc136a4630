package mocks

import (
	"context"

	sharedBus "github.com/davicafu/metamood/internal/shared/infra/platform/bus"
	trackDomain "github.com/davicafu/metamood/internal/track/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTrackRepository simula TrackRepository y TrackStatsRepository
type MockTrackRepository struct {
	mock.Mock
}

func (m *MockTrackRepository) Materialize(ctx context.Context, q trackDomain.TrackQuery) ([]trackDomain.TrackView, error) {
	args := m.Called(ctx, q)
	views, _ := args.Get(0).([]trackDomain.TrackView)
	return views, args.Error(1)
}

func (m *MockTrackRepository) UpsertBatch(ctx context.Context, tracks []trackDomain.TrackRecord) error {
	args := m.Called(ctx, tracks)
	return args.Error(0)
}

func (m *MockTrackRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTrackRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTrackRepository) Averages(ctx context.Context) (trackDomain.MetricAverages, error) {
	args := m.Called(ctx)
	return args.Get(0).(trackDomain.MetricAverages), args.Error(1)
}

// MockAnalyticsRepository simula el espejo analítico
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) LogBatch(ctx context.Context, tracks []trackDomain.TrackRecord) error {
	args := m.Called(ctx, tracks)
	return args.Error(0)
}

func (m *MockAnalyticsRepository) LogDeletion(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAnalyticsRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnalyticsRepository) Averages(ctx context.Context) (trackDomain.MetricAverages, error) {
	args := m.Called(ctx)
	return args.Get(0).(trackDomain.MetricAverages), args.Error(1)
}

// MockPublisher simula un EventBus
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event interface{}) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// Verificación estática de las interfaces.
var (
	_ trackDomain.TrackRepository          = (*MockTrackRepository)(nil)
	_ trackDomain.TrackStatsRepository     = (*MockTrackRepository)(nil)
	_ trackDomain.TrackAnalyticsRepository = (*MockAnalyticsRepository)(nil)
	_ sharedBus.EventBus                   = (*MockPublisher)(nil)
)
