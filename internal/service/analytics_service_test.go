package service

import (
	"context"
	"testing"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/internal/repository"
	"github.com/fairwayhq/fairway/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsService_ComputeSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the per-course rollup", func(t *testing.T) {
		analyticsRepo := &repository.MockAnalyticsRepository{}
		courseRepo := &repository.MockCourseRepository{}
		svc := NewAnalyticsService(analyticsRepo, courseRepo, logger.NewTestLogger(t))

		snapshot := &domain.AnalyticsSnapshot{
			TotalCustomers:   120,
			Prospects:        14,
			TotalCaptures:    200,
			RedeemedCaptures: 90,
			RedemptionRate:   0.45,
		}
		courseRepo.On("GetCourse", ctx, "pinehurst").Return(&domain.Course{ID: "pinehurst"}, nil)
		analyticsRepo.On("ComputeSnapshot", ctx, "pinehurst").Return(snapshot, nil)

		got, err := svc.ComputeSnapshot(ctx, "pinehurst")
		require.NoError(t, err)
		assert.Equal(t, int64(120), got.TotalCustomers)
		assert.Equal(t, 0.45, got.RedemptionRate)
	})

	t.Run("unknown course is not found", func(t *testing.T) {
		analyticsRepo := &repository.MockAnalyticsRepository{}
		courseRepo := &repository.MockCourseRepository{}
		svc := NewAnalyticsService(analyticsRepo, courseRepo, logger.NewTestLogger(t))

		courseRepo.On("GetCourse", ctx, "ghost").
			Return(nil, &domain.ErrNotFound{Entity: "course", ID: "ghost"})

		_, err := svc.ComputeSnapshot(ctx, "ghost")
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("requires a course id", func(t *testing.T) {
		svc := NewAnalyticsService(&repository.MockAnalyticsRepository{}, &repository.MockCourseRepository{}, logger.NewTestLogger(t))

		_, err := svc.ComputeSnapshot(ctx, "")
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})
}
