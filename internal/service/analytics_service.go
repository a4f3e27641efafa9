package service

import (
	"context"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
)

// AnalyticsService serves the staff dashboard rollups
type AnalyticsService struct {
	analyticsRepo domain.AnalyticsRepository
	courseRepo    domain.CourseRepository
	logger        logger.Logger
}

func NewAnalyticsService(
	analyticsRepo domain.AnalyticsRepository,
	courseRepo domain.CourseRepository,
	logger logger.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo: analyticsRepo,
		courseRepo:    courseRepo,
		logger:        logger,
	}
}

// ComputeSnapshot aggregates the per-course dashboard counters
func (s *AnalyticsService) ComputeSnapshot(ctx context.Context, courseID string) (*domain.AnalyticsSnapshot, error) {
	if courseID == "" {
		return nil, domain.NewValidationError("course_id is required")
	}

	// Unknown courses surface as not-found instead of an all-zero snapshot
	if _, err := s.courseRepo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	return s.analyticsRepo.ComputeSnapshot(ctx, courseID)
}
