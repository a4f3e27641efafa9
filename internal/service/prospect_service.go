package service

import (
	"context"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
)

// ProspectService serves the membership-prospect browse view and the sales
// pipeline workflow.
type ProspectService struct {
	customerRepo domain.CustomerRepository
	pipelineRepo domain.PipelineRepository
	logger       logger.Logger
}

func NewProspectService(
	customerRepo domain.CustomerRepository,
	pipelineRepo domain.PipelineRepository,
	logger logger.Logger,
) *ProspectService {
	return &ProspectService{
		customerRepo: customerRepo,
		pipelineRepo: pipelineRepo,
		logger:       logger,
	}
}

// ListProspects returns scoring candidates for staff review. The browse
// cutoff defaults lower than the persisted prospect flag so staff see
// near-misses too.
func (s *ProspectService) ListProspects(ctx context.Context, courseID string, minScore int, requireLocal bool) ([]*domain.Customer, error) {
	if courseID == "" {
		return nil, domain.NewValidationError("course_id is required")
	}
	if minScore <= 0 {
		minScore = domain.DefaultBrowseScoreCutoff
	}
	if minScore > domain.MaxMembershipScore {
		return nil, domain.NewValidationError("min_score must be between 1 and 100")
	}
	return s.customerRepo.ListProspects(ctx, courseID, minScore, requireLocal)
}

// UpdatePipelineStatus moves an entry through the sales workflow
func (s *ProspectService) UpdatePipelineStatus(ctx context.Context, req *domain.UpdatePipelineStatusRequest) (*domain.PipelineEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.pipelineRepo.UpdateStatus(ctx, req); err != nil {
		return nil, err
	}
	return s.pipelineRepo.GetEntry(ctx, req.CourseID, req.EntryID)
}

// ListPipeline returns pipeline entries, optionally filtered by status
func (s *ProspectService) ListPipeline(ctx context.Context, courseID string, status string) ([]*domain.PipelineEntry, error) {
	if courseID == "" {
		return nil, domain.NewValidationError("course_id is required")
	}
	if status != "" {
		if err := domain.PipelineStatus(status).Validate(); err != nil {
			return nil, err
		}
	}
	return s.pipelineRepo.ListEntries(ctx, courseID, domain.PipelineStatus(status))
}
