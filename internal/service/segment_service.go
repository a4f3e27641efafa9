package service

import (
	"context"
	"fmt"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
	"github.com/osteele/liquid"
)

// SegmentService manages saved customer filters and segment email blasts
type SegmentService struct {
	segmentRepo domain.SegmentRepository
	emailQueue  domain.EmailQueueRepository
	logger      logger.Logger
}

func NewSegmentService(
	segmentRepo domain.SegmentRepository,
	emailQueue domain.EmailQueueRepository,
	logger logger.Logger,
) *SegmentService {
	return &SegmentService{
		segmentRepo: segmentRepo,
		emailQueue:  emailQueue,
		logger:      logger,
	}
}

// CreateSegment validates and persists a new segment
func (s *SegmentService) CreateSegment(ctx context.Context, segment *domain.Segment) error {
	if err := segment.Validate(); err != nil {
		return err
	}
	return s.segmentRepo.CreateSegment(ctx, segment)
}

// GetSegment retrieves a segment
func (s *SegmentService) GetSegment(ctx context.Context, courseID string, id string) (*domain.Segment, error) {
	if courseID == "" || id == "" {
		return nil, domain.NewValidationError("course_id and segment id are required")
	}
	return s.segmentRepo.GetSegment(ctx, courseID, id)
}

// ListSegments returns all segments of a course
func (s *SegmentService) ListSegments(ctx context.Context, courseID string) ([]*domain.Segment, error) {
	if courseID == "" {
		return nil, domain.NewValidationError("course_id is required")
	}
	return s.segmentRepo.ListSegments(ctx, courseID)
}

// DeleteSegment removes a segment
func (s *SegmentService) DeleteSegment(ctx context.Context, courseID string, id string) error {
	if courseID == "" || id == "" {
		return domain.NewValidationError("course_id and segment id are required")
	}
	return s.segmentRepo.DeleteSegment(ctx, courseID, id)
}

// PreviewSegment returns how many customers currently match the filters
func (s *SegmentService) PreviewSegment(ctx context.Context, courseID string, id string) (int, error) {
	segment, err := s.GetSegment(ctx, courseID, id)
	if err != nil {
		return 0, err
	}
	return s.segmentRepo.CountMembers(ctx, segment)
}

// BlastSegment queues the message for every member with an email address.
// Opted-out customers are already excluded by the member listing.
func (s *SegmentService) BlastSegment(ctx context.Context, req *domain.BlastSegmentRequest) (int, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	segment, err := s.segmentRepo.GetSegment(ctx, req.CourseID, req.SegmentID)
	if err != nil {
		return 0, err
	}

	members, err := s.segmentRepo.ListMembers(ctx, segment)
	if err != nil {
		return 0, err
	}

	engine := liquid.NewEngine()
	subjectTpl, err := engine.ParseString(req.Subject)
	if err != nil {
		return 0, domain.NewValidationError(fmt.Sprintf("invalid subject template: %v", err))
	}
	bodyTpl, err := engine.ParseString(req.HTMLBody)
	if err != nil {
		return 0, domain.NewValidationError(fmt.Sprintf("invalid body template: %v", err))
	}

	var entries []*domain.EmailQueueEntry
	for _, member := range members {
		if !member.HasEmail() {
			continue
		}

		firstName := ""
		if member.FirstName != nil && !member.FirstName.IsNull {
			firstName = member.FirstName.String
		}
		bindings := map[string]interface{}{
			"first_name":       firstName,
			"visit_count":      member.VisitCount,
			"membership_score": member.MembershipScore,
		}

		subject, err := subjectTpl.RenderString(bindings)
		if err != nil {
			return 0, fmt.Errorf("failed to render subject: %w", err)
		}
		body, err := bodyTpl.RenderString(bindings)
		if err != nil {
			return 0, fmt.Errorf("failed to render body: %w", err)
		}

		entries = append(entries, &domain.EmailQueueEntry{
			CourseID:   member.CourseID,
			CustomerID: member.ID,
			Recipient:  member.Email.String,
			Template:   domain.EmailTemplateSegment,
			Subject:    subject,
			HTMLBody:   body,
		})
	}

	if err := s.emailQueue.Enqueue(ctx, entries); err != nil {
		return 0, err
	}

	s.logger.WithFields(map[string]interface{}{
		"segment_id": segment.ID,
		"queued":     len(entries),
	}).Info("Segment blast queued")

	return len(entries), nil
}
