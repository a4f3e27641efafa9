package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/fairwayhq/fairway/pkg/logger"
	"github.com/fairwayhq/fairway/pkg/rewardcode"
)

// maxCodeAttempts bounds the reward-code retry loop on unique collisions
const maxCodeAttempts = 5

// CaptureService runs the full capture pipeline inside one transaction
type CaptureService struct {
	txRunner     domain.TransactionRunner
	courseRepo   domain.CourseRepository
	locationRepo domain.LocationRepository
	customerRepo domain.CustomerRepository
	captureRepo  domain.CaptureRepository
	pipelineRepo domain.PipelineRepository
	emailQueue   domain.EmailQueueRepository
	logger       logger.Logger
}

func NewCaptureService(
	txRunner domain.TransactionRunner,
	courseRepo domain.CourseRepository,
	locationRepo domain.LocationRepository,
	customerRepo domain.CustomerRepository,
	captureRepo domain.CaptureRepository,
	pipelineRepo domain.PipelineRepository,
	emailQueue domain.EmailQueueRepository,
	logger logger.Logger,
) *CaptureService {
	return &CaptureService{
		txRunner:     txRunner,
		courseRepo:   courseRepo,
		locationRepo: locationRepo,
		customerRepo: customerRepo,
		captureRepo:  captureRepo,
		pipelineRepo: pipelineRepo,
		emailQueue:   emailQueue,
		logger:       logger,
	}
}

// SubmitCapture validates the submission, resolves the reward, then commits
// the identity match, merge, rescore, capture insert, pipeline enrollment and
// follow-up enqueue as one atomic unit.
func (s *CaptureService) SubmitCapture(ctx context.Context, req *domain.SubmitCaptureRequest) (*domain.SubmitCaptureResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	rewardType, abTestID, abVariant, err := s.resolveReward(ctx, course, req)
	if err != nil {
		return nil, err
	}

	var resp *domain.SubmitCaptureResponse
	err = s.txRunner.WithTransaction(ctx, func(tx *sql.Tx) error {
		customer, isNew, err := s.upsertCustomer(ctx, tx, req)
		if err != nil {
			return err
		}

		capture := &domain.Capture{
			CourseID:          req.CourseID,
			CustomerID:        customer.ID,
			RewardType:        rewardType,
			RewardDescription: rewardType.Description(),
			Payload:           req.RawPayload,
		}
		if req.LocationID != "" {
			capture.LocationID = &domain.NullableString{String: req.LocationID}
		}
		if abTestID != "" {
			capture.ABTestID = &domain.NullableString{String: abTestID}
			capture.ABVariant = &domain.NullableString{String: string(abVariant)}
		}
		if req.OriginIP != "" {
			capture.OriginIP = &domain.NullableString{String: req.OriginIP}
		}
		if req.UserAgent != "" {
			capture.UserAgent = &domain.NullableString{String: req.UserAgent}
		}
		if len(capture.Payload) == 0 {
			capture.Payload = []byte(`{}`)
		}

		if err := s.insertWithFreshCode(ctx, tx, course, capture); err != nil {
			return err
		}

		if customer.IsMembershipProspect {
			entry := &domain.PipelineEntry{
				CourseID:   customer.CourseID,
				CustomerID: customer.ID,
				Status:     domain.PipelineStatusNew,
			}
			if _, err := s.pipelineRepo.EnsureOpenEntryTx(ctx, tx, entry); err != nil {
				return err
			}
		}

		followups, err := planFollowups(course, customer, isNew, capture.RewardCode, capture.RewardDescription)
		if err != nil {
			return err
		}
		if err := s.emailQueue.EnqueueTx(ctx, tx, followups); err != nil {
			return err
		}

		resp = &domain.SubmitCaptureResponse{
			CustomerID:        customer.ID,
			IsNewCustomer:     isNew,
			RewardCode:        capture.RewardCode,
			RewardDescription: capture.RewardDescription,
		}
		return nil
	})
	if err != nil {
		s.logger.WithField("course_id", req.CourseID).Error(fmt.Sprintf("Capture submission failed: %v", err))
		return nil, err
	}

	return resp, nil
}

// upsertCustomer matches by identity, merges and rescores, or creates a new
// record when neither key is known. Runs under the row lock taken by the
// match query.
func (s *CaptureService) upsertCustomer(ctx context.Context, tx *sql.Tx, req *domain.SubmitCaptureRequest) (*domain.Customer, bool, error) {
	candidate := req.ToCustomer()

	existing, _, err := s.customerRepo.MatchByIdentityTx(ctx, tx, req.CourseID, req.Email, req.Phone)
	if err != nil {
		if !domain.IsNotFound(err) {
			return nil, false, err
		}

		candidate.VisitCount = 1
		now := time.Now().UTC()
		candidate.LastVisitAt = &domain.NullableTime{Time: now}
		candidate.Rescore()
		if err := s.customerRepo.CreateCustomerTx(ctx, tx, candidate); err != nil {
			return nil, false, err
		}
		return candidate, true, nil
	}

	if req.Overwrite {
		existing.MergeOverwrite(candidate)
	} else {
		existing.MergeFillBlank(candidate)
	}
	existing.VisitCount++
	existing.LastVisitAt = &domain.NullableTime{Time: time.Now().UTC()}
	existing.Rescore()

	if err := s.customerRepo.UpdateCustomerTx(ctx, tx, existing); err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// resolveReward applies the precedence chain: active A/B test at the
// location, the golfer's explicit choice, the location default, then the
// global default.
func (s *CaptureService) resolveReward(ctx context.Context, course *domain.Course, req *domain.SubmitCaptureRequest) (domain.RewardType, string, domain.ABVariant, error) {
	if req.LocationID != "" {
		test, err := s.locationRepo.GetActiveABTest(ctx, req.CourseID, req.LocationID)
		if err == nil {
			variant := pickVariant()
			return test.RewardFor(variant), test.ID, variant, nil
		}
		if !domain.IsNotFound(err) {
			return "", "", "", err
		}
	}

	if req.ChosenReward != "" {
		return domain.RewardType(req.ChosenReward), "", "", nil
	}

	if req.LocationID != "" {
		location, err := s.locationRepo.GetLocation(ctx, req.CourseID, req.LocationID)
		if err != nil {
			if !domain.IsNotFound(err) {
				return "", "", "", err
			}
		} else if location.DefaultReward != nil && !location.DefaultReward.IsNull {
			return domain.RewardType(location.DefaultReward.String), "", "", nil
		}
	}

	if course.DefaultReward != "" {
		return course.DefaultReward, "", "", nil
	}
	return domain.GlobalDefaultReward, "", "", nil
}

// pickVariant assigns an A/B arm uniformly at random per capture
func pickVariant() domain.ABVariant {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return domain.ABVariantA
	}
	if b[0]%2 == 0 {
		return domain.ABVariantA
	}
	return domain.ABVariantB
}

// insertWithFreshCode generates codes until the insert wins the unique index
// or the attempt budget runs out
func (s *CaptureService) insertWithFreshCode(ctx context.Context, tx *sql.Tx, course *domain.Course, capture *domain.Capture) error {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := rewardcode.Generate(course.CodePrefix)
		if err != nil {
			return err
		}
		capture.RewardCode = code
		capture.ID = ""

		err = s.captureRepo.InsertCaptureTx(ctx, tx, capture)
		if err == nil {
			return nil
		}

		var taken *domain.ErrRewardCodeTaken
		if !errors.As(err, &taken) {
			return err
		}
		s.logger.WithField("code", code).Warn("Reward code collision, retrying")
	}
	return domain.NewConflictError("could not generate a unique reward code")
}

// RedeemReward marks a code redeemed exactly once and returns the capture
// so staff can see what to hand over.
func (s *CaptureService) RedeemReward(ctx context.Context, req *domain.RedeemRewardRequest) (*domain.Capture, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	code := rewardcode.Normalize(req.Code)
	redeemed, err := s.captureRepo.RedeemByCode(ctx, code, req.RedeemedBy)
	if err != nil {
		return nil, err
	}
	if !redeemed {
		return nil, domain.NewConflictError(fmt.Sprintf("reward code already redeemed: %s", code))
	}

	return s.captureRepo.GetCaptureByCode(ctx, code)
}

// ListCaptures returns the most recent captures of a course
func (s *CaptureService) ListCaptures(ctx context.Context, courseID string, limit int) ([]*domain.Capture, error) {
	if courseID == "" {
		return nil, domain.NewValidationError("course_id is required")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.captureRepo.ListCaptures(ctx, courseID, limit)
}
