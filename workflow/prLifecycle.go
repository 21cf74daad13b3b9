package workflow

import (
	"context"
	"strings"

	"bitbucket.org/mmdatafocus/procurement_backend/config"
	"bitbucket.org/mmdatafocus/procurement_backend/models"
	"bitbucket.org/mmdatafocus/procurement_backend/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PRService owns purchase request records and their status transitions.
// A PR transitions exactly zero or one time: OPEN -> APPROVED or
// OPEN -> REJECTED; terminal records stay immutable.
type PRService struct {
	store   Store
	catalog Catalog
	logger  *logrus.Logger
}

func NewPRService(store Store, catalog Catalog) *PRService {
	return &PRService{
		store:   store,
		catalog: catalog,
		logger:  config.GetLogger(),
	}
}

// Create validates the input, computes the total as sum(qty*price) and
// persists a new OPEN purchase request. A client-supplied total that
// disagrees with the computed one is rejected.
func (s *PRService) Create(ctx context.Context, input *models.NewPurchaseRequest) (*models.PurchaseRequest, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, utils.NewValidationError("purchaseRequest", err.Error())
	}
	if len(input.Items) == 0 {
		return nil, utils.NewValidationError("items", "at least one line item is required")
	}
	for _, item := range input.Items {
		if item.Qty <= 0 {
			return nil, utils.NewValidationError("items", "qty must be a positive integer")
		}
		if item.Price.IsNegative() {
			return nil, utils.NewValidationError("items", "price must not be negative")
		}
	}

	items := models.LineItems(input.Items)
	total := items.Total()
	if input.Total != nil && !input.Total.Equal(total) {
		return nil, utils.NewValidationError("total", "total does not equal sum of qty*price")
	}

	pr := &models.PurchaseRequest{
		ID:         uuid.NewString(),
		Requester:  input.Requester,
		CostCenter: input.CostCenter,
		Items:      items,
		Total:      total,
		Status:     models.PurchaseRequestStatusOpen,
	}
	if err := s.store.CreatePurchaseRequest(ctx, pr); err != nil {
		config.LogError(s.logger, "prLifecycle.go", "Create", "CreatePurchaseRequest", input, err)
		return nil, err
	}
	return pr, nil
}

func (s *PRService) List(ctx context.Context) ([]models.PurchaseRequest, error) {
	return s.store.ListPurchaseRequests(ctx)
}

func (s *PRService) Get(ctx context.Context, id string) (*models.PurchaseRequest, error) {
	return s.store.GetPurchaseRequest(ctx, id)
}

// Approve moves an OPEN PR to APPROVED. No prior assessment is required;
// human approval is the sole authority over status.
func (s *PRService) Approve(ctx context.Context, id string) (*models.PurchaseRequest, error) {
	lock := obtainTransitionLock(ctx, s.logger, id)
	defer releaseTransitionLock(ctx, lock)

	return s.store.TransitionStatus(ctx, id, models.PurchaseRequestStatusOpen, models.PurchaseRequestStatusApproved, nil)
}

// Reject moves an OPEN PR to REJECTED and atomically appends a terminal
// assessment carrying the reason. The reason is required.
func (s *PRService) Reject(ctx context.Context, id string, reason string) (*models.PurchaseRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, utils.NewValidationError("reason", "is required")
	}

	lock := obtainTransitionLock(ctx, s.logger, id)
	defer releaseTransitionLock(ctx, lock)

	assessment := &models.Assessment{
		ID:       uuid.NewString(),
		PrId:     id,
		Decision: models.AssessmentDecisionReject,
		Reason:   reason,
		Trace:    models.Trace{},
	}
	return s.store.TransitionStatus(ctx, id, models.PurchaseRequestStatusOpen, models.PurchaseRequestStatusRejected, assessment)
}

// RecordAssessment appends an advisory assessment without touching PR
// status. It works in any state, so an assessment can still be attached to
// an already-terminal PR.
func (s *PRService) RecordAssessment(ctx context.Context, id string, decision models.AssessmentDecision, reason string, trace models.Trace) (*models.Assessment, error) {
	if !decision.IsValid() {
		return nil, utils.NewValidationError("decision", "unknown decision value")
	}
	if _, err := s.store.GetPurchaseRequest(ctx, id); err != nil {
		return nil, err
	}

	if trace == nil {
		trace = models.Trace{}
	}
	assessment := &models.Assessment{
		ID:       uuid.NewString(),
		PrId:     id,
		Decision: decision,
		Reason:   reason,
		Trace:    trace,
	}
	if err := s.store.CreateAssessment(ctx, assessment); err != nil {
		config.LogError(s.logger, "prLifecycle.go", "RecordAssessment", "CreateAssessment", id, err)
		return nil, err
	}
	return assessment, nil
}

// LatestAssessment returns the assessment with maximum CreatedAt for the
// PR, or nil when there is none yet.
func (s *PRService) LatestAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	return s.store.LatestAssessment(ctx, id)
}

func (s *PRService) PolicyConfigs(ctx context.Context) ([]models.PolicyConfig, error) {
	return s.store.ListPolicyConfigs(ctx)
}
