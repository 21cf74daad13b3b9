package workflow

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/procurement_backend/config"
	"bitbucket.org/mmdatafocus/procurement_backend/models"
	"bitbucket.org/mmdatafocus/procurement_backend/utils"
	"gorm.io/gorm"
)

// Store is the persistence port for the PR lifecycle. Implementations must
// make TransitionStatus an atomic read-check-write per PR id: of two
// concurrent transition attempts on the same OPEN PR exactly one succeeds
// and the other observes InvalidStateError.
type Store interface {
	CreatePurchaseRequest(ctx context.Context, pr *models.PurchaseRequest) error
	GetPurchaseRequest(ctx context.Context, id string) (*models.PurchaseRequest, error)
	// ListPurchaseRequests returns all PRs, newest first.
	ListPurchaseRequests(ctx context.Context) ([]models.PurchaseRequest, error)
	// TransitionStatus moves a PR from `from` to `to`, optionally appending
	// an assessment in the same atomic scope (used by reject).
	TransitionStatus(ctx context.Context, id string, from models.PurchaseRequestStatus, to models.PurchaseRequestStatus, assessment *models.Assessment) (*models.PurchaseRequest, error)
	CreateAssessment(ctx context.Context, assessment *models.Assessment) error
	// LatestAssessment returns the assessment with maximum CreatedAt for the
	// PR, or nil when the PR has none ("none yet" is not an error).
	LatestAssessment(ctx context.Context, prId string) (*models.Assessment, error)
	// GetPolicyConfig returns nil when no policy exists for the cost center.
	GetPolicyConfig(ctx context.Context, costCenter string) (*models.PolicyConfig, error)
	ListPolicyConfigs(ctx context.Context) ([]models.PolicyConfig, error)
}

// GormStore persists through the global GORM connection.
type GormStore struct{}

func NewGormStore() GormStore {
	return GormStore{}
}

func (GormStore) CreatePurchaseRequest(ctx context.Context, pr *models.PurchaseRequest) error {
	return config.GetDB().WithContext(ctx).Create(pr).Error
}

func (GormStore) GetPurchaseRequest(ctx context.Context, id string) (*models.PurchaseRequest, error) {
	var pr models.PurchaseRequest
	err := config.GetDB().WithContext(ctx).Where("id = ?", id).First(&pr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &pr, nil
}

func (GormStore) ListPurchaseRequests(ctx context.Context) ([]models.PurchaseRequest, error) {
	var prs []models.PurchaseRequest
	err := config.GetDB().WithContext(ctx).Order("created_at DESC").Find(&prs).Error
	return prs, err
}

func (GormStore) TransitionStatus(ctx context.Context, id string, from models.PurchaseRequestStatus, to models.PurchaseRequestStatus, assessment *models.Assessment) (*models.PurchaseRequest, error) {
	var updated models.PurchaseRequest
	err := config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Compare-and-swap on status; RowsAffected == 0 means either the PR
		// is unknown or another transition already won.
		res := tx.Model(&models.PurchaseRequest{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current models.PurchaseRequest
			if err := tx.Where("id = ?", id).First(&current).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.ErrorRecordNotFound
				}
				return err
			}
			return &utils.InvalidStateError{Current: string(current.Status)}
		}
		if assessment != nil {
			if err := tx.Create(assessment).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (GormStore) CreateAssessment(ctx context.Context, assessment *models.Assessment) error {
	return config.GetDB().WithContext(ctx).Create(assessment).Error
}

func (GormStore) LatestAssessment(ctx context.Context, prId string) (*models.Assessment, error) {
	var assessment models.Assessment
	err := config.GetDB().WithContext(ctx).
		Where("pr_id = ?", prId).
		Order("created_at DESC").
		First(&assessment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assessment, nil
}

func (GormStore) GetPolicyConfig(ctx context.Context, costCenter string) (*models.PolicyConfig, error) {
	var policy models.PolicyConfig
	err := config.GetDB().WithContext(ctx).Where("cost_center = ?", costCenter).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &policy, nil
}

func (GormStore) ListPolicyConfigs(ctx context.Context) ([]models.PolicyConfig, error) {
	var policies []models.PolicyConfig
	err := config.GetDB().WithContext(ctx).Order("cost_center ASC").Find(&policies).Error
	return policies, err
}
