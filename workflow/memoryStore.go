package workflow

import (
	"context"
	"sort"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/procurement_backend/models"
	"bitbucket.org/mmdatafocus/procurement_backend/utils"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs DEV_MODE and the
// DB-free unit tests. Reads hand out copies so callers cannot mutate shared
// state behind the lock.
type MemoryStore struct {
	mu          sync.RWMutex
	prs         map[string]models.PurchaseRequest
	assessments map[string][]models.Assessment
	policies    map[string]models.PolicyConfig
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prs:         map[string]models.PurchaseRequest{},
		assessments: map[string][]models.Assessment{},
		policies:    map[string]models.PolicyConfig{},
	}
}

// SeedPolicyConfigs loads policy rows directly (administrative data).
func (s *MemoryStore) SeedPolicyConfigs(policies []models.PolicyConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range policies {
		s.policies[p.CostCenter] = p
	}
}

// SeedPurchaseRequest loads a PR in an arbitrary state, bypassing the OPEN
// initial-state rule. Seed/demo use only.
func (s *MemoryStore) SeedPurchaseRequest(pr models.PurchaseRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pr.CreatedAt.IsZero() {
		pr.CreatedAt = time.Now()
	}
	if pr.UpdatedAt.IsZero() {
		pr.UpdatedAt = pr.CreatedAt
	}
	s.prs[pr.ID] = pr
}

func (s *MemoryStore) CreatePurchaseRequest(ctx context.Context, pr *models.PurchaseRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	pr.CreatedAt = now
	pr.UpdatedAt = now
	s.prs[pr.ID] = *pr
	return nil
}

func (s *MemoryStore) GetPurchaseRequest(ctx context.Context, id string) (*models.PurchaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pr, ok := s.prs[id]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	return &pr, nil
}

func (s *MemoryStore) ListPurchaseRequests(ctx context.Context) ([]models.PurchaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prs := make([]models.PurchaseRequest, 0, len(s.prs))
	for _, pr := range s.prs {
		prs = append(prs, pr)
	}
	sort.Slice(prs, func(i, j int) bool {
		return prs[i].CreatedAt.After(prs[j].CreatedAt)
	})
	return prs, nil
}

func (s *MemoryStore) TransitionStatus(ctx context.Context, id string, from models.PurchaseRequestStatus, to models.PurchaseRequestStatus, assessment *models.Assessment) (*models.PurchaseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr, ok := s.prs[id]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}
	if pr.Status != from {
		return nil, &utils.InvalidStateError{Current: string(pr.Status)}
	}
	pr.Status = to
	pr.UpdatedAt = time.Now()
	s.prs[id] = pr
	if assessment != nil {
		s.appendAssessmentLocked(assessment)
	}
	return &pr, nil
}

func (s *MemoryStore) CreateAssessment(ctx context.Context, assessment *models.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendAssessmentLocked(assessment)
	return nil
}

// Ordering is established by CreatedAt at write time, not request arrival.
func (s *MemoryStore) appendAssessmentLocked(assessment *models.Assessment) {
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = time.Now()
	}
	s.assessments[assessment.PrId] = append(s.assessments[assessment.PrId], *assessment)
}

func (s *MemoryStore) LatestAssessment(ctx context.Context, prId string) (*models.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.Assessment
	for i := range s.assessments[prId] {
		a := s.assessments[prId][i]
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = &a
		}
	}
	if latest == nil {
		return nil, nil
	}
	found := *latest
	return &found, nil
}

func (s *MemoryStore) GetPolicyConfig(ctx context.Context, costCenter string) (*models.PolicyConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	policy, ok := s.policies[costCenter]
	if !ok {
		return nil, nil
	}
	return &policy, nil
}

func (s *MemoryStore) ListPolicyConfigs(ctx context.Context) ([]models.PolicyConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	policies := make([]models.PolicyConfig, 0, len(s.policies))
	for _, p := range s.policies {
		policies = append(policies, p)
	}
	sort.Slice(policies, func(i, j int) bool {
		return policies[i].CostCenter < policies[j].CostCenter
	})
	return policies, nil
}
