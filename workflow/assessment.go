package workflow

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/procurement_backend/config"
	"bitbucket.org/mmdatafocus/procurement_backend/models"
	"bitbucket.org/mmdatafocus/procurement_backend/utils"
	"github.com/google/uuid"
)

// Assess runs the policy evaluator and substitution advisor over a PR,
// bundles their output into a structured trace and persists an advisory
// assessment. The decision is non-binding: only Approve/Reject change PR
// status. The PR, inventory and policy snapshot are read once and treated
// as read-consistent for the duration of the evaluation.
func (s *PRService) Assess(ctx context.Context, id string) (*models.Assessment, error) {
	pr, err := s.store.GetPurchaseRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	trace := models.Trace{{
		Tool: "getPR",
		Args: models.JSONMap{"id": pr.ID},
		Result: models.JSONMap{
			"ok":         true,
			"status":     string(pr.Status),
			"costCenter": pr.CostCenter,
			"total":      pr.Total.InexactFloat64(),
		},
	}}

	policy, err := s.store.GetPolicyConfig(ctx, pr.CostCenter)
	if err != nil {
		return nil, err
	}
	if policy == nil && config.PolicyStrictMissingConfig() {
		return nil, utils.NewValidationError("costCenter", "no policy configured for cost center "+pr.CostCenter)
	}

	findings := EvaluatePolicy(pr, policy)
	policyResult := models.JSONMap{
		"policyFound": policy != nil,
		"findings":    jsonSafe(findings),
	}
	if policy != nil {
		policyResult["budget"] = policy.Budget.InexactFloat64()
		policyResult["perItemCap"] = policy.PerItemCap.InexactFloat64()
	}
	trace = append(trace, models.ToolInvocation{
		Tool:   "checkPolicy",
		Args:   models.JSONMap{"costCenter": pr.CostCenter},
		Result: policyResult,
	})

	requested := make([]RequestedItem, 0, len(pr.Items))
	for _, item := range pr.Items {
		requested = append(requested, RequestedItem{Sku: item.Sku, Qty: item.Qty})
	}
	suggestions, err := ProposeSubstitutions(ctx, s.catalog, requested)
	if err != nil {
		return nil, err
	}
	trace = append(trace, models.ToolInvocation{
		Tool:   "proposeSubstitutions",
		Args:   models.JSONMap{"items": jsonSafe(requested)},
		Result: models.JSONMap{"suggestions": jsonSafe(suggestions)},
	})

	decision, reason := adviseDecision(findings, suggestions)

	assessment := &models.Assessment{
		ID:       uuid.NewString(),
		PrId:     pr.ID,
		Decision: decision,
		Reason:   reason,
		Trace:    trace,
	}
	if err := s.store.CreateAssessment(ctx, assessment); err != nil {
		config.LogError(s.logger, "assessment.go", "Assess", "CreateAssessment", pr.ID, err)
		return nil, err
	}
	return assessment, nil
}

// adviseDecision derives the non-binding recommendation: NEEDS_INFO when
// policy findings exist or an item cannot be satisfied even via substitutes,
// APPROVE otherwise.
func adviseDecision(findings []Finding, suggestions []Suggestion) (models.AssessmentDecision, string) {
	if len(findings) > 0 {
		return models.AssessmentDecisionNeedsInfo,
			fmt.Sprintf("Policy check produced %d finding(s); review before approving.", len(findings))
	}
	for _, sg := range suggestions {
		if sg.SuggestedSku == sg.OriginalSku {
			return models.AssessmentDecisionNeedsInfo,
				fmt.Sprintf("Item %s is unavailable and has no stocked substitute.", sg.OriginalSku)
		}
	}
	if len(suggestions) > 0 {
		return models.AssessmentDecisionApprove,
			"Policy satisfied; substitutes available for out-of-stock items."
	}
	return models.AssessmentDecisionApprove, "Policy satisfied; all items available as requested."
}

// jsonSafe flattens typed values into plain maps/slices so the trace
// persists independent of Go struct shapes.
func jsonSafe(value any) any {
	out, err := utils.ToJSONMap(map[string]any{"v": value})
	if err != nil {
		return nil
	}
	return out["v"]
}
