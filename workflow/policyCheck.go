package workflow

import (
	"bitbucket.org/mmdatafocus/procurement_backend/models"
	"github.com/shopspring/decimal"
)

// Finding is a single policy violation. Findings are data, not errors: they
// ride alongside a successful evaluation and never abort it.
type Finding struct {
	Code       models.FindingCode `json:"code"`
	CostCenter string             `json:"costCenter,omitempty"`
	Sku        string             `json:"sku,omitempty"`
	Total      *decimal.Decimal   `json:"total,omitempty"`
	Budget     *decimal.Decimal   `json:"budget,omitempty"`
	LineTotal  *decimal.Decimal   `json:"lineTotal,omitempty"`
	Cap        *decimal.Decimal   `json:"cap,omitempty"`
	OverBy     decimal.Decimal    `json:"overBy"`
}

// EvaluatePolicy checks a PR against its cost center's policy. Pure: same
// inputs always yield the same findings, and PR state is never mutated.
// A nil policy yields no findings — absence of policy is permissive (strict
// handling of the missing-config case lives in Assess, behind a flag).
func EvaluatePolicy(pr *models.PurchaseRequest, policy *models.PolicyConfig) []Finding {
	if policy == nil {
		return nil
	}

	var findings []Finding

	if pr.Total.GreaterThan(policy.Budget) {
		total := pr.Total
		budget := policy.Budget
		findings = append(findings, Finding{
			Code:       models.FindingCodeBudgetExceeded,
			CostCenter: pr.CostCenter,
			Total:      &total,
			Budget:     &budget,
			OverBy:     pr.Total.Sub(policy.Budget),
		})
	}

	// Each over-cap line produces its own finding.
	for _, item := range pr.Items {
		lineTotal := item.LineTotal()
		if lineTotal.GreaterThan(policy.PerItemCap) {
			lt := lineTotal
			itemCap := policy.PerItemCap
			findings = append(findings, Finding{
				Code:      models.FindingCodePerItemCapExceeded,
				Sku:       item.Sku,
				LineTotal: &lt,
				Cap:       &itemCap,
				OverBy:    lineTotal.Sub(policy.PerItemCap),
			})
		}
	}

	return findings
}
