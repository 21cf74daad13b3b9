package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

type PurchaseRequestStatus string

const (
	PurchaseRequestStatusOpen     PurchaseRequestStatus = "OPEN"
	PurchaseRequestStatusApproved PurchaseRequestStatus = "APPROVED"
	PurchaseRequestStatusRejected PurchaseRequestStatus = "REJECTED"
)

// Terminal reports whether the status permits no further transitions.
func (s PurchaseRequestStatus) Terminal() bool {
	return s == PurchaseRequestStatusApproved || s == PurchaseRequestStatusRejected
}

func (s PurchaseRequestStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *PurchaseRequestStatus) Scan(value interface{}) error {
	str, err := scanString(value)
	if err != nil {
		return err
	}
	switch PurchaseRequestStatus(str) {
	case PurchaseRequestStatusOpen, PurchaseRequestStatusApproved, PurchaseRequestStatusRejected:
		*s = PurchaseRequestStatus(str)
	default:
		return fmt.Errorf("invalid purchase request status %q", str)
	}
	return nil
}

type AssessmentDecision string

const (
	AssessmentDecisionApprove   AssessmentDecision = "APPROVE"
	AssessmentDecisionReject    AssessmentDecision = "REJECT"
	AssessmentDecisionNeedsInfo AssessmentDecision = "NEEDS_INFO"
)

func (d AssessmentDecision) IsValid() bool {
	switch d {
	case AssessmentDecisionApprove, AssessmentDecisionReject, AssessmentDecisionNeedsInfo:
		return true
	}
	return false
}

func (d AssessmentDecision) Value() (driver.Value, error) {
	return string(d), nil
}

func (d *AssessmentDecision) Scan(value interface{}) error {
	str, err := scanString(value)
	if err != nil {
		return err
	}
	if !AssessmentDecision(str).IsValid() {
		return fmt.Errorf("invalid assessment decision %q", str)
	}
	*d = AssessmentDecision(str)
	return nil
}

type FindingCode string

const (
	FindingCodeBudgetExceeded     FindingCode = "BUDGET_EXCEEDED"
	FindingCodePerItemCapExceeded FindingCode = "PER_ITEM_CAP_EXCEEDED"
)

func scanString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", errors.New("enum column must scan from string")
	}
}
