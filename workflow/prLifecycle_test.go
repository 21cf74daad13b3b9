package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/procurement_backend/models"
	"bitbucket.org/mmdatafocus/procurement_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTestService() (*PRService, *MemoryStore) {
	store := NewMemoryStore()
	catalog := NewFixtureCatalog(models.DemoInventoryRecords(), models.DemoSubstitutionPriorities())
	return NewPRService(store, catalog), store
}

func createOpenPR(t *testing.T, svc *PRService) *models.PurchaseRequest {
	t.Helper()
	pr, err := svc.Create(context.Background(), &models.NewPurchaseRequest{
		Requester:  "alice@acme.io",
		CostCenter: "CC-ENG",
		Items: []models.LineItem{
			{Sku: "LPT-14", Qty: 2, Price: decimal.NewFromInt(1250)},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return pr
}

func TestCreateComputesTotal(t *testing.T) {
	svc, _ := newTestService()

	pr, err := svc.Create(context.Background(), &models.NewPurchaseRequest{
		Requester:  "alice@acme.io",
		CostCenter: "CC-ENG",
		Items: []models.LineItem{
			{Sku: "LPT-13", Qty: 2, Price: decimal.NewFromInt(1100)},
			{Sku: "MON-27", Qty: 2, Price: decimal.NewFromInt(260)},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !pr.Total.Equal(decimal.NewFromInt(2720)) {
		t.Fatalf("expected total 2720, got %s", pr.Total)
	}
	if pr.Status != models.PurchaseRequestStatusOpen {
		t.Fatalf("new PR must start OPEN, got %s", pr.Status)
	}
}

func TestCreateRejectsMismatchedTotal(t *testing.T) {
	svc, _ := newTestService()

	wrong := decimal.NewFromInt(999)
	_, err := svc.Create(context.Background(), &models.NewPurchaseRequest{
		Requester:  "alice@acme.io",
		CostCenter: "CC-ENG",
		Items: []models.LineItem{
			{Sku: "LPT-14", Qty: 2, Price: decimal.NewFromInt(1250)},
		},
		Total: &wrong,
	})
	var validation *utils.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for mismatched total, got %v", err)
	}
}

func TestCreateRejectsNonPositiveQty(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), &models.NewPurchaseRequest{
		Requester:  "alice@acme.io",
		CostCenter: "CC-ENG",
		Items: []models.LineItem{
			{Sku: "LPT-14", Qty: 0, Price: decimal.NewFromInt(1250)},
		},
	})
	var validation *utils.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for qty 0, got %v", err)
	}
}

func TestApproveThenApprove(t *testing.T) {
	svc, _ := newTestService()
	pr := createOpenPR(t, svc)

	updated, err := svc.Approve(context.Background(), pr.ID)
	if err != nil {
		t.Fatalf("first approve: %v", err)
	}
	if updated.Status != models.PurchaseRequestStatusApproved {
		t.Fatalf("expected APPROVED, got %s", updated.Status)
	}

	_, err = svc.Approve(context.Background(), pr.ID)
	var invalidState *utils.InvalidStateError
	if !errors.As(err, &invalidState) {
		t.Fatalf("second approve should be InvalidState, got %v", err)
	}
	if invalidState.Current != string(models.PurchaseRequestStatusApproved) {
		t.Fatalf("loser should observe the terminal status, got %s", invalidState.Current)
	}
}

func TestRejectThenApprove(t *testing.T) {
	svc, _ := newTestService()
	pr := createOpenPR(t, svc)

	updated, err := svc.Reject(context.Background(), pr.ID, "duplicate request")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if updated.Status != models.PurchaseRequestStatusRejected {
		t.Fatalf("expected REJECTED, got %s", updated.Status)
	}

	_, err = svc.Approve(context.Background(), pr.ID)
	var invalidState *utils.InvalidStateError
	if !errors.As(err, &invalidState) {
		t.Fatalf("approve after reject should be InvalidState, got %v", err)
	}
}

func TestTransitionsUnknownIdNotFound(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Approve(context.Background(), uuid.NewString()); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("approve unknown id: expected NotFound, got %v", err)
	}
	if _, err := svc.Reject(context.Background(), uuid.NewString(), "nope"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("reject unknown id: expected NotFound, got %v", err)
	}
}

func TestRejectEmptyReason(t *testing.T) {
	svc, _ := newTestService()
	pr := createOpenPR(t, svc)

	_, err := svc.Reject(context.Background(), pr.ID, "  ")
	var validation *utils.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for empty reason, got %v", err)
	}

	// No state change and no assessment may result from the failed call.
	current, err := svc.Get(context.Background(), pr.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if current.Status != models.PurchaseRequestStatusOpen {
		t.Fatalf("failed reject must not change status, got %s", current.Status)
	}
	latest, err := svc.LatestAssessment(context.Background(), pr.ID)
	if err != nil {
		t.Fatalf("LatestAssessment: %v", err)
	}
	if latest != nil {
		t.Fatalf("failed reject must not create an assessment, got %+v", latest)
	}
}

func TestRejectAppendsTerminalAssessment(t *testing.T) {
	svc, _ := newTestService()
	pr := createOpenPR(t, svc)

	if _, err := svc.Reject(context.Background(), pr.ID, "over budget"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	latest, err := svc.LatestAssessment(context.Background(), pr.ID)
	if err != nil {
		t.Fatalf("LatestAssessment: %v", err)
	}
	if latest == nil {
		t.Fatalf("reject must append an assessment")
	}
	if latest.Decision != models.AssessmentDecisionReject || latest.Reason != "over budget" {
		t.Fatalf("unexpected assessment: %+v", latest)
	}
	if latest.Trace == nil || len(latest.Trace) != 0 {
		t.Fatalf("rejection assessment carries an empty trace, got %+v", latest.Trace)
	}
}

func TestRecordAssessmentDoesNotChangeStatus(t *testing.T) {
	svc, _ := newTestService()
	pr := createOpenPR(t, svc)

	assessment, err := svc.RecordAssessment(context.Background(), pr.ID, models.AssessmentDecisionNeedsInfo, "missing quotes", nil)
	if err != nil {
		t.Fatalf("RecordAssessment: %v", err)
	}
	if assessment.ID == "" || assessment.PrId != pr.ID {
		t.Fatalf("unexpected assessment: %+v", assessment)
	}

	current, _ := svc.Get(context.Background(), pr.ID)
	if current.Status != models.PurchaseRequestStatusOpen {
		t.Fatalf("recordAssessment must never change status, got %s", current.Status)
	}

	// Still allowed once the PR is terminal.
	if _, err := svc.Approve(context.Background(), pr.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := svc.RecordAssessment(context.Background(), pr.ID, models.AssessmentDecisionApprove, "post-hoc note", nil); err != nil {
		t.Fatalf("RecordAssessment on terminal PR: %v", err)
	}
}

func TestRecordAssessmentValidation(t *testing.T) {
	svc, _ := newTestService()
	pr := createOpenPR(t, svc)

	_, err := svc.RecordAssessment(context.Background(), pr.ID, models.AssessmentDecision("MAYBE"), "", nil)
	var validation *utils.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for unknown decision, got %v", err)
	}

	if _, err := svc.RecordAssessment(context.Background(), uuid.NewString(), models.AssessmentDecisionApprove, "", nil); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected NotFound for unknown PR, got %v", err)
	}
}

func TestLatestAssessmentMaxCreatedAt(t *testing.T) {
	svc, store := newTestService()
	pr := createOpenPR(t, svc)
	other := createOpenPR(t, svc)

	base := time.Now()
	ctx := context.Background()

	// Inserted out of chronological order, interleaved with another PR's
	// assessments; latest is defined purely by CreatedAt.
	mid := models.Assessment{ID: uuid.NewString(), PrId: pr.ID, Decision: models.AssessmentDecisionNeedsInfo, Reason: "mid", CreatedAt: base.Add(2 * time.Minute)}
	newest := models.Assessment{ID: uuid.NewString(), PrId: pr.ID, Decision: models.AssessmentDecisionApprove, Reason: "newest", CreatedAt: base.Add(5 * time.Minute)}
	oldest := models.Assessment{ID: uuid.NewString(), PrId: pr.ID, Decision: models.AssessmentDecisionReject, Reason: "oldest", CreatedAt: base.Add(1 * time.Minute)}
	foreign := models.Assessment{ID: uuid.NewString(), PrId: other.ID, Decision: models.AssessmentDecisionApprove, Reason: "other pr", CreatedAt: base.Add(9 * time.Minute)}

	for _, a := range []models.Assessment{mid, newest, oldest, foreign} {
		a := a
		if err := store.CreateAssessment(ctx, &a); err != nil {
			t.Fatalf("CreateAssessment: %v", err)
		}
	}

	latest, err := svc.LatestAssessment(ctx, pr.ID)
	if err != nil {
		t.Fatalf("LatestAssessment: %v", err)
	}
	if latest == nil || latest.Reason != "newest" {
		t.Fatalf("expected the max-createdAt assessment, got %+v", latest)
	}
}

func TestLatestAssessmentNoneYet(t *testing.T) {
	svc, _ := newTestService()
	pr := createOpenPR(t, svc)

	latest, err := svc.LatestAssessment(context.Background(), pr.ID)
	if err != nil {
		t.Fatalf("none-yet must not be an error, got %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil assessment, got %+v", latest)
	}
}

func TestConcurrentTransitionsExactlyOneWins(t *testing.T) {
	svc, _ := newTestService()
	pr := createOpenPR(t, svc)

	const attempts = 25
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	invalidStates := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			var err error
			if n%2 == 0 {
				_, err = svc.Approve(context.Background(), pr.ID)
			} else {
				_, err = svc.Reject(context.Background(), pr.ID, "race loser check")
			}

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			var invalidState *utils.InvalidStateError
			if errors.As(err, &invalidState) {
				invalidStates++
			} else {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly 1 winning transition, got %d", successes)
	}
	if invalidStates != attempts-1 {
		t.Fatalf("expected %d InvalidState losers, got %d", attempts-1, invalidStates)
	}

	current, _ := svc.Get(context.Background(), pr.ID)
	if !current.Status.Terminal() {
		t.Fatalf("PR should be terminal after the race, got %s", current.Status)
	}
}
