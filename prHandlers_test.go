package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bitbucket.org/mmdatafocus/procurement_backend/models"
	"bitbucket.org/mmdatafocus/procurement_backend/workflow"
	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, *workflow.PRService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := workflow.NewMemoryStore()
	store.SeedPolicyConfigs(models.DemoPolicyConfigs())
	catalog := workflow.NewFixtureCatalog(models.DemoInventoryRecords(), models.DemoSubstitutionPriorities())
	svc := workflow.NewPRService(store, catalog)
	return newRouter(svc, catalog, true), svc
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func createPROverHTTP(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/pr", map[string]any{
		"requester":  "alice@acme.io",
		"costCenter": "CC-ENG",
		"items": []map[string]any{
			{"sku": "LPT-14", "qty": 2, "price": 1250},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /pr: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("POST /pr response has no id: %v", body)
	}
	return id
}

func TestHealthEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("GET /healthz: expected 204, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health: expected 200, got %d", w.Code)
	}
}

func TestCreateAndGetPR(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createPROverHTTP(t, r)

	w := doJSON(t, r, http.MethodGet, "/pr/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /pr/:id: expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["status"] != "OPEN" {
		t.Fatalf("expected OPEN, got %v", body["status"])
	}
	if body["total"] != "2500" {
		t.Fatalf("expected server-computed total 2500, got %v", body["total"])
	}
}

func TestGetUnknownPRIs404(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/pr/not-a-real-id", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if decodeBody(t, w)["error"] != "NOT_FOUND" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestApproveThenApproveConflicts(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createPROverHTTP(t, r)

	w := doJSON(t, r, http.MethodPost, "/pr/"+id+"/approve", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("first approve: expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/pr/"+id+"/approve", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("second approve: expected 409, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "INVALID_STATE" || body["status"] != "APPROVED" {
		t.Fatalf("conflict body should carry the current status, got %v", body)
	}
}

func TestRejectEmptyReasonIs400(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createPROverHTTP(t, r)

	w := doJSON(t, r, http.MethodPost, "/pr/"+id+"/reject", map[string]any{"reason": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["error"] != "VALIDATION_ERROR" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	// The failed reject must leave the PR OPEN.
	w = doJSON(t, r, http.MethodGet, "/pr/"+id, nil)
	if decodeBody(t, w)["status"] != "OPEN" {
		t.Fatalf("failed reject changed status: %s", w.Body.String())
	}
}

func TestRejectWithReason(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createPROverHTTP(t, r)

	w := doJSON(t, r, http.MethodPost, "/pr/"+id+"/reject", map[string]any{"reason": "budget freeze"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/pr/"+id+"/assessment/last", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected the rejection assessment, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["decision"] != "REJECT" || body["reason"] != "budget freeze" {
		t.Fatalf("unexpected assessment %v", body)
	}
}

func TestLastAssessmentLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createPROverHTTP(t, r)

	w := doJSON(t, r, http.MethodGet, "/pr/"+id+"/assessment/last", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("no assessment yet: expected 204, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/pr/"+id+"/assess", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST assess: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	assessment := decodeBody(t, w)
	if assessment["decision"] != "APPROVE" {
		t.Fatalf("expected advisory APPROVE, got %v", assessment["decision"])
	}

	w = doJSON(t, r, http.MethodGet, "/pr/"+id+"/assessment/last", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after assess, got %d", w.Code)
	}
	if decodeBody(t, w)["id"] != assessment["id"] {
		t.Fatalf("last assessment should be the one just created")
	}

	// The advisory assessment never moves the PR out of OPEN.
	w = doJSON(t, r, http.MethodGet, "/pr/"+id, nil)
	if decodeBody(t, w)["status"] != "OPEN" {
		t.Fatalf("assess changed status: %s", w.Body.String())
	}
}

func TestRecordAssessmentEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createPROverHTTP(t, r)

	w := doJSON(t, r, http.MethodPost, "/pr/"+id+"/assessment", map[string]any{
		"decision": "NEEDS_INFO",
		"reason":   "waiting on vendor quote",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	assessmentId, _ := body["assessmentId"].(string)
	if body["ok"] != true || assessmentId == "" {
		t.Fatalf("unexpected body %v", body)
	}

	w = doJSON(t, r, http.MethodPost, "/pr/"+id+"/assessment", map[string]any{
		"decision": "MAYBE",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown decision: expected 400, got %d", w.Code)
	}
}

func TestInventoryLookup(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/inventory/LPT-14", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["sku"] != "LPT-14" || body["stock"] != float64(18) {
		t.Fatalf("unexpected inventory body %v", body)
	}

	w = doJSON(t, r, http.MethodGet, "/inventory/NO-SUCH-SKU", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSubstitutionEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/substitution", map[string]any{
		"items": []map[string]any{{"sku": "LPT-13", "qty": 2}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var body struct {
		Suggestions []workflow.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Suggestions) != 1 || body.Suggestions[0].SuggestedSku != "LPT-14" {
		t.Fatalf("expected LPT-14 suggestion, got %+v", body.Suggestions)
	}
}

func TestListPolicyEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/policy", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var policies []models.PolicyConfig
	if err := json.Unmarshal(w.Body.Bytes(), &policies); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(policies) != 3 {
		t.Fatalf("expected 3 demo policies, got %d", len(policies))
	}
}
