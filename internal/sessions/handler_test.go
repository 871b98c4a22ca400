package sessions_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"diagnostics-backend/internal/bootstrap"
	"diagnostics-backend/internal/flows/engine"
	"diagnostics-backend/internal/shared/config"
)

func testApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		LocalStoreDir:   t.TempDir(),
		Env:             "dev",
		ObjectStoreType: "local",
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func addGuestHeader(req *http.Request) {
	req.Header.Set("X-Guest-Id", "test-guest")
}

func postJSON(t *testing.T, router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func drippingFaucetTree() engine.Tree {
	return engine.Tree{
		ServiceCategory: "plumbing",
		ProblemName:     "Dripping faucet",
		Questions: []engine.Question{
			{
				ID:       "q1",
				Text:     "Does the drip stop when the handle is fully closed?",
				Type:     engine.QuestionYesNo,
				Required: true,
				Options: []engine.Option{
					{Value: "yes", Label: "Yes", IsDIYCandidate: true},
					{Value: "no", Label: "No", NextQuestionID: "q2", Severity: engine.SeverityMedium},
				},
			},
			{
				ID:       "q2",
				Text:     "Is water pooling under the sink?",
				Type:     engine.QuestionYesNo,
				Required: true,
				Options: []engine.Option{
					{Value: "yes", Label: "Yes", Severity: engine.SeverityHigh},
					{Value: "no", Label: "No"},
				},
			},
		},
		DIYSolutions: []engine.DIYSolution{
			{
				Condition: map[string]string{"q1": "yes"},
				Title:     "Replace the faucet washer",
				Steps:     []string{"Shut off the water supply", "Disassemble the handle", "Swap the washer"},
			},
		},
		UrgencyIndicators: []engine.UrgencyIndicator{
			{QuestionID: "q2", AnswerValue: "yes", Urgency: engine.UrgencyUrgent},
		},
		TechnicianPrep: engine.TechnicianPreparation{
			LikelyCauses: []string{"Worn cartridge", "Corroded valve seat"},
		},
	}
}

func createFlow(t *testing.T, router http.Handler) string {
	t.Helper()
	resp := postJSON(t, router, "/api/v1/flows", map[string]any{"tree": drippingFaucetTree()})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create flow: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		FlowID string `json:"flowId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode flow response: %v", err)
	}
	if created.FlowID == "" {
		t.Fatal("expected flowId, got empty")
	}
	return created.FlowID
}

func TestSessionLifecycleDIY(t *testing.T) {
	app := testApp(t)
	createFlow(t, app.Router)

	resp := postJSON(t, app.Router, "/api/v1/diagnostics/sessions", map[string]any{
		"serviceCategory": "plumbing",
		"problemName":     "Dripping faucet",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("start session: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var started struct {
		SessionID string           `json:"sessionId"`
		Status    string           `json:"status"`
		Question  *engine.Question `json:"question"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		t.Fatalf("decode start response: %v", err)
	}
	if started.SessionID == "" || started.Status != "in_progress" {
		t.Fatalf("unexpected start response: %+v", started)
	}
	if started.Question == nil || started.Question.ID != "q1" {
		t.Fatalf("expected first question q1, got %+v", started.Question)
	}

	resp = postJSON(t, app.Router, "/api/v1/diagnostics/sessions/"+started.SessionID+"/answers", map[string]any{
		"questionId": "q1",
		"values":     []string{"yes"},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("answer: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var answered struct {
		Status string         `json:"status"`
		Result *engine.Result `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&answered); err != nil {
		t.Fatalf("decode answer response: %v", err)
	}
	if answered.Status != "completed" {
		t.Fatalf("expected completed session, got %s", answered.Status)
	}
	if answered.Result == nil || answered.Result.Outcome != engine.OutcomeDIY {
		t.Fatalf("expected DIY outcome, got %+v", answered.Result)
	}
	if answered.Result.Solution == nil || answered.Result.Solution.Title != "Replace the faucet washer" {
		t.Fatalf("expected washer solution, got %+v", answered.Result.Solution)
	}

	// Completed sessions stay readable.
	reqGet := httptest.NewRequest(http.MethodGet, "/api/v1/diagnostics/sessions/"+started.SessionID, nil)
	addGuestHeader(reqGet)
	respGet := httptest.NewRecorder()
	app.Router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusOK {
		t.Fatalf("get session: expected 200, got %d", respGet.Code)
	}
}

func TestSessionTechnicianRouting(t *testing.T) {
	app := testApp(t)
	createFlow(t, app.Router)

	resp := postJSON(t, app.Router, "/api/v1/diagnostics/sessions", map[string]any{
		"serviceCategory": "plumbing",
		"problemName":     "Dripping faucet",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("start session: expected 201, got %d", resp.Code)
	}
	var started struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		t.Fatalf("decode start response: %v", err)
	}

	for _, step := range []struct {
		question string
		value    string
	}{
		{"q1", "no"},
		{"q2", "yes"},
	} {
		resp = postJSON(t, app.Router, "/api/v1/diagnostics/sessions/"+started.SessionID+"/answers", map[string]any{
			"questionId": step.question,
			"values":     []string{step.value},
		})
		if resp.Code != http.StatusOK {
			t.Fatalf("answer %s: expected 200, got %d: %s", step.question, resp.Code, resp.Body.String())
		}
	}

	var answered struct {
		Status string         `json:"status"`
		Result *engine.Result `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&answered); err != nil {
		t.Fatalf("decode answer response: %v", err)
	}
	if answered.Result == nil || answered.Result.Outcome != engine.OutcomeTechnician {
		t.Fatalf("expected technician outcome, got %+v", answered.Result)
	}
	if answered.Result.Urgency != engine.UrgencyUrgent {
		t.Fatalf("expected urgent, got %s", answered.Result.Urgency)
	}
	if answered.Result.Preparation == nil {
		t.Fatal("expected technician preparation in result")
	}
}

func TestSessionStartUnknownProblem(t *testing.T) {
	app := testApp(t)

	resp := postJSON(t, app.Router, "/api/v1/diagnostics/sessions", map[string]any{
		"serviceCategory": "plumbing",
		"problemName":     "Haunted pipes",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSessionRequiresIdentity(t *testing.T) {
	app := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/diagnostics/sessions", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", resp.Code)
	}
}

func TestSessionOwnershipEnforced(t *testing.T) {
	app := testApp(t)
	createFlow(t, app.Router)

	resp := postJSON(t, app.Router, "/api/v1/diagnostics/sessions", map[string]any{
		"serviceCategory": "plumbing",
		"problemName":     "Dripping faucet",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("start session: expected 201, got %d", resp.Code)
	}
	var started struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		t.Fatalf("decode start response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/diagnostics/sessions/"+started.SessionID, nil)
	req.Header.Set("X-Guest-Id", "someone-else")
	resp2 := httptest.NewRecorder()
	app.Router.ServeHTTP(resp2, req)
	if resp2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another user, got %d", resp2.Code)
	}
}

func TestAnswerAgainstRetiredFlow(t *testing.T) {
	app := testApp(t)
	flowID := createFlow(t, app.Router)

	resp := postJSON(t, app.Router, "/api/v1/diagnostics/sessions", map[string]any{
		"serviceCategory": "plumbing",
		"problemName":     "Dripping faucet",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("start session: expected 201, got %d", resp.Code)
	}
	var started struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		t.Fatalf("decode start response: %v", err)
	}

	reqDel := httptest.NewRequest(http.MethodDelete, "/api/v1/flows/"+flowID, nil)
	addGuestHeader(reqDel)
	respDel := httptest.NewRecorder()
	app.Router.ServeHTTP(respDel, reqDel)
	if respDel.Code != http.StatusNoContent {
		t.Fatalf("delete flow: expected 204, got %d", respDel.Code)
	}

	resp = postJSON(t, app.Router, "/api/v1/diagnostics/sessions/"+started.SessionID+"/answers", map[string]any{
		"questionId": "q1",
		"values":     []string{"yes"},
	})
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for a retired flow, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if body.Error.Code != "flow_unavailable" {
		t.Fatalf("expected flow_unavailable, got %q", body.Error.Code)
	}
}
