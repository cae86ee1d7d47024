package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foyerhq/foyer/internal/approval"
	"github.com/foyerhq/foyer/internal/executor"
	"github.com/foyerhq/foyer/internal/handler"
	"github.com/foyerhq/foyer/internal/jobs"
	"github.com/foyerhq/foyer/internal/models"
	"github.com/foyerhq/foyer/internal/resolver"
	"github.com/foyerhq/foyer/internal/security"
	"github.com/foyerhq/foyer/internal/session"
	"github.com/foyerhq/foyer/internal/store"
	"github.com/foyerhq/foyer/internal/tools"
)

type fixture struct {
	store    *store.MemoryStore
	exec     *executor.Service
	jobs     *jobs.Manager
	sessions *session.Manager
	router   *chi.Mux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	reg := tools.NewRegistry()
	reg.RegisterAll(tools.ContactTools(s))
	reg.RegisterAll(tools.DealTools(s))
	reg.RegisterAll(tools.InboxTools(s))

	jm := jobs.NewManager()
	exec := executor.NewService(
		reg,
		resolver.New(s),
		tools.NewIdempotencyGuard(5*time.Minute),
		approval.NewGate(10*time.Minute),
		jm,
		security.NewAuditLogger(false),
	)
	sessions := session.NewManager()

	actionsH := handler.NewActionsHandler(exec, sessions)
	jobsH := handler.NewJobsHandler(jm)
	healthH := handler.NewHealthHandler(s)

	r := chi.NewRouter()
	r.Get("/health", healthH.Health)
	r.Post("/actions/{action_id}/approve", actionsH.Approve)
	r.Post("/actions/{action_id}/dismiss", actionsH.Dismiss)
	r.Get("/jobs", jobsH.List)
	r.Get("/jobs/{job_id}", jobsH.Get)

	return &fixture{store: s, exec: exec, jobs: jm, sessions: sessions, router: r}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

// stage runs a gated tool and parks the pending action in the session, the
// way a chat turn would.
func (f *fixture) stage(t *testing.T, toolName string, input map[string]any) *approval.PendingAction {
	t.Helper()
	ec := tools.ExecutionContext{UserID: "u1", ConversationID: "c1"}
	resp, err := f.exec.Execute(context.Background(), toolName, input, ec)
	if err != nil {
		t.Fatalf("Execute(%s) error = %v", toolName, err)
	}
	if resp.Pending == nil {
		t.Fatalf("Execute(%s) did not stage an action", toolName)
	}
	f.sessions.GetOrCreate("u1", "c1")
	f.sessions.SetPending("u1", "c1", resp.Pending)
	return resp.Pending
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp models.HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || resp.Checks["store"] != "ok" {
		t.Errorf("health = %+v", resp)
	}
}

func TestApproveExecutesStagedAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := &store.Contact{UserID: "u1", Name: "Old Lead"}
	if err := f.store.CreateContact(ctx, c); err != nil {
		t.Fatal(err)
	}
	pa := f.stage(t, "contact.delete", map[string]any{"contact": "Old Lead"})

	rr := f.do(t, http.MethodPost, "/actions/"+pa.ID+"/approve",
		`{"user_id":"u1","conversation_id":"c1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp models.ActionDecisionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "executed" {
		t.Errorf("status = %q, want executed", resp.Status)
	}
	if _, err := f.store.GetContact(ctx, "u1", c.ID); err == nil {
		t.Error("approved delete should remove the contact")
	}
}

func TestDismissLeavesRecordsUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := &store.Contact{UserID: "u1", Name: "Old Lead"}
	if err := f.store.CreateContact(ctx, c); err != nil {
		t.Fatal(err)
	}
	pa := f.stage(t, "contact.delete", map[string]any{"contact": "Old Lead"})

	rr := f.do(t, http.MethodPost, "/actions/"+pa.ID+"/dismiss",
		`{"user_id":"u1","conversation_id":"c1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if _, err := f.store.GetContact(ctx, "u1", c.ID); err != nil {
		t.Error("dismissed delete must not remove the contact")
	}

	// The decision is consumed: a second approve finds nothing staged.
	rr = f.do(t, http.MethodPost, "/actions/"+pa.ID+"/approve",
		`{"user_id":"u1","conversation_id":"c1"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("second decision status = %d, want 404", rr.Code)
	}
}

func TestApproveUnknownAction(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPost, "/actions/nope/approve",
		`{"user_id":"u1","conversation_id":"c1"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestJobsEndpoints(t *testing.T) {
	f := newFixture(t)
	ec := tools.ExecutionContext{UserID: "u1", ConversationID: "c1"}
	resp, err := f.exec.Execute(context.Background(), "inbox.summarize", map[string]any{}, ec)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	jobID := resp.Job.ID

	rr := f.do(t, http.MethodGet, "/jobs?user_id=u1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var list struct {
		Jobs []models.JobView `json:"jobs"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Jobs) != 1 || list.Jobs[0].ID != jobID {
		t.Errorf("jobs list = %+v", list.Jobs)
	}

	rr = f.do(t, http.MethodGet, "/jobs/"+jobID+"?user_id=u1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}

	// Other users cannot see the job.
	rr = f.do(t, http.MethodGet, "/jobs/"+jobID+"?user_id=u2", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("cross-user get status = %d, want 404", rr.Code)
	}
}
