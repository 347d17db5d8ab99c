package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/autobooks/autobooks-backend/internal/errs"
	"github.com/autobooks/autobooks-backend/internal/middleware"
	"github.com/autobooks/autobooks-backend/internal/models"
)

type stubWorkspaceService struct {
	workspaces []*models.Workspace
	err        error

	uid   string
	email string
}

func (s *stubWorkspaceService) Ensure(ctx context.Context, uid, email string) ([]*models.Workspace, error) {
	s.uid, s.email = uid, email
	return s.workspaces, s.err
}

func (s *stubWorkspaceService) List(ctx context.Context, uid string) ([]*models.Workspace, error) {
	s.uid = uid
	return s.workspaces, s.err
}

func TestEnsureForwardsPrincipal(t *testing.T) {
	svc := &stubWorkspaceService{workspaces: []*models.Workspace{{ID: testWorkspaceID, UserID: "uid-123"}}}
	resp := &stubResponseHandler{}
	h := NewWorkspaceHandlers(&Deps{ResponseHandler: resp, WorkspaceSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/ensure", nil)
	ctx := context.WithValue(req.Context(), middleware.UIDKey, "uid-123")
	ctx = context.WithValue(ctx, middleware.EmailKey, "jane@example.com")
	rr := httptest.NewRecorder()
	h.Ensure(rr, req.WithContext(ctx))

	if svc.uid != "uid-123" || svc.email != "jane@example.com" {
		t.Fatalf("principal not forwarded: uid=%q email=%q", svc.uid, svc.email)
	}
	payload, ok := resp.writeSuccessData.(workspaceListResponse)
	if !ok || !payload.Success || len(payload.Workspaces) != 1 {
		t.Fatalf("unexpected payload: %+v", resp.writeSuccessData)
	}
}

func TestEnsurePropagatesServiceError(t *testing.T) {
	svc := &stubWorkspaceService{err: errs.NewDatabaseError("create workspace", "connection refused")}
	resp := &stubResponseHandler{}
	h := NewWorkspaceHandlers(&Deps{ResponseHandler: resp, WorkspaceSvc: svc})

	rr := httptest.NewRecorder()
	h.Ensure(rr, authedRequest(http.MethodPost, "/ensure", ""))

	if !resp.handleErrorCalled {
		t.Fatal("expected HandleError to be called")
	}
	if _, ok := resp.handleError.(*errs.DatabaseError); !ok {
		t.Fatalf("expected DatabaseError, got %T", resp.handleError)
	}
}

func TestListNilWorkspacesBecomesEmptySlice(t *testing.T) {
	svc := &stubWorkspaceService{}
	resp := &stubResponseHandler{}
	h := NewWorkspaceHandlers(&Deps{ResponseHandler: resp, WorkspaceSvc: svc})

	rr := httptest.NewRecorder()
	h.List(rr, authedRequest(http.MethodPost, "/list", ""))

	payload, ok := resp.writeSuccessData.(workspaceListResponse)
	if !ok {
		t.Fatalf("unexpected payload type: %T", resp.writeSuccessData)
	}
	if payload.Workspaces == nil || len(payload.Workspaces) != 0 {
		t.Fatalf("workspaces must be an empty slice, got %#v", payload.Workspaces)
	}
}
