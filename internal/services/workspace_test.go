package services

import (
	"context"
	"errors"
	"testing"

	"github.com/autobooks/autobooks-backend/internal/models"
	"github.com/autobooks/autobooks-backend/pkg/helpers"
)

type fakeWorkspaceWSStore struct {
	list      []*models.Workspace
	created   []*models.Workspace
	listErr   error
	createErr error
}

func (f *fakeWorkspaceWSStore) ListByUser(ctx context.Context, uid string) ([]*models.Workspace, error) {
	return f.list, f.listErr
}

func (f *fakeWorkspaceWSStore) Create(ctx context.Context, ws *models.Workspace) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, ws)
	return nil
}

func TestEnsureCreatesDefaultWorkspaceOnFirstLogin(t *testing.T) {
	store := &fakeWorkspaceWSStore{}
	svc := NewWorkspaceService(store)

	workspaces, err := svc.Ensure(helpers.TestCtx(), "uid-1", "jane@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one workspace created, got %d", len(store.created))
	}

	ws := store.created[0]
	if ws.UserID != "uid-1" || ws.Type != models.WorkspaceTypePersonal || ws.Currency != "CAD" {
		t.Fatalf("unexpected default workspace: %+v", ws)
	}
	if ws.Name != "jane" {
		t.Fatalf("workspace name should come from the email local part, got %q", ws.Name)
	}
	if ws.ID == "" {
		t.Fatal("workspace id must be assigned")
	}
	if len(workspaces) != 1 || workspaces[0] != ws {
		t.Fatalf("ensure should return the created workspace, got %+v", workspaces)
	}
}

func TestEnsureIsNoOpWhenWorkspacesExist(t *testing.T) {
	existing := &models.Workspace{ID: "ws-1", UserID: "uid-1"}
	store := &fakeWorkspaceWSStore{list: []*models.Workspace{existing}}
	svc := NewWorkspaceService(store)

	workspaces, err := svc.Ensure(helpers.TestCtx(), "uid-1", "jane@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.created) != 0 {
		t.Fatal("no workspace may be created when one already exists")
	}
	if len(workspaces) != 1 || workspaces[0] != existing {
		t.Fatalf("expected the existing workspace returned, got %+v", workspaces)
	}
}

func TestEnsureFallsBackToPersonalName(t *testing.T) {
	store := &fakeWorkspaceWSStore{}
	svc := NewWorkspaceService(store)

	if _, err := svc.Ensure(helpers.TestCtx(), "uid-1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.created[0].Name != "Personal" {
		t.Fatalf("expected fallback name, got %q", store.created[0].Name)
	}
}

func TestEnsurePropagatesStoreErrors(t *testing.T) {
	store := &fakeWorkspaceWSStore{createErr: errors.New("insert failed")}
	svc := NewWorkspaceService(store)

	if _, err := svc.Ensure(helpers.TestCtx(), "uid-1", "jane@example.com"); err == nil {
		t.Fatal("expected error")
	}
}
