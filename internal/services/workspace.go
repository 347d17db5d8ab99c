package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/autobooks/autobooks-backend/internal/models"
	"github.com/autobooks/autobooks-backend/pkg/logger"
)

type workspaceWSStore interface {
	ListByUser(ctx context.Context, uid string) ([]*models.Workspace, error)
	Create(ctx context.Context, ws *models.Workspace) error
}

type workspaceService struct {
	Store workspaceWSStore
}

func NewWorkspaceService(store workspaceWSStore) *workspaceService {
	return &workspaceService{
		Store: store,
	}
}

// Ensure lazily provisions the caller's default personal workspace on first
// login and returns everything they own. Calling it again is a no-op list.
func (s *workspaceService) Ensure(ctx context.Context, uid, email string) ([]*models.Workspace, error) {
	log := logger.FromContext(ctx)

	workspaces, err := s.Store.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(workspaces) > 0 {
		return workspaces, nil
	}

	ws := &models.Workspace{
		ID:       uuid.NewString(),
		UserID:   uid,
		Name:     defaultWorkspaceName(email),
		Type:     models.WorkspaceTypePersonal,
		Currency: DefaultCurrency,
	}
	if err := s.Store.Create(ctx, ws); err != nil {
		log.Error("failed to create default workspace", "error", err)
		return nil, err
	}

	log.Info("default workspace created", "workspace_id", ws.ID)
	return []*models.Workspace{ws}, nil
}

func (s *workspaceService) List(ctx context.Context, uid string) ([]*models.Workspace, error) {
	return s.Store.ListByUser(ctx, uid)
}

func defaultWorkspaceName(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "Personal"
}
