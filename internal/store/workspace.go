package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/autobooks/autobooks-backend/internal/errs"
	"github.com/autobooks/autobooks-backend/internal/models"
)

type workspaceStore struct {
	db *pgxpool.Pool
}

func NewWorkspaceStore(db *pgxpool.Pool) *workspaceStore {
	return &workspaceStore{db: db}
}

const workspaceColumns = `id::text, user_id::text, name, type, currency, created_at`

func scanWorkspace(row pgx.Row) (*models.Workspace, error) {
	var ws models.Workspace
	err := row.Scan(&ws.ID, &ws.UserID, &ws.Name, &ws.Type, &ws.Currency, &ws.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (s *workspaceStore) Get(ctx context.Context, workspaceID string) (*models.Workspace, error) {
	row := s.db.QueryRow(ctx,
		`select `+workspaceColumns+` from workspaces where id = $1`, workspaceID)
	ws, err := scanWorkspace(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.NewNotFoundError("workspace not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("workspace.get", err.Error())
	}
	return ws, nil
}

func (s *workspaceStore) ListByUser(ctx context.Context, uid string) ([]*models.Workspace, error) {
	rows, err := s.db.Query(ctx,
		`select `+workspaceColumns+` from workspaces where user_id = $1 order by created_at`, uid)
	if err != nil {
		return nil, errs.NewDatabaseError("workspace.list", err.Error())
	}
	defer rows.Close()

	var workspaces []*models.Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, errs.NewDatabaseError("workspace.list", err.Error())
		}
		workspaces = append(workspaces, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabaseError("workspace.list", err.Error())
	}
	return workspaces, nil
}

func (s *workspaceStore) Create(ctx context.Context, ws *models.Workspace) error {
	_, err := s.db.Exec(ctx,
		`insert into workspaces (id, user_id, name, type, currency) values ($1, $2, $3, $4, $5)`,
		ws.ID, ws.UserID, ws.Name, ws.Type, ws.Currency)
	if err != nil {
		return errs.NewDatabaseError("workspace.create", err.Error())
	}
	return nil
}
