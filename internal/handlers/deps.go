package handlers

import (
	"context"
	"log/slog"

	"github.com/autobooks/autobooks-backend/internal/dto"
	"github.com/autobooks/autobooks-backend/internal/models"
	"github.com/autobooks/autobooks-backend/internal/response"
)

type WorkspaceService interface {
	Ensure(ctx context.Context, uid, email string) ([]*models.Workspace, error)
	List(ctx context.Context, uid string) ([]*models.Workspace, error)
}

type BankingService interface {
	CreateLinkToken(ctx context.Context, uid, workspaceID string) (string, error)
	ExchangePublicToken(ctx context.Context, uid, workspaceID, publicToken string, meta dto.LinkMetadata) (dto.ExchangeOutcome, error)
	SyncTransactions(ctx context.Context, uid, connectionID string) (dto.SyncOutcome, error)
	ListConnections(ctx context.Context, uid, workspaceID string) ([]dto.ConnectionSummary, error)
	RemoveConnection(ctx context.Context, uid, connectionID string) error
	MatchTransaction(ctx context.Context, uid, transactionID, ledgerAccountID string) error
}

type ReportsService interface {
	SpendSummary(ctx context.Context, uid string, args dto.SpendSummaryArgs) (dto.SpendSummaryResult, error)
}

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	WorkspaceSvc    WorkspaceService
	BankingSvc      BankingService
	ReportsSvc      ReportsService
}
