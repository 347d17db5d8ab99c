package services

import (
	"context"
	"sort"
	"time"

	"github.com/autobooks/autobooks-backend/internal/dto"
	"github.com/autobooks/autobooks-backend/internal/errs"
	"github.com/autobooks/autobooks-backend/internal/models"
	"github.com/autobooks/autobooks-backend/pkg/helpers"
)

type workspaceRPStore interface {
	Get(ctx context.Context, workspaceID string) (*models.Workspace, error)
}

type transactionRPStore interface {
	ListForWorkspace(ctx context.Context, workspaceID, from, to string) ([]*models.BankTransaction, error)
}

type reportsService struct {
	workspaces workspaceRPStore
	txs        transactionRPStore
	clockNow   func() time.Time
}

func NewReportsService(workspaces workspaceRPStore, txs transactionRPStore) *reportsService {
	return &reportsService{
		workspaces: workspaces,
		txs:        txs,
		clockNow:   time.Now,
	}
}

// SpendSummary totals the workspace's imported transactions over the window,
// grouped by category or by account link.
func (s *reportsService) SpendSummary(ctx context.Context, uid string, args dto.SpendSummaryArgs) (dto.SpendSummaryResult, error) {
	result := dto.SpendSummaryResult{
		GroupBy: args.GroupBy,
	}
	if result.GroupBy == "" {
		result.GroupBy = dto.SpendGroupByCategory
	}
	if result.GroupBy != dto.SpendGroupByCategory && result.GroupBy != dto.SpendGroupByAccount {
		return result, errs.NewValidationError("group_by must be \"category\" or \"account\"")
	}

	ws, err := s.workspaces.Get(ctx, args.WorkspaceID)
	if _, ok := err.(*errs.NotFoundError); ok {
		return result, errs.NewAccessDeniedError("workspace does not belong to caller")
	}
	if err != nil {
		return result, err
	}
	if ws.UserID != uid {
		return result, errs.NewAccessDeniedError("workspace does not belong to caller")
	}

	now := s.clockNow()
	result.To = helpers.ValueOr(args.DateTo, now.Format(time.DateOnly))
	result.From = helpers.ValueOr(args.DateFrom, now.AddDate(0, 0, -30).Format(time.DateOnly))
	result.Currency = ws.Currency

	txs, err := s.txs.ListForWorkspace(ctx, ws.ID, result.From, result.To)
	if err != nil {
		return result, err
	}

	groups := map[string]*dto.SpendSummaryItem{}
	for _, tx := range txs {
		key := groupKey(tx, result.GroupBy)
		if key == "" {
			key = "uncategorized"
		}
		item, ok := groups[key]
		if !ok {
			item = &dto.SpendSummaryItem{Key: key}
			groups[key] = item
		}
		item.Total = item.Total.Add(tx.Amount)
		item.Count++
		result.Total = result.Total.Add(tx.Amount)
	}

	result.Items = make([]dto.SpendSummaryItem, 0, len(groups))
	for _, item := range groups {
		result.Items = append(result.Items, *item)
	}
	sort.Slice(result.Items, func(i, j int) bool {
		return result.Items[i].Key < result.Items[j].Key
	})
	return result, nil
}

func groupKey(tx *models.BankTransaction, groupBy string) string {
	if groupBy == dto.SpendGroupByAccount {
		return tx.BankAccountID
	}
	if len(tx.Categories) > 0 {
		return tx.Categories[0]
	}
	return ""
}
