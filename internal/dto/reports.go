package dto

import (
	"github.com/shopspring/decimal"
)

const (
	SpendGroupByCategory = "category"
	SpendGroupByAccount  = "account"
)

type SpendSummaryArgs struct {
	WorkspaceID string
	DateFrom    *string // YYYY-MM-DD, defaults to 30 days back
	DateTo      *string
	GroupBy     string // "category" or "account"
}

type SpendSummaryItem struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type SpendSummaryResult struct {
	From     string             `json:"from"`
	To       string             `json:"to"`
	GroupBy  string             `json:"group_by"`
	Currency string             `json:"currency"`
	Total    decimal.Decimal    `json:"total"`
	Items    []SpendSummaryItem `json:"items"`
}
