package models

import (
	"time"
)

const (
	WorkspaceTypePersonal = "personal"
	WorkspaceTypeBusiness = "business"
)

// Workspace is a tenant/ledger boundary owned by exactly one user.
type Workspace struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"` // "personal" or "business"
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}
