package auction

import (
	"context"

	"github.com/clearbid/auctiond/internal/core/account"
)

// Action names an admin operation an Authorizer can grant.
type Action string

const (
	// ActionSetAllowList covers allow-list membership changes.
	ActionSetAllowList Action = "allowlist.set"

	// ActionSetConfig covers service configuration changes.
	ActionSetConfig Action = "config.set"
)

// Authorizer answers whether a caller is permitted to perform an admin
// action now. Implementations may gate the answer behind a time delay; the
// engine only sees the final yes/no.
type Authorizer interface {
	IsAuthorized(ctx context.Context, caller account.ID, action Action) (bool, error)
}

// DenyAll rejects every admin action. It is the engine default when no
// authorizer is wired.
type DenyAll struct{}

// IsAuthorized implements Authorizer.
func (DenyAll) IsAuthorized(context.Context, account.ID, Action) (bool, error) {
	return false, nil
}
