// Package authz provides Authorizer implementations gating the engine's
// admin operations: a static admin set, a signature-verified variant, and a
// two-phase delayed decorator.
package authz

import (
	"context"

	"github.com/clearbid/auctiond/internal/core/account"
	"github.com/clearbid/auctiond/internal/core/auction"
)

// StaticAuthorizer grants every action to a fixed set of admin accounts.
type StaticAuthorizer struct {
	admins map[account.ID]struct{}
}

// NewStaticAuthorizer builds an authorizer over the given admin accounts.
// Zero IDs are ignored so an unset config value can never become an admin.
func NewStaticAuthorizer(admins ...account.ID) *StaticAuthorizer {
	a := &StaticAuthorizer{admins: make(map[account.ID]struct{}, len(admins))}
	for _, id := range admins {
		if !id.IsZero() {
			a.admins[id] = struct{}{}
		}
	}
	return a
}

// IsAuthorized implements auction.Authorizer.
func (a *StaticAuthorizer) IsAuthorized(_ context.Context, caller account.ID, _ auction.Action) (bool, error) {
	_, ok := a.admins[caller]
	return ok, nil
}
