// Package authz decides whether a resolved identity may perform an action.
// Ownership is the only authorization primitive: there are no roles and no
// admin override. The rules live in a table keyed by action so that adding a
// relation later is a table edit, not a rewrite of scattered conditionals.
package authz

import (
	"inkwell/internal/models"
	"inkwell/internal/observability"
)

// Identity is the result of resolving an inbound credential token. The zero
// value is anonymous; resolution never fails with an error, it degrades to
// Anonymous and access is denied here, not at the resolver.
type Identity struct {
	AccountID uint
}

// Anonymous returns the unauthenticated identity.
func Anonymous() Identity {
	return Identity{}
}

// Identified returns the identity bound to the given account.
func Identified(accountID uint) Identity {
	return Identity{AccountID: accountID}
}

// Known reports whether the identity is bound to an account.
func (i Identity) Known() bool {
	return i.AccountID != 0
}

// Action names an operation on the API surface.
type Action string

const (
	ActionAccountRegister Action = "account.register"
	ActionAccountRead     Action = "account.read"
	ActionAccountList     Action = "account.list"
	ActionAccountUpdate   Action = "account.update"
	ActionAccountDelete   Action = "account.delete"

	ActionArticleCreate Action = "article.create"
	ActionArticleRead   Action = "article.read"
	ActionArticleList   Action = "article.list"
	ActionArticleUpdate Action = "article.update"
	ActionArticleDelete Action = "article.delete"
	ActionArticleTag    Action = "article.tag"

	ActionTagCreate Action = "tag.create"
	ActionTagRead   Action = "tag.read"
	ActionTagList   Action = "tag.list"
	ActionTagUpdate Action = "tag.update"
	ActionTagDelete Action = "tag.delete"

	ActionSessionCurrent Action = "session.current"
	ActionSessionLogout  Action = "session.logout"
)

// Requirement is the relation an action demands between requester and resource.
type Requirement int

const (
	// Public actions are allowed unconditionally.
	Public Requirement = iota
	// RequiresIdentity actions are allowed for any authenticated account.
	RequiresIdentity
	// RequiresOwnership actions are allowed only for the resource owner.
	RequiresOwnership
)

var rules = map[Action]Requirement{
	ActionAccountRegister: Public,
	ActionAccountRead:     Public,
	ActionAccountList:     Public,
	ActionAccountUpdate:   RequiresOwnership,
	ActionAccountDelete:   RequiresOwnership,

	ActionArticleCreate: RequiresIdentity,
	ActionArticleRead:   Public,
	ActionArticleList:   Public,
	ActionArticleUpdate: RequiresOwnership,
	ActionArticleDelete: RequiresOwnership,
	ActionArticleTag:    RequiresOwnership,

	// Tags are a shared taxonomy: any authenticated account may edit them.
	ActionTagCreate: RequiresIdentity,
	ActionTagRead:   Public,
	ActionTagList:   Public,
	ActionTagUpdate: RequiresIdentity,
	ActionTagDelete: RequiresIdentity,

	ActionSessionCurrent: RequiresIdentity,
	ActionSessionLogout:  RequiresIdentity,
}

// Authorize gates the given action. ownerID is the owning account of the
// target resource and is only consulted for ownership-gated actions.
// Unknown actions deny closed.
func Authorize(identity Identity, action Action, ownerID uint) error {
	req, ok := rules[action]
	if !ok {
		return deny(models.NewForbiddenError("Unknown action"))
	}

	switch req {
	case Public:
		return nil
	case RequiresIdentity:
		if !identity.Known() {
			return deny(models.NewAuthenticationRequiredError())
		}
		return nil
	case RequiresOwnership:
		if !identity.Known() {
			return deny(models.NewAuthenticationRequiredError())
		}
		if identity.AccountID != ownerID {
			return deny(models.NewForbiddenError("Only the owner may perform this action"))
		}
		return nil
	}
	return deny(models.NewForbiddenError("Unknown requirement"))
}

func deny(err *models.AppError) error {
	observability.AuthorizationDenials.WithLabelValues(err.Code).Inc()
	return err
}

// Requires returns the requirement registered for an action, denying closed
// for unknown actions.
func Requires(action Action) Requirement {
	req, ok := rules[action]
	if !ok {
		return RequiresOwnership
	}
	return req
}
