// Package authz decides whether a principal may perform an action on a post.
// It is pure: no I/O, no clock, no shared state.
package authz

import (
	"github.com/dmitrijs2005/postgate/internal/common"
	"github.com/dmitrijs2005/postgate/internal/server/models"
)

type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
	DenyNotFound
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	case DenyForbidden:
		return "deny_forbidden"
	case DenyNotFound:
		return "deny_not_found"
	default:
		return "unknown"
	}
}

// Err returns the sentinel error matching d, or nil for Allow.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case DenyUnauthenticated:
		return common.ErrorUnauthorized
	case DenyForbidden:
		return common.ErrorForbidden
	case DenyNotFound:
		return common.ErrorNotFound
	default:
		return common.ErrorInternal
	}
}

// Decide applies the access rules in order:
//
//   - reads are always allowed;
//   - anything else needs an authenticated principal;
//   - creation needs nothing more;
//   - update and delete need the post to exist, then need the caller to own it.
//
// Ownership is an exact, case-sensitive username comparison.
func Decide(p models.Principal, a Action, post *models.Post) Decision {
	if a == ActionRead {
		return Allow
	}
	if !p.IsAuthenticated() {
		return DenyUnauthenticated
	}

	switch a {
	case ActionCreate:
		return Allow
	case ActionUpdate, ActionDelete:
		if post == nil {
			return DenyNotFound
		}
		if p.Username != post.Username {
			return DenyForbidden
		}
		return Allow
	default:
		return DenyForbidden
	}
}
