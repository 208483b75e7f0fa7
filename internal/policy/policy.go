// Package policy decides whether an account may perform an action on a
// resource. Every protected mutation asks Can before touching the store.
package policy

import (
	"github.com/google/uuid"

	"github.com/foodieland/foodieland-api/internal/domain"
)

type Resource string

const (
	ResourceRecipe   Resource = "recipe"
	ResourceBlogPost Resource = "blog_post"
	ResourceCategory Resource = "category"
	ResourceComment  Resource = "comment"
	ResourceSetting  Resource = "setting"
	ResourceProfile  Resource = "profile"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Target identifies the resource instance; OwnerID is nil for collection-level
// checks such as create.
type Target struct {
	Resource Resource
	OwnerID  *uuid.UUID
}

func On(resource Resource) Target {
	return Target{Resource: resource}
}

func Owned(resource Resource, ownerID uuid.UUID) Target {
	return Target{Resource: resource, OwnerID: &ownerID}
}

type rule func(actor *domain.User, target Target) bool

var rules = map[Resource]map[Action]rule{
	ResourceRecipe: {
		ActionCreate: authenticated,
		ActionUpdate: ownerOrAdmin,
		ActionDelete: ownerOrAdmin,
	},
	ResourceBlogPost: {
		ActionCreate: authenticated,
		ActionUpdate: ownerOrAdmin,
		ActionDelete: ownerOrAdmin,
	},
	ResourceCategory: {
		ActionCreate: adminOnly,
		ActionUpdate: adminOnly,
		ActionDelete: adminOnly,
	},
	ResourceComment: {
		ActionCreate: authenticated,
		ActionUpdate: owner,
		ActionDelete: ownerOrAdmin,
	},
	ResourceSetting: {
		ActionUpdate: adminOnly,
	},
	ResourceProfile: {
		ActionUpdate: owner,
	},
}

// Can reports whether actor may perform action on target. Unknown pairs are
// denied.
func Can(actor *domain.User, action Action, target Target) bool {
	if actor == nil {
		return false
	}
	byAction, ok := rules[target.Resource]
	if !ok {
		return false
	}
	check, ok := byAction[action]
	if !ok {
		return false
	}
	return check(actor, target)
}

func authenticated(actor *domain.User, _ Target) bool {
	return actor.ID != uuid.Nil
}

func adminOnly(actor *domain.User, _ Target) bool {
	return actor.IsAdmin()
}

func owner(actor *domain.User, target Target) bool {
	return target.OwnerID != nil && *target.OwnerID == actor.ID
}

func ownerOrAdmin(actor *domain.User, target Target) bool {
	return owner(actor, target) || actor.IsAdmin()
}
