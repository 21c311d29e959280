package security

import (
	"tablekeep/internal/domain"
)

// OwnershipRegistry declares, per resource type, the attribute that links a
// row to its owning actor.
type OwnershipRegistry map[domain.ResourceType]string

// DefaultOwnership returns the ownership attributes of the venue schema.
// Resource types absent from the map cannot be granted ScopeOwn.
func DefaultOwnership() OwnershipRegistry {
	return OwnershipRegistry{
		domain.ResourceReservation:         "reservations.user_id",
		domain.ResourceReservationAttendee: "reservations.user_id",
		domain.ResourceOrder:               "reservations.user_id",
		domain.ResourceOrderItem:           "reservations.user_id",
		domain.ResourceMember:              "members.user_id",
		domain.ResourceUser:                "users.id",
		domain.ResourceNotification:        "notifications.user_id",
		domain.ResourceReservationMessage:  "reservations.user_id",
	}
}

// Access is a granted authorization decision, ready to be applied to rows.
type Access struct {
	Resource domain.ResourceType
	Action   domain.Action
	Scope    domain.Scope
	ActorID  int64

	ownerAttr string
}

func newAccess(owners OwnershipRegistry, actorID int64, res domain.ResourceType, action domain.Action, scope domain.Scope) Access {
	return Access{
		Resource:  res,
		Action:    action,
		Scope:     scope,
		ActorID:   actorID,
		ownerAttr: owners[res],
	}
}

// OwnerFilter translates the scope into a query constraint. A nil ownerID
// with empty=false means unrestricted; empty=true means the query must
// return nothing.
func (a Access) OwnerFilter() (ownerID *int64, empty bool, err error) {
	switch a.Scope {
	case domain.ScopeAll:
		return nil, false, nil
	case domain.ScopeOwn:
		if a.ownerAttr == "" {
			return nil, false, domain.ErrAccessDenied("%s has no ownership attribute", a.Resource)
		}
		id := a.ActorID
		return &id, false, nil
	default:
		return nil, true, nil
	}
}

// Check applies the scope to a single row owned by ownerID.
func (a Access) Check(ownerID int64) error {
	switch a.Scope {
	case domain.ScopeAll:
		return nil
	case domain.ScopeOwn:
		if a.ownerAttr == "" {
			return domain.ErrAccessDenied("%s has no ownership attribute", a.Resource)
		}
		if ownerID != a.ActorID {
			return domain.ErrAccessDenied("%s:%s is limited to your own records", a.Resource, a.Action)
		}
		return nil
	default:
		return domain.ErrAccessDenied("%s may not be %s", a.Resource, verb(a.Action))
	}
}

func verb(a domain.Action) string {
	switch a {
	case domain.ActionRead:
		return "read"
	case domain.ActionWrite:
		return "written"
	case domain.ActionDelete:
		return "deleted"
	default:
		return string(a)
	}
}
