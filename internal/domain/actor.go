package domain

import (
	"strings"
	"time"
)

// Role is an actor's trust level. Roles are ordered: member < staff < admin.
type Role string

const (
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
)

// Roles lists every role in ascending trust order.
func Roles() []Role { return []Role{RoleMember, RoleStaff, RoleAdmin} }

// Rank returns the role's position in the trust order, or -1 if unknown.
func (r Role) Rank() int {
	switch r {
	case RoleMember:
		return 0
	case RoleStaff:
		return 1
	case RoleAdmin:
		return 2
	default:
		return -1
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r.Rank() >= 0 }

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrValidationField("role", "unknown role %q", s)
	}
	return r, nil
}

// MembershipStatus gates authorization: only active actors are evaluated.
type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "active"
	MembershipInactive  MembershipStatus = "inactive"
	MembershipSuspended MembershipStatus = "suspended"
)

// ParseMembershipStatus converts a string into a MembershipStatus.
func ParseMembershipStatus(s string) (MembershipStatus, error) {
	switch m := MembershipStatus(strings.ToLower(strings.TrimSpace(s))); m {
	case MembershipActive, MembershipInactive, MembershipSuspended:
		return m, nil
	default:
		return "", ErrValidationField("membership_status", "unknown membership status %q", s)
	}
}

// DefaultGuestAllowance is the number of extra guests a new member may bring.
const DefaultGuestAllowance = 4

// Actor is a registered user of the venue.
type Actor struct {
	ID               int64            `json:"id"`
	Email            string           `json:"email"`
	Name             string           `json:"name"`
	Role             Role             `json:"role"`
	MembershipStatus MembershipStatus `json:"membership_status"`
	GuestAllowance   int              `json:"guest_allowance"`
	CreatedBy        *int64           `json:"created_by_user_id,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ContextActor returns the identity triple used for authorization.
func (a Actor) ContextActor() ContextActor {
	return ContextActor{ID: a.ID, Role: a.Role, MembershipStatus: a.MembershipStatus}
}

// ActorUpdate holds the admin-mutable fields of an actor. Nil fields are left unchanged.
type ActorUpdate struct {
	Role             *Role
	MembershipStatus *MembershipStatus
	GuestAllowance   *int
	Name             *string
}
