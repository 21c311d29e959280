package domain

import (
	"fmt"
	"sort"
	"time"
)

// Scope is the breadth of a permitted action.
type Scope string

const (
	ScopeNone Scope = "none"
	ScopeOwn  Scope = "own"
	ScopeAll  Scope = "all"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeNone || s == ScopeOwn || s == ScopeAll
}

// Action is an operation class gated by the policy matrix.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// Actions lists every action.
func Actions() []Action { return []Action{ActionRead, ActionWrite, ActionDelete} }

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a == ActionRead || a == ActionWrite || a == ActionDelete
}

// ResourceType is the closed set of resource kinds the matrix governs.
type ResourceType string

const (
	ResourceReservation         ResourceType = "Reservation"
	ResourceReservationAttendee ResourceType = "ReservationAttendee"
	ResourceOrder               ResourceType = "Order"
	ResourceOrderItem           ResourceType = "OrderItem"
	ResourceMenuItem            ResourceType = "MenuItem"
	ResourceDiningRoom          ResourceType = "DiningRoom"
	ResourceTable               ResourceType = "Table"
	ResourceMember              ResourceType = "Member"
	ResourceUser                ResourceType = "User"
	ResourceNotification        ResourceType = "Notification"
	ResourceReservationMessage  ResourceType = "ReservationMessage"
	ResourceDailyStat           ResourceType = "DailyStat"
	ResourceAuditTrail          ResourceType = "AuditTrail"
	ResourcePolicyMatrix        ResourceType = "PolicyMatrix"
)

var resourceTypes = []ResourceType{
	ResourceReservation,
	ResourceReservationAttendee,
	ResourceOrder,
	ResourceOrderItem,
	ResourceMenuItem,
	ResourceDiningRoom,
	ResourceTable,
	ResourceMember,
	ResourceUser,
	ResourceNotification,
	ResourceReservationMessage,
	ResourceDailyStat,
	ResourceAuditTrail,
	ResourcePolicyMatrix,
}

// ResourceTypes lists every governed resource type.
func ResourceTypes() []ResourceType {
	out := make([]ResourceType, len(resourceTypes))
	copy(out, resourceTypes)
	return out
}

// Valid reports whether r is a known resource type.
func (r ResourceType) Valid() bool {
	for _, t := range resourceTypes {
		if t == r {
			return true
		}
	}
	return false
}

// PolicyMatrix maps role -> resource type -> action -> scope. Its persisted
// JSON shape is the same nested object. Absence at any level means ScopeNone.
// The admin role is never read from the matrix.
type PolicyMatrix map[Role]map[ResourceType]map[Action]Scope

// Scope is the total lookup over the matrix. Missing keys and unrecognised
// values yield ScopeNone.
func (m PolicyMatrix) Scope(role Role, res ResourceType, action Action) Scope {
	s, ok := m[role][res][action]
	if !ok || !s.Valid() {
		return ScopeNone
	}
	return s
}

// Set assigns a scope, allocating intermediate levels as needed.
func (m PolicyMatrix) Set(role Role, res ResourceType, action Action, s Scope) {
	byRes, ok := m[role]
	if !ok {
		byRes = make(map[ResourceType]map[Action]Scope)
		m[role] = byRes
	}
	byAction, ok := byRes[res]
	if !ok {
		byAction = make(map[Action]Scope)
		byRes[res] = byAction
	}
	byAction[action] = s
}

// Clone returns a deep copy.
func (m PolicyMatrix) Clone() PolicyMatrix {
	out := make(PolicyMatrix, len(m))
	for role, byRes := range m {
		outRes := make(map[ResourceType]map[Action]Scope, len(byRes))
		for res, byAction := range byRes {
			outAction := make(map[Action]Scope, len(byAction))
			for a, s := range byAction {
				outAction[a] = s
			}
			outRes[res] = outAction
		}
		out[role] = outRes
	}
	return out
}

// Validate rejects any entry outside the enumerations. An admin block is
// checked like any other but has no effect: admin permissions are fixed and
// Sanitize drops it. An empty matrix is valid.
func (m PolicyMatrix) Validate() error {
	for _, role := range sortedKeys(m) {
		if !role.Valid() {
			return ErrValidationField(string(role), "unknown role %q", role)
		}
		byRes := m[role]
		for _, res := range sortedKeys(byRes) {
			path := fmt.Sprintf("%s.%s", role, res)
			if !res.Valid() {
				return ErrValidationField(path, "unknown resource type %q", res)
			}
			for _, action := range sortedKeys(byRes[res]) {
				apath := path + "." + string(action)
				if !action.Valid() {
					return ErrValidationField(apath, "unknown action %q", action)
				}
				if s := byRes[res][action]; !s.Valid() {
					return ErrValidationField(apath, "unknown scope %q", s)
				}
			}
		}
	}
	return nil
}

// Sanitize returns a copy holding only recognised, configurable entries,
// plus the paths that were dropped. Dropped entries behave as ScopeNone (or,
// for admin, are never consulted) either way.
func (m PolicyMatrix) Sanitize() (PolicyMatrix, []string) {
	out := make(PolicyMatrix, len(m))
	var dropped []string
	for _, role := range sortedKeys(m) {
		if !role.Valid() || role == RoleAdmin {
			dropped = append(dropped, string(role))
			continue
		}
		for _, res := range sortedKeys(m[role]) {
			if !res.Valid() {
				dropped = append(dropped, fmt.Sprintf("%s.%s", role, res))
				continue
			}
			for _, action := range sortedKeys(m[role][res]) {
				s := m[role][res][action]
				if !action.Valid() || !s.Valid() {
					dropped = append(dropped, fmt.Sprintf("%s.%s.%s", role, res, action))
					continue
				}
				out.Set(role, res, action, s)
			}
		}
	}
	return out, dropped
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// PolicyRecord is the persisted, versioned policy matrix.
type PolicyRecord struct {
	Matrix    PolicyMatrix
	Version   int64
	UpdatedBy *int64
	UpdatedAt time.Time
}

// DefaultPolicyMatrix is the bootstrap matrix served before any matrix has
// been saved.
func DefaultPolicyMatrix() PolicyMatrix {
	type rwd [3]Scope
	m := PolicyMatrix{}
	put := func(role Role, res ResourceType, s rwd) {
		m.Set(role, res, ActionRead, s[0])
		m.Set(role, res, ActionWrite, s[1])
		m.Set(role, res, ActionDelete, s[2])
	}

	put(RoleMember, ResourceReservation, rwd{ScopeOwn, ScopeOwn, ScopeOwn})
	put(RoleMember, ResourceReservationAttendee, rwd{ScopeOwn, ScopeOwn, ScopeOwn})
	put(RoleMember, ResourceMenuItem, rwd{ScopeAll, ScopeNone, ScopeNone})
	put(RoleMember, ResourceOrder, rwd{ScopeOwn, ScopeOwn, ScopeNone})
	put(RoleMember, ResourceOrderItem, rwd{ScopeOwn, ScopeOwn, ScopeNone})
	put(RoleMember, ResourceUser, rwd{ScopeOwn, ScopeOwn, ScopeNone})
	put(RoleMember, ResourceMember, rwd{ScopeOwn, ScopeOwn, ScopeNone})
	put(RoleMember, ResourceDiningRoom, rwd{ScopeAll, ScopeNone, ScopeNone})
	put(RoleMember, ResourceTable, rwd{ScopeAll, ScopeNone, ScopeNone})
	put(RoleMember, ResourceReservationMessage, rwd{ScopeOwn, ScopeOwn, ScopeNone})
	put(RoleMember, ResourceDailyStat, rwd{ScopeNone, ScopeNone, ScopeNone})
	put(RoleMember, ResourceAuditTrail, rwd{ScopeNone, ScopeNone, ScopeNone})
	put(RoleMember, ResourceNotification, rwd{ScopeOwn, ScopeNone, ScopeOwn})

	put(RoleStaff, ResourceReservation, rwd{ScopeAll, ScopeAll, ScopeAll})
	put(RoleStaff, ResourceReservationAttendee, rwd{ScopeAll, ScopeAll, ScopeAll})
	put(RoleStaff, ResourceMenuItem, rwd{ScopeAll, ScopeAll, ScopeNone})
	put(RoleStaff, ResourceOrder, rwd{ScopeAll, ScopeAll, ScopeAll})
	put(RoleStaff, ResourceOrderItem, rwd{ScopeAll, ScopeAll, ScopeAll})
	put(RoleStaff, ResourceUser, rwd{ScopeAll, ScopeNone, ScopeNone})
	put(RoleStaff, ResourceMember, rwd{ScopeAll, ScopeAll, ScopeNone})
	put(RoleStaff, ResourceDiningRoom, rwd{ScopeAll, ScopeAll, ScopeNone})
	put(RoleStaff, ResourceTable, rwd{ScopeAll, ScopeAll, ScopeNone})
	put(RoleStaff, ResourceReservationMessage, rwd{ScopeAll, ScopeAll, ScopeNone})
	put(RoleStaff, ResourceDailyStat, rwd{ScopeAll, ScopeNone, ScopeNone})
	put(RoleStaff, ResourceAuditTrail, rwd{ScopeNone, ScopeNone, ScopeNone})
	put(RoleStaff, ResourceNotification, rwd{ScopeAll, ScopeAll, ScopeAll})

	return m
}
