package domain

import (
	"encoding/json"
	"time"
)

// AuditEntry is one immutable record of a high-value mutation. Before and
// After are full snapshots, not diffs.
type AuditEntry struct {
	ID            string          `json:"id"`
	ActorID       *int64          `json:"actor_id,omitempty"`
	Action        string          `json:"action"`
	ResourceType  string          `json:"resource_type"`
	ResourceID    *string         `json:"resource_id,omitempty"`
	Before        json.RawMessage `json:"before,omitempty"`
	After         json.RawMessage `json:"after,omitempty"`
	OriginAddress string          `json:"origin_address,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	ActorID      *int64
	Action       *string
	ResourceType *string
	ResourceID   *string
	Page         PageRequest
}

// Audit actions recorded by the core.
const (
	AuditUpdatePermissions     = "update_permissions"
	AuditCreateReservation     = "create_reservation"
	AuditUpdateReservation     = "update_reservation"
	AuditTransitionReservation = "transition_reservation"
	AuditDeleteReservation     = "delete_reservation"
	AuditSyncManifest          = "sync_manifest"
	AuditUpdateUser            = "update_user"
	AuditUpdateDiningRoom      = "update_dining_room"
)
