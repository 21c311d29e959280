package domain

import (
	"encoding/json"
	"time"
)

// MemberProfile is a person (usually family) an actor may bring along.
// OwnerID is the actor the profile belongs to.
type MemberProfile struct {
	ID                  int64           `json:"id"`
	OwnerID             int64           `json:"user_id"`
	Name                string          `json:"name"`
	Relation            *string         `json:"relation,omitempty"`
	DietaryRestrictions json.RawMessage `json:"dietary_restrictions,omitempty"`
	CreatedBy           *int64          `json:"created_by_user_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}
