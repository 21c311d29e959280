// Package auditutil records audit entries on behalf of the services.
package auditutil

import (
	"context"
	"encoding/json"
	"fmt"

	"tablekeep/internal/domain"
)

// Event describes one high-value mutation. Before and After are full
// snapshots and are marshalled to JSON as given; nil means "no snapshot".
type Event struct {
	ActorID       int64
	Action        string
	ResourceType  domain.ResourceType
	ResourceID    string
	Before        any
	After         any
	OriginAddress string
}

// Record appends one entry. A zero ActorID or empty OriginAddress is filled
// from the context. When ctx carries a transaction the entry commits or rolls
// back with it.
func Record(ctx context.Context, audit domain.AuditRepository, ev Event) error {
	if audit == nil {
		return nil
	}

	entry := &domain.AuditEntry{
		Action:        ev.Action,
		ResourceType:  string(ev.ResourceType),
		OriginAddress: ev.OriginAddress,
	}

	actorID := ev.ActorID
	if actorID == 0 {
		if a, ok := domain.ActorFromContext(ctx); ok {
			actorID = a.ID
		}
	}
	if actorID != 0 {
		entry.ActorID = &actorID
	}
	if entry.OriginAddress == "" {
		entry.OriginAddress = domain.OriginAddressFromContext(ctx)
	}
	if ev.ResourceID != "" {
		id := ev.ResourceID
		entry.ResourceID = &id
	}

	var err error
	if entry.Before, err = snapshot(ev.Before); err != nil {
		return fmt.Errorf("audit before snapshot: %w", err)
	}
	if entry.After, err = snapshot(ev.After); err != nil {
		return fmt.Errorf("audit after snapshot: %w", err)
	}

	if err := audit.Insert(ctx, entry); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}
