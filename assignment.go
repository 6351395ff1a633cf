package main

import (
	"context"
	"fmt"
)

// Assignments manages single-use assignment requests and the ledger of
// cheese-to-zone bindings. A cheese is bound to at most one zone; the only
// way into a zone for an unbound cheese is redeeming an assignment request.
type Assignments struct {
	store Store
	zones *Resources
}

// NewAssignments creates the assignment service.
func NewAssignments(store Store, zones *Resources) *Assignments {
	return &Assignments{store: store, zones: zones}
}

// IssueRequest creates a new, empty assignment request and returns its id.
func (a *Assignments) IssueRequest(ctx context.Context) (string, error) {
	return a.store.Insert(ctx, colRequests, Document{})
}

// Assign redeems an assignment request against the ledger. Steps, in order:
// the request must exist, the zone must exist, and the cheese must be
// unbound; then the binding payload is inserted and the request deleted.
// The unbound check and the insert are separate store calls, so two
// concurrent assigns for the same cheese can race past each other; callers
// serialize if they care.
func (a *Assignments) Assign(ctx context.Context, requestID string, payload Document) error {
	cheeseID := payload.stringField("cheese_id")
	zoneID := payload.stringField("zone_id")

	if _, err := a.store.Get(ctx, colRequests, requestID); err != nil {
		return err
	}
	if _, err := a.zones.Get(ctx, zoneID); err != nil {
		if err == ErrNotFound {
			return fmt.Errorf("%w: %s", ErrZoneNotFound, zoneID)
		}
		return err
	}
	_, err := a.store.FindByFields(ctx, colAssignments, map[string]string{"cheese_id": cheeseID})
	if err == nil {
		return ErrCheeseAssigned
	}
	if err != ErrNotFound {
		return err
	}
	binding := payload.clone()
	delete(binding, fieldID)
	if _, err := a.store.Insert(ctx, colAssignments, binding); err != nil {
		return err
	}
	return a.store.Delete(ctx, colRequests, requestID)
}

// ListByZone returns every binding for the zone. The zone itself must exist,
// even if it holds nothing.
func (a *Assignments) ListByZone(ctx context.Context, zoneID string) ([]Document, error) {
	if _, err := a.zones.Get(ctx, zoneID); err != nil {
		return nil, err
	}
	return a.store.ListByFields(ctx, colAssignments, map[string]string{"zone_id": zoneID})
}
