package main

import (
	"context"
	"fmt"
)

// Transfers moves an existing binding from one zone to another.
type Transfers struct {
	store Store
}

// NewTransfers creates the transfer service.
func NewTransfers(store Store) *Transfers {
	return &Transfers{store: store}
}

// Transfer moves the cheese's binding from fromZone to toZone. The exact
// source binding must exist; a cheese that is unbound, or bound elsewhere,
// fails with ErrStaleBinding and nothing changes. The new binding is inserted
// before the old one is deleted, so a failure in between leaves a duplicate
// binding rather than none. The destination zone is not checked for
// existence; only the assignment path verifies zones.
func (t *Transfers) Transfer(ctx context.Context, cheeseID, fromZoneID, toZoneID string) error {
	source := map[string]string{"cheese_id": cheeseID, "zone_id": fromZoneID}
	old, err := t.store.FindByFields(ctx, colAssignments, source)
	if err != nil {
		if err == ErrNotFound {
			return fmt.Errorf("%w: cheese %s, zone %s", ErrStaleBinding, cheeseID, fromZoneID)
		}
		return err
	}
	if _, err := t.store.Insert(ctx, colAssignments, Binding{CheeseID: cheeseID, ZoneID: toZoneID}.document()); err != nil {
		return err
	}
	return t.store.Delete(ctx, colAssignments, old.stringField(fieldID))
}
