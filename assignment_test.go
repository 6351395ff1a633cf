package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLedger wires an assignment service over a fresh MemStore and returns it
// together with the zone service backing it.
func newLedger(t *testing.T) (*Assignments, *Resources, Store) {
	t.Helper()
	store := NewMemStore()
	zones := NewZones(store)
	return NewAssignments(store, zones), zones, store
}

// seedBinding walks the full issue-then-redeem path.
func seedBinding(t *testing.T, ctx context.Context, a *Assignments, cheeseID, zoneID string) {
	t.Helper()
	requestID, err := a.IssueRequest(ctx)
	require.NoError(t, err)
	require.NoError(t, a.Assign(ctx, requestID, Binding{CheeseID: cheeseID, ZoneID: zoneID}.document()))
}

const unboundCheeseID = "bbbbbbbbbbbbbbbbbbbbbbbb"

func TestAssignCreatesBinding(t *testing.T) {
	ctx := context.Background()
	ledger, zones, _ := newLedger(t)

	zoneID, _, err := zones.Create(ctx, validZone())
	require.NoError(t, err)

	seedBinding(t, ctx, ledger, unboundCheeseID, zoneID)

	bindings, err := ledger.ListByZone(ctx, zoneID)
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.Equal(t, unboundCheeseID, bindings[0].stringField("cheese_id"))
	assert.Equal(t, zoneID, bindings[0].stringField("zone_id"))
}

func TestAssignRequiresExistingRequest(t *testing.T) {
	ctx := context.Background()
	ledger, zones, _ := newLedger(t)

	zoneID, _, err := zones.Create(ctx, validZone())
	require.NoError(t, err)

	err = ledger.Assign(ctx, "ffffffffffffffffffffffff", Binding{CheeseID: unboundCheeseID, ZoneID: zoneID}.document())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignRequestIsSingleUse(t *testing.T) {
	ctx := context.Background()
	ledger, zones, _ := newLedger(t)

	zoneID, _, err := zones.Create(ctx, validZone())
	require.NoError(t, err)
	otherZoneID, _, err := zones.Create(ctx, validZone())
	require.NoError(t, err)

	requestID, err := ledger.IssueRequest(ctx)
	require.NoError(t, err)
	require.NoError(t, ledger.Assign(ctx, requestID, Binding{CheeseID: unboundCheeseID, ZoneID: zoneID}.document()))

	// Second redemption, even for a different cheese, finds no request.
	err = ledger.Assign(ctx, requestID, Binding{CheeseID: "cccccccccccccccccccccccc", ZoneID: otherZoneID}.document())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignRequiresExistingZone(t *testing.T) {
	ctx := context.Background()
	ledger, _, _ := newLedger(t)

	requestID, err := ledger.IssueRequest(ctx)
	require.NoError(t, err)

	err = ledger.Assign(ctx, requestID, Binding{CheeseID: unboundCheeseID, ZoneID: "ffffffffffffffffffffffff"}.document())
	assert.ErrorIs(t, err, ErrZoneNotFound)
}

func TestAssignRequiresUnassignedCheese(t *testing.T) {
	ctx := context.Background()
	ledger, zones, store := newLedger(t)

	zoneA, _, err := zones.Create(ctx, validZone())
	require.NoError(t, err)
	zoneB, _, err := zones.Create(ctx, validZone())
	require.NoError(t, err)

	seedBinding(t, ctx, ledger, unboundCheeseID, zoneA)

	requestID, err := ledger.IssueRequest(ctx)
	require.NoError(t, err)
	err = ledger.Assign(ctx, requestID, Binding{CheeseID: unboundCheeseID, ZoneID: zoneB}.document())
	assert.ErrorIs(t, err, ErrCheeseAssigned)

	// The original binding is untouched and still the only one.
	bindings, err := store.ListByFields(ctx, colAssignments, map[string]string{"cheese_id": unboundCheeseID})
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.Equal(t, zoneA, bindings[0].stringField("zone_id"))
}

func TestAtMostOneBindingPerCheese(t *testing.T) {
	ctx := context.Background()
	ledger, zones, store := newLedger(t)

	zoneID, _, err := zones.Create(ctx, validZone())
	require.NoError(t, err)

	// Sequential assign attempts for one cheese: only the first may land.
	for i := 0; i < 3; i++ {
		requestID, err := ledger.IssueRequest(ctx)
		require.NoError(t, err)
		err = ledger.Assign(ctx, requestID, Binding{CheeseID: unboundCheeseID, ZoneID: zoneID}.document())
		if i == 0 {
			require.NoError(t, err)
		} else {
			require.ErrorIs(t, err, ErrCheeseAssigned)
		}
		bindings, err := store.ListByFields(ctx, colAssignments, map[string]string{"cheese_id": unboundCheeseID})
		require.NoError(t, err)
		assert.Len(t, bindings, 1)
	}
}

func TestListByZoneRequiresZone(t *testing.T) {
	ctx := context.Background()
	ledger, _, _ := newLedger(t)

	_, err := ledger.ListByZone(ctx, "ffffffffffffffffffffffff")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByZoneEmptyZone(t *testing.T) {
	ctx := context.Background()
	ledger, zones, _ := newLedger(t)

	zoneID, _, err := zones.Create(ctx, validZone())
	require.NoError(t, err)

	bindings, err := ledger.ListByZone(ctx, zoneID)
	require.NoError(t, err)
	assert.Empty(t, bindings)
}
