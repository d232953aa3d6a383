package sandbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdeck/internal/model"
	"stockdeck/internal/realtime"
	"stockdeck/internal/view"
)

// Exercises the whole loop a dashboard runs: authenticate, load the inventory
// screen, subscribe to updates, and reconcile after a concurrent mutation.
func TestViewReconciliationAgainstLiveBackend(t *testing.T) {
	srv := newTestServer(t)
	admin, loginResp := loginAs(t, srv, "admin", adminPassword)
	record := seedRecord(t, admin, 10)
	ctx := context.Background()

	v := view.NewInventoryView(admin, model.InventoryFilters{})
	v.Activate(ctx)
	waitFor(t, func() bool { return v.Selected() != nil }, "initial load never selected a record")
	assert.Equal(t, record.ID, v.Selected().ID)
	assert.Equal(t, 10, v.QuantityInput())

	channel := realtime.NewChannel()
	defer channel.Close()
	channel.OnChange(func() {
		if event := channel.LastEvent(); event != nil {
			v.HandleEvent(context.Background(), event)
		}
	})
	channel.SetToken(srv.URL, loginResp.Token)
	waitFor(t, channel.Connected, "channel never connected")

	// A second client mutates the same record; the event must pull the view
	// back in sync without any local action.
	other, _ := loginAs(t, srv, "admin", adminPassword)
	_, err := other.AdjustInventory(ctx, record.ID, 7)
	require.NoError(t, err)

	waitFor(t, func() bool {
		selected := v.Selected()
		return selected != nil && selected.Quantity == 17
	}, "view never reconciled to the broadcast change")
	assert.Equal(t, 17, v.QuantityInput(), "quantity input resynced with the refreshed selection")

	// Mutating through the view installs the response immediately.
	require.NoError(t, v.Adjust(ctx, -2))
	assert.Equal(t, 15, v.Selected().Quantity)

	waitFor(t, func() bool {
		items := v.Items()
		return len(items) == 1 && items[0].Quantity == 15
	}, "list never caught up with the view mutation")
}

func TestViewDeleteAgainstLiveBackend(t *testing.T) {
	srv := newTestServer(t)
	admin, _ := loginAs(t, srv, "admin", adminPassword)
	record := seedRecord(t, admin, 10)
	ctx := context.Background()

	v := view.NewInventoryView(admin, model.InventoryFilters{})
	v.Activate(ctx)
	waitFor(t, func() bool { return v.Selected() != nil }, "initial load never selected a record")

	require.NoError(t, v.Delete(ctx))
	waitFor(t, func() bool { return len(v.Items()) == 0 }, "deleted record still listed")
	assert.Nil(t, v.Selected())

	_, err := admin.GetInventory(ctx, record.ID)
	require.Error(t, err)
}
