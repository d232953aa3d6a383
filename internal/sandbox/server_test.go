package sandbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdeck/internal/api"
	"stockdeck/internal/cache"
	"stockdeck/internal/model"
	"stockdeck/internal/realtime"
)

const adminPassword = "adminadmin"

// newTestServer boots a full sandbox on a temp database behind httptest.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	server := NewServer(store, cache.NewMemoryCache(), time.Hour)
	require.NoError(t, server.Seed(context.Background(), adminPassword))

	srv := httptest.NewServer(server.Router)
	t.Cleanup(func() {
		srv.Close()
		server.Shutdown()
	})
	return srv
}

// loginAs authenticates and returns a ready client.
func loginAs(t *testing.T, srv *httptest.Server, username, password string) (*api.Client, *model.LoginResponse) {
	t.Helper()
	resp, err := api.Login(context.Background(), srv.URL, model.LoginRequest{Username: username, Password: password})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	return api.New(srv.URL, resp.Token), resp
}

// createStaff provisions a staff account through the manager API and logs in
// with it.
func createStaff(t *testing.T, srv *httptest.Server, admin *api.Client, username string) (*api.Client, *model.User) {
	t.Helper()
	user, err := admin.CreateUser(context.Background(), model.CreateUserRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "staffpass",
		Role:     model.RoleStaff,
	})
	require.NoError(t, err)

	client, _ := loginAs(t, srv, username, "staffpass")
	return client, user
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestLoginAndProfile(t *testing.T) {
	srv := newTestServer(t)
	client, resp := loginAs(t, srv, "admin", adminPassword)

	assert.Equal(t, "admin", resp.User.Username)
	assert.Equal(t, model.RoleManager, resp.User.Role)
	assert.True(t, len(resp.Token) > 4 && resp.Token[:4] == "sdk_")

	profile, err := client.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, profile.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)

	_, err := api.Login(context.Background(), srv.URL, model.LoginRequest{Username: "admin", Password: "wrong"})
	require.Error(t, err)
	assert.EqualError(t, err, "invalid username or password")

	_, err = api.Login(context.Background(), srv.URL, model.LoginRequest{Username: "nobody", Password: "x"})
	require.Error(t, err)
	assert.EqualError(t, err, "invalid username or password")
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	srv := newTestServer(t)
	client := api.New(srv.URL, "")

	_, err := client.GetProfile(context.Background())
	require.Error(t, err)
	assert.EqualError(t, err, "authentication required")

	bogus := api.New(srv.URL, "sdk_nonsense")
	_, err = bogus.GetProfile(context.Background())
	require.Error(t, err)
	assert.EqualError(t, err, "invalid or expired token")
}

func TestPasswordChangeRotatesCredentials(t *testing.T) {
	srv := newTestServer(t)
	admin, _ := loginAs(t, srv, "admin", adminPassword)
	ctx := context.Background()

	err := admin.ChangePassword(ctx, model.PasswordChangeRequest{OldPassword: "wrong", NewPassword: "longenough"})
	require.Error(t, err)
	assert.EqualError(t, err, "old password is incorrect")

	err = admin.ChangePassword(ctx, model.PasswordChangeRequest{OldPassword: adminPassword, NewPassword: "short"})
	require.Error(t, err)
	assert.EqualError(t, err, "new password must be at least 8 characters")

	require.NoError(t, admin.ChangePassword(ctx, model.PasswordChangeRequest{OldPassword: adminPassword, NewPassword: "newsecret"}))

	_, err = api.Login(ctx, srv.URL, model.LoginRequest{Username: "admin", Password: adminPassword})
	require.Error(t, err)
	loginAs(t, srv, "admin", "newsecret")
}

func TestManagerSurfaceRejectsStaff(t *testing.T) {
	srv := newTestServer(t)
	admin, _ := loginAs(t, srv, "admin", adminPassword)
	staff, _ := createStaff(t, srv, admin, "clerk")
	ctx := context.Background()

	_, err := staff.ListUsers(ctx, 1, 10)
	require.Error(t, err)
	assert.EqualError(t, err, "manager role required")

	_, err = staff.CreateSKU(ctx, model.SKURequest{Name: "x", Category: "c", Price: 1})
	require.Error(t, err)
	assert.EqualError(t, err, "manager role required")

	// Catalog reads stay open to staff.
	_, err = staff.ListSKUs(ctx, model.SKUFilters{})
	assert.NoError(t, err)
	_, err = staff.ListInventory(ctx, model.InventoryFilters{})
	assert.NoError(t, err)
}

func TestUserManagement(t *testing.T) {
	srv := newTestServer(t)
	admin, loginResp := loginAs(t, srv, "admin", adminPassword)
	ctx := context.Background()

	created, err := admin.CreateUser(ctx, model.CreateUserRequest{
		Username: "bob", Email: "bob@example.com", Password: "bobsecret", Role: model.RoleStaff,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, created.Role)

	_, err = admin.CreateUser(ctx, model.CreateUserRequest{
		Username: "bob", Email: "other@example.com", Password: "password1", Role: model.RoleStaff,
	})
	require.Error(t, err)
	assert.EqualError(t, err, "username already taken")

	role := model.RoleManager
	updated, err := admin.UpdateUser(ctx, model.UpdateUserRequest{TargetID: created.ID, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, updated.Role)
	assert.Equal(t, "bob", updated.Username, "unset fields left unchanged")

	list, err := admin.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list.Users, 2)
	assert.EqualValues(t, 2, list.Total)

	err = admin.DeleteUser(ctx, loginResp.User.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "cannot delete your own account")

	require.NoError(t, admin.DeleteUser(ctx, created.ID))
	list, err = admin.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list.Users, 1)
}

func TestSKUCatalog(t *testing.T) {
	srv := newTestServer(t)
	admin, _ := loginAs(t, srv, "admin", adminPassword)
	ctx := context.Background()

	widget, err := admin.CreateSKU(ctx, model.SKURequest{Name: "Widget", Category: "widgets", Price: 9.99})
	require.NoError(t, err)
	assert.Equal(t, 1, widget.Version)

	_, err = admin.CreateSKU(ctx, model.SKURequest{Name: "Gadget", Category: "gadgets", Price: 19.99})
	require.NoError(t, err)

	list, err := admin.ListSKUs(ctx, model.SKUFilters{Search: "wid"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Widget", list.Items[0].Name)

	list, err = admin.ListSKUs(ctx, model.SKUFilters{Category: "gadgets"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Gadget", list.Items[0].Name)

	cats, err := admin.ListSKUCategories(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"widgets", "gadgets"}, cats.Categories)

	updated, err := admin.UpdateSKU(ctx, widget.ID, model.SKURequest{Name: "Widget v2", Category: "widgets", Price: 12.50})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version, "updates bump the version")

	require.NoError(t, admin.DeleteSKU(ctx, widget.ID))
	_, err = admin.GetSKU(ctx, widget.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "sku not found")
}

func TestStoresAndStaffAssignments(t *testing.T) {
	srv := newTestServer(t)
	admin, _ := loginAs(t, srv, "admin", adminPassword)
	_, staffUser := createStaff(t, srv, admin, "clerk")
	ctx := context.Background()

	store, err := admin.CreateStore(ctx, model.CreateStoreRequest{Name: "Downtown", Address: "1 Main St"})
	require.NoError(t, err)

	assoc, err := admin.AddStaffToStore(ctx, model.AddStaffRequest{StoreID: store.ID, UserID: staffUser.ID})
	require.NoError(t, err)
	assert.Equal(t, store.ID, assoc.StoreID)

	_, err = admin.AddStaffToStore(ctx, model.AddStaffRequest{StoreID: store.ID, UserID: staffUser.ID})
	require.Error(t, err)
	assert.EqualError(t, err, "user is already assigned to this store")

	staffList, err := admin.ListStoreStaff(ctx, store.ID)
	require.NoError(t, err)
	require.Len(t, staffList.Staff, 1)
	assert.Equal(t, "clerk", staffList.Staff[0].Username)

	require.NoError(t, admin.DeleteStaffFromStore(ctx, assoc.ID))
	staffList, err = admin.ListStoreStaff(ctx, store.ID)
	require.NoError(t, err)
	assert.Empty(t, staffList.Staff)
}

// seedRecord creates a store, a SKU, and one inventory record.
func seedRecord(t *testing.T, admin *api.Client, quantity int) *model.InventoryRecord {
	t.Helper()
	ctx := context.Background()

	store, err := admin.CreateStore(ctx, model.CreateStoreRequest{Name: "Downtown", Address: "1 Main St"})
	require.NoError(t, err)
	sku, err := admin.CreateSKU(ctx, model.SKURequest{Name: "Widget", Category: "widgets", Price: 9.99})
	require.NoError(t, err)

	record, err := admin.CreateInventory(ctx, model.CreateInventoryRequest{
		SKUID: sku.ID, StoreID: store.ID, Quantity: quantity,
	})
	require.NoError(t, err)
	return record
}

func TestInventoryLifecycle(t *testing.T) {
	srv := newTestServer(t)
	admin, _ := loginAs(t, srv, "admin", adminPassword)
	ctx := context.Background()

	record := seedRecord(t, admin, 10)
	assert.Equal(t, 10, record.Quantity)
	assert.Equal(t, 1, record.Version)
	require.NotNil(t, record.SKU)
	assert.Equal(t, "Widget", record.SKU.Name)

	_, err := admin.CreateInventory(ctx, model.CreateInventoryRequest{
		SKUID: record.SKUID, StoreID: record.StoreID, Quantity: 5,
	})
	require.Error(t, err)
	assert.EqualError(t, err, "inventory record already exists for this sku and store")

	adjusted, err := admin.AdjustInventory(ctx, record.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 15, adjusted.Quantity)
	assert.Equal(t, 2, adjusted.Version)

	_, err = admin.AdjustInventory(ctx, record.ID, -100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient quantity")

	set, err := admin.UpdateInventory(ctx, record.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, set.Quantity)

	require.NoError(t, admin.DeleteInventory(ctx, record.ID))
	_, err = admin.GetInventory(ctx, record.ID)
	require.Error(t, err)
	assert.EqualError(t, err, "inventory record not found")
}

func TestStaffAdjustScopedToAssignedStores(t *testing.T) {
	srv := newTestServer(t)
	admin, _ := loginAs(t, srv, "admin", adminPassword)
	staff, staffUser := createStaff(t, srv, admin, "clerk")
	ctx := context.Background()

	assigned := seedRecord(t, admin, 10)

	otherStore, err := admin.CreateStore(ctx, model.CreateStoreRequest{Name: "Uptown", Address: "2 High St"})
	require.NoError(t, err)
	sku, err := admin.CreateSKU(ctx, model.SKURequest{Name: "Gadget", Category: "gadgets", Price: 5})
	require.NoError(t, err)
	unassigned, err := admin.CreateInventory(ctx, model.CreateInventoryRequest{
		SKUID: sku.ID, StoreID: otherStore.ID, Quantity: 10,
	})
	require.NoError(t, err)

	_, err = admin.AddStaffToStore(ctx, model.AddStaffRequest{StoreID: assigned.StoreID, UserID: staffUser.ID})
	require.NoError(t, err)

	got, err := staff.AdjustInventory(ctx, assigned.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 13, got.Quantity)

	_, err = staff.AdjustInventory(ctx, unassigned.ID, 3)
	require.Error(t, err)
	assert.EqualError(t, err, "not assigned to this store")
}

func TestMutationsBroadcastEvents(t *testing.T) {
	srv := newTestServer(t)
	admin, loginResp := loginAs(t, srv, "admin", adminPassword)
	record := seedRecord(t, admin, 10)
	ctx := context.Background()

	channel := realtime.NewChannel()
	defer channel.Close()
	channel.SetToken(srv.URL, loginResp.Token)
	waitFor(t, channel.Connected, "channel never connected")

	_, err := admin.AdjustInventory(ctx, record.ID, 5)
	require.NoError(t, err)

	waitFor(t, func() bool { return channel.LastEvent() != nil }, "adjust event never arrived")
	event := channel.LastEvent()
	assert.Equal(t, model.OpAdjust, event.OperationType)
	assert.Equal(t, record.ID, event.InventoryID)
	assert.Equal(t, "Widget", event.SKUName)
	assert.Equal(t, "Downtown", event.StoreName)
	assert.Equal(t, 5, event.DeltaQuantity)
	assert.Equal(t, 15, event.NewQuantity)
	require.NotNil(t, event.OldQuantity)
	assert.Equal(t, 10, *event.OldQuantity)
	assert.Equal(t, "admin", event.UserName)
	assert.NotEmpty(t, event.SenderInstanceID)

	channel.ClearLastEvent()
	require.NoError(t, admin.DeleteInventory(ctx, record.ID))

	waitFor(t, func() bool { return channel.LastEvent() != nil }, "delete event never arrived")
	event = channel.LastEvent()
	assert.Equal(t, model.OpDelete, event.OperationType)
	assert.Equal(t, 0, event.NewQuantity)
	assert.Equal(t, -10, event.DeltaQuantity)
}

func TestWebSocketRejectsBadToken(t *testing.T) {
	srv := newTestServer(t)

	channel := realtime.NewChannel()
	defer channel.Close()
	channel.SetToken(srv.URL, "sdk_bogus")

	// The handshake is refused before the upgrade, so the channel stays down.
	time.Sleep(200 * time.Millisecond)
	assert.False(t, channel.Connected())
	assert.Nil(t, channel.LastEvent())
}

func TestUnknownRouteReturnsEnvelope(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var payload struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "route not found", payload.Message)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
