package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdeck/internal/model"
)

func TestErrorEnvelopeMessageIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "username already taken"})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	_, err := c.GetProfile(context.Background())
	require.Error(t, err)
	assert.EqualError(t, err, "username already taken")
}

func TestErrorWithoutEnvelopeFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	_, err := c.GetProfile(context.Background())
	require.Error(t, err)
	assert.EqualError(t, err, "request failed with status 502")
}

func TestNoContentMapsToAbsentResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	err := c.ChangePassword(context.Background(), model.PasswordChangeRequest{})
	assert.NoError(t, err)
}

func TestBearerTokenAndContentTypeAreSet(t *testing.T) {
	var gotAuth, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewEncoder(w).Encode(model.User{ID: "u1"})
	}))
	defer srv.Close()

	c := New(srv.URL, "sdk_abc")
	_, err := c.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer sdk_abc", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
}

func TestListInventoryQueryParameters(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(model.InventoryList{})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	_, err := c.ListInventory(context.Background(), model.InventoryFilters{
		StoreID:  "st-1",
		Page:     2,
		PageSize: 50,
		SortBy:   "quantity",
		Order:    "asc",
	})
	require.NoError(t, err)

	// Empty and zero-valued filters are omitted from the query string.
	assert.Contains(t, gotQuery, "store_id=st-1")
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "page_size=50")
	assert.Contains(t, gotQuery, "sort_by=quantity")
	assert.Contains(t, gotQuery, "order=asc")
	assert.NotContains(t, gotQuery, "sku_id")
}

func TestLoginDoesNotRequireToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(model.LoginResponse{Token: "sdk_x"})
	}))
	defer srv.Close()

	resp, err := Login(context.Background(), srv.URL, model.LoginRequest{Username: "a", Password: "b"})
	require.NoError(t, err)
	assert.Equal(t, "sdk_x", resp.Token)
}

func TestBaseURLTrailingSlashNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/profile", r.URL.Path)
		_ = json.NewEncoder(w).Encode(model.User{})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "tok")
	_, err := c.GetProfile(context.Background())
	assert.NoError(t, err)
}
