package apistore_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Makepad-fr/cardboard/internal/model"
	"github.com/Makepad-fr/cardboard/internal/server"
	"github.com/Makepad-fr/cardboard/internal/store"
	"github.com/Makepad-fr/cardboard/internal/store/apistore"
	"github.com/Makepad-fr/cardboard/internal/store/storetest"
)

func newClient(t *testing.T, cfg server.Config, opts ...apistore.Option) *apistore.Client {
	t.Helper()
	backend := store.NewLocal(store.NewMemoryKV())
	srv := httptest.NewServer(server.New(backend, cfg, zap.NewNop()).Handler())
	t.Cleanup(srv.Close)
	c, err := apistore.New(srv.URL+"/", append([]apistore.Option{apistore.WithHTTPClient(srv.Client())}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestClientAgainstServer(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return newClient(t, server.Config{})
	})
}

func TestToken(t *testing.T) {
	ctx := context.Background()

	anon := newClient(t, server.Config{Token: "tok"})
	_, err := anon.List(ctx, model.SectionTodo)
	var apiErr *apistore.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Unauthorized", apiErr.Message)

	authed := newClient(t, server.Config{Token: "tok"}, apistore.WithToken("tok"))
	items, err := authed.List(ctx, model.SectionTodo)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestServerMessagesSurface(t *testing.T) {
	c := newClient(t, server.Config{})
	_, err := c.Create(context.Background(), model.SectionLinks, &model.Link{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, "missing required field(s): url", err.Error())

	_, err = c.Get(context.Background(), model.SectionTodo, 7)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.Equal(t, "Item not found", err.Error())
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := apistore.New(srv.URL, apistore.WithTimeout(2*time.Second))
	require.NoError(t, err)
	_, err = c.List(context.Background(), model.SectionJobs)
	require.Error(t, err)
	assert.Equal(t, "HTTP 500", err.Error())
	assert.False(t, errors.Is(err, store.ErrNotFound))
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := apistore.New("ftp://example.com")
	assert.Error(t, err)
	_, err = apistore.New("://")
	assert.Error(t, err)
}

// Items written by a server that stores naive UTC datetimes.
func TestNaiveCreatedAt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"ok":true,"item":{"id":2,"title":"b","description":"","completed":false,"created_at":"2025-10-15T18:05:00"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"items":[{"id":1,"title":"a","description":"","completed":false,"created_at":"2025-10-15T18:00:00.123456"}]}`))
	}))
	defer srv.Close()

	c, err := apistore.New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	items, err := c.List(ctx, model.SectionTodo)
	require.NoError(t, err)
	require.Len(t, items, 1)
	want := time.Date(2025, 10, 15, 18, 0, 0, 123456000, time.UTC)
	assert.True(t, items[0].Base().CreatedAt.Equal(want), items[0].Base().CreatedAt.String())

	it, err := c.Create(ctx, model.SectionTodo, &model.Todo{Title: "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, it.Base().ID)
	assert.Equal(t, time.Date(2025, 10, 15, 18, 5, 0, 0, time.UTC), it.Base().CreatedAt.Time)
}
