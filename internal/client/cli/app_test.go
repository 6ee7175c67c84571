package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestApp(t *testing.T, serverURL string) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	app, err := NewApp(context.Background(), ":memory:", serverURL, out)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app, out
}

// deadServer returns a base URL that refuses connections.
func deadServer(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	return srv.URL
}

func TestAppUnknownCommand(t *testing.T) {
	app, _ := newTestApp(t, deadServer(t))
	err := app.Run(context.Background(), []string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestAppOfflineRegisterAndLogin(t *testing.T) {
	app, out := newTestApp(t, deadServer(t))
	ctx := context.Background()

	err := app.Run(ctx, []string{"register", "-name", "Maria", "-email", "maria@example.com", "-password", "secret1"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "offline")

	out.Reset()
	err = app.Run(ctx, []string{"login", "-email", "maria@example.com", "-password", "secret1"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "signed in as Maria")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"whoami"}))
	assert.Contains(t, out.String(), "maria@example.com")
}

func TestAppOfflineLoginWrongPassword(t *testing.T) {
	app, _ := newTestApp(t, deadServer(t))
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"register", "-name", "Maria", "-email", "maria@example.com", "-password", "secret1"}))
	err := app.Run(ctx, []string{"login", "-email", "maria@example.com", "-password", "nope"})
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestAppOfflineAddListAndRemove(t *testing.T) {
	app, out := newTestApp(t, deadServer(t))
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"register", "-name", "Maria", "-email", "maria@example.com", "-password", "secret1"}))
	require.NoError(t, app.Run(ctx, []string{"login", "-email", "maria@example.com", "-password", "secret1"}))

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"add", "-title", "Beach house", "-desc", "sea view", "-price", "1.500,00"}))
	assert.Contains(t, out.String(), "cached locally")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"list"}))
	assert.Contains(t, out.String(), "Beach house")
	assert.Contains(t, out.String(), "1.500,00")

	// The cached id is the first field of the listing line.
	var id string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, "Beach house") {
			id = strings.Fields(line)[0]
		}
	}
	require.NotEmpty(t, id)

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"remove", "-id", id}))
	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"list"}))
	assert.Contains(t, out.String(), "no listings")
}

func TestAppAddRequiresSession(t *testing.T) {
	app, _ := newTestApp(t, deadServer(t))
	err := app.Run(context.Background(), []string{"add", "-title", "x", "-desc", "y", "-price", "1,00"})
	require.Error(t, err)
	assert.Equal(t, "sign in first", err.Error())
}

func TestAppOnlineListRefreshesCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/listings", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": "7", "title": "Mountain cabin", "display_price": "350,50", "price": 350.5, "owner_name": "Jo"},
			},
		})
	}))
	defer srv.Close()

	app, out := newTestApp(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"list"}))
	assert.Contains(t, out.String(), "Mountain cabin")

	cached, err := app.stores.Listings.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "7", cached[0].ID)
}
