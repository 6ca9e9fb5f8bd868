package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront/internal/app"
	"github.com/hongminglow/storefront/internal/config"
	"github.com/hongminglow/storefront/internal/fakeapi"
	"github.com/hongminglow/storefront/internal/logging"
	"github.com/hongminglow/storefront/internal/server"
	"github.com/hongminglow/storefront/internal/storage/memory"
)

func TestShellSession(t *testing.T) {
	menu, err := fakeapi.LoadMenu("")
	require.NoError(t, err)
	ts := httptest.NewServer(server.NewHandler(config.FakeAPIConfig{
		JWTSecret: "shell-secret",
		JWTIssuer: "shell",
		JWTTTL:    time.Hour,
	}, fakeapi.New(menu), logging.Discard()))
	t.Cleanup(ts.Close)

	a, err := app.New(context.Background(), config.Config{APIBaseURL: ts.URL, AuthPrefix: "user"}, memory.New(), nil)
	require.NoError(t, err)

	input := strings.Join([]string{
		"checkout",
		"signup Alice|alice@example.com|Password!1|0123456789|1 Road",
		"menu Dessert",
		"add 6",
		"add 6",
		"qty 6 3",
		"cart",
		"checkout Pickup Card",
		"orders",
		"logout",
		"bogus",
		"quit",
	}, "\n") + "\n"

	var out bytes.Buffer
	newShell(a, strings.NewReader(input), &out).run(context.Background())
	got := out.String()

	assert.Contains(t, got, "Error: Cart is empty")
	assert.Contains(t, got, "Signed in as Alice")
	assert.Contains(t, got, "Tiramisu")
	assert.Contains(t, got, "3 items, total 26.97")
	assert.Contains(t, got, "Order #1 placed")
	assert.Contains(t, got, "Delivery/Cash", "history shows backend defaults")
	assert.Contains(t, got, "Signed out")
	assert.Contains(t, got, "Unknown command")
	assert.Contains(t, got, "Goodbye!")
}
