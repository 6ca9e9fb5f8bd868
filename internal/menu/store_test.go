package menu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/storefront/internal/apiclient"
	"github.com/hongminglow/storefront/internal/apierr"
	"github.com/hongminglow/storefront/internal/models"
)

const starterMenu = `{
  "status": 200,
  "payload": {
    "responseData": [
      {
        "item": "Starter",
        "isDeleted": false,
        "children": [
          {"id": 5, "item": "Soup", "price": 3, "isDeleted": false},
          {"id": 6, "item": "Old Bread", "price": 1, "isDeleted": true}
        ]
      },
      {
        "item": "Retired",
        "isDeleted": true,
        "children": [
          {"id": 9, "item": "Ghost Dish", "price": 9, "isDeleted": false}
        ]
      },
      {
        "item": "Dessert",
        "isDeleted": false,
        "children": [
          {"id": 7, "item": "Tiramisu", "price": 8.99, "picturePath": "/img/t.png", "description": "Coffee", "isDeleted": false}
        ]
      },
      {"item": "Extra", "isDeleted": false}
    ]
  }
}`

func newStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := apiclient.New(apiclient.Config{BaseURL: server.URL})
	require.NoError(t, err)
	return NewStore(client, nil)
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestFetchMenuFlattensAndDropsDeleted(t *testing.T) {
	var gotPath string
	store := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(starterMenu))
	})

	require.NoError(t, store.FetchMenu(context.Background()))

	assert.Equal(t, "/menu/getMenu", gotPath)
	assert.Equal(t, []string{"All", "Starter", "Dessert", "Extra"}, store.Categories())
	assert.Equal(t, []models.MenuItem{
		{ID: 5, Name: "Soup", Category: "Starter", Price: 3},
		{ID: 7, Name: "Tiramisu", Category: "Dessert", Price: 8.99, ImageURL: "/img/t.png", Description: "Coffee"},
	}, store.Items())

	state := store.State()
	assert.False(t, state.Loading)
	assert.Empty(t, state.Err)
}

func TestFetchMenuSingleCategory(t *testing.T) {
	store := newStore(t, respond(http.StatusOK, `{"payload":{"responseData":[
		{"item":"Starter","isDeleted":false,"children":[
			{"id":5,"item":"Soup","price":3,"isDeleted":false},
			{"id":8,"item":"Gone","price":2,"isDeleted":true}
		]}
	]}}`))

	require.NoError(t, store.FetchMenu(context.Background()))

	assert.Equal(t, []string{"All", "Starter"}, store.Categories())
	assert.Equal(t, []models.MenuItem{{ID: 5, Name: "Soup", Category: "Starter", Price: 3}}, store.Items())
}

func TestFetchMenuAcceptsBareList(t *testing.T) {
	store := newStore(t, respond(http.StatusOK, `[{"item":"Extra","isDeleted":false,"children":[{"id":1,"item":"Fries","price":4.99}]}]`))

	require.NoError(t, store.FetchMenu(context.Background()))
	assert.Equal(t, []string{"All", "Extra"}, store.Categories())
	assert.Len(t, store.Items(), 1)
}

func TestFetchMenuFailureKeepsPriorState(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"message":"db down"}}`, wantErr: "db down"},
		{name: "no message", status: http.StatusBadGateway, body: ``, wantErr: fetchFallback},
		{name: "not a list", status: http.StatusOK, body: `{"payload":{"responseData":{"item":"Starter"}}}`, wantErr: fetchFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fail := false
			store := newStore(t, func(w http.ResponseWriter, r *http.Request) {
				if fail {
					w.WriteHeader(tt.status)
					w.Write([]byte(tt.body))
					return
				}
				w.Write([]byte(starterMenu))
			})
			ctx := context.Background()
			require.NoError(t, store.FetchMenu(ctx))
			before := store.State()

			fail = true
			require.Error(t, store.FetchMenu(ctx))

			after := store.State()
			assert.Equal(t, before.Categories, after.Categories)
			assert.Equal(t, before.Items, after.Items)
			assert.Equal(t, tt.wantErr, after.Err)
			assert.False(t, after.Loading)
		})
	}
}

func TestFetchMenuNotAListIsValidationGap(t *testing.T) {
	store := newStore(t, respond(http.StatusOK, `{"data":"nope"}`))

	err := store.FetchMenu(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
	assert.Equal(t, apierr.KindValidationGap, apierr.KindOf(err))
}

func TestSetCategoryFiltersVisibleItems(t *testing.T) {
	store := newStore(t, respond(http.StatusOK, starterMenu))
	require.NoError(t, store.FetchMenu(context.Background()))

	assert.Equal(t, models.AllCategories, store.ActiveCategory())
	assert.Len(t, store.VisibleItems(), 2)

	store.SetCategory("Dessert")
	visible := store.VisibleItems()
	require.Len(t, visible, 1)
	assert.Equal(t, "Tiramisu", visible[0].Name)

	store.SetCategory("Extra")
	assert.Empty(t, store.VisibleItems())

	store.SetCategory("")
	assert.Equal(t, models.AllCategories, store.ActiveCategory())
}

func TestFetchResetsVanishedActiveCategory(t *testing.T) {
	store := newStore(t, respond(http.StatusOK, starterMenu))
	store.SetCategory("Main Course")

	require.NoError(t, store.FetchMenu(context.Background()))
	assert.Equal(t, models.AllCategories, store.ActiveCategory())
}

func TestFind(t *testing.T) {
	store := newStore(t, respond(http.StatusOK, starterMenu))
	require.NoError(t, store.FetchMenu(context.Background()))

	item, ok := store.Find(7)
	require.True(t, ok)
	assert.Equal(t, "Tiramisu", item.Name)

	_, ok = store.Find(9)
	assert.False(t, ok, "items of deleted categories are not browsable")
}
