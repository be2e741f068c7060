package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
)

func TestGetShoppingListQueriesAndMapsRows(t *testing.T) {
	var query map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/databases/db-1/query", r.URL.Path)
		assert.Equal(t, "Bearer secret-1", r.Header.Get("Authorization"))
		assert.Equal(t, "2022-06-28", r.Header.Get("Notion-Version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&query))

		fmt.Fprint(w, `{"results": [
			{"properties": {
				"Ingredient": {"title": [{"plain_text": "pomidory"}]},
				"Quantity": {"number": 3},
				"Needed for date": {"formula": {"date": {"start": "2025-03-15"}}},
				"Frisco": {"formula": {"string": "https://www.frisco.pl/q,pomidory"}}
			}},
			{"properties": {
				"Ingredient": {"title": [{"plain_text": "oliwa"}]},
				"Quantity": {"number": null},
				"Needed for date": {"formula": {"date": null}},
				"Frisco": {"formula": {"string": ""}}
			}}
		]}`)
	}))
	defer server.Close()

	mealPlan := NewMealPlan(NewClient(server.URL, "secret-1"), "db-1")
	items, err := mealPlan.GetShoppingList(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, domain.ShoppingListItem{
		Name:          "pomidory",
		Quantity:      3,
		NeededForDate: "2025-03-15",
		StoreLink:     "https://www.frisco.pl/q,pomidory",
	}, items[0])
	assert.Equal(t, domain.ShoppingListItem{Name: "oliwa", Quantity: 1}, items[1])

	filter := query["filter"].(map[string]any)
	clauses := filter["and"].([]any)
	require.Len(t, clauses, 2)
	first := clauses[0].(map[string]any)
	assert.Equal(t, "Got it", first["property"])
	assert.Equal(t, map[string]any{"equals": false}, first["checkbox"])
	second := clauses[1].(map[string]any)
	assert.Equal(t, "To buy", second["property"])
	assert.Equal(t, map[string]any{"equals": true}, second["checkbox"])
}

func TestGetShoppingListSkipsRowsWithoutTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [{"properties": {"Ingredient": {"title": []}}}]}`)
	}))
	defer server.Close()

	mealPlan := NewMealPlan(NewClient(server.URL, "secret-1"), "db-1")
	items, err := mealPlan.GetShoppingList(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetShoppingListReturnsNotionAPIFailureOnErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	mealPlan := NewMealPlan(NewClient(server.URL, "secret-1"), "db-1")
	_, err := mealPlan.GetShoppingList(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotionAPIFailure)
}
