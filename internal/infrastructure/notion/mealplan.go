package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
)

// MealPlan reads the ingredients database: one row per ingredient, with
// checkbox columns tracking whether it still needs to be bought.
type MealPlan struct {
	client     *Client
	databaseID string
}

// NewMealPlan creates a meal planner backed by one Notion database.
func NewMealPlan(client *Client, databaseID string) *MealPlan {
	return &MealPlan{client: client, databaseID: databaseID}
}

type mealPlanRow struct {
	Properties struct {
		Ingredient struct {
			Title []struct {
				PlainText string `json:"plain_text"`
			} `json:"title"`
		} `json:"Ingredient"`
		Quantity struct {
			Number *float64 `json:"number"`
		} `json:"Quantity"`
		NeededForDate struct {
			Formula struct {
				Date *struct {
					Start string `json:"start"`
				} `json:"date"`
			} `json:"formula"`
		} `json:"Needed for date"`
		StoreLink struct {
			Formula struct {
				String string `json:"string"`
			} `json:"formula"`
		} `json:"Frisco"`
	} `json:"properties"`
}

type mealPlanQueryResponse struct {
	Results []mealPlanRow `json:"results"`
}

// GetShoppingList returns the ingredients still waiting to be bought.
func (m *MealPlan) GetShoppingList(ctx context.Context) ([]domain.ShoppingListItem, error) {
	query := map[string]any{
		"filter": map[string]any{
			"and": []map[string]any{
				{"property": "Got it", "checkbox": map[string]any{"equals": false}},
				{"property": "To buy", "checkbox": map[string]any{"equals": true}},
			},
		},
	}

	body, err := m.client.do(ctx, http.MethodPost, "/v1/databases/"+m.databaseID+"/query", query)
	if err != nil {
		return nil, err
	}

	var response mealPlanQueryResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode meal plan query: %w", err)
	}

	var items []domain.ShoppingListItem
	for _, row := range response.Results {
		if len(row.Properties.Ingredient.Title) == 0 {
			continue
		}

		item := domain.ShoppingListItem{
			Name:      row.Properties.Ingredient.Title[0].PlainText,
			Quantity:  1,
			StoreLink: row.Properties.StoreLink.Formula.String,
		}
		if row.Properties.Quantity.Number != nil {
			item.Quantity = int(*row.Properties.Quantity.Number)
		}
		if row.Properties.NeededForDate.Formula.Date != nil {
			item.NeededForDate = row.Properties.NeededForDate.Formula.Date.Start
		}
		items = append(items, item)
	}

	log.Printf("[NOTION] %d ingredients to buy", len(items))
	return items, nil
}
