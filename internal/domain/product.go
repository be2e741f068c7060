package domain

import (
	"encoding/json"
	"fmt"
)

// SearchResult is one raw record returned by the store search endpoint.
// The interesting data sits in a nested "product" object; the store also
// returns facet/position metadata we never look at.
type SearchResult struct {
	Product RawProduct `json:"product"`
}

// RawProduct mirrors the store's product sub-record. Field presence is
// inconsistent between results, so optional numerics are pointers.
type RawProduct struct {
	ID            string            `json:"id"`
	Name          map[string]string `json:"name"` // language code -> display name
	PackSize      FlexString        `json:"packSize"`
	UnitOfMeasure string            `json:"unitOfMeasure"`
	Grammage      float64           `json:"grammage"`
	Producer      string            `json:"producer"`
	Brand         string            `json:"brand"`
	Price         RawPrice          `json:"price"`
	Tags          []string          `json:"tags"`
	IsAvailable   bool              `json:"isAvailable"`
}

// RawPrice is the nested price sub-record. PriceAfterPromotion is only
// present when the product is on promotion.
type RawPrice struct {
	Price               *float64 `json:"price"`
	PriceAfterPromotion *float64 `json:"priceAfterPromotion"`
}

// FlexString decodes a JSON value that the store sends either as a
// string or as a number (packSize does both).
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("packSize is neither string nor number: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// CandidateProduct is the canonical representation of one search result
// as presented to the assistant. Constructed fresh per matching attempt
// and never mutated afterwards.
type CandidateProduct struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	PackSize            string   `json:"packSize"`
	UnitOfMeasure       string   `json:"unitOfMeasure"`
	Grammage            float64  `json:"grammage"`
	Producer            string   `json:"producer"`
	Brand               string   `json:"brand"`
	Price               float64  `json:"price"`
	PriceAfterPromotion float64  `json:"priceAfterPromotion"`
	Tags                []string `json:"tags"`
	Components          string   `json:"components,omitempty"`
}

// ProductContent is the per-product entry of the store's bulk feed.
type ProductContent struct {
	Components string
}

// ProductFeed maps store product ids to their feed content. Downloaded
// once per shopping run; the feed is store-wide and large.
type ProductFeed map[string]ProductContent

// GroceryItem is one line of the shopping list.
type GroceryItem struct {
	Name     string
	Quantity int
	TaskID   string // back-reference to the originating task, used for completion
}

func (g GroceryItem) String() string {
	return fmt.Sprintf("%dx %s", g.Quantity, g.Name)
}

// ChosenProduct identifies the store product picked for a grocery item.
// Prices are copied from the normalized candidate, never from the
// assistant's reply.
type ChosenProduct struct {
	ID                  string
	Name                string
	Price               float64
	PriceAfterPromotion float64
}

// Choice is the outcome of matching one grocery item. Product is nil
// when no candidate qualified; Reason is always populated.
type Choice struct {
	Product *ChosenProduct
	Reason  string
}

// Matched reports whether a store product was chosen.
func (c Choice) Matched() bool {
	return c.Product != nil
}

// ShoppingListItem is one ingredient from the meal-planning database,
// about to be loaded into the task list.
type ShoppingListItem struct {
	Name          string
	Quantity      int
	NeededForDate string // ISO date, empty when the recipe has no date
	StoreLink     string
}

// DeliveryWindow is a reservable delivery slot in the store calendar.
type DeliveryWindow struct {
	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`
}
