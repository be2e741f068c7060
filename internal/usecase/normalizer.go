package usecase

import (
	"fmt"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
)

// ignoredTags are store-internal boolean/flag tags carried on every
// product. They say nothing about what the product is, so they are
// stripped before the candidate is shown to the assistant.
var ignoredTags = map[string]bool{
	"displayVariant": true,
	"isAvailable":    true,
	"isStocked":      true,
	"isNotAlcohol":   true,
	"isSearchable":   true,
	"isIndexable":    true,
	"isPositioned":   true,
	"isBargain":      true,
}

// displayLanguage selects which localized product name is shown to the
// assistant; the store serves Polish listings.
const displayLanguage = "pl"

// Normalize maps one raw store search result into a CandidateProduct.
// The feed is the store-wide bulk feed downloaded once per run; a
// product absent from it gets empty components. A result without an id
// or price is a store API contract break and fails the matching attempt.
func Normalize(result domain.SearchResult, feed domain.ProductFeed) (domain.CandidateProduct, error) {
	product := result.Product

	if product.ID == "" {
		return domain.CandidateProduct{}, fmt.Errorf("%w: id", domain.ErrMissingProductField)
	}
	if product.Price.Price == nil {
		return domain.CandidateProduct{}, fmt.Errorf("%w: price (product %s)", domain.ErrMissingProductField, product.ID)
	}

	price := *product.Price.Price
	priceAfterPromotion := price
	if product.Price.PriceAfterPromotion != nil {
		priceAfterPromotion = *product.Price.PriceAfterPromotion
	}

	return domain.CandidateProduct{
		ID:                  product.ID,
		Name:                product.Name[displayLanguage],
		PackSize:            string(product.PackSize),
		UnitOfMeasure:       product.UnitOfMeasure,
		Grammage:            product.Grammage,
		Producer:            product.Producer,
		Brand:               product.Brand,
		Price:               price,
		PriceAfterPromotion: priceAfterPromotion,
		Tags:                filterTags(product.Tags),
		Components:          feed[product.ID].Components,
	}, nil
}

// filterTags drops ignored tags, preserving the order of the rest.
func filterTags(tags []string) []string {
	var filtered []string
	for _, tag := range tags {
		if ignoredTags[tag] {
			continue
		}
		filtered = append(filtered, tag)
	}
	return filtered
}
