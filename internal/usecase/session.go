package usecase

import (
	"context"
	"log"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
)

// MatchingSession resolves one grocery item against raw store search
// results: availability filter, normalization, then the decision
// protocol.
type MatchingSession struct {
	decider *Decider
	feed    domain.ProductFeed
	debug   bool
}

// NewMatchingSession creates a session over the given bulk product feed.
func NewMatchingSession(decider *Decider, feed domain.ProductFeed, enableDebugLogging bool) *MatchingSession {
	return &MatchingSession{
		decider: decider,
		feed:    feed,
		debug:   enableDebugLogging,
	}
}

// Match normalizes the available search results and asks the decider to
// pick one. Unavailable products are never offered to the assistant.
func (s *MatchingSession) Match(ctx context.Context, item domain.GroceryItem, results []domain.SearchResult) (domain.Choice, error) {
	var candidates []domain.CandidateProduct
	for _, result := range results {
		if !result.Product.IsAvailable {
			continue
		}
		candidate, err := Normalize(result, s.feed)
		if err != nil {
			return domain.Choice{}, err
		}
		candidates = append(candidates, candidate)
	}

	if s.debug {
		log.Printf("[MATCH] %q: %d results, %d available", item.Name, len(results), len(candidates))
	}

	return s.decider.Decide(ctx, item.Name, candidates)
}
