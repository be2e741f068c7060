package usecase

import (
	"context"
	"log"
	"time"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
)

// ShoppingLoop iterates a grocery list against an authenticated store
// session, one item at a time. A failure at any item aborts the whole
// run; re-running is safe because the cart is cleared up front.
type ShoppingLoop struct {
	store     domain.StoreSession
	session   *MatchingSession
	audit     domain.AuditLog
	pacer     Pacer
	storeName string
}

// NewShoppingLoop wires the loop's collaborators. The pacer spaces out
// consecutive items to respect downstream rate limits.
func NewShoppingLoop(store domain.StoreSession, session *MatchingSession, audit domain.AuditLog, pacer Pacer, storeName string) *ShoppingLoop {
	return &ShoppingLoop{
		store:     store,
		session:   session,
		audit:     audit,
		pacer:     pacer,
		storeName: storeName,
	}
}

// Run resolves every grocery item in input order and returns the subset
// actually added to the cart. Every item gets exactly one audit record,
// matched or not.
func (l *ShoppingLoop) Run(ctx context.Context, items []domain.GroceryItem) ([]domain.GroceryItem, error) {
	if err := l.store.ClearCart(ctx); err != nil {
		return nil, err
	}

	runID, err := l.audit.StartRun(ctx, l.storeName, time.Now())
	if err != nil {
		return nil, err
	}

	var bought []domain.GroceryItem
	for _, item := range items {
		if err := l.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		results, err := l.store.Search(ctx, item.Name)
		if err != nil {
			return nil, err
		}

		choice, err := l.session.Match(ctx, item, results)
		if err != nil {
			return nil, err
		}

		if choice.Matched() {
			if err := l.store.AddToCart(ctx, choice.Product.ID, item.Quantity); err != nil {
				return nil, err
			}
			bought = append(bought, item)
			log.Printf("[SHOP] %s -> %s (%.2f)", item, choice.Product.Name, choice.Product.PriceAfterPromotion)
		} else {
			log.Printf("[SHOP] %s -> not bought: %s", item, choice.Reason)
		}

		if err := l.audit.LogChoice(ctx, runID, item, choice); err != nil {
			return nil, err
		}
	}

	if err := l.audit.EndRun(ctx, runID, time.Now()); err != nil {
		return nil, err
	}

	return bought, nil
}
