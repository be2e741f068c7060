package domain

import (
	"context"
	"time"
)

// RunOutcome is the terminal state of an assistant run.
type RunOutcome struct {
	Status    string // "completed", "failed", "cancelled", "expired", ...
	LastError string // provider-supplied detail, empty on success
}

// Completed reports whether the run finished successfully.
func (r RunOutcome) Completed() bool {
	return r.Status == "completed"
}

// AssistantMessage is one message of an assistant conversation; Content
// holds the text of its content blocks in order.
type AssistantMessage struct {
	Content []string
}

// Assistant defines the interface to the pre-configured LLM assistant.
// The assistant's system prompt lives provider-side; only the response
// shape is this module's concern.
type Assistant interface {
	CreateConversation(ctx context.Context, prompt string) (string, error)
	Run(ctx context.Context, conversationID string) (RunOutcome, error)
	ListMessages(ctx context.Context, conversationID string) ([]AssistantMessage, error)
}

// StoreSession is an authenticated session against the online store.
type StoreSession interface {
	Search(ctx context.Context, productName string) ([]SearchResult, error)
	ClearCart(ctx context.Context) error
	AddToCart(ctx context.Context, productID string, quantity int) error
}

// FeedDownloader fetches the store-wide bulk product feed.
type FeedDownloader interface {
	DownloadFeed(ctx context.Context) (ProductFeed, error)
}

// GroceryList is the merged ad-hoc task list used as the shopping list.
type GroceryList interface {
	Get(ctx context.Context) ([]GroceryItem, error)
	Complete(ctx context.Context, items []GroceryItem) error
}

// MealPlanner is the meal-planning database the listify flow reads.
type MealPlanner interface {
	GetShoppingList(ctx context.Context) ([]ShoppingListItem, error)
}

// TaskWriter creates shopping-list tasks from meal-plan items.
type TaskWriter interface {
	Add(ctx context.Context, item ShoppingListItem, dueDate string) error
}

// AuditLog records every shopping decision into an append-only sink.
type AuditLog interface {
	StartRun(ctx context.Context, storeName string, startTime time.Time) (string, error)
	LogChoice(ctx context.Context, runID string, item GroceryItem, choice Choice) error
	EndRun(ctx context.Context, runID string, endTime time.Time) error
}

// Notifier posts best-effort status updates; its failures must never
// mask the error being reported.
type Notifier interface {
	UpdateStatus(ctx context.Context, message string) error
}
