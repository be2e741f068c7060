// Package app wires the collaborators together and exposes the three
// flows the automation runs: listify, schedule and shop.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ewelina-dziedzic/grocery-shopping/config"
	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
	"github.com/ewelina-dziedzic/grocery-shopping/internal/infrastructure/cache"
	"github.com/ewelina-dziedzic/grocery-shopping/internal/infrastructure/frisco"
	"github.com/ewelina-dziedzic/grocery-shopping/internal/infrastructure/notion"
	"github.com/ewelina-dziedzic/grocery-shopping/internal/infrastructure/openai"
	"github.com/ewelina-dziedzic/grocery-shopping/internal/infrastructure/todoist"
	"github.com/ewelina-dziedzic/grocery-shopping/internal/infrastructure/webhook"
	"github.com/ewelina-dziedzic/grocery-shopping/internal/usecase"
)

// timezone the household shops in; delivery dates are local dates.
const timezoneName = "Europe/Warsaw"

// App holds the configured collaborators behind the three flows.
type App struct {
	cfg       *config.Config
	store     *frisco.Client
	feed      *cache.FeedCache
	assistant *openai.Client
	grocery   *todoist.Client
	mealPlan  *notion.MealPlan
	auditLog  *notion.AuditLog
	notifier  *webhook.Notifier
	location  *time.Location
}

// New wires an App from configuration.
func New(cfg *config.Config) (*App, error) {
	location, err := time.LoadLocation(timezoneName)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}

	store := frisco.NewClient(cfg.Frisco.BaseURL, cfg.Frisco.FeedURL, cfg.Frisco.Username, cfg.Frisco.Password)
	store.SetDebug(cfg.Shopping.Debug)

	notionClient := notion.NewClient(cfg.Notion.BaseURL, cfg.Notion.Secret)

	return &App{
		cfg:   cfg,
		store: store,
		feed:  cache.NewFeedCache(store, cfg.Frisco.FeedTTL),
		assistant: openai.NewClient(openai.Config{
			APIKey:       cfg.OpenAI.APIKey,
			AssistantID:  cfg.OpenAI.AssistantID,
			BaseURL:      cfg.OpenAI.BaseURL,
			PollInterval: cfg.OpenAI.PollInterval,
			PollTimeout:  cfg.OpenAI.PollTimeout,
		}),
		grocery:  todoist.NewClient(cfg.Todoist.BaseURL, cfg.Todoist.Secret, cfg.Todoist.ProjectID),
		mealPlan: notion.NewMealPlan(notionClient, cfg.Notion.MealPlanDatabaseID),
		auditLog: notion.NewAuditLog(notionClient, cfg.Notion.RunDatabaseID, cfg.Notion.ChoiceDatabaseID),
		notifier: webhook.NewNotifier(cfg.Notifier.WebhookURL),
		location: location,
	}, nil
}

// Listify copies the meal plan's pending ingredients onto the grocery
// task list.
func (a *App) Listify(ctx context.Context) error {
	if err := usecase.Listify(ctx, a.mealPlan, a.grocery); err != nil {
		a.notify(ctx, fmt.Sprintf("💥 building the shopping list failed: %v", err))
		return err
	}
	a.notify(ctx, "✅ shopping list is ready")
	return nil
}

// Schedule reserves tomorrow's delivery window, preferring the
// configured start times.
func (a *App) Schedule(ctx context.Context) error {
	session, err := a.store.Login(ctx)
	if err != nil {
		a.notify(ctx, fmt.Sprintf("💥 scheduling the delivery failed: %v", err))
		return err
	}

	tomorrow := time.Now().In(a.location).AddDate(0, 0, 1)
	window, err := session.Schedule(ctx, tomorrow, a.cfg.Shopping.PreferredStartTimes)
	if errors.Is(err, domain.ErrNoDeliveryWindow) {
		a.notify(ctx, fmt.Sprintf("❌ no delivery window available on %s", tomorrow.Format("2006-01-02")))
		return nil
	}
	if err != nil {
		a.notify(ctx, fmt.Sprintf("💥 scheduling the delivery failed: %v", err))
		return err
	}

	a.notify(ctx, fmt.Sprintf("✅ delivery booked for %s", formatWindow(window, a.location)))
	return nil
}

// formatWindow renders a delivery window as "Mon 15:04 - 16:04" in the
// given location. The calendar returns RFC3339 timestamps; a window
// that fails to parse is rendered raw rather than dropped.
func formatWindow(window *domain.DeliveryWindow, location *time.Location) string {
	startsAt, startErr := time.Parse(time.RFC3339, window.StartsAt)
	endsAt, endErr := time.Parse(time.RFC3339, window.EndsAt)
	if startErr != nil || endErr != nil {
		return fmt.Sprintf("%s - %s", window.StartsAt, window.EndsAt)
	}
	return fmt.Sprintf("%s - %s",
		startsAt.In(location).Format("Mon 15:04"),
		endsAt.In(location).Format("15:04"))
}

// Shop runs the full shopping flow: log into the store, fill the cart
// from the grocery list and close the bought tasks.
func (a *App) Shop(ctx context.Context) error {
	bought, total, err := a.shop(ctx)
	if err != nil {
		a.notify(ctx, fmt.Sprintf("💥 shopping failed: %v", err))
		return err
	}

	if total == 0 {
		a.notify(ctx, "❌ the shopping list is empty, nothing to buy")
		return nil
	}
	a.notify(ctx, fmt.Sprintf("✅ %d of %d products in the cart, go to the store to finalize", len(bought), total))
	return nil
}

func (a *App) shop(ctx context.Context) ([]domain.GroceryItem, int, error) {
	session, err := a.store.Login(ctx)
	if err != nil {
		return nil, 0, err
	}

	items, err := a.grocery.Get(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(items) == 0 {
		return nil, 0, nil
	}

	feed, err := a.feed.DownloadFeed(ctx)
	if err != nil {
		return nil, 0, err
	}

	decider := usecase.NewDecider(a.assistant, usecase.NewIntervalPacer(a.cfg.OpenAI.RequestInterval), usecase.DeciderConfig{
		RetryBackoff:       a.cfg.OpenAI.RetryBackoff,
		EnableDebugLogging: a.cfg.Shopping.Debug,
	})
	matching := usecase.NewMatchingSession(decider, feed, a.cfg.Shopping.Debug)
	loop := usecase.NewShoppingLoop(session, matching, a.auditLog,
		usecase.NewIntervalPacer(a.cfg.Shopping.ItemInterval), a.cfg.Frisco.StoreName)

	bought, err := loop.Run(ctx, items)
	if err != nil {
		return nil, 0, err
	}

	if err := a.grocery.Complete(ctx, bought); err != nil {
		return nil, 0, err
	}
	return bought, len(items), nil
}

// notify posts a status update; delivery problems are logged and
// swallowed so they never mask the run's own outcome.
func (a *App) notify(ctx context.Context, message string) {
	if err := a.notifier.UpdateStatus(ctx, message); err != nil {
		log.Printf("[NOTIFY] failed to deliver status update: %v", err)
	}
}
