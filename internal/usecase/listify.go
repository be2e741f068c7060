package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
)

// Listify moves the meal plan's open ingredients onto the task list.
// Each task is due one day before the ingredient is needed, so the
// scheduled shopping run the evening before still covers it.
func Listify(ctx context.Context, planner domain.MealPlanner, tasks domain.TaskWriter) error {
	shoppingList, err := planner.GetShoppingList(ctx)
	if err != nil {
		return err
	}

	for _, item := range shoppingList {
		dueDate, err := taskDueDate(item.NeededForDate)
		if err != nil {
			return err
		}
		if err := tasks.Add(ctx, item, dueDate); err != nil {
			return err
		}
	}

	log.Printf("[LISTIFY] %d items added to the task list", len(shoppingList))
	return nil
}

// taskDueDate returns the day before neededForDate as YYYY-MM-DD, or ""
// when the ingredient has no date.
func taskDueDate(neededForDate string) (string, error) {
	if neededForDate == "" {
		return "", nil
	}

	needed, err := parseISODate(neededForDate)
	if err != nil {
		return "", fmt.Errorf("invalid needed-for date %q: %w", neededForDate, err)
	}
	return needed.AddDate(0, 0, -1).Format("2006-01-02"), nil
}

// parseISODate accepts both date-only and full timestamp forms, which
// the meal-planning database mixes freely.
func parseISODate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
