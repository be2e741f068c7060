package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
)

// AuditLog appends shopping runs and their per-item decisions to two
// linked Notion databases.
type AuditLog struct {
	client           *Client
	runDatabaseID    string
	choiceDatabaseID string
}

// NewAuditLog creates an audit log writing to the run and choice
// databases.
func NewAuditLog(client *Client, runDatabaseID, choiceDatabaseID string) *AuditLog {
	return &AuditLog{
		client:           client,
		runDatabaseID:    runDatabaseID,
		choiceDatabaseID: choiceDatabaseID,
	}
}

type createdPage struct {
	ID string `json:"id"`
}

// StartRun opens a run page and returns its id for follow-up entries.
func (a *AuditLog) StartRun(ctx context.Context, storeName string, startTime time.Time) (string, error) {
	payload := map[string]any{
		"parent": map[string]any{"database_id": a.runDatabaseID},
		"properties": map[string]any{
			"Store name": map[string]any{
				"title": []map[string]any{
					{"text": map[string]any{"content": storeName}},
				},
			},
			"Start time": map[string]any{
				"date": map[string]any{"start": startTime.Format(time.RFC3339)},
			},
		},
	}

	body, err := a.client.do(ctx, http.MethodPost, "/v1/pages", payload)
	if err != nil {
		return "", err
	}

	var page createdPage
	if err := json.Unmarshal(body, &page); err != nil {
		return "", fmt.Errorf("failed to decode created page: %w", err)
	}
	return page.ID, nil
}

// LogChoice appends one decision. Matched choices carry the chosen
// product and its prices; unmatched ones record only the item and the
// assistant's reason.
func (a *AuditLog) LogChoice(ctx context.Context, runID string, item domain.GroceryItem, choice domain.Choice) error {
	properties := map[string]any{
		"Product name": map[string]any{
			"title": []map[string]any{
				{"text": map[string]any{"content": item.Name}},
			},
		},
		"Grocery shopping": map[string]any{
			"relation": []map[string]any{{"id": runID}},
		},
		"Quantity": map[string]any{"number": item.Quantity},
		"Reason": map[string]any{
			"rich_text": []map[string]any{
				{"text": map[string]any{"content": choice.Reason}},
			},
		},
	}
	if choice.Matched() {
		properties["Store product id"] = map[string]any{
			"rich_text": []map[string]any{
				{"text": map[string]any{"content": choice.Product.ID}},
			},
		}
		properties["Store product name"] = map[string]any{
			"rich_text": []map[string]any{
				{"text": map[string]any{"content": choice.Product.Name}},
			},
		}
		properties["Price"] = map[string]any{"number": choice.Product.Price}
		properties["Price after promotion"] = map[string]any{"number": choice.Product.PriceAfterPromotion}
	}

	payload := map[string]any{
		"parent":     map[string]any{"database_id": a.choiceDatabaseID},
		"properties": properties,
	}
	_, err := a.client.do(ctx, http.MethodPost, "/v1/pages", payload)
	return err
}

// EndRun stamps the run page with its end time.
func (a *AuditLog) EndRun(ctx context.Context, runID string, endTime time.Time) error {
	payload := map[string]any{
		"properties": map[string]any{
			"End time": map[string]any{
				"date": map[string]any{"start": endTime.Format(time.RFC3339)},
			},
		},
	}
	_, err := a.client.do(ctx, http.MethodPatch, "/v1/pages/"+runID, payload)
	return err
}
