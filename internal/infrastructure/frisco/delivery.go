package frisco

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
)

// deliveryOption is one slot of the store's delivery calendar. The full
// window object is kept raw because the reservation endpoint wants it
// echoed back verbatim.
type deliveryOption struct {
	CanReserve bool            `json:"canReserve"`
	Window     json.RawMessage `json:"deliveryWindow"`
}

// Schedule reserves the first acceptable delivery window on date.
// Preferred start times are tried in order ("8:00", "8:30", ...); the
// first reservable window starting at one of them wins. Returns
// ErrNoDeliveryWindow when nothing matches - a normal outcome for a
// full calendar, not a failure.
func (s *Session) Schedule(ctx context.Context, date time.Time, preferredStartTimes []string) (*domain.DeliveryWindow, error) {
	address, err := s.shippingAddress(ctx)
	if err != nil {
		return nil, err
	}

	options, err := s.deliveryWindows(ctx, date, address)
	if err != nil {
		return nil, err
	}

	raw, window, err := findBestWindow(date, preferredStartTimes, options)
	if err != nil {
		return nil, err
	}

	if err := s.reserve(ctx, address, raw); err != nil {
		return nil, err
	}

	log.Printf("[FRISCO] delivery reserved %s - %s", window.StartsAt, window.EndsAt)
	return window, nil
}

// shippingAddress returns the account's first shipping address, raw, as
// the calendar and reservation endpoints expect it.
func (s *Session) shippingAddress(ctx context.Context) (json.RawMessage, error) {
	reqURL := fmt.Sprintf("%s/api/v1/users/%s/addresses/shipping-addresses", s.client.baseURL, s.userID)
	body, err := s.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var addresses []struct {
		ShippingAddress json.RawMessage `json:"shippingAddress"`
	}
	if err := json.Unmarshal(body, &addresses); err != nil {
		return nil, fmt.Errorf("failed to decode shipping addresses: %w", err)
	}
	if len(addresses) == 0 {
		return nil, fmt.Errorf("%w: account has no shipping address", domain.ErrStoreAPIFailure)
	}
	return addresses[0].ShippingAddress, nil
}

// deliveryWindows fetches the van delivery calendar for date.
func (s *Session) deliveryWindows(ctx context.Context, date time.Time, address json.RawMessage) ([]deliveryOption, error) {
	reqURL := fmt.Sprintf("%s/api/v2/users/%s/calendar/Van/%d/%d/%d",
		s.client.baseURL, s.userID, date.Year(), int(date.Month()), date.Day())
	body, err := s.post(ctx, reqURL, address)
	if err != nil {
		return nil, err
	}

	var options []deliveryOption
	if err := json.Unmarshal(body, &options); err != nil {
		return nil, fmt.Errorf("failed to decode delivery calendar: %w", err)
	}
	return options, nil
}

// reserve books the chosen window for the current cart.
func (s *Session) reserve(ctx context.Context, address, window json.RawMessage) error {
	reqURL := fmt.Sprintf("%s/api/v2/users/%s/cart/reservation", s.client.baseURL, s.userID)
	payload := map[string]json.RawMessage{
		"deliveryWindow":  window,
		"shippingAddress": address,
	}
	_, err := s.post(ctx, reqURL, payload)
	return err
}

// findBestWindow applies the first-acceptable-slot rule: preferred
// start times are ranked by the caller, windows are not.
func findBestWindow(date time.Time, preferredStartTimes []string, options []deliveryOption) (json.RawMessage, *domain.DeliveryWindow, error) {
	for _, startTime := range preferredStartTimes {
		hour, minute, err := parseStartTime(startTime)
		if err != nil {
			return nil, nil, err
		}

		for _, option := range options {
			if !option.CanReserve {
				continue
			}
			window, err := decodeWindow(option.Window)
			if err != nil {
				return nil, nil, err
			}
			startsAt, err := time.Parse(time.RFC3339, window.StartsAt)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to parse window start %q: %w", window.StartsAt, err)
			}
			if sameDay(startsAt, date) && startsAt.Hour() == hour && startsAt.Minute() == minute {
				return option.Window, window, nil
			}
		}
	}
	return nil, nil, domain.ErrNoDeliveryWindow
}

func decodeWindow(raw json.RawMessage) (*domain.DeliveryWindow, error) {
	var window domain.DeliveryWindow
	if err := json.Unmarshal(raw, &window); err != nil {
		return nil, fmt.Errorf("failed to decode delivery window: %w", err)
	}
	return &window, nil
}

// parseStartTime parses "H:MM" / "HH:MM".
func parseStartTime(value string) (hour, minute int, err error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid start time %q", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start time %q: %w", value, err)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start time %q: %w", value, err)
	}
	return hour, minute, nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
