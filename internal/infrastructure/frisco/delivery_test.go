package frisco

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func option(canReserve bool, startsAt, endsAt string) deliveryOption {
	raw := fmt.Sprintf(`{"startsAt":%q,"endsAt":%q,"shipmentId":"s-1"}`, startsAt, endsAt)
	return deliveryOption{CanReserve: canReserve, Window: json.RawMessage(raw)}
}

func TestFindBestWindow(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	t.Run("picks the earliest preferred reservable slot", func(t *testing.T) {
		options := []deliveryOption{
			option(true, "2026-09-01T07:00:00+02:00", "2026-09-01T08:00:00+02:00"),
			option(true, "2026-09-01T08:00:00+02:00", "2026-09-01T09:00:00+02:00"),
		}

		_, window, err := findBestWindow(date, []string{"8:00", "7:00"}, options)
		require.NoError(t, err)
		assert.Equal(t, "2026-09-01T08:00:00+02:00", window.StartsAt)
	})

	t.Run("skips non-reservable slots", func(t *testing.T) {
		options := []deliveryOption{
			option(false, "2026-09-01T08:00:00+02:00", "2026-09-01T09:00:00+02:00"),
			option(true, "2026-09-01T08:30:00+02:00", "2026-09-01T09:30:00+02:00"),
		}

		_, window, err := findBestWindow(date, []string{"8:00", "8:30"}, options)
		require.NoError(t, err)
		assert.Equal(t, "2026-09-01T08:30:00+02:00", window.StartsAt)
	})

	t.Run("no acceptable window", func(t *testing.T) {
		options := []deliveryOption{
			option(true, "2026-09-01T14:00:00+02:00", "2026-09-01T15:00:00+02:00"),
		}

		_, _, err := findBestWindow(date, []string{"8:00", "8:30"}, options)
		assert.ErrorIs(t, err, domain.ErrNoDeliveryWindow)
	})

	t.Run("ignores windows on other days", func(t *testing.T) {
		options := []deliveryOption{
			option(true, "2026-09-02T08:00:00+02:00", "2026-09-02T09:00:00+02:00"),
		}

		_, _, err := findBestWindow(date, []string{"8:00"}, options)
		assert.ErrorIs(t, err, domain.ErrNoDeliveryWindow)
	})

	t.Run("rejects malformed start time", func(t *testing.T) {
		_, _, err := findBestWindow(date, []string{"eight"}, nil)
		assert.Error(t, err)
	})
}

func TestSchedule(t *testing.T) {
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	var reservation map[string]json.RawMessage
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users/user-42/addresses/shipping-addresses", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"shippingAddress":{"street":"Polna 1","city":"Warszawa"}}]`)
	})
	mux.HandleFunc("/api/v2/users/user-42/calendar/Van/2026/9/1", func(w http.ResponseWriter, r *http.Request) {
		var address map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&address))
		assert.Equal(t, "Polna 1", address["street"])

		io.WriteString(w, `[
			{"canReserve":false,"deliveryWindow":{"startsAt":"2026-09-01T08:00:00+02:00","endsAt":"2026-09-01T09:00:00+02:00"}},
			{"canReserve":true,"deliveryWindow":{"startsAt":"2026-09-01T08:30:00+02:00","endsAt":"2026-09-01T09:30:00+02:00"}}
		]`)
	})
	mux.HandleFunc("/api/v2/users/user-42/cart/reservation", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reservation))
		w.WriteHeader(http.StatusOK)
	})
	session, _ := testSession(t, mux)

	window, err := session.Schedule(context.Background(), date, []string{"8:00", "8:30"})
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01T08:30:00+02:00", window.StartsAt)
	assert.Equal(t, "2026-09-01T09:30:00+02:00", window.EndsAt)

	// The reservation echoes the raw window and address back.
	assert.Contains(t, string(reservation["deliveryWindow"]), "2026-09-01T08:30:00+02:00")
	assert.Contains(t, string(reservation["shippingAddress"]), "Polna 1")
}

func TestSchedule_NoWindow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users/user-42/addresses/shipping-addresses", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"shippingAddress":{"street":"Polna 1"}}]`)
	})
	mux.HandleFunc("/api/v2/users/user-42/calendar/Van/2026/9/1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})
	session, _ := testSession(t, mux)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := session.Schedule(context.Background(), date, []string{"8:00"})
	assert.ErrorIs(t, err, domain.ErrNoDeliveryWindow)
}
