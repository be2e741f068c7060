package app

import (
	"testing"
	"time"

	"github.com/ewelina-dziedzic/grocery-shopping/internal/domain"
)

func TestFormatWindow(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}

	tests := []struct {
		name   string
		window domain.DeliveryWindow
		want   string
	}{
		{
			name: "renders local weekday and times",
			window: domain.DeliveryWindow{
				StartsAt: "2026-09-01T08:00:00+02:00",
				EndsAt:   "2026-09-01T09:30:00+02:00",
			},
			want: "Tue 08:00 - 09:30",
		},
		{
			name: "converts UTC timestamps to local time",
			window: domain.DeliveryWindow{
				StartsAt: "2026-09-01T06:00:00Z",
				EndsAt:   "2026-09-01T07:30:00Z",
			},
			want: "Tue 08:00 - 09:30",
		},
		{
			name: "falls back to raw values on unparseable timestamps",
			window: domain.DeliveryWindow{
				StartsAt: "tomorrow morning",
				EndsAt:   "tomorrow noon",
			},
			want: "tomorrow morning - tomorrow noon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatWindow(&tt.window, warsaw)
			if got != tt.want {
				t.Errorf("formatWindow() = %q, want %q", got, tt.want)
			}
		})
	}
}
