package usecase

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer blocks until the next downstream call is allowed. Both the
// decision protocol and the shopping loop pace their calls through one,
// so the rate policy is tunable independently of the business logic.
type Pacer interface {
	Wait(ctx context.Context) error
}

// intervalPacer allows one call per fixed interval. The first call
// passes immediately; later calls wait out the remainder of the
// interval.
type intervalPacer struct {
	limiter *rate.Limiter
}

// NewIntervalPacer creates a pacer allowing one call per interval.
func NewIntervalPacer(interval time.Duration) Pacer {
	return &intervalPacer{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (p *intervalPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
