package marketdata

import (
	"context"
	"time"

	apperrors "idb-pricer/internal/errors"
	"idb-pricer/internal/models"
	"idb-pricer/internal/resilience"
)

// breakerSource guards the feed with a circuit breaker. A
// DataUnavailable answer is a valid response, not a feed failure, and
// never trips the breaker.
type breakerSource struct {
	next Source
	cb   *resilience.CircuitBreaker
}

// WithBreaker wraps a source with circuit breaker protection.
func WithBreaker(next Source, cb *resilience.CircuitBreaker) Source {
	return &breakerSource{next: next, cb: cb}
}

func (b *breakerSource) Spot(ctx context.Context, underlying string) (float64, error) {
	if err := b.cb.Allow(); err != nil {
		return 0, err
	}
	spot, err := b.next.Spot(ctx, underlying)
	b.record(err)
	return spot, err
}

func (b *breakerSource) Fetch(ctx context.Context, leg models.OptionLeg, ref time.Time) (models.LegMarketData, error) {
	if err := b.cb.Allow(); err != nil {
		return models.LegMarketData{}, err
	}
	data, err := b.next.Fetch(ctx, leg, ref)
	b.record(err)
	return data, err
}

func (b *breakerSource) record(err error) {
	if err == nil || apperrors.Is(err, apperrors.ErrDataUnavailable) {
		b.cb.RecordSuccess()
		return
	}
	b.cb.RecordFailure()
}
