package marketdata

import (
	"context"
	"time"

	apperrors "idb-pricer/internal/errors"
	"idb-pricer/internal/models"
	"idb-pricer/pkg/utils"
)

// retrySource retries transient failures with exponential backoff.
// DataUnavailable is permanent and passes through on the first attempt.
type retrySource struct {
	next Source
	cfg  utils.RetryConfig
}

// WithRetry wraps a source with retry behavior.
func WithRetry(next Source, cfg utils.RetryConfig) Source {
	return &retrySource{next: next, cfg: cfg}
}

func (r *retrySource) Spot(ctx context.Context, underlying string) (float64, error) {
	var perm error
	spot, err := utils.RetryWithResult(ctx, r.cfg, func() (float64, error) {
		spot, err := r.next.Spot(ctx, underlying)
		if err != nil && apperrors.Is(err, apperrors.ErrDataUnavailable) {
			perm = err
			return 0, nil
		}
		return spot, err
	})
	if perm != nil {
		return 0, perm
	}
	return spot, err
}

func (r *retrySource) Fetch(ctx context.Context, leg models.OptionLeg, ref time.Time) (models.LegMarketData, error) {
	var perm error
	data, err := utils.RetryWithResult(ctx, r.cfg, func() (models.LegMarketData, error) {
		data, err := r.next.Fetch(ctx, leg, ref)
		if err != nil && apperrors.Is(err, apperrors.ErrDataUnavailable) {
			perm = err
			return models.LegMarketData{}, nil
		}
		return data, err
	})
	if perm != nil {
		return models.LegMarketData{}, perm
	}
	return data, err
}
