// Package marketdata supplies spot prices and per-leg option quotes.
// The production path wraps a terminal feed; the sim source generates
// deterministic quotes for development and tests.
package marketdata

import (
	"context"
	"time"

	"idb-pricer/internal/models"
)

// Source is the market-data collaborator. Fetch returns the screen
// quote for one option leg; the reference time anchors time-to-expiry.
// A leg the source cannot quote fails with a DataUnavailableError.
type Source interface {
	Spot(ctx context.Context, underlying string) (float64, error)
	Fetch(ctx context.Context, leg models.OptionLeg, ref time.Time) (models.LegMarketData, error)
}
