package collector

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/warera-analytics/market-history/internal/market"
	"github.com/warera-analytics/market-history/pkg/warera"
)

// PriceSource obtains one price snapshot.
type PriceSource interface {
	Fetch(ctx context.Context) (market.PriceSnapshot, error)
}

// WareraSource adapts a warera.Client to PriceSource.
type WareraSource struct {
	client warera.Client
}

// NewWareraSource wraps client.
func NewWareraSource(client warera.Client) *WareraSource {
	return &WareraSource{client: client}
}

// Fetch requests current prices and keeps only known product ids.
func (s *WareraSource) Fetch(ctx context.Context) (market.PriceSnapshot, error) {
	resp, err := s.client.GetPrices(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "collector: get prices")
	}

	snap, unknown := market.NewPriceSnapshot(resp.Result.Data)
	if len(unknown) > 0 {
		zap.L().Debug("collector: ignoring unknown price keys",
			zap.String("component", "collector"),
			zap.Strings("keys", unknown),
		)
	}
	return snap, nil
}
