package portfolio

import (
	"context"
	"fmt"

	"fund-dashboard-go/internal/config"
	"fund-dashboard-go/internal/notion"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Totals is the live aggregate over all held positions.
type Totals struct {
	DailyProfit   float64
	HoldingProfit float64
	TotalCost     float64
}

// Aggregator sums profit figures across every holding record with a
// positive quantity.
type Aggregator struct {
	store  notion.Querier
	cfg    *config.Notion
	logger *zap.Logger
}

// NewAggregator creates a new holdings aggregator.
func NewAggregator(store notion.Querier, cfg *config.Notion, logger *zap.Logger) *Aggregator {
	return &Aggregator{store: store, cfg: cfg, logger: logger}
}

// Aggregate walks every page of the holdings database and sums the daily
// profit, holding profit and cost of records with quantity > 0. Any failure
// mid-pagination discards the partial sums and returns zero totals with
// the error.
func (a *Aggregator) Aggregate(ctx context.Context) (Totals, error) {
	var daily, holding, cost decimal.Decimal

	it := notion.NewPageIterator(a.store, a.cfg.HoldingsDBID, nil, nil)
	count := 0
	for it.HasMore() {
		pages, err := it.Next(ctx)
		if err != nil {
			return Totals{}, fmt.Errorf("list holdings: %w", err)
		}
		count += len(pages)

		for _, page := range pages {
			props := page.Properties
			code := padFundCode(props[a.cfg.HoldingCodeProp].TextValue())
			name := props[a.cfg.HoldingTitleProp].TextValue()

			quantity, ok := props[a.cfg.HoldingQuantityProp].NumberValue()
			if !ok || quantity <= 0 {
				a.logger.Warn("Holding has no position, skipping",
					zap.String("code", code),
					zap.String("name", name),
				)
				continue
			}

			dailyProfit, _ := props[a.cfg.DailyProfitProp].NumberValue()
			holdingProfit, _ := props[a.cfg.HoldingProfitProp].NumberValue()
			totalCost, _ := props[a.cfg.HoldingCostProp].NumberValue()

			daily = daily.Add(decimal.NewFromFloat(dailyProfit))
			holding = holding.Add(decimal.NewFromFloat(holdingProfit))
			cost = cost.Add(decimal.NewFromFloat(totalCost))

			a.logger.Debug("Holding aggregated",
				zap.String("code", code),
				zap.String("name", name),
				zap.Float64("daily_profit", dailyProfit),
				zap.Float64("holding_profit", holdingProfit),
				zap.Float64("total_cost", totalCost),
			)
		}
	}

	a.logger.Info("Holdings aggregated",
		zap.Int("records", count),
		zap.String("daily_profit", daily.Round(2).String()),
		zap.String("holding_profit", holding.Round(2).String()),
	)

	return Totals{
		DailyProfit:   daily.Round(2).InexactFloat64(),
		HoldingProfit: holding.Round(2).InexactFloat64(),
		TotalCost:     cost.Round(2).InexactFloat64(),
	}, nil
}
