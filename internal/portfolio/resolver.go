package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"fund-dashboard-go/internal/config"
	"fund-dashboard-go/internal/notion"
	"go.uber.org/zap"
)

// profitTolerance is the largest divergence between the cached daily
// profit and the live aggregate that does not trigger a write-back.
const profitTolerance = 0.01

// ErrNotConfigured is returned when the store credentials are absent. The
// HTTP layer serves the zero view in that case.
var ErrNotConfigured = errors.New("document store is not configured")

// Resolver produces the dashboard view for "today". It looks the daily
// snapshot up by exact date key and writes a correction back when the
// cached figure drifted from the live holdings aggregate.
//
// The returned view is always usable; a non-nil error marks it as degraded
// (holdings-only or all zeros) rather than confirmed.
type Resolver struct {
	store      notion.ClientInterface
	aggregator *Aggregator
	cfg        *config.Notion
	logger     *zap.Logger
	now        func() time.Time
}

// NewResolver creates a new daily record resolver.
func NewResolver(store notion.ClientInterface, aggregator *Aggregator, cfg *config.Notion, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:      store,
		aggregator: aggregator,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Resolve computes the dashboard view. Failure ladder: daily-snapshot
// trouble degrades to a holdings-only view, holdings trouble degrades to
// all zeros; the error is reported alongside, never instead of, a view.
func (r *Resolver) Resolve(ctx context.Context) (DashboardView, error) {
	now := r.now()
	view := DashboardView{UpdateTime: FormatUpdateTime(now)}

	if r.cfg.Token == "" || r.cfg.HoldingsDBID == "" {
		return view, ErrNotConfigured
	}

	totals, err := r.aggregator.Aggregate(ctx)
	if err != nil {
		return view, err
	}
	view.DailyProfit = totals.DailyProfit
	view.HoldingProfit = totals.HoldingProfit
	view.TotalCost = totals.TotalCost
	view.TotalProfit = totals.HoldingProfit

	if r.cfg.DailyDataDBID == "" {
		r.logger.Warn("Daily data database not configured, serving holdings-only view")
		return view, nil
	}

	dateKey := DateKey(now)
	snapshot, err := r.findSnapshot(ctx, dateKey)
	if err != nil {
		r.logger.Warn("Daily snapshot lookup failed, serving holdings-only view", zap.Error(err))
		return view, err
	}

	// Cumulative total = yesterday's total + today's live daily profit.
	previousTotal := r.previousTotalProfit(ctx, now)
	cumulative := round2(previousTotal + totals.DailyProfit)

	if snapshot == nil {
		view.TotalProfit = cumulative
		if totals.DailyProfit != 0 {
			if err := r.store.CreatePage(ctx, r.cfg.DailyDataDBID, r.snapshotProperties(dateKey, totals, cumulative)); err != nil {
				r.logger.Warn("Failed to create daily snapshot", zap.String("date_key", dateKey), zap.Error(err))
			} else {
				r.logger.Info("Created daily snapshot", zap.String("date_key", dateKey), zap.Float64("daily_profit", totals.DailyProfit))
			}
		}
		return view, nil
	}

	cachedDaily, hasDaily := snapshot.Properties[r.cfg.DailyDailyProfitProp].NumberValue()
	cachedTotal, hasTotal := snapshot.Properties[r.cfg.DailyTotalProfitProp].NumberValue()

	if !hasDaily || math.Abs(cachedDaily-totals.DailyProfit) > profitTolerance {
		view.TotalProfit = cumulative
		if err := r.store.UpdatePage(ctx, snapshot.ID, r.snapshotProperties(dateKey, totals, cumulative)); err != nil {
			r.logger.Warn("Failed to reconcile daily snapshot", zap.String("date_key", dateKey), zap.Error(err))
		} else {
			r.logger.Info("Reconciled daily snapshot",
				zap.String("date_key", dateKey),
				zap.Float64("cached_daily_profit", cachedDaily),
				zap.Float64("live_daily_profit", totals.DailyProfit),
			)
		}
		return view, nil
	}

	// Within tolerance: the cached record stays authoritative.
	view.DailyProfit = round2(cachedDaily)
	if hasTotal {
		view.TotalProfit = round2(cachedTotal)
	} else {
		view.TotalProfit = cumulative
	}
	if cachedCost, ok := snapshot.Properties[r.cfg.DailyTotalCostProp].NumberValue(); ok {
		view.TotalCost = round2(cachedCost)
	}
	return view, nil
}

// findSnapshot looks up the snapshot for the given date key, if any.
func (r *Resolver) findSnapshot(ctx context.Context, dateKey string) (*notion.Page, error) {
	resp, err := r.store.QueryDatabase(ctx, r.cfg.DailyDataDBID, &notion.QueryRequest{
		Filter:   notion.TitleEqualsFilter(r.cfg.DailyTitleProp, dateKey),
		PageSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("query daily snapshot %s: %w", dateKey, err)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

// previousTotalProfit fetches yesterday's cumulative total. Missing
// records and lookup failures both count as zero.
func (r *Resolver) previousTotalProfit(ctx context.Context, now time.Time) float64 {
	previousKey := DateKey(now.AddDate(0, 0, -1))
	resp, err := r.store.QueryDatabase(ctx, r.cfg.DailyDataDBID, &notion.QueryRequest{
		Filter:   notion.TitleEqualsFilter(r.cfg.DailyTitleProp, previousKey),
		PageSize: 1,
	})
	if err != nil {
		r.logger.Warn("Previous-day snapshot lookup failed, starting total from zero",
			zap.String("date_key", previousKey), zap.Error(err))
		return 0
	}
	if len(resp.Results) == 0 {
		r.logger.Info("No previous-day snapshot, starting total from zero", zap.String("date_key", previousKey))
		return 0
	}
	total, _ := resp.Results[0].Properties[r.cfg.DailyTotalProfitProp].NumberValue()
	return total
}

func (r *Resolver) snapshotProperties(dateKey string, totals Totals, cumulative float64) map[string]any {
	return map[string]any{
		r.cfg.DailyTitleProp:       notion.TitleProperty(dateKey),
		r.cfg.DailyDailyProfitProp: notion.NumberProperty(totals.DailyProfit),
		r.cfg.DailyTotalCostProp:   notion.NumberProperty(totals.TotalCost),
		r.cfg.DailyTotalProfitProp: notion.NumberProperty(cumulative),
	}
}
