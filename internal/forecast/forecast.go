package forecast

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thrkingunknown/NASA-WeatherSense/internal/client"
	"github.com/thrkingunknown/NASA-WeatherSense/internal/models"
	"github.com/thrkingunknown/NASA-WeatherSense/internal/observability"
	"github.com/thrkingunknown/NASA-WeatherSense/internal/stats"
	"github.com/thrkingunknown/NASA-WeatherSense/internal/validation"
)

// historicalYears is how many preceding years feed the historical set.
const historicalYears = 5

// Orchestrator assembles a CompositeForecast for one validated query:
// target-day fetch, historical aggregation, derived statistics.
type Orchestrator struct {
	provider client.WeatherClient
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrchestrator creates an Orchestrator. now is overridable for tests;
// nil means time.Now.
func NewOrchestrator(provider client.WeatherClient, logger *zap.Logger, now func() time.Time) *Orchestrator {
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		provider: provider,
		logger:   logger,
		now:      now,
	}
}

// loggerFromContext returns the per-request logger when middleware put one
// in the context, else the orchestrator's own.
func (o *Orchestrator) loggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value("logger"); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return o.logger
}

// FetchHistorical issues one single-day lookup per preceding year, strictly
// sequentially, for the same month/day as target. A failed year is logged
// and omitted; the call never fails for a partial shortfall. The returned
// set is ordered chronologically oldest to newest (year-5 first) so that
// trend slopes read forward in time.
func (o *Orchestrator) FetchHistorical(ctx context.Context, latitude, longitude string, target time.Time) []models.DailyObservation {
	logger := o.loggerFromContext(ctx)
	fetched := make([]models.DailyObservation, 0, historicalYears)

	for yearsBack := 1; yearsBack <= historicalYears; yearsBack++ {
		past := target.AddDate(-yearsBack, 0, 0)
		date := past.Format("2006-01-02")

		obs, err := o.provider.GetDay(ctx, latitude, longitude, date)
		if err != nil {
			observability.HistoricalFetchFailuresTotal.Inc()
			observability.RecordExternalError("weather", string(client.CategorizeError(err)))
			if logger != nil {
				logger.Warn("historical fetch failed, year omitted",
					zap.String("date", date),
					zap.Int("years_back", yearsBack),
					zap.Error(err))
			}
			continue
		}
		fetched = append(fetched, obs)
	}

	// Fetched newest-first; reverse so the set reads oldest to newest.
	for i, j := 0, len(fetched)-1; i < j; i, j = i+1, j-1 {
		fetched[i], fetched[j] = fetched[j], fetched[i]
	}
	return fetched
}

// BuildComposite fetches the target day (fatal on failure), aggregates the
// historical set (fail-open), and derives statistics and monthly averages.
// The fetched day lands under Current when the target date is today or in
// the past, under Forecast otherwise.
func (o *Orchestrator) BuildComposite(ctx context.Context, query models.WeatherQuery) (*models.CompositeForecast, error) {
	logger := o.loggerFromContext(ctx)

	target, err := validation.ParseAPIDate(query.APIDate)
	if err != nil {
		return nil, fmt.Errorf("parse target date: %w", err)
	}

	today := dateOnly(o.now())
	isFuture := target.After(today)

	day, err := o.provider.GetDay(ctx, query.Latitude, query.Longitude, query.APIDate)
	if err != nil {
		observability.RecordExternalError("weather", string(client.CategorizeError(err)))
		return nil, fmt.Errorf("fetch weather for %s,%s on %s: %w", query.Latitude, query.Longitude, query.APIDate, err)
	}

	historical := o.FetchHistorical(ctx, query.Latitude, query.Longitude, target)
	if logger != nil && len(historical) < historicalYears {
		logger.Info("historical set is partial",
			zap.Int("years", len(historical)),
			zap.Int("wanted", historicalYears))
	}

	composite := &models.CompositeForecast{
		Latitude:        query.Latitude,
		Longitude:       query.Longitude,
		Historical:      historical,
		MonthlyAverages: stats.MonthlyAverages(historical),
		Statistics:      stats.Compute(historical),
	}
	if isFuture {
		composite.Forecast = &day
	} else {
		composite.Current = &day
	}
	return composite, nil
}

// dateOnly truncates a time to midnight UTC so date comparisons ignore
// the time of day. A target equal to today classifies as current.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
