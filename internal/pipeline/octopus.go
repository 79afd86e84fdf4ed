package pipeline

import (
	"context"
	"time"

	"github.com/pisolar/energylog/internal/failure"
	"github.com/pisolar/energylog/internal/infrastructure/logging"
	"github.com/pisolar/energylog/internal/octopus"
	"github.com/pisolar/energylog/internal/reading"
)

// ConsumptionFetcher is satisfied by *octopus.Client.
type ConsumptionFetcher interface {
	Consumption(ctx context.Context, mpan, serial string, params octopus.Params) ([]octopus.Interval, error)
}

// Meters identifies the import and export meter points. Both share the
// one physical meter serial.
type Meters struct {
	ImportMPAN string
	ExportMPAN string
	Serial     string
}

// Octopus collects yesterday's consumption and export.
type Octopus struct {
	api    ConsumptionFetcher
	meters Meters
	writer FieldWriter
	policy *failure.Policy
	log    *logging.Logger
	now    func() time.Time
}

// NewOctopus wires an Octopus run.
func NewOctopus(api ConsumptionFetcher, meters Meters, w FieldWriter, policy *failure.Policy, log *logging.Logger) *Octopus {
	return &Octopus{
		api:    api,
		meters: meters,
		writer: w,
		policy: policy,
		log:    log,
		now:    time.Now,
	}
}

// Run fetches import then export for yesterday and writes what it gets.
// An import failure does not stop the export fetch.
func (o *Octopus) Run(ctx context.Context) failure.Tally {
	now := o.now()
	window := octopus.YesterdayWindow(now)
	ts := window.At(now)

	o.log.Info("collecting octopus totals", "day", window.Day.Format(time.DateOnly))

	if iv, ok := o.fetch(ctx, "fetch import", o.meters.ImportMPAN, window); ok {
		o.writer.WriteField(ctx, ts, reading.Consumption, *iv.Consumption)
	}

	if iv, ok := o.fetch(ctx, "fetch export", o.meters.ExportMPAN, window); ok {
		o.writer.WriteField(ctx, ts, reading.Export, *iv.Consumption)
		o.writer.WriteField(ctx, ts, reading.MonthlyExportField(window.Day), *iv.Consumption)
	}

	return o.policy.Tally()
}

// fetch returns the first interval for mpan, or logs why there is none.
// An interval without a consumption value counts as no interval.
func (o *Octopus) fetch(ctx context.Context, op, mpan string, window octopus.Window) (octopus.Interval, bool) {
	results, err := o.api.Consumption(ctx, mpan, o.meters.Serial, window.Params())
	if err != nil {
		o.policy.Handle(op, err)
		return octopus.Interval{}, false
	}

	iv, ok := octopus.Latest(results)
	if !ok {
		o.policy.Handle(op, failure.DataShape("latest interval", octopus.ErrNoResults))
		return octopus.Interval{}, false
	}
	if iv.Consumption == nil {
		o.policy.Handle(op, failure.DataShape("latest interval", octopus.ErrMissingConsumption))
		return octopus.Interval{}, false
	}

	o.log.Debug("interval",
		"mpan", mpan,
		"interval_start", iv.IntervalStart,
		"consumption", *iv.Consumption,
	)
	return iv, true
}
