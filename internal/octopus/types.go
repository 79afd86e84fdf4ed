package octopus

import (
	"errors"
	"time"
)

// periodLayout is local time with no zone suffix, as the API expects.
const periodLayout = "2006-01-02T15:04:05"

// GroupByDay aggregates consumption per calendar day.
const GroupByDay = "day"

// ErrNoResults is returned by callers when the API reports no intervals.
var ErrNoResults = errors.New("octopus: no consumption results")

// ErrMissingResults is returned when the response has no results array.
var ErrMissingResults = errors.New("octopus: response has no results array")

// ErrMissingConsumption is reported when a record's consumption is null or absent.
var ErrMissingConsumption = errors.New("octopus: interval has no consumption value")

// Interval is one consumption record. Consumption is nil when the API
// sends null or omits the key.
type Interval struct {
	Consumption   *float64 `json:"consumption"`
	IntervalStart string   `json:"interval_start"`
	IntervalEnd   string   `json:"interval_end"`
}

// consumptionPage is the response envelope.
type consumptionPage struct {
	Count   int         `json:"count"`
	Next    *string     `json:"next"`
	Results *[]Interval `json:"results"`
}

// Params are the query parameters of a consumption request.
type Params struct {
	GroupBy    string
	PeriodFrom time.Time
	PeriodTo   time.Time
}

// query renders the parameters, skipping unset ones.
func (p Params) query() map[string]string {
	q := make(map[string]string, 3)
	if p.GroupBy != "" {
		q["group_by"] = p.GroupBy
	}
	if !p.PeriodFrom.IsZero() {
		q["period_from"] = p.PeriodFrom.Format(periodLayout)
	}
	if !p.PeriodTo.IsZero() {
		q["period_to"] = p.PeriodTo.Format(periodLayout)
	}
	return q
}

// Window is one calendar day, start and end inclusive to the second.
type Window struct {
	Day   time.Time
	Start time.Time
	End   time.Time
}

// YesterdayWindow returns the calendar day before now, in now's location.
// Octopus publishes consumption a day behind, so today is never queried.
func YesterdayWindow(now time.Time) Window {
	y, m, d := now.AddDate(0, 0, -1).Date()
	loc := now.Location()
	return Window{
		Day:   time.Date(y, m, d, 0, 0, 0, 0, loc),
		Start: time.Date(y, m, d, 0, 0, 0, 0, loc),
		End:   time.Date(y, m, d, 23, 59, 59, 0, loc),
	}
}

// Params returns daily-grouped parameters for the window.
func (w Window) Params() Params {
	return Params{
		GroupBy:    GroupByDay,
		PeriodFrom: w.Start,
		PeriodTo:   w.End,
	}
}

// At returns the window's day combined with the wall-clock time of t.
// Daily points are stamped this way to line up with the existing series.
func (w Window) At(t time.Time) time.Time {
	y, m, d := w.Day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, w.Day.Location())
}

// Latest returns the newest interval. Only results[0] is ever used.
func Latest(results []Interval) (Interval, bool) {
	if len(results) == 0 {
		return Interval{}, false
	}
	return results[0], true
}
