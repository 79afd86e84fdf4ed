// Package reading defines the normalised shape of a collected sample.
//
// A Reading is sparse: a key is either set to a float64 or absent, and
// absent keys are never written to the store. This is what lets the
// inverter skip its lifetime and daily generation totals when they read
// zero during the overnight power-down.
package reading

import (
	"sort"
	"time"
)

// Field keys. These match the existing series in the "solar" measurement.
const (
	ACVoltage    = "acv"
	ACCurrent    = "aci"
	ACFrequency  = "acf"
	InverterTemp = "inc"
	DC1Voltage   = "dc1v"
	DC2Voltage   = "dc2v"
	DC1Current   = "dc1a"
	DC2Current   = "dc2a"
	PVPower      = "pvpower"
	LastMonthKWh = "lastMonth"
	ThisMonthKWh = "thisMonth"
	AllTimeKWh   = "gat"
	TodayKWh     = "gto"
	Consumption  = "consumption"
	Export       = "export"
)

// Reading is a timestamped, sparse mapping of field key to value.
type Reading struct {
	Time   time.Time
	values map[string]float64
}

// New returns an empty Reading stamped at t.
func New(t time.Time) Reading {
	return Reading{Time: t, values: make(map[string]float64)}
}

// Set stores v under key.
func (r *Reading) Set(key string, v float64) {
	if r.values == nil {
		r.values = make(map[string]float64)
	}
	r.values[key] = v
}

// SetIfPositive stores v only when it is strictly greater than zero.
// It reports whether the key was set.
func (r *Reading) SetIfPositive(key string, v float64) bool {
	if v <= 0 {
		return false
	}
	r.Set(key, v)
	return true
}

// Get returns the value for key and whether it is set.
func (r Reading) Get(key string) (float64, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Len returns the number of set keys.
func (r Reading) Len() int {
	return len(r.values)
}

// Keys returns the set keys in sorted order.
func (r Reading) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns a copy of the set values.
func (r Reading) Values() map[string]float64 {
	out := make(map[string]float64, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MonthlyExportField returns the per-month export bucket for date,
// e.g. 2024-03-15 gives "export202403".
func MonthlyExportField(date time.Time) string {
	return Export + date.Format("200601")
}
