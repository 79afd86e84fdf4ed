// Package pipeline runs one collection cycle for each program.
//
// Octopus fetches yesterday's daily import and export totals and writes
// them as separate fields. Solis reads the inverter once and writes the
// reading as a single point, substituting a zeroed reading when the
// inverter is asleep.
//
// Neither Run returns an error. Every failure goes through the run's
// failure.Policy, which logs it and counts it, and the run carries on
// with whatever it can still do. The returned failure.Tally is what the
// caller journals and exports as metrics.
package pipeline
