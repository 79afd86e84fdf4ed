// Package failure classifies run errors and applies the single
// log-and-continue policy both collectors use.
//
// Every error a pipeline meets falls into one of four kinds:
//
//   - Transport: network unreachable, HTTP failure, serial no-response
//   - DataShape: empty or malformed API results, non-numeric values
//   - Store: InfluxDB connection refused, rejected field values
//   - Unknown: anything else
//
// Producers tag errors at their origin with Transport, DataShape or Store.
// Consumers never branch on the kind themselves; they call Policy.Handle,
// which logs at error level, counts the failure, and returns. No error is
// re-raised past a pipeline.
//
// # Usage
//
//	policy := failure.NewPolicy(logger)
//	if err := fetch(); err != nil {
//	    policy.Handle("fetch import consumption", err)
//	}
//	tally := policy.Tally()
//	if tally.TotalFailure() { ... }
package failure
