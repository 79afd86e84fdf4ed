package reading

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Point is a single write destined for the time-series store.
// Field values are always float64; the store rejects a write that changes
// the type of an existing field.
type Point struct {
	Measurement string
	Time        time.Time
	Tags        map[string]string
	Fields      map[string]float64
}

// NewPoint builds a Point from a Reading. Unset keys are not included.
func NewPoint(measurement string, tags map[string]string, r Reading) Point {
	return Point{
		Measurement: measurement,
		Time:        r.Time,
		Tags:        copyTags(tags),
		Fields:      r.Values(),
	}
}

// FieldsAny returns the fields as map[string]any for client libraries
// that take untyped field maps.
func (p Point) FieldsAny() map[string]any {
	out := make(map[string]any, len(p.Fields))
	for k, v := range p.Fields {
		out[k] = v
	}
	return out
}

// String renders the point for debug logging.
func (p Point) String() string {
	keys := make([]string, 0, len(p.Fields))
	for k := range p.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s@%s", p.Measurement, p.Time.UTC().Format(time.RFC3339Nano))
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%g", k, p.Fields[k])
	}
	return b.String()
}

func copyTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}
