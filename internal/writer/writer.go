// Package writer turns readings into store points and writes them one at a
// time, logging instead of propagating every failure.
package writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/pisolar/energylog/internal/failure"
	"github.com/pisolar/energylog/internal/infrastructure/logging"
	"github.com/pisolar/energylog/internal/reading"
)

// InverterTagKey is the tag every point carries.
const InverterTagKey = "Inverter"

var (
	// ErrNoStore is reported when the writer has no store client.
	ErrNoStore = errors.New("writer: no influxdb client available")

	// ErrTypeMismatch is reported when a value cannot be read as a number.
	ErrTypeMismatch = errors.New("writer: value is not numeric")

	// ErrValueDomain is reported for NaN and infinite values.
	ErrValueDomain = errors.New("writer: value out of domain")

	// ErrEmptyReading is reported when a reading has no fields to write.
	ErrEmptyReading = errors.New("writer: reading has no fields")
)

// Store is the one call the writer needs from the time-series client.
type Store interface {
	WritePoint(ctx context.Context, p reading.Point) error
}

// Writer writes points under a fixed measurement and inverter tag.
type Writer struct {
	store       Store
	measurement string
	tags        map[string]string
	policy      *failure.Policy
	log         *logging.Logger
}

// New returns a Writer. store may be nil, in which case every write is
// logged as an error and skipped.
func New(store Store, measurement, inverterTag string, policy *failure.Policy, log *logging.Logger) *Writer {
	return &Writer{
		store:       store,
		measurement: measurement,
		tags:        map[string]string{InverterTagKey: inverterTag},
		policy:      policy,
		log:         log,
	}
}

// WriteField writes a single field. value may be any numeric type, a
// json.Number, or a numeric string; it is stored as float64.
// It reports whether the write succeeded.
func (w *Writer) WriteField(ctx context.Context, ts time.Time, field string, value any) bool {
	op := "write " + field

	v, err := toFloat(value)
	if err != nil {
		w.policy.Handle(op, err)
		return false
	}

	r := reading.New(ts)
	r.Set(field, v)
	return w.write(ctx, op, r)
}

// WriteReading writes every set field of r as one point.
func (w *Writer) WriteReading(ctx context.Context, r reading.Reading) bool {
	if r.Len() == 0 {
		w.policy.Handle("write reading", failure.DataShape("build point", ErrEmptyReading))
		return false
	}
	return w.write(ctx, "write reading", r)
}

func (w *Writer) write(ctx context.Context, op string, r reading.Reading) bool {
	if w.store == nil {
		w.policy.Handle(op, failure.Store("influxdb", ErrNoStore))
		return false
	}

	for _, k := range r.Keys() {
		if v, _ := r.Get(k); math.IsNaN(v) || math.IsInf(v, 0) {
			w.policy.Handle(op, failure.Store("check value", fmt.Errorf("field %s: %w", k, ErrValueDomain)))
			return false
		}
	}

	p := reading.NewPoint(w.measurement, w.tags, r)
	w.log.Debug("sending data to influxdb", "point", p.String())

	if err := w.store.WritePoint(ctx, p); err != nil {
		w.policy.Handle(op, failure.Store("write point", err))
		return false
	}

	w.policy.Written()
	return true
}

// toFloat coerces the value shapes readings arrive in.
func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, failure.DataShape("convert value", fmt.Errorf("%w: %q", ErrTypeMismatch, v))
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, failure.DataShape("convert value", fmt.Errorf("%w: %q", ErrTypeMismatch, v))
		}
		return f, nil
	default:
		return 0, failure.DataShape("convert value", fmt.Errorf("%w: %T", ErrTypeMismatch, value))
	}
}
