package solis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goburrow/serial"

	"github.com/pisolar/energylog/internal/failure"
	"github.com/pisolar/energylog/internal/infrastructure/logging"
	"github.com/pisolar/energylog/internal/reading"
)

// ErrNoResponse means the inverter sent nothing before the serial timeout.
var ErrNoResponse = errors.New("solis: no response from inverter")

// Fetcher reads the full register map into a Reading.
type Fetcher struct {
	reader RegisterReader
	log    *logging.Logger
	now    func() time.Time
}

// NewFetcher returns a Fetcher reading through reader.
func NewFetcher(reader RegisterReader, log *logging.Logger) *Fetcher {
	return &Fetcher{
		reader: reader,
		log:    log.With("component", "modbus"),
		now:    time.Now,
	}
}

// Read queries every register in order. The reading is stamped in UTC
// before the first request. Any failure aborts the read; a timeout with
// no reply is reported as ErrNoResponse.
func (f *Fetcher) Read(ctx context.Context) (reading.Reading, error) {
	r := reading.New(f.now().UTC())

	for _, reg := range Registers {
		if err := ctx.Err(); err != nil {
			return reading.Reading{}, failure.Transport("read registers", err)
		}

		raw, err := f.reader.ReadInputRegisters(reg.Address, reg.Quantity())
		if err != nil {
			return reading.Reading{}, classifyReadError(reg, err)
		}

		v, err := reg.Decode(raw)
		if err != nil {
			return reading.Reading{}, failure.DataShape("decode "+reg.Key, err)
		}

		f.log.Debug(reg.Label, "value", fmt.Sprintf("%.2f", v), "unit", reg.Unit)

		if reg.PositiveOnly {
			if !r.SetIfPositive(reg.Key, v) {
				f.log.Debug("skipping zero generation total", "field", reg.Key)
			}
			continue
		}
		r.Set(reg.Key, v)
	}

	return r, nil
}

func classifyReadError(reg Register, err error) error {
	op := fmt.Sprintf("read register %d (%s)", reg.Address, reg.Key)
	if isTimeout(err) {
		return failure.Transport(op, fmt.Errorf("%w: %w", ErrNoResponse, err))
	}
	return failure.Transport(op, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, serial.ErrTimeout) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// IsNoResponse reports whether err means the inverter did not answer.
func IsNoResponse(err error) bool {
	return errors.Is(err, ErrNoResponse)
}

// ZeroReading is recorded when the inverter is offline: every live
// telemetry field is zero and the generation totals are left out.
func ZeroReading(now time.Time) reading.Reading {
	r := reading.New(now.UTC())
	for _, k := range offlineKeys {
		r.Set(k, 0)
	}
	return r
}
