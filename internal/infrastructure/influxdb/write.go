package influxdb

import (
	"context"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/pisolar/energylog/internal/reading"
)

// WritePoint sends a single point and waits for the server's answer.
//
// Errors are wrapped with ErrConnectionFailed, ErrValueRejected or
// ErrWriteFailed so callers can tell them apart with errors.Is.
//
// Example:
//
//	r := reading.New(time.Now())
//	r.Set(reading.PVPower, 1520)
//	err := client.WritePoint(ctx, reading.NewPoint("solar", map[string]string{"Inverter": "solis"}, r))
func (c *Client) WritePoint(ctx context.Context, p reading.Point) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	point := write.NewPoint(p.Measurement, p.Tags, p.FieldsAny(), p.Time)

	return classifyWriteError(c.writeAPI.WritePoint(ctx, point))
}
