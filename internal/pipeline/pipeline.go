package pipeline

import (
	"context"
	"time"

	"github.com/pisolar/energylog/internal/reading"
)

// FieldWriter is the part of writer.Writer the pipelines use.
type FieldWriter interface {
	WriteField(ctx context.Context, ts time.Time, field string, value any) bool
	WriteReading(ctx context.Context, r reading.Reading) bool
}
