package pipeline

import (
	"context"
	"time"

	"github.com/pisolar/energylog/internal/failure"
	"github.com/pisolar/energylog/internal/infrastructure/logging"
	"github.com/pisolar/energylog/internal/reading"
	"github.com/pisolar/energylog/internal/solis"
)

// InverterConn is an open connection to the inverter. *solis.Conn
// satisfies it.
type InverterConn interface {
	solis.RegisterReader
	Close() error
}

// DialFunc opens the inverter connection.
type DialFunc func() (InverterConn, error)

// StatePublisher is satisfied by *mqtt.Client.
type StatePublisher interface {
	PublishJSON(topic string, v any) error
}

// InverterState is the retained MQTT payload for a reading.
type InverterState struct {
	Online    bool               `json:"online"`
	Timestamp string             `json:"timestamp"`
	Fields    map[string]float64 `json:"fields"`
}

// Solis collects one inverter reading.
type Solis struct {
	dial      DialFunc
	writer    FieldWriter
	publisher StatePublisher
	topic     string
	policy    *failure.Policy
	log       *logging.Logger
	now       func() time.Time
}

// NewSolis wires a Solis run.
func NewSolis(dial DialFunc, w FieldWriter, policy *failure.Policy, log *logging.Logger) *Solis {
	return &Solis{
		dial:   dial,
		writer: w,
		policy: policy,
		log:    log,
		now:    time.Now,
	}
}

// WithPublisher makes Run also publish each reading that was read to topic,
// whether or not the store accepted it.
func (s *Solis) WithPublisher(p StatePublisher, topic string) *Solis {
	s.publisher = p
	s.topic = topic
	return s
}

// Run reads the inverter and writes the reading. When the inverter does
// not answer a zero reading is written instead; any other failure means
// nothing is written.
func (s *Solis) Run(ctx context.Context) failure.Tally {
	r, online, ok := s.read(ctx)
	if !ok {
		return s.policy.Tally()
	}

	s.writer.WriteReading(ctx, r)
	s.publish(r, online)

	return s.policy.Tally()
}

func (s *Solis) read(ctx context.Context) (r reading.Reading, online, ok bool) {
	conn, err := s.dial()
	if err != nil {
		s.policy.Handle("connect inverter", err)
		return reading.Reading{}, false, false
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.log.Warn("closing inverter connection", "error", err)
		}
	}()

	r, err = solis.NewFetcher(conn, s.log).Read(ctx)
	switch {
	case err == nil:
		return r, true, true
	case solis.IsNoResponse(err):
		s.policy.Handle("read inverter", err)
		s.log.Info("inverter offline, recording zero reading")
		return solis.ZeroReading(s.now()), false, true
	default:
		s.policy.Handle("read inverter", err)
		return reading.Reading{}, false, false
	}
}

func (s *Solis) publish(r reading.Reading, online bool) {
	if s.publisher == nil {
		return
	}

	state := InverterState{
		Online:    online,
		Timestamp: r.Time.UTC().Format(time.RFC3339),
		Fields:    r.Values(),
	}
	if err := s.publisher.PublishJSON(s.topic, state); err != nil {
		s.policy.Handle("publish state", failure.Transport("mqtt publish", err))
	}
}
