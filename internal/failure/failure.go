package failure

import (
	"context"
	"errors"
	"net"
)

// Kind is the closed set of failure categories.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindDataShape
	KindStore
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{KindTransport, KindDataShape, KindStore, KindUnknown}

// String returns the lower-case label used in logs, metrics and the journal.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDataShape:
		return "data_shape"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error carries a Kind alongside the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transport tags err as a transport failure. A nil err stays nil.
func Transport(op string, err error) error {
	return wrap(KindTransport, op, err)
}

// DataShape tags err as a data-shape failure. A nil err stays nil.
func DataShape(op string, err error) error {
	return wrap(KindDataShape, op, err)
}

// Store tags err as a store failure. A nil err stays nil.
func Store(op string, err error) error {
	return wrap(KindStore, op, err)
}

func wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf classifies err. Tagged errors keep their tag; untagged network
// and deadline errors count as transport; everything else is unknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransport
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransport
	}

	return KindUnknown
}
