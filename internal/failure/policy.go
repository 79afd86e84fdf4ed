package failure

import "sync"

// Logger is the subset of logging.Logger the policy needs.
type Logger interface {
	Error(msg string, args ...any)
}

// Tally counts what happened during one run.
type Tally struct {
	Written  int
	Failures map[Kind]int
}

// Errors returns the total number of handled failures.
func (t Tally) Errors() int {
	n := 0
	for _, c := range t.Failures {
		n += c
	}
	return n
}

// TotalFailure reports whether the run failed at least once and wrote nothing.
func (t Tally) TotalFailure() bool {
	return t.Written == 0 && t.Errors() > 0
}

// Policy is the single log-and-continue handler for a run.
type Policy struct {
	log Logger

	mu    sync.Mutex
	tally Tally
}

// NewPolicy returns a Policy logging through log.
func NewPolicy(log Logger) *Policy {
	return &Policy{
		log:   log,
		tally: Tally{Failures: make(map[Kind]int)},
	}
}

// Handle logs err at error level, counts it, and returns its kind.
// A nil err is ignored and reported as KindUnknown.
func (p *Policy) Handle(op string, err error) Kind {
	if err == nil {
		return KindUnknown
	}

	kind := KindOf(err)

	p.mu.Lock()
	p.tally.Failures[kind]++
	p.mu.Unlock()

	if p.log != nil {
		p.log.Error(op+" failed",
			"op", op,
			"kind", kind.String(),
			"error", err,
		)
	}

	return kind
}

// Written records one successful store write.
func (p *Policy) Written() {
	p.mu.Lock()
	p.tally.Written++
	p.mu.Unlock()
}

// Tally returns a snapshot of the counts so far.
func (p *Policy) Tally() Tally {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := Tally{
		Written:  p.tally.Written,
		Failures: make(map[Kind]int, len(p.tally.Failures)),
	}
	for k, v := range p.tally.Failures {
		out.Failures[k] = v
	}
	return out
}
