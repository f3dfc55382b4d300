// Package availability decides whether a resource can be booked for an
// interval given the reservations already held on it.
//
// The engine is pure: it reads its arguments, never mutates them and performs
// no I/O, so the same input always yields the same Verdict. Callers pass the
// reservations of the resource being checked; only confirmed reservations
// take part in the decision.
package availability

import (
	"time"

	"rentals/pkg/model"
)

type Reason string

const (
	ReasonAvailable       Reason = "available"
	ReasonInvalidRange    Reason = "invalid_range"
	ReasonBufferOverlap   Reason = "buffer_overlap"
	ReasonInventoryFull   Reason = "inventory_full"
	ReasonUnsupportedKind Reason = "unsupported_kind"
)

// Verdict is the outcome of a check together with what caused a rejection.
type Verdict struct {
	Available bool
	Reason    Reason
	// Conflict is the first confirmed reservation whose buffered interval
	// overlaps the request (unique houses).
	Conflict *model.Reservation
	// FullDay is the first day whose occupancy reached the inventory
	// (property centers); Occupancy is the count on that day.
	FullDay   time.Time
	Occupancy int
}

// Rule evaluates one resource variant. start < end is guaranteed by the engine.
type Rule func(res *model.Resource, start, end time.Time, reservations []*model.Reservation) Verdict

// Strategy selects how property center occupancy is computed.
type Strategy int

const (
	// Sweep builds a difference array over day buckets, O(days + n log days).
	Sweep Strategy = iota
	// Scan counts every reservation for every day, O(days * n).
	Scan
)

type Engine struct {
	rules map[model.ResourceKind]Rule
}

type Option func(*Engine)

func WithCenterStrategy(s Strategy) Option {
	return func(e *Engine) {
		if s == Scan {
			e.rules[model.KindPropertyCenter] = scanCenter
			return
		}
		e.rules[model.KindPropertyCenter] = sweepCenter
	}
}

// WithRule installs or replaces the rule for a resource kind.
func WithRule(kind model.ResourceKind, rule Rule) Option {
	return func(e *Engine) {
		e.rules[kind] = rule
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rules: map[model.ResourceKind]Rule{
			model.KindUniqueHouse:    checkHouse,
			model.KindPropertyCenter: sweepCenter,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) IsAvailable(res *model.Resource, start, end time.Time, reservations []*model.Reservation) bool {
	return e.Check(res, start, end, reservations).Available
}

// Check never fails: a malformed interval (end <= start) is unavailable, as is
// a resource kind without a registered rule.
func (e *Engine) Check(res *model.Resource, start, end time.Time, reservations []*model.Reservation) Verdict {
	if !end.After(start) {
		return Verdict{Reason: ReasonInvalidRange}
	}
	if res == nil {
		return Verdict{Reason: ReasonUnsupportedKind}
	}
	rule, ok := e.rules[res.Kind]
	if !ok {
		return Verdict{Reason: ReasonUnsupportedKind}
	}
	return rule(res, start, end, reservations)
}

var defaultEngine = NewEngine()

// IsAvailable checks with the default engine.
func IsAvailable(res *model.Resource, start, end time.Time, reservations []*model.Reservation) bool {
	return defaultEngine.IsAvailable(res, start, end, reservations)
}
