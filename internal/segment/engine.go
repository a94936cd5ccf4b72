// Package segment implements the contact segmentation engine: given a
// collection of contact records and a declarative criteria tree, it decides
// which contacts belong to a dynamic or segmented list.
//
// The engine is a pure, synchronous computation over in-memory contacts. It
// holds no shared mutable state and performs no I/O, so a single Engine value
// is safe for concurrent use from independent requests. Malformed rule
// content never raises: unknown fields resolve to nil, unsupported operators
// and bad patterns evaluate to false (fail-closed), and empty criteria match
// everything (pass-through).
package segment

import "time"

// Engine evaluates criteria against contacts.
// The clock is injectable so derived date fields (age, daysSince*) are
// deterministic under test; NewEngine wires time.Now.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineAt creates an engine with a fixed evaluation time.
func NewEngineAt(now time.Time) *Engine {
	return &Engine{now: func() time.Time { return now }}
}
