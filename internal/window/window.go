// Package window applies per-file offset/limit windowing to the accepted
// match sequence and detects truncation without over-reading the source.
package window

import (
	pqerrors "github.com/pqgrep/pqgrep/internal/errors"
)

// Window is the (offset, limit) pair governing how many accepted matches are
// skipped then emitted per file. Limit == 0 means unbounded.
type Window struct {
	Offset int
	Limit  int
}

// Validate rejects negative parameters before any file is processed.
func (w Window) Validate() error {
	if w.Offset < 0 {
		return pqerrors.NewWindowError("offset", w.Offset)
	}
	if w.Limit < 0 {
		return pqerrors.NewWindowError("limit", w.Limit)
	}
	return nil
}

// Decision is the controller's verdict for one incoming accepted match.
type Decision uint8

const (
	// Skip consumes the match without emitting it (still inside the offset).
	Skip Decision = iota
	// Emit passes the match through to the renderer.
	Emit
	// Stop marks the window full: the match is not emitted, the file is
	// truncated, and the caller must stop pulling from the source.
	Stop
)

type state uint8

const (
	stateSkipping state = iota
	stateEmitting
	stateDone
	stateDoneTruncated
)

// Controller is the per-file window state machine:
// SKIPPING -> EMITTING -> DONE or DONE_TRUNCATED. State is created fresh per
// file and discarded when the file's stream ends.
type Controller struct {
	state         state
	remainingSkip int
	limit         int
	emitted       int
}

// NewController builds a controller for one file's match sequence.
// The window must already be validated.
func NewController(w Window) *Controller {
	c := &Controller{
		remainingSkip: w.Offset,
		limit:         w.Limit,
		state:         stateEmitting,
	}
	if w.Offset > 0 {
		c.state = stateSkipping
	}
	return c
}

// Admit advances the state machine for one incoming accepted match and
// returns what to do with it. After Stop is returned the caller must not
// pull further matches from this file's source.
func (c *Controller) Admit() Decision {
	switch c.state {
	case stateSkipping:
		c.remainingSkip--
		if c.remainingSkip == 0 {
			// The match that exhausts the skip counter is itself skipped;
			// emission starts with the next one.
			c.state = stateEmitting
		}
		return Skip

	case stateEmitting:
		if c.limit > 0 && c.emitted >= c.limit {
			c.state = stateDoneTruncated
			return Stop
		}
		c.emitted++
		return Emit

	default:
		return Stop
	}
}

// Exhausted records that the source ended. A window that never reached its
// limit is not truncated, even when the emitted count equals the limit.
func (c *Controller) Exhausted() {
	if c.state == stateSkipping || c.state == stateEmitting {
		c.state = stateDone
	}
}

// Truncated reports whether at least one more accepted match existed beyond
// the emitted window.
func (c *Controller) Truncated() bool {
	return c.state == stateDoneTruncated
}

// Emitted returns how many matches were passed through.
func (c *Controller) Emitted() int {
	return c.emitted
}
