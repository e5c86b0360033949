// Package safety bounds the cost and the output of a processing block:
// iteration caps with a wall-clock abort, a last-resort output scrub and a
// soft-knee limiter.
package safety

import (
	"time"
)

// CheckInterval is how many samples pass between wall-clock checks.
const CheckInterval = 64

// Budget limits one block's work. The zero value never aborts on time.
type Budget struct {
	limit   time.Duration
	maxIter int
	now     func() time.Time

	start   time.Time
	cap     int
	aborted bool
}

// BudgetOption configures a Budget.
type BudgetOption func(*Budget)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) BudgetOption {
	return func(b *Budget) { b.now = now }
}

// WithMaxIterations sets the hard cap on samples per block regardless of the
// requested block length.
func WithMaxIterations(n int) BudgetOption {
	return func(b *Budget) { b.maxIter = n }
}

// NewBudget returns a budget aborting a block after limit. limit <= 0
// disables the time check.
func NewBudget(limit time.Duration, opts ...BudgetOption) *Budget {
	b := &Budget{limit: limit, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Limit returns the wall-clock limit.
func (b *Budget) Limit() time.Duration { return b.limit }

// Begin starts a block of n samples and returns the iteration bound for the
// sample loop.
func (b *Budget) Begin(n int) int {
	b.aborted = false
	b.cap = n

	if b.maxIter > 0 && b.cap > b.maxIter {
		b.cap = b.maxIter
	}

	if b.limit > 0 {
		b.start = b.now()
	}

	return b.cap
}

// Continue reports whether sample i may be processed. The clock is read on
// every CheckInterval-th sample; once the limit is exceeded the rest of the
// block is refused.
func (b *Budget) Continue(i int) bool {
	if b.aborted {
		return false
	}

	if i >= b.cap {
		b.aborted = true
		return false
	}

	if b.limit > 0 && i > 0 && i%CheckInterval == 0 && b.now().Sub(b.start) > b.limit {
		b.aborted = true
		return false
	}

	return true
}

// Aborted reports whether the current block stopped early.
func (b *Budget) Aborted() bool { return b.aborted }
