package brackets

import (
	"context"
	"time"

	"github.com/cptaffe/acme-brackets/logger"
	"go.uber.org/zap"
)

// Op names a governed operation for budgets, logs and metrics.
type Op uint8

const (
	OpScan      Op = iota // full-document nesting scan
	OpSelection           // enclosing-pair resolution for a selection or caret
)

func (op Op) String() string {
	switch op {
	case OpScan:
		return "scan"
	case OpSelection:
		return "selection"
	}
	return "unknown"
}

// Limits bounds the cost of hot-path operations.
type Limits struct {
	// MaxDocumentSize is the largest document, in runes, that is processed.
	MaxDocumentSize int
	// ScanBudget is the expected upper bound of one OpScan.
	ScanBudget time.Duration
	// SelectionBudget is the expected upper bound of one OpSelection.
	SelectionBudget time.Duration
}

// DefaultLimits returns the limits used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		MaxDocumentSize: 500_000,
		ScanBudget:      5 * time.Millisecond,
		SelectionBudget: 2 * time.Millisecond,
	}
}

// Governor applies Limits.  Budgets are observational: an operation that
// runs over is reported, not aborted, since scans cannot be interrupted.
// Callers that need a hard bound check DocumentSafe before starting.
type Governor struct {
	limits  Limits
	metrics *Metrics
}

// NewGovernor returns a Governor enforcing l and reporting to m (may be nil).
func NewGovernor(l Limits, m *Metrics) *Governor {
	return &Governor{limits: l, metrics: m}
}

// Limits returns the limits g enforces.
func (g *Governor) Limits() Limits { return g.limits }

// DocumentSafe reports whether a document of length runes may be processed.
// An unsafe document should be skipped quietly; it is not an error.
func (g *Governor) DocumentSafe(length int) bool {
	if length <= g.limits.MaxDocumentSize {
		return true
	}
	g.metrics.skipped()
	return false
}

func (g *Governor) budget(op Op) time.Duration {
	if op == OpSelection {
		return g.limits.SelectionBudget
	}
	return g.limits.ScanBudget
}

// Timed runs fn, timing it against op's budget.  An overrun is logged at
// warn level through the logger in ctx and counted; fn's result is returned
// regardless.  If fn panics the panic is logged and Timed returns the zero
// value and false.
func Timed[T any](ctx context.Context, g *Governor, op Op, fn func() T) (result T, ok bool) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.L(ctx).Error("operation panicked", zap.Stringer("op", op), zap.Any("panic", r))
			g.metrics.panicked(op)
			var zero T
			result, ok = zero, false
		}
	}()

	result = fn()
	elapsed := time.Since(start)
	budget := g.budget(op)
	overrun := budget > 0 && elapsed > budget
	if overrun {
		logger.L(ctx).Warn("operation exceeded budget",
			zap.Stringer("op", op), zap.Duration("took", elapsed), zap.Duration("budget", budget))
	}
	g.metrics.observe(op, elapsed.Seconds(), overrun)
	return result, true
}

// Measure runs fn and returns its result with the wall time it took.
func Measure[T any](fn func() T) (T, time.Duration) {
	start := time.Now()
	v := fn()
	return v, time.Since(start)
}
