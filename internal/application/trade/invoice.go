package trade

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// InvoiceNumberGenerator produces candidate invoice numbers.
// A candidate is not guaranteed unique; the unique constraint on the stored
// invoice number is the final arbiter and the engine retries on collision.
type InvoiceNumberGenerator interface {
	Next(ctx context.Context, at time.Time) (string, error)
}

// FormatInvoiceNumber renders PREFIX-YYYYMMDDHHMMSS-NNNN
func FormatInvoiceNumber(prefix string, at time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, at.Format("20060102150405"), seq%10000)
}

// SequenceInvoiceGenerator is an in-process monotonic generator. The counter
// is seeded from the clock so restarts within the same second are unlikely
// to reuse a suffix.
type SequenceInvoiceGenerator struct {
	prefix string
	seq    atomic.Int64
}

// NewSequenceInvoiceGenerator creates an in-process generator
func NewSequenceInvoiceGenerator(prefix string) *SequenceInvoiceGenerator {
	g := &SequenceInvoiceGenerator{prefix: prefix}
	g.seq.Store(time.Now().UnixNano() / int64(time.Millisecond) % 10000)
	return g
}

// Next returns the next candidate for at
func (g *SequenceInvoiceGenerator) Next(_ context.Context, at time.Time) (string, error) {
	return FormatInvoiceNumber(g.prefix, at, g.seq.Add(1)), nil
}

var _ InvoiceNumberGenerator = (*SequenceInvoiceGenerator)(nil)
