package services

import (
	"context"
	"fmt"
	"time"

	"crm-ledger/internal/repositories"
)

// DefaultInvoicePrefix starts every invoice number unless configured
const DefaultInvoicePrefix = "INV"

// InvoiceNumberer issues invoice numbers of the form PREFIX-YYYYMMDD-NNN,
// where NNN is a persisted per-day sequence starting at 001
type InvoiceNumberer struct {
	sequencer repositories.InvoiceSequencer
	prefix    string
}

// NewInvoiceNumberer creates an invoice numberer
func NewInvoiceNumberer(sequencer repositories.InvoiceSequencer, prefix string) *InvoiceNumberer {
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	return &InvoiceNumberer{
		sequencer: sequencer,
		prefix:    prefix,
	}
}

// Next returns the next invoice number for the day of at
func (n *InvoiceNumberer) Next(ctx context.Context, at time.Time) (string, error) {
	day := at.Format("20060102")

	seq, err := n.sequencer.NextInvoiceSequence(ctx, day)
	if err != nil {
		return "", fmt.Errorf("failed to allocate invoice number: %w", err)
	}

	return FormatInvoiceNumber(n.prefix, day, seq), nil
}

// FormatInvoiceNumber renders an invoice number
func FormatInvoiceNumber(prefix, day string, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, day, seq)
}
