// Package events publishes market transaction changes to other systems.
package events

import (
	"context"

	"github.com/go-petr/market-ledger/internal/domain"
)

// Publisher delivers transaction events.
type Publisher interface {
	Publish(ctx context.Context, event domain.TransactionEvent) error
	Close() error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, domain.TransactionEvent) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }
