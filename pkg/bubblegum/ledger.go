package bubblegum

import (
	"context"

	"github.com/code-payments/code-bubblegum/pkg/solana"
)

// LedgerClient supplies recent network state and submits signed
// transactions. Implementations live in the ledger package.
type LedgerClient interface {
	// GetRecentState returns a recent blockhash to build transactions against.
	GetRecentState(ctx context.Context) (solana.Blockhash, error)

	// Submit sends a signed transaction and returns its signature.
	Submit(ctx context.Context, txn solana.Transaction) (solana.Signature, error)
}
