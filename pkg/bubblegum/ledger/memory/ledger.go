package memory

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/code-payments/code-bubblegum/pkg/solana"
)

// Ledger is a deterministic in-memory ledger. Blockhashes advance by one on
// every GetRecentState call and submitted transactions are recorded.
type Ledger struct {
	mu        sync.Mutex
	slot      uint64
	submitted []solana.Transaction

	stateErr  error
	submitErr error
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// GetRecentState implements bubblegum.LedgerClient.GetRecentState.
func (l *Ledger) GetRecentState(_ context.Context) (solana.Blockhash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stateErr != nil {
		return solana.Blockhash{}, l.stateErr
	}

	l.slot++
	return blockhashForSlot(l.slot), nil
}

// Submit implements bubblegum.LedgerClient.Submit. The transaction must be
// fully signed over a blockhash this ledger handed out.
func (l *Ledger) Submit(_ context.Context, txn solana.Transaction) (solana.Signature, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.submitErr != nil {
		return solana.Signature{}, l.submitErr
	}

	if err := txn.Verify(); err != nil {
		return solana.Signature{}, err
	}
	if !l.isKnownBlockhash(txn.Message.RecentBlockhash) {
		return solana.Signature{}, solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound)
	}

	l.submitted = append(l.submitted, txn)
	return txn.Signature(), nil
}

// Submitted returns the transactions accepted so far, in order.
func (l *Ledger) Submitted() []solana.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := make([]solana.Transaction, len(l.submitted))
	copy(res, l.submitted)
	return res
}

// SetStateError makes GetRecentState fail with err until cleared with nil.
func (l *Ledger) SetStateError(err error) {
	l.mu.Lock()
	l.stateErr = err
	l.mu.Unlock()
}

// SetSubmitError makes Submit fail with err until cleared with nil.
func (l *Ledger) SetSubmitError(err error) {
	l.mu.Lock()
	l.submitErr = err
	l.mu.Unlock()
}

func (l *Ledger) Reset() {
	l.mu.Lock()
	l.slot = 0
	l.submitted = nil
	l.stateErr = nil
	l.submitErr = nil
	l.mu.Unlock()
}

func (l *Ledger) isKnownBlockhash(bh solana.Blockhash) bool {
	for slot := uint64(1); slot <= l.slot; slot++ {
		if blockhashForSlot(slot) == bh {
			return true
		}
	}
	return false
}

func blockhashForSlot(slot uint64) solana.Blockhash {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], slot)
	return solana.Blockhash(sha256.Sum256(buf[:]))
}
