package memory

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-bubblegum/pkg/solana"
)

func newSignedTransaction(t *testing.T, bh solana.Blockhash) solana.Transaction {
	payerPub, payer, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	program, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	txn := solana.NewTransaction(payerPub, solana.NewInstruction(program, []byte{1}))
	txn.SetBlockhash(bh)
	require.NoError(t, txn.Sign(payer))
	return txn
}

func TestLedger_HappyPath(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()

	first, err := l.GetRecentState(ctx)
	require.NoError(t, err)
	second, err := l.GetRecentState(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	txn := newSignedTransaction(t, first)
	sig, err := l.Submit(ctx, txn)
	require.NoError(t, err)
	assert.Equal(t, txn.Signature(), sig)

	submitted := l.Submitted()
	require.Len(t, submitted, 1)
	assert.Equal(t, txn.Marshal(), submitted[0].Marshal())

	// A fresh ledger hands out the same sequence
	other := NewLedger()
	replayed, err := other.GetRecentState(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, replayed)
}

func TestLedger_RejectsInvalidTransactions(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()

	// Unknown blockhash
	_, err := l.Submit(ctx, newSignedTransaction(t, solana.Blockhash{1}))
	var txErr *solana.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, solana.TransactionErrorBlockhashNotFound, txErr.ErrorKey())

	// Missing signature
	bh, err := l.GetRecentState(ctx)
	require.NoError(t, err)
	txn := newSignedTransaction(t, bh)
	txn.Signatures[0] = solana.Signature{}
	_, err = l.Submit(ctx, txn)
	assert.True(t, errors.Is(err, solana.ErrMissingSignature))

	assert.Empty(t, l.Submitted())
}

func TestLedger_InjectedFailures(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()

	l.SetStateError(errors.New("state unavailable"))
	_, err := l.GetRecentState(ctx)
	assert.EqualError(t, err, "state unavailable")

	l.SetStateError(nil)
	bh, err := l.GetRecentState(ctx)
	require.NoError(t, err)

	l.SetSubmitError(errors.New("submit failed"))
	_, err = l.Submit(ctx, newSignedTransaction(t, bh))
	assert.EqualError(t, err, "submit failed")
	assert.Empty(t, l.Submitted())

	l.Reset()
	bh, err = l.GetRecentState(ctx)
	require.NoError(t, err)
	_, err = l.Submit(ctx, newSignedTransaction(t, bh))
	assert.NoError(t, err)
}
