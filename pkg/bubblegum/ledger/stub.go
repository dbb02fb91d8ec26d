package ledger

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-bubblegum/pkg/bubblegum"
	"github.com/code-payments/code-bubblegum/pkg/solana"
)

type stubClient struct {
	log *logrus.Entry
}

// NewStubClient returns a LedgerClient that never touches the network. It
// hands out the zero blockhash and reports the transaction's own signature as
// submitted.
func NewStubClient() bubblegum.LedgerClient {
	return &stubClient{
		log: logrus.StandardLogger().WithField("type", "bubblegum/ledger/stub"),
	}
}

// GetRecentState implements bubblegum.LedgerClient.GetRecentState.
func (c *stubClient) GetRecentState(_ context.Context) (solana.Blockhash, error) {
	c.log.Debug("using default blockhash")
	return solana.Blockhash{}, nil
}

// Submit implements bubblegum.LedgerClient.Submit.
func (c *stubClient) Submit(_ context.Context, txn solana.Transaction) (solana.Signature, error) {
	sig := txn.Signature()
	c.log.WithField("signature", sig.ToBase58()).Debug("skipping submission")
	return sig, nil
}
