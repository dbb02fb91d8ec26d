package ledger

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/code-bubblegum/pkg/bubblegum"
	"github.com/code-payments/code-bubblegum/pkg/rate"
	"github.com/code-payments/code-bubblegum/pkg/retry"
	"github.com/code-payments/code-bubblegum/pkg/retry/backoff"
	"github.com/code-payments/code-bubblegum/pkg/solana"
	bubblegum_program "github.com/code-payments/code-bubblegum/pkg/solana/bubblegum"
)

const (
	submitRateLimitKey = "submit"
	maxSubmitAttempts  = 3
	maxStateAttempts   = 3
)

var (
	submitRetryBaseDelay = 500 * time.Millisecond
	submitRetryMaxDelay  = 5 * time.Second

	stateRetryBaseDelay = 250 * time.Millisecond
	stateRetryMaxDelay  = 2 * time.Second
)

type rpcClient struct {
	log        *logrus.Entry
	client     solana.Client
	limiter    rate.Limiter
	commitment solana.Commitment

	stateRetrier  retry.Retrier
	submitRetrier retry.Retrier
}

// NewRPCClient returns a LedgerClient backed by a Solana JSON-RPC node.
// Submissions wait on the limiter and are retried when the cluster reports a
// transient failure.
func NewRPCClient(client solana.Client, limiter rate.Limiter, commitment solana.Commitment) bubblegum.LedgerClient {
	return &rpcClient{
		log:        logrus.StandardLogger().WithField("type", "bubblegum/ledger/rpc"),
		client:     client,
		limiter:    limiter,
		commitment: commitment,
		stateRetrier: retry.NewRetrier(
			retry.RetriableFunc(isTransportFailure),
			retry.Limit(maxStateAttempts),
			retry.BackoffWithJitter(backoff.BinaryExponential(stateRetryBaseDelay), stateRetryMaxDelay, 0.1),
		),
		submitRetrier: retry.NewRetrier(
			retry.RetriableFunc(isTransient),
			retry.Limit(maxSubmitAttempts),
			retry.Backoff(backoff.BinaryExponential(submitRetryBaseDelay), submitRetryMaxDelay),
		),
	}
}

// GetRecentState implements bubblegum.LedgerClient.GetRecentState.
func (c *rpcClient) GetRecentState(ctx context.Context) (solana.Blockhash, error) {
	var blockhash solana.Blockhash
	attempts, err := c.stateRetrier.Retry(ctx, func() error {
		var err error
		blockhash, err = c.client.GetLatestBlockhash()
		return err
	})
	if err != nil {
		c.log.WithError(err).WithField("attempts", attempts).Warn("failed to get latest blockhash")
		return solana.Blockhash{}, classify(bubblegum.KindNetworkError, err)
	}
	return blockhash, nil
}

// Submit implements bubblegum.LedgerClient.Submit.
func (c *rpcClient) Submit(ctx context.Context, txn solana.Transaction) (solana.Signature, error) {
	log := c.log.WithField("signature", txn.Signature().ToBase58())

	if err := c.limiter.Wait(ctx, submitRateLimitKey); err != nil {
		return solana.Signature{}, bubblegum.NewErrorFrom(bubblegum.KindNetworkError, errors.Wrap(err, "submission rate limited"))
	}

	var sig solana.Signature
	attempts, err := c.submitRetrier.Retry(ctx, func() error {
		var err error
		sig, err = c.client.SubmitTransaction(txn, c.commitment)
		return err
	})
	if err != nil {
		log.WithError(err).WithField("attempts", attempts).Warn("failed to submit transaction")
		return solana.Signature{}, classify(bubblegum.KindTransactionError, err)
	}

	log.WithField("attempts", attempts).Debug("transaction submitted")
	return sig, nil
}

func isTransient(err error) bool {
	var txErr *solana.TransactionError
	if errors.As(err, &txErr) {
		return txErr.ErrorKey().IsTransient()
	}
	return false
}

// isTransportFailure reports whether the request never got an answer from
// the node. Errors the node answered with, including rate limiting and
// unhealthy responses the client already retried, are final.
func isTransportFailure(err error) bool {
	var txErr *solana.TransactionError
	if errors.As(err, &txErr) {
		return false
	}

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return false
	}

	return !errors.Is(err, solana.ErrRateLimited) && !errors.Is(err, solana.ErrServiceError)
}

// classify maps client errors onto the boundary taxonomy. Failures reported
// by the cluster are transaction errors, failures of the RPC node itself are
// RPC errors and anything else is reported as fallback.
func classify(fallback bubblegum.Kind, err error) *bubblegum.Error {
	var txErr *solana.TransactionError
	if errors.As(err, &txErr) {
		if code, ok := bubblegum_program.GetProgramError(err); ok {
			return bubblegum.NewError(bubblegum.KindTransactionError, "%s (%s)", err.Error(), code.Error())
		}
		return bubblegum.NewErrorFrom(bubblegum.KindTransactionError, err)
	}

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) || errors.Is(err, solana.ErrRateLimited) || errors.Is(err, solana.ErrServiceError) {
		return bubblegum.NewErrorFrom(bubblegum.KindRpcError, err)
	}

	return bubblegum.NewErrorFrom(fallback, err)
}
