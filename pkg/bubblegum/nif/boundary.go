package nif

import (
	"context"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
	xrate "golang.org/x/time/rate"

	"github.com/code-payments/code-bubblegum/pkg/bubblegum"
	"github.com/code-payments/code-bubblegum/pkg/bubblegum/das"
	"github.com/code-payments/code-bubblegum/pkg/bubblegum/ledger"
	"github.com/code-payments/code-bubblegum/pkg/cache"
	"github.com/code-payments/code-bubblegum/pkg/metrics"
	"github.com/code-payments/code-bubblegum/pkg/rate"
	"github.com/code-payments/code-bubblegum/pkg/solana"
)

const (
	ClearCacheSuccess = "Cache cleared successfully"
)

// Boundary exposes the builders to a host runtime using only string and
// integer arguments. Every call is synchronous and independent of the others.
type Boundary struct {
	log     *logrus.Entry
	builder *bubblegum.Builder
	cache   cache.Cache
	app     *newrelic.Application
}

// New wires a Boundary from config. The cache is shared with the DAS resolver
// when one is configured.
func New(config *Config, app *newrelic.Application) *Boundary {
	log := logrus.StandardLogger().WithField("type", "bubblegum/nif")

	c := cache.NewCache(config.CacheCapacity)

	var ledgerClient bubblegum.LedgerClient
	if endpoint := config.rpcEndpoint(); len(endpoint) > 0 {
		var limiter rate.Limiter = &rate.NoLimiter{}
		if config.SubmitRateLimit > 0 {
			limiter = rate.NewLocalRateLimiter(xrate.Limit(config.SubmitRateLimit))
		}

		ledgerClient = ledger.NewRPCClient(solana.New(endpoint), limiter, solana.CommitmentFromString(config.Commitment))
		log = log.WithField("rpc_endpoint", endpoint)
	} else {
		ledgerClient = ledger.NewStubClient()
		log.Info("no rpc endpoint configured, transactions will not be submitted")
	}

	var resolver bubblegum.LeafResolver
	if len(config.DASEndpoint) > 0 {
		resolver = das.NewResolver(config.DASEndpoint, c, config.AssetTreeCacheTTL)
	} else {
		resolver = bubblegum.NewPlaceholderResolver()
		log.Info("no das endpoint configured, transfers will use placeholder leaf state")
	}

	return NewWithDependencies(ledgerClient, resolver, c, app)
}

// NewWithDependencies returns a Boundary over explicitly provided
// collaborators.
func NewWithDependencies(ledgerClient bubblegum.LedgerClient, resolver bubblegum.LeafResolver, c cache.Cache, app *newrelic.Application) *Boundary {
	return &Boundary{
		log:     logrus.StandardLogger().WithField("type", "bubblegum/nif"),
		builder: bubblegum.NewBuilder(ledgerClient, resolver),
		cache:   c,
		app:     app,
	}
}

// CreateTreeConfig returns the base58 signature of the submitted create tree
// transaction.
func (b *Boundary) CreateTreeConfig(maxDepth int32, maxBufferSize uint32, authority string) (string, *bubblegum.Failure) {
	ctx, log, end := b.begin("CreateTreeConfig")
	defer end()

	authorityKey, err := bubblegum.ParsePublicKey(authority)
	if err != nil {
		return b.fail(log, err)
	}

	result, err := b.builder.CreateTreeConfig(ctx, maxDepth, maxBufferSize, authorityKey)
	if err != nil {
		return b.fail(log, err)
	}
	return result.Signature.ToBase58(), nil
}

// MintV1 returns the base58 signature of the submitted mint transaction.
func (b *Boundary) MintV1(name, symbol, uri, collection, recipient string) (string, *bubblegum.Failure) {
	ctx, log, end := b.begin("MintV1")
	defer end()

	collectionKey, err := bubblegum.ParsePublicKey(collection)
	if err != nil {
		return b.fail(log, err)
	}
	recipientKey, err := bubblegum.ParsePublicKey(recipient)
	if err != nil {
		return b.fail(log, err)
	}

	result, err := b.builder.MintV1(ctx, name, symbol, uri, collectionKey, recipientKey)
	if err != nil {
		return b.fail(log, err)
	}
	return result.Signature.ToBase58(), nil
}

// Transfer returns the base58 signature of the submitted transfer
// transaction.
func (b *Boundary) Transfer(assetId, owner, recipient string) (string, *bubblegum.Failure) {
	ctx, log, end := b.begin("Transfer")
	defer end()

	ownerKey, err := bubblegum.ParsePublicKey(owner)
	if err != nil {
		return b.fail(log, err)
	}
	recipientKey, err := bubblegum.ParsePublicKey(recipient)
	if err != nil {
		return b.fail(log, err)
	}

	result, err := b.builder.Transfer(ctx, assetId, ownerKey, recipientKey)
	if err != nil {
		return b.fail(log, err)
	}
	return result.Signature.ToBase58(), nil
}

// ClearCache removes every cache entry.
func (b *Boundary) ClearCache() (string, *bubblegum.Failure) {
	_, log, end := b.begin("ClearCache")
	defer end()

	if err := b.cache.Clear(); err != nil {
		return b.fail(log, bubblegum.NewErrorFrom(bubblegum.KindCacheError, err))
	}
	return ClearCacheSuccess, nil
}

// Cache returns the cache shared by the boundary's components.
func (b *Boundary) Cache() cache.Cache {
	return b.cache
}

func (b *Boundary) begin(method string) (context.Context, *logrus.Entry, func()) {
	log := b.log.WithFields(logrus.Fields{
		"method":     method,
		"request_id": uuid.New().String(),
	})

	ctx, end := metrics.StartTransaction(metrics.WithApplication(context.Background(), b.app), method)
	return ctx, log, end
}

func (b *Boundary) fail(log *logrus.Entry, err error) (string, *bubblegum.Failure) {
	failure := bubblegum.Translate(err)
	log.WithField("failure", failure.Error()).Warn("call failed")
	return "", failure
}
