package bubblegum

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-bubblegum/pkg/metrics"
	"github.com/code-payments/code-bubblegum/pkg/solana"
	bubblegum_program "github.com/code-payments/code-bubblegum/pkg/solana/bubblegum"
)

const (
	metricsStructName = "bubblegum.builder"

	createTreeConfigMetricName = "Bubblegum_CreateTreeConfig"
	mintV1MetricName           = "Bubblegum_MintV1"
	transferMetricName         = "Bubblegum_Transfer"

	failureEventName = "BubblegumFailure"
)

// Result is a signed and submitted transaction along with the addresses it
// was built against.
type Result struct {
	Transaction solana.Transaction
	Signature   solana.Signature
	Instruction solana.Instruction

	Payer      ed25519.PublicKey
	MerkleTree ed25519.PublicKey
	TreeConfig ed25519.PublicKey

	// Set by MintV1
	Metadata    *bubblegum_program.MetadataArgs
	DataHash    bubblegum_program.Hash
	CreatorHash bubblegum_program.Hash

	// Set by Transfer
	Leaf *LeafState
}

// Builder builds, signs and submits Bubblegum transactions. Every call
// generates its own ephemeral payer, so a Builder is safe for concurrent use.
type Builder struct {
	log      *logrus.Entry
	ledger   LedgerClient
	resolver LeafResolver
}

func NewBuilder(ledger LedgerClient, resolver LeafResolver) *Builder {
	return &Builder{
		log:      logrus.StandardLogger().WithField("type", "bubblegum/builder"),
		ledger:   ledger,
		resolver: resolver,
	}
}

// CreateTreeConfig initializes the config account of a newly generated merkle
// tree owned by authority.
func (b *Builder) CreateTreeConfig(ctx context.Context, maxDepth int32, maxBufferSize uint32, authority ed25519.PublicKey) (result *Result, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "CreateTreeConfig")
	defer tracer.End()
	defer recordOutcome(ctx, createTreeConfigMetricName, time.Now(), &err)

	log := b.log.WithFields(logrus.Fields{
		"method":          "CreateTreeConfig",
		"max_depth":       maxDepth,
		"max_buffer_size": maxBufferSize,
		"authority":       base58.Encode(authority),
	})

	if err := bubblegum_program.ValidateTreeSize(maxDepth, maxBufferSize); err != nil {
		tracer.OnError(err)
		return nil, NewErrorFrom(KindMerkleTreeError, err)
	}

	payerPub, payer, err := newKeypair()
	if err != nil {
		return nil, err
	}
	treePub, tree, err := newKeypair()
	if err != nil {
		return nil, err
	}

	treeConfig, _, err := bubblegum_program.GetTreeConfigAddress(&bubblegum_program.GetTreeConfigAddressArgs{
		MerkleTree: treePub,
	})
	if err != nil {
		return nil, NewErrorFrom(KindMerkleTreeError, err)
	}

	log = log.WithFields(logrus.Fields{
		"payer":       base58.Encode(payerPub),
		"merkle_tree": base58.Encode(treePub),
		"tree_config": base58.Encode(treeConfig),
	})

	public := true
	ixn := bubblegum_program.NewCreateTreeConfigInstruction(
		&bubblegum_program.CreateTreeConfigInstructionAccounts{
			TreeConfig: treeConfig,
			MerkleTree: treePub,
			Authority:  authority,
		},
		&bubblegum_program.CreateTreeConfigInstructionArgs{
			MaxDepth:      uint32(maxDepth),
			MaxBufferSize: maxBufferSize,
			Public:        &public,
		},
	)

	txn, sig, err := b.assemble(ctx, log, payerPub, []ed25519.PrivateKey{payer, tree}, ixn)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	tracer.AddAttributes(map[string]interface{}{
		"signature":   sig.ToBase58(),
		"merkle_tree": base58.Encode(treePub),
	})

	return &Result{
		Transaction: txn,
		Signature:   sig,
		Instruction: ixn,
		Payer:       payerPub,
		MerkleTree:  treePub,
		TreeConfig:  treeConfig,
	}, nil
}

// MintV1 mints a compressed asset into the collection's tree for recipient.
// The ephemeral payer is recorded as the sole verified creator.
func (b *Builder) MintV1(ctx context.Context, name, symbol, uri string, collection, recipient ed25519.PublicKey) (result *Result, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "MintV1")
	defer tracer.End()
	defer recordOutcome(ctx, mintV1MetricName, time.Now(), &err)

	log := b.log.WithFields(logrus.Fields{
		"method":     "MintV1",
		"name":       name,
		"symbol":     symbol,
		"uri":        uri,
		"collection": base58.Encode(collection),
		"recipient":  base58.Encode(recipient),
	})

	payerPub, payer, err := newKeypair()
	if err != nil {
		return nil, err
	}

	metadata := &bubblegum_program.MetadataArgs{
		Name:                 name,
		Symbol:               symbol,
		Uri:                  uri,
		SellerFeeBasisPoints: 0,
		PrimarySaleHappened:  false,
		IsMutable:            true,
		Collection: &bubblegum_program.Collection{
			Verified: false,
			Key:      collection,
		},
		TokenProgramVersion: bubblegum_program.TokenProgramVersionOriginal,
		Creators: []bubblegum_program.Creator{
			{
				Address:  payerPub,
				Verified: true,
				Share:    bubblegum_program.TotalCreatorShares,
			},
		},
	}
	if err := metadata.Validate(); err != nil {
		tracer.OnError(err)
		return nil, NewErrorFrom(KindInvalidMetadata, err)
	}

	treeConfig, _, err := bubblegum_program.GetTreeConfigAddress(&bubblegum_program.GetTreeConfigAddressArgs{
		MerkleTree: collection,
	})
	if err != nil {
		return nil, NewErrorFrom(KindMerkleTreeError, err)
	}

	log = log.WithFields(logrus.Fields{
		"payer":       base58.Encode(payerPub),
		"tree_config": base58.Encode(treeConfig),
	})

	ixn := bubblegum_program.NewMintV1Instruction(
		&bubblegum_program.MintV1InstructionAccounts{
			TreeConfig:   treeConfig,
			LeafOwner:    recipient,
			LeafDelegate: recipient,
			MerkleTree:   collection,
			TreeDelegate: recipient,
		},
		&bubblegum_program.MintV1InstructionArgs{
			Metadata: *metadata,
		},
	)

	txn, sig, err := b.assemble(ctx, log, payerPub, []ed25519.PrivateKey{payer}, ixn)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	tracer.AddAttributes(map[string]interface{}{
		"signature":   sig.ToBase58(),
		"merkle_tree": base58.Encode(collection),
	})

	return &Result{
		Transaction: txn,
		Signature:   sig,
		Instruction: ixn,
		Payer:       payerPub,
		MerkleTree:  collection,
		TreeConfig:  treeConfig,
		Metadata:    metadata,
		DataHash:    metadata.DataHash(),
		CreatorHash: metadata.CreatorHash(),
	}, nil
}

// Transfer moves the asset from owner to recipient, using the leaf state
// reported by the builder's LeafResolver.
func (b *Builder) Transfer(ctx context.Context, assetId string, owner, recipient ed25519.PublicKey) (result *Result, err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Transfer")
	defer tracer.End()
	defer recordOutcome(ctx, transferMetricName, time.Now(), &err)

	log := b.log.WithFields(logrus.Fields{
		"method":    "Transfer",
		"asset_id":  assetId,
		"owner":     base58.Encode(owner),
		"recipient": base58.Encode(recipient),
	})

	if len(assetId) == 0 {
		return nil, NewError(KindInvalidTransfer, "asset id is required")
	}

	leaf, err := b.resolver.Resolve(ctx, assetId, owner)
	if err != nil {
		log.WithError(err).Warn("failed to resolve leaf state")
		tracer.OnError(err)
		if KindOf(err) != KindUnknown {
			return nil, err
		}
		return nil, NewErrorFrom(KindInvalidTransfer, err)
	}
	if !bytes.Equal(leaf.Owner, owner) {
		return nil, NewError(KindInvalidTransfer, "asset %s is owned by %s, not %s", assetId, base58.Encode(leaf.Owner), base58.Encode(owner))
	}

	payerPub, payer, err := newKeypair()
	if err != nil {
		return nil, err
	}

	treeConfig, _, err := bubblegum_program.GetTreeConfigAddress(&bubblegum_program.GetTreeConfigAddressArgs{
		MerkleTree: leaf.MerkleTree,
	})
	if err != nil {
		return nil, NewErrorFrom(KindMerkleTreeError, err)
	}

	log = log.WithFields(logrus.Fields{
		"payer":       base58.Encode(payerPub),
		"merkle_tree": base58.Encode(leaf.MerkleTree),
		"tree_config": base58.Encode(treeConfig),
		"nonce":       leaf.Nonce,
		"index":       leaf.Index,
	})

	ixn := bubblegum_program.NewTransferInstruction(
		&bubblegum_program.TransferInstructionAccounts{
			TreeConfig:   treeConfig,
			LeafOwner:    leaf.Owner,
			LeafDelegate: leaf.Delegate,
			NewLeafOwner: recipient,
			MerkleTree:   leaf.MerkleTree,
			Proof:        leaf.Proof,
		},
		&bubblegum_program.TransferInstructionArgs{
			Root:        leaf.Root,
			DataHash:    leaf.DataHash,
			CreatorHash: leaf.CreatorHash,
			Nonce:       leaf.Nonce,
			Index:       leaf.Index,
		},
	)

	txn, sig, err := b.assemble(ctx, log, payerPub, []ed25519.PrivateKey{payer}, ixn)
	if err != nil {
		tracer.OnError(err)
		return nil, err
	}

	tracer.AddAttributes(map[string]interface{}{
		"signature":   sig.ToBase58(),
		"merkle_tree": base58.Encode(leaf.MerkleTree),
	})

	return &Result{
		Transaction: txn,
		Signature:   sig,
		Instruction: ixn,
		Payer:       payerPub,
		MerkleTree:  leaf.MerkleTree,
		TreeConfig:  treeConfig,
		Leaf:        leaf,
	}, nil
}

// assemble fetches a recent blockhash, signs and submits the instructions.
// Failures are reported as InvalidInstruction wrapping the original kind.
func (b *Builder) assemble(
	ctx context.Context,
	log *logrus.Entry,
	payer ed25519.PublicKey,
	signers []ed25519.PrivateKey,
	instructions ...solana.Instruction,
) (solana.Transaction, solana.Signature, error) {
	blockhash, err := b.ledger.GetRecentState(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to get recent blockhash")
		return solana.Transaction{}, solana.Signature{}, WrapInvalidInstruction(classify(KindNetworkError, err))
	}

	txn := solana.NewTransaction(payer, instructions...)
	txn.SetBlockhash(blockhash)

	if err := txn.Sign(signers...); err != nil {
		log.WithError(err).Warn("failed to sign transaction")
		return solana.Transaction{}, solana.Signature{}, WrapInvalidInstruction(NewErrorFrom(KindSerializationError, err))
	}
	if err := txn.Verify(); err != nil {
		log.WithError(err).Warn("assembled transaction is invalid")
		return solana.Transaction{}, solana.Signature{}, WrapInvalidInstruction(NewErrorFrom(KindSerializationError, err))
	}

	log.Debug("transaction created, sending")

	sig, err := b.ledger.Submit(ctx, txn)
	if err != nil {
		log.WithError(err).Warn("failed to send transaction")
		return solana.Transaction{}, solana.Signature{}, WrapInvalidInstruction(classify(KindTransactionError, err))
	}

	log.WithField("signature", sig.ToBase58()).Info("transaction sent")
	return txn, sig, nil
}

// classify keeps an existing classification, otherwise assigns kind.
func classify(kind Kind, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewErrorFrom(kind, err)
}

func recordOutcome(ctx context.Context, metricName string, start time.Time, err *error) {
	metrics.RecordDuration(ctx, metricName+"_Duration", time.Since(start))
	if *err != nil {
		metrics.RecordCount(ctx, metricName+"_Failure", 1)
		metrics.RecordEvent(ctx, failureEventName, map[string]interface{}{
			"operation": metricName,
			"kind":      KindOf(*err).String(),
			"root_kind": RootKind(*err).String(),
		})
		return
	}
	metrics.RecordCount(ctx, metricName+"_Success", 1)
}
