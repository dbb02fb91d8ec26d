package das

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/code-bubblegum/pkg/bubblegum"
	"github.com/code-payments/code-bubblegum/pkg/cache"
	"github.com/code-payments/code-bubblegum/pkg/merkletree"
	"github.com/code-payments/code-bubblegum/pkg/retry"
	"github.com/code-payments/code-bubblegum/pkg/retry/backoff"
	"github.com/code-payments/code-bubblegum/pkg/solana"
	bubblegum_program "github.com/code-payments/code-bubblegum/pkg/solana/bubblegum"
	"github.com/code-payments/code-bubblegum/pkg/sync"
)

const (
	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005

	assetTreeKeyPrefix = "das:tree:"
	treeShapeKeyPrefix = "das:shape:"
	lockStripes        = 64
)

var (
	ErrRateLimited   = errors.New("rate limited")
	ErrServiceError  = errors.New("service error")
	ErrTreeChanged   = errors.New("asset proof references a different tree")
	ErrStaleProof    = errors.New("asset proof does not match the current root")
	ErrAssetMismatch = errors.New("asset id does not match its tree and leaf")
	ErrInvalidTree   = errors.New("invalid merkle tree account")
)

var (
	retryBaseDelay = 250 * time.Millisecond
	retryMaxDelay  = 2 * time.Second
)

// Resolver is a bubblegum.LeafResolver backed by a Digital Asset Standard
// (DAS) capable JSON-RPC endpoint.
//
// Reference: https://developers.metaplex.com/das-api
type Resolver struct {
	log     *logrus.Entry
	client  jsonrpc.RPCClient
	solana  solana.Client
	retrier retry.Retrier

	cache cache.Cache
	ttl   time.Duration
	locks *sync.StripedLock
}

// NewResolver returns a Resolver using the specified endpoint. The tree
// owning each asset is remembered in c for ttl.
func NewResolver(endpoint string, c cache.Cache, ttl time.Duration) *Resolver {
	return NewResolverWithRPCOptions(endpoint, nil, c, ttl)
}

// NewResolverWithRPCOptions returns a Resolver configured with the specified
// RPC options.
func NewResolverWithRPCOptions(endpoint string, opts *jsonrpc.RPCClientOpts, c cache.Cache, ttl time.Duration) *Resolver {
	return &Resolver{
		log:    logrus.StandardLogger().WithField("type", "bubblegum/das"),
		client: jsonrpc.NewClientWithOpts(endpoint, opts),
		solana: solana.NewWithRPCOptions(endpoint, opts),
		retrier: retry.NewRetrier(
			retry.RetriableErrors(ErrRateLimited, ErrServiceError),
			retry.Limit(3),
			retry.BackoffWithJitter(backoff.BinaryExponential(retryBaseDelay), retryMaxDelay, 0.1),
		),
		cache: c,
		ttl:   ttl,
		locks: sync.NewStripedLock(lockStripes),
	}
}

type assetResponse struct {
	Id          string `json:"id"`
	Compression struct {
		Compressed  bool   `json:"compressed"`
		DataHash    string `json:"data_hash"`
		CreatorHash string `json:"creator_hash"`
		Tree        string `json:"tree"`
		LeafId      uint64 `json:"leaf_id"`
	} `json:"compression"`
	Ownership struct {
		Owner    string  `json:"owner"`
		Delegate *string `json:"delegate"`
	} `json:"ownership"`
}

type assetProofResponse struct {
	Root      string   `json:"root"`
	Proof     []string `json:"proof"`
	NodeIndex uint64   `json:"node_index"`
	TreeId    string   `json:"tree_id"`
}

// Resolve implements bubblegum.LeafResolver.Resolve.
func (r *Resolver) Resolve(ctx context.Context, assetId string, owner ed25519.PublicKey) (*bubblegum.LeafState, error) {
	log := r.log.WithFields(logrus.Fields{
		"method":   "Resolve",
		"asset_id": assetId,
	})

	if _, err := bubblegum.ParsePublicKey(assetId); err != nil {
		return nil, bubblegum.NewError(bubblegum.KindInvalidTransfer, "invalid asset id %q", assetId)
	}

	lock := r.locks.Get(assetId)
	lock.Lock()
	defer lock.Unlock()

	var asset assetResponse
	if err := r.call(ctx, &asset, "getAsset", assetId); err != nil {
		log.WithError(err).Warn("failed to get asset")
		return nil, err
	}
	if !asset.Compression.Compressed {
		return nil, bubblegum.NewError(bubblegum.KindInvalidTransfer, "asset %s is not compressed", assetId)
	}

	var proof assetProofResponse
	if err := r.call(ctx, &proof, "getAssetProof", assetId); err != nil {
		log.WithError(err).Warn("failed to get asset proof")
		return nil, err
	}

	if err := r.checkTree(assetId, asset.Compression.Tree, proof.TreeId); err != nil {
		log.WithError(err).Warn("failed to check asset tree")
		if bubblegum.KindOf(err) != bubblegum.KindUnknown {
			return nil, err
		}
		return nil, bubblegum.NewErrorFrom(bubblegum.KindRpcError, err)
	}

	leaf, err := toLeafState(assetId, &asset, &proof)
	if err != nil {
		return nil, bubblegum.NewErrorFrom(bubblegum.KindInvalidTransfer, err)
	}

	if err := verifyAssetId(leaf); err != nil {
		log.WithError(err).Warn("indexer served an asset from another leaf")
		return nil, bubblegum.NewErrorFrom(bubblegum.KindRpcError, err)
	}

	if err := verifyLeaf(leaf); err != nil {
		log.WithError(err).Warn("indexer served an inconsistent proof")
		return nil, bubblegum.NewErrorFrom(bubblegum.KindRpcError, err)
	}

	shape, err := r.getTreeShape(leaf.MerkleTree)
	if err != nil {
		log.WithError(err).Warn("failed to get merkle tree account")
		if bubblegum.KindOf(err) != bubblegum.KindUnknown {
			return nil, err
		}
		return nil, bubblegum.NewErrorFrom(bubblegum.KindRpcError, err)
	}
	if int(shape.maxDepth) != len(leaf.Proof) {
		return nil, bubblegum.NewErrorFrom(bubblegum.KindRpcError, errors.Wrapf(ErrInvalidTree, "depth %d, proof length %d", shape.maxDepth, len(leaf.Proof)))
	}

	// Nodes covered by the canopy are already stored on chain
	leaf.Proof = leaf.Proof[:shape.maxDepth-shape.canopyDepth]

	log.WithFields(logrus.Fields{
		"merkle_tree":  asset.Compression.Tree,
		"nonce":        leaf.Nonce,
		"canopy_depth": shape.canopyDepth,
		"proof_len":    len(leaf.Proof),
	}).Debug("resolved leaf state")

	return leaf, nil
}

// checkTree compares the proof's tree against the one remembered for the
// asset. A leaf never moves between trees, so a mismatch means the indexer
// served inconsistent data.
func (r *Resolver) checkTree(assetId, assetTree, proofTree string) error {
	if proofTree != "" && proofTree != assetTree {
		return errors.Wrapf(ErrTreeChanged, "%s != %s", proofTree, assetTree)
	}

	key := assetTreeKeyPrefix + assetId
	cached, ok, err := r.cache.Get(key)
	if err != nil {
		return bubblegum.NewErrorFrom(bubblegum.KindCacheError, err)
	}
	if ok && cached != assetTree {
		return errors.Wrapf(ErrTreeChanged, "%s != %s", assetTree, cached)
	}
	if !ok {
		if err := r.cache.Put(key, assetTree, r.ttl); err != nil {
			return bubblegum.NewErrorFrom(bubblegum.KindCacheError, err)
		}
	}
	return nil
}

type treeShape struct {
	maxDepth    uint32
	canopyDepth uint32
}

// getTreeShape returns the depth and canopy depth of a merkle tree. Both are
// fixed when the account is allocated, so they are remembered for the cache
// ttl.
func (r *Resolver) getTreeShape(tree ed25519.PublicKey) (*treeShape, error) {
	key := treeShapeKeyPrefix + base58.Encode(tree)

	cached, ok, err := r.cache.Get(key)
	if err != nil {
		return nil, bubblegum.NewErrorFrom(bubblegum.KindCacheError, err)
	}
	if ok {
		var shape treeShape
		if _, err := fmt.Sscanf(cached, "%d/%d", &shape.maxDepth, &shape.canopyDepth); err == nil {
			return &shape, nil
		}
	}

	info, err := r.solana.GetAccountInfo(tree, solana.CommitmentConfirmed)
	if err != nil {
		return nil, errors.Wrapf(err, "tree %s", base58.Encode(tree))
	}
	if !bytes.Equal(info.Owner, bubblegum_program.SPL_ACCOUNT_COMPRESSION_PROGRAM_ID) {
		return nil, errors.Wrapf(ErrInvalidTree, "tree %s is owned by %s", base58.Encode(tree), base58.Encode(info.Owner))
	}

	var account bubblegum_program.MerkleTreeAccount
	if err := account.Unmarshal(info.Data); err != nil {
		return nil, errors.Wrapf(ErrInvalidTree, "tree %s: %v", base58.Encode(tree), err)
	}

	shape := &treeShape{
		maxDepth:    account.MaxDepth,
		canopyDepth: account.CanopyDepth,
	}
	if err := r.cache.Put(key, fmt.Sprintf("%d/%d", shape.maxDepth, shape.canopyDepth), r.ttl); err != nil {
		return nil, bubblegum.NewErrorFrom(bubblegum.KindCacheError, err)
	}
	return shape, nil
}

// CachedTree returns the tree remembered for an asset, if any.
func (r *Resolver) CachedTree(assetId string) (string, bool, error) {
	return r.cache.Get(assetTreeKeyPrefix + assetId)
}

func (r *Resolver) call(ctx context.Context, out interface{}, method, assetId string) error {
	params := struct {
		Id string `json:"id"`
	}{
		Id: assetId,
	}

	_, err := r.retrier.Retry(ctx, func() error {
		err := r.client.CallFor(out, method, params)
		if err == nil {
			return nil
		}
		return r.handleRpcError(method, err)
	})
	if err == nil {
		return nil
	}

	if _, ok := err.(*jsonrpc.RPCError); ok {
		return bubblegum.NewErrorFrom(bubblegum.KindInvalidTransfer, errors.Wrapf(err, "%s() failed", method))
	}
	return bubblegum.NewErrorFrom(bubblegum.KindRpcError, errors.Wrapf(err, "%s() failed to send request", method))
}

func (r *Resolver) handleRpcError(method string, err error) error {
	rpcErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		return err
	}
	if rpcErr.Code == 429 {
		r.log.WithField("method", method).Warn("rate limited")
		return ErrRateLimited
	}
	if rpcErr.Code >= 500 || rpcErr.Code == rpcNodeUnhealthyCode {
		return ErrServiceError
	}

	return err
}

func toLeafState(assetId string, asset *assetResponse, proof *assetProofResponse) (*bubblegum.LeafState, error) {
	tree, err := decodeKey("tree", asset.Compression.Tree)
	if err != nil {
		return nil, err
	}
	owner, err := decodeKey("owner", asset.Ownership.Owner)
	if err != nil {
		return nil, err
	}

	delegate := owner
	if asset.Ownership.Delegate != nil && *asset.Ownership.Delegate != "" {
		delegate, err = decodeKey("delegate", *asset.Ownership.Delegate)
		if err != nil {
			return nil, err
		}
	}

	root, err := decodeHash("root", proof.Root)
	if err != nil {
		return nil, err
	}
	dataHash, err := decodeHash("data_hash", asset.Compression.DataHash)
	if err != nil {
		return nil, err
	}
	creatorHash, err := decodeHash("creator_hash", asset.Compression.CreatorHash)
	if err != nil {
		return nil, err
	}

	nodes := make([]ed25519.PublicKey, len(proof.Proof))
	for i, node := range proof.Proof {
		if nodes[i], err = decodeKey("proof", node); err != nil {
			return nil, err
		}
	}

	return &bubblegum.LeafState{
		AssetId:     assetId,
		MerkleTree:  tree,
		Owner:       owner,
		Delegate:    delegate,
		Root:        root,
		DataHash:    dataHash,
		CreatorHash: creatorHash,
		Nonce:       asset.Compression.LeafId,
		Index:       uint32(asset.Compression.LeafId),
		Proof:       nodes,
	}, nil
}

// verifyAssetId checks the asset id is the one derived from the leaf's tree
// and nonce.
func verifyAssetId(leaf *bubblegum.LeafState) error {
	expected, _, err := bubblegum_program.GetAssetId(&bubblegum_program.GetAssetIdArgs{
		MerkleTree: leaf.MerkleTree,
		Nonce:      leaf.Nonce,
	})
	if err != nil {
		return errors.Wrap(err, "failed to derive asset id")
	}
	if base58.Encode(expected) != leaf.AssetId {
		return errors.Wrapf(ErrAssetMismatch, "%s != %s", leaf.AssetId, base58.Encode(expected))
	}
	return nil
}

// verifyLeaf recomputes the leaf node from the asset's fields and checks the
// proof folds it into the reported root.
func verifyLeaf(leaf *bubblegum.LeafState) error {
	id, err := base58.Decode(leaf.AssetId)
	if err != nil {
		return errors.Wrap(err, "invalid asset id")
	}

	schema := &bubblegum_program.LeafSchema{
		Id:          id,
		Owner:       leaf.Owner,
		Delegate:    leaf.Delegate,
		Nonce:       leaf.Nonce,
		DataHash:    leaf.DataHash,
		CreatorHash: leaf.CreatorHash,
	}

	proof := make([]merkletree.Node, len(leaf.Proof))
	for i, node := range leaf.Proof {
		copy(proof[i][:], node)
	}

	if !merkletree.Verify(merkletree.Node(leaf.Root), merkletree.Node(schema.Hash()), leaf.Index, proof) {
		return errors.Wrapf(ErrStaleProof, "root %s", leaf.Root)
	}
	return nil
}

func decodeKey(field, value string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", field)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid %s length: %d", field, len(decoded))
	}
	return decoded, nil
}

func decodeHash(field, value string) (hash bubblegum_program.Hash, err error) {
	decoded, err := decodeKey(field, value)
	if err != nil {
		return hash, err
	}
	copy(hash[:], decoded)
	return hash, nil
}
