package bubblegum

import (
	"context"
	"crypto/ed25519"

	bubblegum_program "github.com/code-payments/code-bubblegum/pkg/solana/bubblegum"
)

// LeafState is the on-chain state of a compressed asset needed to prove its
// leaf in a transfer.
type LeafState struct {
	AssetId     string
	MerkleTree  ed25519.PublicKey
	Owner       ed25519.PublicKey
	Delegate    ed25519.PublicKey
	Root        bubblegum_program.Hash
	DataHash    bubblegum_program.Hash
	CreatorHash bubblegum_program.Hash
	Nonce       uint64
	Index       uint32
	Proof       []ed25519.PublicKey
}

// LeafResolver looks up the current leaf state of an asset.
type LeafResolver interface {
	Resolve(ctx context.Context, assetId string, owner ed25519.PublicKey) (*LeafState, error)
}

// PlaceholderResolver does not look anything up. It returns a freshly
// generated tree with zero root, hashes, nonce and index, so transfers built
// from it will not verify on-chain.
type PlaceholderResolver struct{}

func NewPlaceholderResolver() LeafResolver {
	return &PlaceholderResolver{}
}

// Resolve implements LeafResolver.Resolve.
func (r *PlaceholderResolver) Resolve(_ context.Context, assetId string, owner ed25519.PublicKey) (*LeafState, error) {
	tree, _, err := newKeypair()
	if err != nil {
		return nil, err
	}

	return &LeafState{
		AssetId:    assetId,
		MerkleTree: tree,
		Owner:      owner,
		Delegate:   owner,
	}, nil
}
