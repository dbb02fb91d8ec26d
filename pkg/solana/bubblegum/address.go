package bubblegum

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/code-payments/code-bubblegum/pkg/solana"
)

var (
	AssetPrefix = []byte("asset")
)

type GetTreeConfigAddressArgs struct {
	MerkleTree ed25519.PublicKey
}

// GetTreeConfigAddress derives the tree config (authority) account for a
// merkle tree. The tree key is the only seed.
func GetTreeConfigAddress(args *GetTreeConfigAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		args.MerkleTree,
	)
}

type GetAssetIdArgs struct {
	MerkleTree ed25519.PublicKey
	Nonce      uint64
}

func GetAssetId(args *GetAssetIdArgs) (ed25519.PublicKey, uint8, error) {
	nonce := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonce, args.Nonce)

	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		AssetPrefix,
		args.MerkleTree,
		nonce,
	)
}
