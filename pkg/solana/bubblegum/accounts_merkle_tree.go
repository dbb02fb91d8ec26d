package bubblegum

import (
	"crypto/ed25519"
	"fmt"
	"math/bits"

	"github.com/mr-tron/base58"
)

const (
	compressionAccountTypeMerkleTree = 1
	merkleTreeHeaderVersionV1        = 0

	MerkleTreeHeaderSize = (1 + // account_type
		1 + // header version
		4 + // max_buffer_size
		4 + // max_depth
		32 + // authority
		8 + // creation_slot
		6) // is_batch_initialized, padding
)

// MerkleTreeAccount is the header of a concurrent merkle tree account owned
// by the account compression program. The change log, rightmost proof and
// canopy bodies are only measured, not decoded.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/account-compression/programs/account-compression/src/state/concurrent_merkle_tree_header.rs
type MerkleTreeAccount struct {
	MaxBufferSize uint32
	MaxDepth      uint32
	Authority     ed25519.PublicKey
	CreationSlot  uint64
	CanopyDepth   uint32
}

// GetMerkleTreeAccountSize returns the size of a tree account allocated with
// the given dimensions.
func GetMerkleTreeAccountSize(maxDepth, maxBufferSize, canopyDepth uint32) int {
	return MerkleTreeHeaderSize + getConcurrentMerkleTreeSize(maxDepth, maxBufferSize) + getCanopySize(canopyDepth)
}

func (obj *MerkleTreeAccount) Unmarshal(data []byte) error {
	if len(data) < MerkleTreeHeaderSize {
		return ErrInvalidAccountData
	}

	var offset int

	var accountType, version uint8
	getUint8(data, &accountType, &offset)
	getUint8(data, &version, &offset)
	if accountType != compressionAccountTypeMerkleTree || version != merkleTreeHeaderVersionV1 {
		return ErrInvalidAccountData
	}

	getUint32(data, &obj.MaxBufferSize, &offset)
	getUint32(data, &obj.MaxDepth, &offset)
	getKey(data, &obj.Authority, &offset)
	getUint64(data, &obj.CreationSlot, &offset)
	offset += 6 // is_batch_initialized, padding

	if obj.MaxDepth == 0 || obj.MaxDepth > MaxTreeDepth {
		return ErrInvalidAccountData
	}

	treeSize := getConcurrentMerkleTreeSize(obj.MaxDepth, obj.MaxBufferSize)
	if len(data) < offset+treeSize {
		return ErrInvalidAccountData
	}

	canopyDepth, ok := getCanopyDepth(len(data) - offset - treeSize)
	if !ok || canopyDepth > obj.MaxDepth {
		return ErrInvalidAccountData
	}
	obj.CanopyDepth = canopyDepth

	return nil
}

// ProofLength is the number of proof nodes a transaction against the tree
// must supply. The remainder is stored on chain in the canopy.
func (obj *MerkleTreeAccount) ProofLength() int {
	return int(obj.MaxDepth - obj.CanopyDepth)
}

func (obj *MerkleTreeAccount) String() string {
	return fmt.Sprintf(
		"MerkleTreeAccount{max_buffer_size=%d,max_depth=%d,authority=%s,creation_slot=%d,canopy_depth=%d}",
		obj.MaxBufferSize,
		obj.MaxDepth,
		base58.Encode(obj.Authority),
		obj.CreationSlot,
		obj.CanopyDepth,
	)
}

func getConcurrentMerkleTreeSize(maxDepth, maxBufferSize uint32) int {
	changeLogSize := HashSize + // root
		int(maxDepth)*HashSize + // path
		4 + // index
		4 // padding

	rightmostProofSize := int(maxDepth)*HashSize + // proof
		HashSize + // leaf
		4 + // index
		4 // padding

	return 8 + // sequence_number
		8 + // active_index
		8 + // buffer_size
		int(maxBufferSize)*changeLogSize + // change_logs
		rightmostProofSize // rightmost_proof
}

// The canopy stores every node of the top canopyDepth levels below the root.
func getCanopySize(canopyDepth uint32) int {
	if canopyDepth == 0 {
		return 0
	}
	return ((1 << (canopyDepth + 1)) - 2) * HashSize
}

func getCanopyDepth(size int) (uint32, bool) {
	if size < 0 || size%HashSize != 0 {
		return 0, false
	}

	nodes := uint64(size/HashSize) + 2
	if nodes&(nodes-1) != 0 {
		return 0, false
	}

	return uint32(bits.TrailingZeros64(nodes)) - 1, true
}
