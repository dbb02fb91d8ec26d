package merkletree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"
)

const (
	NodeSize = 32

	// Deepest tree the account compression program can allocate.
	MaxDepth = 30
)

// Node is a leaf or inner node of an SPL concurrent merkle tree.
type Node [NodeSize]byte

var (
	ErrMerkleTreeFull = errors.New("merkle tree is full")
	ErrInvalidDepth   = errors.New("depth is invalid")
	ErrLeafNotFound   = errors.New("leaf not found")
)

// MerkleTree is a reference in-memory rendition of the tree maintained by the
// account compression program. Empty leaves are zero nodes and inner nodes are
// keccak256(left ‖ right). It's not terribly performant, but can be used to
// check proofs served by an indexer.
type MerkleTree struct {
	depth      uint8
	leaves     []Node
	zeroValues []Node // zeroValues[i] is the root of an empty subtree of height i
}

func New(depth uint8) (*MerkleTree, error) {
	if depth < 1 || depth > MaxDepth {
		return nil, ErrInvalidDepth
	}

	return &MerkleTree{
		depth:      depth,
		zeroValues: calculateZeroValues(depth),
	}, nil
}

// Append adds leaf at the next free index and returns that index.
func (t *MerkleTree) Append(leaf Node) (uint32, error) {
	if uint64(len(t.leaves)) >= uint64(1)<<t.depth {
		return 0, ErrMerkleTreeFull
	}

	t.leaves = append(t.leaves, leaf)
	return uint32(len(t.leaves) - 1), nil
}

// Replace overwrites the leaf at index, as a transfer does.
func (t *MerkleTree) Replace(index uint32, leaf Node) error {
	if int(index) >= len(t.leaves) {
		return ErrLeafNotFound
	}
	t.leaves[index] = leaf
	return nil
}

func (t *MerkleTree) GetRoot() Node {
	layer := t.leaves
	for i := 0; i < int(t.depth); i++ {
		layer = t.hashLayer(layer, i)
	}
	if len(layer) == 0 {
		return t.zeroValues[t.depth]
	}
	return layer[0]
}

func (t *MerkleTree) GetLeafCount() uint64 {
	return uint64(len(t.leaves))
}

func (t *MerkleTree) GetIndexForLeaf(leaf Node) (uint32, error) {
	for i := range t.leaves {
		if t.leaves[i] == leaf {
			return uint32(i), nil
		}
	}
	return 0, ErrLeafNotFound
}

// GetProof returns the sibling of every node on the path from the leaf at
// index to the root, starting at the leaf level.
func (t *MerkleTree) GetProof(index uint32) ([]Node, error) {
	if int(index) >= len(t.leaves) {
		return nil, ErrLeafNotFound
	}

	proof := make([]Node, t.depth)

	layer := t.leaves
	current := int(index)
	for i := 0; i < int(t.depth); i++ {
		sibling := current ^ 1
		if sibling < len(layer) {
			proof[i] = layer[sibling]
		} else {
			proof[i] = t.zeroValues[i]
		}

		layer = t.hashLayer(layer, i)
		current /= 2
	}

	return proof, nil
}

func (t *MerkleTree) String() string {
	var sb strings.Builder
	for i, leaf := range t.leaves {
		sb.WriteString(fmt.Sprintf("Leaf %d: %s\n", i, leaf))
	}
	sb.WriteString(fmt.Sprintf("Root: %s\n", t.GetRoot()))
	return sb.String()
}

func (t *MerkleTree) hashLayer(layer []Node, height int) []Node {
	next := make([]Node, 0, (len(layer)+1)/2)
	for i := 0; i < len(layer); i += 2 {
		right := t.zeroValues[height]
		if i+1 < len(layer) {
			right = layer[i+1]
		}
		next = append(next, hashLeftRight(layer[i], right))
	}
	return next
}

// EmptyRoot returns the root of a tree of the given depth with no leaves.
func EmptyRoot(depth uint8) Node {
	return calculateZeroValues(depth)[depth]
}

// ComputeRoot folds the proof into the root committed to by leaf at index.
func ComputeRoot(leaf Node, index uint32, proof []Node) Node {
	current := leaf
	for i, sibling := range proof {
		if (index>>uint(i))&1 == 0 {
			current = hashLeftRight(current, sibling)
		} else {
			current = hashLeftRight(sibling, current)
		}
	}
	return current
}

// Verify reports whether proof shows leaf at index is committed to by root.
func Verify(root, leaf Node, index uint32, proof []Node) bool {
	return ComputeRoot(leaf, index, proof) == root
}

func calculateZeroValues(depth uint8) []Node {
	zeros := make([]Node, depth+1)
	for i := 1; i <= int(depth); i++ {
		zeros[i] = hashLeftRight(zeros[i-1], zeros[i-1])
	}
	return zeros
}

func hashLeftRight(left, right Node) Node {
	h := sha3.NewLegacyKeccak256()
	h.Write(left[:])
	h.Write(right[:])

	var res Node
	copy(res[:], h.Sum(nil))
	return res
}

func (n Node) String() string {
	return base58.Encode(n[:])
}
