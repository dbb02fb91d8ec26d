package merkletree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func testLeaf(i int) Node {
	var leaf Node
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(fmt.Sprintf("leaf%d", i)))
	copy(leaf[:], h.Sum(nil))
	return leaf
}

func TestMerkleTree_InvalidDepth(t *testing.T) {
	_, err := New(0)
	assert.Equal(t, ErrInvalidDepth, err)

	_, err = New(MaxDepth + 1)
	assert.Equal(t, ErrInvalidDepth, err)
}

func TestMerkleTree_EmptyRoot(t *testing.T) {
	tree, err := New(3)
	require.NoError(t, err)
	assert.Equal(t, EmptyRoot(3), tree.GetRoot())

	var zero Node
	level1 := hashLeftRight(zero, zero)
	level2 := hashLeftRight(level1, level1)
	assert.Equal(t, hashLeftRight(level2, level2), EmptyRoot(3))
}

func TestMerkleTree_PositionalHashing(t *testing.T) {
	tree, err := New(1)
	require.NoError(t, err)

	_, err = tree.Append(testLeaf(0))
	require.NoError(t, err)
	_, err = tree.Append(testLeaf(1))
	require.NoError(t, err)

	assert.Equal(t, hashLeftRight(testLeaf(0), testLeaf(1)), tree.GetRoot())
	assert.NotEqual(t, hashLeftRight(testLeaf(1), testLeaf(0)), tree.GetRoot())
}

func TestMerkleTree_HappyPath(t *testing.T) {
	depth := uint8(4)

	tree, err := New(depth)
	require.NoError(t, err)

	for i := 0; i < 1<<depth; i++ {
		_, err = tree.GetIndexForLeaf(testLeaf(i))
		assert.Equal(t, ErrLeafNotFound, err)

		index, err := tree.Append(testLeaf(i))
		require.NoError(t, err)
		assert.EqualValues(t, i, index)
		assert.EqualValues(t, i+1, tree.GetLeafCount())

		root := tree.GetRoot()
		for forLeaf := 0; forLeaf <= i; forLeaf++ {
			proof, err := tree.GetProof(uint32(forLeaf))
			require.NoError(t, err)
			require.Len(t, proof, int(depth))

			assert.True(t, Verify(root, testLeaf(forLeaf), uint32(forLeaf), proof))
			assert.False(t, Verify(root, testLeaf(forLeaf+1), uint32(forLeaf), proof))
			assert.False(t, Verify(root, testLeaf(forLeaf), uint32(forLeaf)^1, proof))
		}
	}

	_, err = tree.Append(testLeaf(100))
	assert.Equal(t, ErrMerkleTreeFull, err)
}

func TestMerkleTree_Replace(t *testing.T) {
	tree, err := New(3)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err = tree.Append(testLeaf(i))
		require.NoError(t, err)
	}

	before := tree.GetRoot()
	proof, err := tree.GetProof(2)
	require.NoError(t, err)

	require.NoError(t, tree.Replace(2, testLeaf(42)))
	after := tree.GetRoot()

	assert.NotEqual(t, before, after)
	assert.Equal(t, after, ComputeRoot(testLeaf(42), 2, proof))
	assert.Equal(t, ErrLeafNotFound, tree.Replace(5, testLeaf(0)))

	_, err = tree.GetProof(5)
	assert.Equal(t, ErrLeafNotFound, err)
}
