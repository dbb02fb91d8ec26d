package bubblegum

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-bubblegum/pkg/solana"
)

func TestDiscriminators(t *testing.T) {
	assert.Equal(t, []byte{165, 83, 136, 142, 89, 202, 47, 220}, createTreeInstructionDiscriminator)
	assert.Equal(t, []byte{145, 98, 192, 118, 184, 147, 118, 104}, mintV1InstructionDiscriminator)
	assert.Equal(t, []byte{163, 52, 200, 231, 140, 3, 69, 186}, transferInstructionDiscriminator)
}

func TestKeccak(t *testing.T) {
	expected, err := hex.DecodeString("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
	require.NoError(t, err)

	actual := keccak()
	assert.Equal(t, expected, actual[:])

	// Concatenation is equivalent to a single write
	assert.Equal(t, keccak([]byte("ab"), []byte("cd")), keccak([]byte("abcd")))
}

func TestGetTreeConfigAddress(t *testing.T) {
	tree := generateKeys(t, 1)[0]

	address, bump, err := GetTreeConfigAddress(&GetTreeConfigAddressArgs{MerkleTree: tree})
	require.NoError(t, err)
	assert.Len(t, address, ed25519.PublicKeySize)
	assert.False(t, solana.IsOnCurve(address))

	expected, err := solana.CreateProgramAddress(PROGRAM_ID, tree, []byte{bump})
	require.NoError(t, err)
	assert.EqualValues(t, expected, address)

	again, _, err := GetTreeConfigAddress(&GetTreeConfigAddressArgs{MerkleTree: tree})
	require.NoError(t, err)
	assert.EqualValues(t, address, again)

	other, _, err := GetTreeConfigAddress(&GetTreeConfigAddressArgs{MerkleTree: generateKeys(t, 1)[0]})
	require.NoError(t, err)
	assert.NotEqualValues(t, address, other)
}

func TestGetAssetId(t *testing.T) {
	tree := generateKeys(t, 1)[0]

	first, _, err := GetAssetId(&GetAssetIdArgs{MerkleTree: tree, Nonce: 0})
	require.NoError(t, err)
	second, _, err := GetAssetId(&GetAssetIdArgs{MerkleTree: tree, Nonce: 1})
	require.NoError(t, err)

	assert.NotEqualValues(t, first, second)
	assert.False(t, solana.IsOnCurve(first))
}

func TestValidateTreeSize(t *testing.T) {
	for _, tc := range []struct {
		maxDepth      int32
		maxBufferSize uint32
		valid         bool
	}{
		{14, 64, true},
		{3, 8, true},
		{30, 2048, true},
		{0, 64, false},
		{-1, 64, false},
		{14, 0, false},
		{14, 63, false},
		{14, 128, false},
		{31, 2048, false},
	} {
		err := ValidateTreeSize(tc.maxDepth, tc.maxBufferSize)
		if tc.valid {
			assert.NoError(t, err, "depth=%d buffer=%d", tc.maxDepth, tc.maxBufferSize)
		} else {
			assert.Error(t, err, "depth=%d buffer=%d", tc.maxDepth, tc.maxBufferSize)
		}
	}
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	return keys
}
