package bubblegum

import (
	"crypto/ed25519"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMerkleTreeAccountData(t *testing.T, maxDepth, maxBufferSize, canopyDepth uint32) ([]byte, ed25519.PublicKey) {
	authority, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	data := make([]byte, GetMerkleTreeAccountSize(maxDepth, maxBufferSize, canopyDepth))
	data[0] = compressionAccountTypeMerkleTree
	data[1] = merkleTreeHeaderVersionV1
	binary.LittleEndian.PutUint32(data[2:], maxBufferSize)
	binary.LittleEndian.PutUint32(data[6:], maxDepth)
	copy(data[10:], authority)
	binary.LittleEndian.PutUint64(data[42:], 12345)
	return data, authority
}

func TestMerkleTreeAccount_Unmarshal(t *testing.T) {
	for _, tc := range []struct {
		maxDepth, maxBufferSize, canopyDepth uint32
		proofLength                          int
	}{
		{3, 8, 0, 3},
		{14, 64, 0, 14},
		{14, 64, 11, 3},
		{20, 1024, 10, 10},
		{24, 64, 10, 14},
		{26, 512, 12, 14},
		{30, 512, 14, 16},
	} {
		data, authority := newMerkleTreeAccountData(t, tc.maxDepth, tc.maxBufferSize, tc.canopyDepth)

		var account MerkleTreeAccount
		require.NoError(t, account.Unmarshal(data))
		assert.Equal(t, tc.maxDepth, account.MaxDepth)
		assert.Equal(t, tc.maxBufferSize, account.MaxBufferSize)
		assert.Equal(t, tc.canopyDepth, account.CanopyDepth)
		assert.EqualValues(t, authority, account.Authority)
		assert.EqualValues(t, 12345, account.CreationSlot)
		assert.Equal(t, tc.proofLength, account.ProofLength())
	}
}

func TestMerkleTreeAccount_KnownSize(t *testing.T) {
	// Size of a depth 14, buffer 64, canopy 0 tree as allocated by the
	// account compression SDK
	assert.Equal(t, 31800, GetMerkleTreeAccountSize(14, 64, 0))
}

func TestMerkleTreeAccount_InvalidData(t *testing.T) {
	data, _ := newMerkleTreeAccountData(t, 14, 64, 3)

	var account MerkleTreeAccount
	assert.Equal(t, ErrInvalidAccountData, account.Unmarshal(data[:MerkleTreeHeaderSize-1]))

	// Truncated tree body
	assert.Equal(t, ErrInvalidAccountData, account.Unmarshal(data[:MerkleTreeHeaderSize+100]))

	// Canopy that isn't a whole number of levels
	assert.Equal(t, ErrInvalidAccountData, account.Unmarshal(data[:len(data)-HashSize]))

	uninitialized := append([]byte{}, data...)
	uninitialized[0] = 0
	assert.Equal(t, ErrInvalidAccountData, account.Unmarshal(uninitialized))

	tooDeep := append([]byte{}, data...)
	binary.LittleEndian.PutUint32(tooDeep[6:], MaxTreeDepth+1)
	assert.Equal(t, ErrInvalidAccountData, account.Unmarshal(tooDeep))
}
