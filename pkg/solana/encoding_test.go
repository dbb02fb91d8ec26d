package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEncodedTransaction(t *testing.T) (Transaction, []byte) {
	keys := generateKeys(t, 4)
	payer, tree, owner, program := keys[0], keys[1], keys[2], keys[3]

	txn := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			[]byte{0xa3, 0x34, 0xc8, 0xe7},
			NewAccountMeta(public(tree), false),
			NewReadonlyAccountMeta(public(owner), false),
		),
	)
	txn.SetBlockhash(Blockhash{1, 2, 3})
	require.NoError(t, txn.Sign(payer))

	return txn, txn.Marshal()
}

func TestTransaction_Unmarshal(t *testing.T) {
	txn, encoded := newEncodedTransaction(t)

	var decoded Transaction
	require.NoError(t, decoded.Unmarshal(encoded))
	assert.Equal(t, txn.Signatures, decoded.Signatures)
	assert.Equal(t, txn.Message.Header, decoded.Message.Header)
	assert.Equal(t, txn.Message.Accounts, decoded.Message.Accounts)
	assert.Equal(t, txn.Message.RecentBlockhash, decoded.Message.RecentBlockhash)
	assert.Equal(t, txn.Message.Instructions[0].Data, decoded.Message.Instructions[0].Data)
	assert.Equal(t, encoded, decoded.Marshal())
	assert.NoError(t, decoded.Verify())
}

func TestTransaction_UnmarshalTruncated(t *testing.T) {
	_, encoded := newEncodedTransaction(t)

	for i := 0; i < len(encoded); i++ {
		var decoded Transaction
		assert.Error(t, decoded.Unmarshal(encoded[:i]), "length %d", i)
	}
}

func TestTransaction_UnmarshalInvalid(t *testing.T) {
	txn, encoded := newEncodedTransaction(t)

	// Message header follows shortvec(1) and the single signature
	headerOffset := 1 + len(txn.Signatures[0])

	for _, tc := range []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{
			name:   "trailing bytes",
			mutate: func(b []byte) []byte { return append(b, 0) },
		},
		{
			name: "versioned message",
			mutate: func(b []byte) []byte {
				b[headerOffset] |= 0x80
				return b
			},
		},
		{
			name: "header signature count mismatch",
			mutate: func(b []byte) []byte {
				b[headerOffset] = 2
				return b
			},
		},
		{
			name: "read only fee payer",
			mutate: func(b []byte) []byte {
				b[headerOffset+1] = b[headerOffset]
				return b
			},
		},
		{
			name: "read only count exceeds accounts",
			mutate: func(b []byte) []byte {
				b[headerOffset+2] = 10
				return b
			},
		},
		{
			name: "no fee payer",
			mutate: func(b []byte) []byte {
				b[headerOffset] = 0
				return b
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mutated := tc.mutate(append([]byte{}, encoded...))

			var decoded Transaction
			assert.Error(t, decoded.Unmarshal(mutated))
		})
	}
}
