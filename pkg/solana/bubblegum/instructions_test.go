package bubblegum

import (
	"crypto/ed25519"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-bubblegum/pkg/solana"
)

func TestCreateTreeConfigInstruction(t *testing.T) {
	keys := generateKeys(t, 3)
	public := true

	ixn := NewCreateTreeConfigInstruction(
		&CreateTreeConfigInstructionAccounts{
			TreeConfig: keys[0],
			MerkleTree: keys[1],
			Authority:  keys[2],
		},
		&CreateTreeConfigInstructionArgs{
			MaxDepth:      14,
			MaxBufferSize: 64,
			Public:        &public,
		},
	)

	assert.EqualValues(t, PROGRAM_ID, ixn.Program)
	require.Len(t, ixn.Accounts, 3)
	assert.EqualValues(t, keys, ixn.AccountKeys())
	assert.True(t, ixn.Accounts[0].IsWritable)
	assert.True(t, ixn.Accounts[1].IsWritable)
	assert.True(t, ixn.Accounts[1].IsSigner)
	assert.False(t, ixn.Accounts[2].IsWritable)
	assert.False(t, ixn.Accounts[2].IsSigner)

	require.Len(t, ixn.Data, CreateTreeConfigInstructionSize)
	assert.Equal(t, createTreeInstructionDiscriminator, ixn.Data[:8])
	assert.EqualValues(t, 14, binary.LittleEndian.Uint32(ixn.Data[8:]))
	assert.EqualValues(t, 64, binary.LittleEndian.Uint32(ixn.Data[12:]))
	assert.Equal(t, []byte{1, 1}, ixn.Data[16:])

	ixn = NewCreateTreeConfigInstruction(
		&CreateTreeConfigInstructionAccounts{
			TreeConfig: keys[0],
			MerkleTree: keys[1],
			Authority:  keys[2],
		},
		&CreateTreeConfigInstructionArgs{MaxDepth: 3, MaxBufferSize: 8},
	)
	assert.Len(t, ixn.Data, CreateTreeConfigInstructionSize-1)
	assert.EqualValues(t, 0, ixn.Data[16])
}

func TestDecompileCreateTreeConfig(t *testing.T) {
	payer := generateKeys(t, 1)[0]
	keys := generateKeys(t, 3)
	public := true

	txn := solana.NewTransaction(
		payer,
		NewCreateTreeConfigInstruction(
			&CreateTreeConfigInstructionAccounts{
				TreeConfig: keys[0],
				MerkleTree: keys[1],
				Authority:  keys[2],
			},
			&CreateTreeConfigInstructionArgs{
				MaxDepth:      20,
				MaxBufferSize: 256,
				Public:        &public,
			},
		),
	)

	decompiled, err := DecompileCreateTreeConfig(txn.Message, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 20, decompiled.MaxDepth)
	assert.EqualValues(t, 256, decompiled.MaxBufferSize)
	require.NotNil(t, decompiled.Public)
	assert.True(t, *decompiled.Public)
	assert.EqualValues(t, keys[0], decompiled.TreeConfig)
	assert.EqualValues(t, keys[1], decompiled.MerkleTree)
	assert.EqualValues(t, keys[2], decompiled.Authority)

	_, err = DecompileCreateTreeConfig(txn.Message, 1)
	assert.Error(t, err)
	_, err = DecompileMintV1(txn.Message, 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	other := solana.NewTransaction(payer, solana.NewInstruction(keys[0], createTreeInstructionDiscriminator))
	_, err = DecompileCreateTreeConfig(other.Message, 0)
	assert.Equal(t, solana.ErrIncorrectProgram, err)
}

func TestMintV1Instruction(t *testing.T) {
	keys := generateKeys(t, 3)
	treeConfig, recipient, tree := keys[0], keys[1], keys[2]
	metadata := newTestMetadata(t)

	ixn := NewMintV1Instruction(
		&MintV1InstructionAccounts{
			TreeConfig:   treeConfig,
			LeafOwner:    recipient,
			LeafDelegate: recipient,
			MerkleTree:   tree,
			TreeDelegate: recipient,
		},
		&MintV1InstructionArgs{Metadata: metadata},
	)

	assert.EqualValues(t, PROGRAM_ID, ixn.Program)
	assert.Equal(t, []ed25519.PublicKey{treeConfig, recipient, recipient, tree, recipient}, ixn.AccountKeys())
	assert.Equal(t, mintV1InstructionDiscriminator, ixn.Data[:8])
	assert.Equal(t, metadata.Marshal(), ixn.Data[8:])

	txn := solana.NewTransaction(generateKeys(t, 1)[0], ixn)
	decompiled, err := DecompileMintV1(txn.Message, 0)
	require.NoError(t, err)
	assert.Equal(t, metadata, decompiled.Metadata)
	assert.EqualValues(t, treeConfig, decompiled.TreeConfig)
	assert.EqualValues(t, recipient, decompiled.LeafOwner)
	assert.EqualValues(t, recipient, decompiled.LeafDelegate)
	assert.EqualValues(t, tree, decompiled.MerkleTree)
	assert.EqualValues(t, recipient, decompiled.TreeDelegate)
}

func TestTransferInstruction(t *testing.T) {
	keys := generateKeys(t, 6)

	args := &TransferInstructionArgs{
		Nonce: 42,
		Index: 7,
	}
	args.Root[0] = 1
	args.DataHash[0] = 2
	args.CreatorHash[0] = 3

	ixn := NewTransferInstruction(
		&TransferInstructionAccounts{
			TreeConfig:   keys[0],
			LeafOwner:    keys[1],
			LeafDelegate: keys[1],
			NewLeafOwner: keys[2],
			MerkleTree:   keys[3],
			Proof:        keys[4:],
		},
		args,
	)

	require.Len(t, ixn.Accounts, 7)
	assert.True(t, ixn.Accounts[4].IsWritable)
	for _, a := range ixn.Accounts {
		assert.False(t, a.IsSigner)
	}
	require.Len(t, ixn.Data, TransferInstructionSize)
	assert.EqualValues(t, 42, binary.LittleEndian.Uint64(ixn.Data[8+3*HashSize:]))
	assert.EqualValues(t, 7, binary.LittleEndian.Uint32(ixn.Data[8+3*HashSize+8:]))

	txn := solana.NewTransaction(generateKeys(t, 1)[0], ixn)
	decompiled, err := DecompileTransfer(txn.Message, 0)
	require.NoError(t, err)
	assert.Equal(t, *args, decompiled.TransferInstructionArgs)
	assert.EqualValues(t, keys[0], decompiled.TreeConfig)
	assert.EqualValues(t, keys[1], decompiled.LeafOwner)
	assert.EqualValues(t, keys[1], decompiled.LeafDelegate)
	assert.EqualValues(t, keys[2], decompiled.NewLeafOwner)
	assert.EqualValues(t, keys[3], decompiled.MerkleTree)
	assert.Equal(t, keys[4:], decompiled.Proof)
}
