package bubblegum

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-bubblegum/pkg/solana"
)

const (
	CreateTreeConfigInstructionArgsSize = (4 + // max_depth
		4 + // max_buffer_size
		2) // public

	CreateTreeConfigInstructionSize = (discriminatorSize + // discriminator
		CreateTreeConfigInstructionArgsSize) // args
)

type CreateTreeConfigInstructionArgs struct {
	MaxDepth      uint32
	MaxBufferSize uint32
	Public        *bool
}

type CreateTreeConfigInstructionAccounts struct {
	TreeConfig ed25519.PublicKey
	MerkleTree ed25519.PublicKey
	Authority  ed25519.PublicKey
}

// NewCreateTreeConfigInstruction initializes the tree config account for a
// freshly generated merkle tree. The tree key signs the transaction, so it is
// marked as a signer.
func NewCreateTreeConfigInstruction(
	accounts *CreateTreeConfigInstructionAccounts,
	args *CreateTreeConfigInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, CreateTreeConfigInstructionSize)

	putDiscriminator(data, createTreeInstructionDiscriminator, &offset)
	putUint32(data, args.MaxDepth, &offset)
	putUint32(data, args.MaxBufferSize, &offset)
	putBool(data, args.Public != nil, &offset)
	if args.Public != nil {
		putBool(data, *args.Public, &offset)
	}

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data[:offset],

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.TreeConfig,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.MerkleTree,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Authority,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

type DecompiledCreateTreeConfig struct {
	CreateTreeConfigInstructionArgs
	CreateTreeConfigInstructionAccounts
}

func DecompileCreateTreeConfig(m solana.Message, index int) (*DecompiledCreateTreeConfig, error) {
	var offset int
	var discriminator []byte

	data, keys, err := decompile(m, index, createTreeInstructionDiscriminator)
	if err != nil {
		return nil, err
	}

	if len(keys) != 3 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(keys))
	}
	if len(data) != CreateTreeConfigInstructionSize && len(data) != CreateTreeConfigInstructionSize-1 {
		return nil, errors.Errorf("invalid instruction data size: %d", len(data))
	}

	var v DecompiledCreateTreeConfig

	getDiscriminator(data, &discriminator, &offset)
	getUint32(data, &v.MaxDepth, &offset)
	getUint32(data, &v.MaxBufferSize, &offset)

	var present bool
	getBool(data, &present, &offset)
	if present {
		if len(data) != CreateTreeConfigInstructionSize {
			return nil, ErrInvalidInstructionData
		}
		var public bool
		getBool(data, &public, &offset)
		v.Public = &public
	}

	v.TreeConfig = keys[0]
	v.MerkleTree = keys[1]
	v.Authority = keys[2]

	return &v, nil
}

// decompile checks the instruction targets this program with the expected
// discriminator and resolves its accounts.
func decompile(m solana.Message, index int, discriminator []byte) ([]byte, []ed25519.PublicKey, error) {
	if index < 0 || index >= len(m.Instructions) {
		return nil, nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]
	if int(i.ProgramIndex) >= len(m.Accounts) || !bytes.Equal(m.Accounts[i.ProgramIndex], PROGRAM_ID) {
		return nil, nil, solana.ErrIncorrectProgram
	}
	if !bytes.HasPrefix(i.Data, discriminator) {
		return nil, nil, solana.ErrIncorrectInstruction
	}

	keys, err := m.DecompileAccounts(index)
	if err != nil {
		return nil, nil, err
	}
	return i.Data, keys, nil
}
