package bubblegum

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-bubblegum/pkg/solana"
)

type MintV1InstructionArgs struct {
	Metadata MetadataArgs
}

type MintV1InstructionAccounts struct {
	TreeConfig   ed25519.PublicKey
	LeafOwner    ed25519.PublicKey
	LeafDelegate ed25519.PublicKey
	MerkleTree   ed25519.PublicKey
	TreeDelegate ed25519.PublicKey
}

func NewMintV1Instruction(
	accounts *MintV1InstructionAccounts,
	args *MintV1InstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, discriminatorSize+args.Metadata.Size())

	putDiscriminator(data, mintV1InstructionDiscriminator, &offset)
	putMetadataArgs(data, &args.Metadata, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.TreeConfig,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.LeafOwner,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.LeafDelegate,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.MerkleTree,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.TreeDelegate,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

type DecompiledMintV1 struct {
	MintV1InstructionArgs
	MintV1InstructionAccounts
}

func DecompileMintV1(m solana.Message, index int) (*DecompiledMintV1, error) {
	data, keys, err := decompile(m, index, mintV1InstructionDiscriminator)
	if err != nil {
		return nil, err
	}

	if len(keys) != 5 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(keys))
	}

	var v DecompiledMintV1
	if err := v.Metadata.Unmarshal(data[discriminatorSize:]); err != nil {
		return nil, err
	}

	v.TreeConfig = keys[0]
	v.LeafOwner = keys[1]
	v.LeafDelegate = keys[2]
	v.MerkleTree = keys[3]
	v.TreeDelegate = keys[4]

	return &v, nil
}
