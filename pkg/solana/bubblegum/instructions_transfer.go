package bubblegum

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-bubblegum/pkg/solana"
)

const (
	TransferInstructionArgsSize = (HashSize + // root
		HashSize + // data_hash
		HashSize + // creator_hash
		8 + // nonce
		4) // index

	TransferInstructionSize = (discriminatorSize + // discriminator
		TransferInstructionArgsSize) // args

	transferInstructionFixedAccounts = 5
)

type TransferInstructionArgs struct {
	Root        Hash
	DataHash    Hash
	CreatorHash Hash
	Nonce       uint64
	Index       uint32
}

type TransferInstructionAccounts struct {
	TreeConfig   ed25519.PublicKey
	LeafOwner    ed25519.PublicKey
	LeafDelegate ed25519.PublicKey
	NewLeafOwner ed25519.PublicKey
	MerkleTree   ed25519.PublicKey

	// Proof nodes, appended as remaining accounts
	Proof []ed25519.PublicKey
}

func NewTransferInstruction(
	accounts *TransferInstructionAccounts,
	args *TransferInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, TransferInstructionSize)

	putDiscriminator(data, transferInstructionDiscriminator, &offset)
	putHash(data, args.Root, &offset)
	putHash(data, args.DataHash, &offset)
	putHash(data, args.CreatorHash, &offset)
	putUint64(data, args.Nonce, &offset)
	putUint32(data, args.Index, &offset)

	accountMetas := []solana.AccountMeta{
		{
			PublicKey:  accounts.TreeConfig,
			IsWritable: false,
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
			PublicKey:  accounts.NewLeafOwner,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.MerkleTree,
			IsWritable: true,
			IsSigner:   false,
		},
	}
	for _, node := range accounts.Proof {
		accountMetas = append(accountMetas, solana.AccountMeta{
			PublicKey:  node,
			IsWritable: false,
			IsSigner:   false,
		})
	}

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: accountMetas,
	}
}

type DecompiledTransfer struct {
	TransferInstructionArgs
	TransferInstructionAccounts
}

func DecompileTransfer(m solana.Message, index int) (*DecompiledTransfer, error) {
	var offset int
	var discriminator []byte

	data, keys, err := decompile(m, index, transferInstructionDiscriminator)
	if err != nil {
		return nil, err
	}

	if len(keys) < transferInstructionFixedAccounts {
		return nil, errors.Errorf("invalid number of accounts: %d", len(keys))
	}
	if len(data) != TransferInstructionSize {
		return nil, errors.Errorf("invalid instruction data size: %d", len(data))
	}

	var v DecompiledTransfer

	getDiscriminator(data, &discriminator, &offset)
	getHash(data, &v.Root, &offset)
	getHash(data, &v.DataHash, &offset)
	getHash(data, &v.CreatorHash, &offset)
	getUint64(data, &v.Nonce, &offset)
	getUint32(data, &v.Index, &offset)

	v.TreeConfig = keys[0]
	v.LeafOwner = keys[1]
	v.LeafDelegate = keys[2]
	v.NewLeafOwner = keys[3]
	v.MerkleTree = keys[4]
	v.Proof = keys[transferInstructionFixedAccounts:]

	return &v, nil
}
