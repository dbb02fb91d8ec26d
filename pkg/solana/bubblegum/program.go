package bubblegum

import (
	"crypto/ed25519"
	"errors"
)

var (
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("BGUMAp9Gq7iTEuizy4pqaxsTyUCBK68MDfK752saRPUY")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

// Owner of every merkle tree account
var SPL_ACCOUNT_COMPRESSION_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("cmtDvXumGCrqC1Age74AVPhSRVXJMd8PJS91L8KbNCK"))

// Anchor instruction discriminators, sha256("global:<name>")[:8]
var (
	createTreeInstructionDiscriminator = anchorDiscriminator("create_tree")
	mintV1InstructionDiscriminator     = anchorDiscriminator("mint_v1")
	transferInstructionDiscriminator   = anchorDiscriminator("transfer")
)
