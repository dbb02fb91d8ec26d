package bubblegum

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/code-payments/code-bubblegum/pkg/solana"
)

// ProgramError is a custom error returned by the Bubblegum program.
//
// Reference: https://github.com/metaplex-foundation/mpl-bubblegum/blob/main/programs/bubblegum/program/src/error.rs
type ProgramError uint32

const (
	ErrAssetOwnerMismatch ProgramError = iota + 6000
	ErrPublicKeyMismatch
	ErrHashingMismatch
	ErrUnsupportedSchemaVersion
	ErrCreatorShareTotalMustBe100
	ErrDuplicateCreatorAddress
	ErrCreatorDidNotVerify
	ErrCreatorNotFound
	ErrNoCreatorsPresent
	ErrCreatorHashMismatch
	ErrDataHashMismatch
	ErrCreatorsTooLong
	ErrMetadataNameTooLong
	ErrMetadataSymbolTooLong
	ErrMetadataUriTooLong
	ErrMetadataBasisPointsTooHigh
	ErrTreeAuthorityIncorrect
	ErrInsufficientMintCapacity
	ErrNumericalOverflow
	ErrIncorrectOwner
	ErrCollectionCannotBeVerifiedInThisInstruction
	ErrCollectionNotFound
	ErrAlreadyVerified
	ErrAlreadyUnverified
	ErrUpdateAuthorityIncorrect
	ErrLeafAuthorityMustSign
	ErrCollectionMustBeSized
	ErrMetadataMintMismatch
	ErrInvalidCollectionAuthority
	ErrInvalidDelegateRecord
)

var programErrorNames = map[ProgramError]string{
	ErrAssetOwnerMismatch:                          "AssetOwnerMismatch",
	ErrPublicKeyMismatch:                           "PublicKeyMismatch",
	ErrHashingMismatch:                             "HashingMismatch",
	ErrUnsupportedSchemaVersion:                    "UnsupportedSchemaVersion",
	ErrCreatorShareTotalMustBe100:                  "CreatorShareTotalMustBe100",
	ErrDuplicateCreatorAddress:                     "DuplicateCreatorAddress",
	ErrCreatorDidNotVerify:                         "CreatorDidNotVerify",
	ErrCreatorNotFound:                             "CreatorNotFound",
	ErrNoCreatorsPresent:                           "NoCreatorsPresent",
	ErrCreatorHashMismatch:                         "CreatorHashMismatch",
	ErrDataHashMismatch:                            "DataHashMismatch",
	ErrCreatorsTooLong:                             "CreatorsTooLong",
	ErrMetadataNameTooLong:                         "MetadataNameTooLong",
	ErrMetadataSymbolTooLong:                       "MetadataSymbolTooLong",
	ErrMetadataUriTooLong:                          "MetadataUriTooLong",
	ErrMetadataBasisPointsTooHigh:                  "MetadataBasisPointsTooHigh",
	ErrTreeAuthorityIncorrect:                      "TreeAuthorityIncorrect",
	ErrInsufficientMintCapacity:                    "InsufficientMintCapacity",
	ErrNumericalOverflow:                           "NumericalOverflowError",
	ErrIncorrectOwner:                              "IncorrectOwner",
	ErrCollectionCannotBeVerifiedInThisInstruction: "CollectionCannotBeVerifiedInThisInstruction",
	ErrCollectionNotFound:                          "CollectionNotFound",
	ErrAlreadyVerified:                             "AlreadyVerified",
	ErrAlreadyUnverified:                           "AlreadyUnverified",
	ErrUpdateAuthorityIncorrect:                    "UpdateAuthorityIncorrect",
	ErrLeafAuthorityMustSign:                       "LeafAuthorityMustSign",
	ErrCollectionMustBeSized:                       "CollectionMustBeSized",
	ErrMetadataMintMismatch:                        "MetadataMintMismatch",
	ErrInvalidCollectionAuthority:                  "InvalidCollectionAuthority",
	ErrInvalidDelegateRecord:                       "InvalidDelegateRecord",
}

func (e ProgramError) Error() string {
	if name, ok := programErrorNames[e]; ok {
		return fmt.Sprintf("bubblegum error %d: %s", uint32(e), name)
	}
	return fmt.Sprintf("bubblegum error %d", uint32(e))
}

// GetProgramError extracts a known Bubblegum program error from a failed
// transaction.
func GetProgramError(err error) (ProgramError, bool) {
	var txErr *solana.TransactionError
	if !errors.As(err, &txErr) {
		return 0, false
	}

	instructionErr := txErr.InstructionError()
	if instructionErr == nil || instructionErr.CustomError() == nil {
		return 0, false
	}

	code := ProgramError(*instructionErr.CustomError())
	if _, ok := programErrorNames[code]; !ok {
		return 0, false
	}
	return code, true
}
