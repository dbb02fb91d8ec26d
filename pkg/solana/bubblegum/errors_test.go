package bubblegum

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-bubblegum/pkg/solana"
)

func customInstructionError(t *testing.T, code int) error {
	txErr, err := solana.ParseTransactionError(map[string]interface{}{
		"InstructionError": []interface{}{float64(0), map[string]interface{}{"Custom": float64(code)}},
	})
	require.NoError(t, err)
	return txErr
}

func TestProgramError_Codes(t *testing.T) {
	assert.EqualValues(t, 6000, ErrAssetOwnerMismatch)
	assert.EqualValues(t, 6004, ErrCreatorShareTotalMustBe100)
	assert.EqualValues(t, 6025, ErrLeafAuthorityMustSign)
	assert.EqualValues(t, 6029, ErrInvalidDelegateRecord)
	assert.Len(t, programErrorNames, 30)

	assert.Equal(t, "bubblegum error 6025: LeafAuthorityMustSign", ErrLeafAuthorityMustSign.Error())
	assert.Equal(t, "bubblegum error 7000", ProgramError(7000).Error())
}

func TestGetProgramError(t *testing.T) {
	code, ok := GetProgramError(customInstructionError(t, 6001))
	require.True(t, ok)
	assert.Equal(t, ErrPublicKeyMismatch, code)

	code, ok = GetProgramError(errors.Wrap(customInstructionError(t, 6009), "sendTransaction() failed"))
	require.True(t, ok)
	assert.Equal(t, ErrCreatorHashMismatch, code)

	_, ok = GetProgramError(customInstructionError(t, 1))
	assert.False(t, ok)

	_, ok = GetProgramError(solana.NewTransactionError(solana.TransactionErrorBlockhashNotFound))
	assert.False(t, ok)

	_, ok = GetProgramError(errors.New("unrelated"))
	assert.False(t, ok)
}
