package bubblegum

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	for kind, expected := range map[Kind]string{
		KindInvalidPublicKey:   "Invalid public key",
		KindTransactionError:   "Transaction error",
		KindNetworkError:       "Network error",
		KindSerializationError: "Serialization error",
		KindRpcError:           "RPC error",
		KindCacheError:         "Cache error",
		KindInvalidInstruction: "Invalid instruction",
		KindMerkleTreeError:    "Merkle tree error",
		KindInvalidMetadata:    "Invalid metadata",
		KindInvalidTransfer:    "Invalid transfer",
		KindUnknown:            "Unknown error",
	} {
		assert.Equal(t, expected, kind.String())
	}
}

func TestError_Format(t *testing.T) {
	err := NewError(KindNetworkError, "timeout after %ds", 5)
	assert.Equal(t, "Network error: timeout after 5s", err.Error())

	err = NewErrorFrom(KindCacheError, errors.New("closed"))
	assert.Equal(t, "Cache error: closed", err.Error())
}

func TestWrapInvalidInstruction_PreservesKind(t *testing.T) {
	inner := NewError(KindNetworkError, "connection refused")
	wrapped := WrapInvalidInstruction(inner)

	assert.Equal(t, "Invalid instruction: Network error: connection refused", wrapped.Error())
	assert.Equal(t, KindInvalidInstruction, KindOf(wrapped))
	assert.Equal(t, KindNetworkError, RootKind(wrapped))
	assert.True(t, errors.Is(wrapped, inner))

	var unwrapped *Error
	require.True(t, errors.As(errors.Wrap(wrapped, "context"), &unwrapped))
	assert.Equal(t, inner, unwrapped.Inner)

	// Already an invalid instruction, so no double wrapping
	assert.Equal(t, wrapped, WrapInvalidInstruction(wrapped))

	plain := WrapInvalidInstruction(errors.New("bad data"))
	assert.Equal(t, "Invalid instruction: bad data", plain.Error())
	assert.Nil(t, plain.Inner)
	assert.Nil(t, plain.Unwrap())
	assert.Equal(t, KindInvalidInstruction, RootKind(plain))
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, RootKind(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestTranslate(t *testing.T) {
	assert.Nil(t, Translate(nil))

	failure := Translate(NewError(KindInvalidPublicKey, "invalid base58 digit ('0')"))
	require.NotNil(t, failure)
	assert.Equal(t, "Invalid public key: invalid base58 digit ('0')", failure.Error())

	failure = Translate(WrapInvalidInstruction(NewError(KindTransactionError, "rejected")))
	assert.Equal(t, "Invalid instruction: Transaction error: rejected", failure.Error())

	failure = Translate(errors.New("unexpected"))
	assert.Equal(t, "Invalid instruction: unexpected", failure.Error())

	// Failures carry text only
	assert.Equal(t, KindUnknown, KindOf(failure))
}
