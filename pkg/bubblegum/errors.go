package bubblegum

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies failures reported across the host boundary.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidPublicKey
	KindTransactionError
	KindNetworkError
	KindSerializationError
	KindRpcError
	KindCacheError
	KindInvalidInstruction
	KindMerkleTreeError
	KindInvalidMetadata
	KindInvalidTransfer
)

var kindPrefixes = map[Kind]string{
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
}

// String returns the prefix used when formatting errors of this kind.
func (k Kind) String() string {
	if prefix, ok := kindPrefixes[k]; ok {
		return prefix
	}
	return "Unknown error"
}

// Error is a classified failure. An InvalidInstruction raised at the builder
// boundary carries the failure it wraps in Inner, so the original kind
// survives.
type Error struct {
	Kind    Kind
	Message string
	Inner   *Error
}

// NewError returns an Error of the given kind with a formatted message.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewErrorFrom classifies err, using its text as the message.
func NewErrorFrom(kind Kind, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: err.Error(),
	}
}

// WrapInvalidInstruction reports a failure at the builder boundary. Classified
// failures are kept as the inner error, anything else becomes the message.
func WrapInvalidInstruction(err error) *Error {
	var inner *Error
	if errors.As(err, &inner) {
		if inner.Kind == KindInvalidInstruction {
			return inner
		}
		return &Error{
			Kind:    KindInvalidInstruction,
			Message: inner.Error(),
			Inner:   inner,
		}
	}
	return NewErrorFrom(KindInvalidInstruction, err)
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Inner == nil {
		return nil
	}
	return e.Inner
}

// KindOf returns the outermost kind of err, or KindUnknown if err was never
// classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// RootKind returns the innermost kind of err, which is the kind of the
// failure that started the chain.
func RootKind(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return KindUnknown
	}
	for e.Inner != nil {
		e = e.Inner
	}
	return e.Kind
}

// Failure is the opaque value returned across the host boundary. Callers may
// only depend on its text.
type Failure struct {
	text string
}

func (f *Failure) Error() string {
	return f.text
}

// Translate converts err into a boundary Failure. Unclassified errors are
// reported as invalid instructions.
func Translate(err error) *Failure {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return &Failure{text: e.Error()}
	}
	return &Failure{text: NewErrorFrom(KindInvalidInstruction, err).Error()}
}
