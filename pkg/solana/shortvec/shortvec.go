// Package shortvec implements the compact-u16 length prefix used for every
// array in a Solana transaction.
//
// Reference: https://github.com/solana-labs/solana/blob/master/sdk/program/src/short_vec.rs
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// MaxEncodedSize is the most bytes a length can take. The last byte may only
// carry the top two bits of a u16.
const MaxEncodedSize = 3

var (
	ErrLenOutOfRange = errors.New("len out of range")
	ErrNonCanonical  = errors.New("non-canonical len encoding")
	ErrTooLong       = errors.New("len encoding exceeds 3 bytes")
)

// EncodeLen writes len as 7-bit groups, least significant first, with the
// high bit set on every byte but the last. It returns the number of bytes
// written.
func EncodeLen(w io.ByteWriter, len int) (int, error) {
	if len < 0 || len > math.MaxUint16 {
		return 0, errors.Wrapf(ErrLenOutOfRange, "%d", len)
	}

	var written int
	for {
		b := byte(len & 0x7f)
		len >>= 7
		if len != 0 {
			b |= 0x80
		}

		if err := w.WriteByte(b); err != nil {
			return written, err
		}
		written++

		if len == 0 {
			return written, nil
		}
	}
}

// DecodeLen reads a length written by EncodeLen. Encodings the runtime
// rejects are rejected here as well: more than three bytes, values above a
// u16 and trailing zero groups.
func DecodeLen(r io.ByteReader) (int, error) {
	var val int
	for i := 0; i < MaxEncodedSize; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if i > 0 && b == 0 {
			return 0, ErrNonCanonical
		}

		val |= int(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			if val > math.MaxUint16 {
				return 0, errors.Wrapf(ErrLenOutOfRange, "%d", val)
			}
			return val, nil
		}
	}
	return 0, ErrTooLong
}
