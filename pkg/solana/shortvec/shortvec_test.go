package shortvec

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortVec_TransactionLengths(t *testing.T) {
	for _, tc := range []struct {
		name    string
		len     int
		encoded []byte
	}{
		{"no instructions", 0, []byte{0x00}},
		{"payer and tree signatures", 2, []byte{0x02}},
		{"transfer accounts with a depth 30 proof", 37, []byte{0x25}},
		{"largest single byte", 0x7f, []byte{0x7f}},
		{"mint data with long metadata", 0x80, []byte{0x80, 0x01}},
		{"max transaction size", 1232, []byte{0xd0, 0x09}},
		{"largest two bytes", 0x3fff, []byte{0xff, 0x7f}},
		{"smallest three bytes", 0x4000, []byte{0x80, 0x80, 0x01}},
		{"max u16", math.MaxUint16, []byte{0xff, 0xff, 0x03}},
	} {
		buf := &bytes.Buffer{}
		n, err := EncodeLen(buf, tc.len)
		require.NoError(t, err, tc.name)
		assert.Equal(t, len(tc.encoded), n, tc.name)
		assert.Equal(t, tc.encoded, buf.Bytes(), tc.name)

		decoded, err := DecodeLen(buf)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.len, decoded, tc.name)
		assert.Zero(t, buf.Len(), tc.name)
	}
}

func TestShortVec_RoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	for i := 0; i <= math.MaxUint16; i++ {
		buf.Reset()

		_, err := EncodeLen(buf, i)
		require.NoError(t, err)
		require.LessOrEqual(t, buf.Len(), MaxEncodedSize)

		actual, err := DecodeLen(buf)
		require.NoError(t, err)
		require.Equal(t, i, actual)
	}
}

func TestShortVec_EncodeOutOfRange(t *testing.T) {
	for _, len := range []int{-1, math.MaxUint16 + 1} {
		buf := &bytes.Buffer{}
		_, err := EncodeLen(buf, len)
		assert.True(t, errors.Is(err, ErrLenOutOfRange))
		assert.Zero(t, buf.Len())
	}
}

func TestShortVec_DecodeInvalid(t *testing.T) {
	for _, tc := range []struct {
		encoded  []byte
		expected error
	}{
		{[]byte{}, io.EOF},
		{[]byte{0x80}, io.EOF},
		{[]byte{0x80, 0x00}, ErrNonCanonical},
		{[]byte{0xff, 0x80, 0x00}, ErrNonCanonical},
		{[]byte{0xff, 0xff, 0x04}, ErrLenOutOfRange},
		{[]byte{0x80, 0x80, 0x80, 0x01}, ErrTooLong},
	} {
		_, err := DecodeLen(bytes.NewBuffer(tc.encoded))
		assert.True(t, errors.Is(err, tc.expected), "%x: %v", tc.encoded, err)
	}
}
