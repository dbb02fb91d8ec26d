package bubblegum

import (
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"
)

const HashSize = 32

type Hash [HashSize]byte

func (h Hash) String() string {
	return base58.Encode(h[:])
}

// keccak returns the legacy Keccak-256 digest of the concatenated values, as
// used by the on-chain keccak::hashv syscall.
func keccak(values ...[]byte) Hash {
	h := sha3.NewLegacyKeccak256()
	for _, v := range values {
		h.Write(v)
	}

	var res Hash
	copy(res[:], h.Sum(nil))
	return res
}
