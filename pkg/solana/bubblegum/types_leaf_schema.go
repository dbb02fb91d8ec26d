package bubblegum

import (
	"crypto/ed25519"
	"encoding/binary"
)

const leafSchemaVersionV1 uint8 = 1

// LeafSchema is the state of a compressed asset as committed to the merkle
// tree.
type LeafSchema struct {
	Id          ed25519.PublicKey
	Owner       ed25519.PublicKey
	Delegate    ed25519.PublicKey
	Nonce       uint64
	DataHash    Hash
	CreatorHash Hash
}

// Hash returns the V1 leaf node value.
func (l *LeafSchema) Hash() Hash {
	nonce := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonce, l.Nonce)

	return keccak(
		[]byte{leafSchemaVersionV1},
		l.Id,
		l.Owner,
		l.Delegate,
		nonce,
		l.DataHash[:],
		l.CreatorHash[:],
	)
}
