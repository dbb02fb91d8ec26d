package bubblegum

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// ParsePublicKey decodes a base58 address. Any failure is reported as
// KindInvalidPublicKey carrying the decoder's text.
func ParsePublicKey(value string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, NewErrorFrom(KindInvalidPublicKey, err)
	}

	if len(decoded) != ed25519.PublicKeySize {
		return nil, NewError(KindInvalidPublicKey, "invalid length %d, expected %d", len(decoded), ed25519.PublicKeySize)
	}

	return ed25519.PublicKey(decoded), nil
}

func newKeypair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, nil, NewErrorFrom(KindTransactionError, err)
	}
	return pub, priv, nil
}
