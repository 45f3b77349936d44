// Package keys manages the secp256k1 identity used for relay addressing.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/mr-tron/base58"
)

// addressVersion is the two-byte base58-check prefix for relay addresses.
var addressVersion = []byte{0x01, 0x0b}

// GenerateKeypair creates a fresh secp256k1 identity. It returns the
// hex-encoded secret scalar and the derived relay address.
func GenerateKeypair() (string, string, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return "", "", fmt.Errorf("generate private key: %w", err)
	}
	secretHex := hex.EncodeToString(priv.Serialize())
	addr := encodeAddress(priv.PubKey())
	return secretHex, addr, nil
}

// AddressFromSecret derives the relay address for a hex-encoded secret.
// Derivation is pure: the same secret always yields the same address.
func AddressFromSecret(secretHex string) (string, error) {
	priv, err := parseSecret(secretHex)
	if err != nil {
		return "", err
	}
	return encodeAddress(priv.PubKey()), nil
}

// Sign signs msg with the identity key and returns the DER signature in hex.
// The message is hashed with SHA-256 before signing.
func Sign(secretHex string, msg []byte) (string, error) {
	priv, err := parseSecret(secretHex)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(msg)
	sig := ecdsa.Sign(priv, digest[:])
	return hex.EncodeToString(sig.Serialize()), nil
}

func parseSecret(secretHex string) (*secp256k1.PrivateKey, error) {
	raw, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("secret key must be 32 bytes, got %d", len(raw))
	}
	return secp256k1.PrivKeyFromBytes(raw), nil
}

// encodeAddress renders a public key as a base58-check string: a two-byte
// version prefix, the compressed key, and a four-byte double-SHA256 checksum.
func encodeAddress(pub *secp256k1.PublicKey) string {
	payload := append(append([]byte{}, addressVersion...), pub.SerializeCompressed()...)
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return base58.Encode(append(payload, second[:4]...))
}
