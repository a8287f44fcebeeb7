package pay

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

// personalHash hashes a message the way Ethereum personal-sign does:
// Keccak-256 over the EIP-191 prefix plus the message.
func personalHash(msg []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(msg))
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(prefix))
	h.Write(msg)
	return h.Sum(nil)
}

// pubKeyAddress derives the 0x address from a public key: the last 20
// bytes of the Keccak-256 of the uncompressed point without its 0x04 tag.
func pubKeyAddress(pub *secp256k1.PublicKey) string {
	raw := pub.SerializeUncompressed()
	h := sha3.NewLegacyKeccak256()
	h.Write(raw[1:])
	sum := h.Sum(nil)
	return "0x" + hex.EncodeToString(sum[12:])
}

// RecoverAddress recovers the signer's address from an Ethereum-style
// hex signature (65 bytes: R || S || V, V in {0, 1, 27, 28}) over the
// personal-sign hash of msg.
func RecoverAddress(msg []byte, sigHex string) (string, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(sigHex, "0x"))
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	if len(raw) != 65 {
		return "", fmt.Errorf("signature must be 65 bytes, got %d", len(raw))
	}

	v := raw[64]
	if v < 27 {
		v += 27
	}

	// RecoverCompact wants the recovery code first.
	compact := make([]byte, 65)
	compact[0] = v
	copy(compact[1:], raw[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, personalHash(msg))
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}
	return pubKeyAddress(pub), nil
}

// Sign produces the hex signature RecoverAddress accepts. Used by tests
// and client tooling.
func Sign(msg []byte, key *secp256k1.PrivateKey) string {
	compact := ecdsa.SignCompact(key, personalHash(msg), false)
	raw := make([]byte, 65)
	copy(raw, compact[1:])
	raw[64] = compact[0] - 27
	return "0x" + hex.EncodeToString(raw)
}

// Address returns the 0x address of a private key's public half.
func Address(key *secp256k1.PrivateKey) string {
	return pubKeyAddress(key.PubKey())
}
