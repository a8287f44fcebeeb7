package pay

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *secp256k1.PrivateKey {
	t.Helper()
	key, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	return key
}

func signedPayment(t *testing.T, key *secp256k1.PrivateKey, mutate func(*Payment)) Payment {
	t.Helper()
	now := time.Now().Unix()
	p := Payment{
		From:        Address(key),
		To:          "0x00000000000000000000000000000000000000aa",
		Value:       2000,
		ValidAfter:  now - 60,
		ValidBefore: now + 240,
		Nonce:       "nonce-1",
	}
	if mutate != nil {
		mutate(&p)
	}
	p.Signature = Sign([]byte(p.Message()), key)
	return p
}

func testVerifier() *Verifier {
	return NewVerifier(Config{
		PayTo:   "0x00000000000000000000000000000000000000aa",
		Network: "base-sepolia",
		Asset:   "0x00000000000000000000000000000000000000bb",
	})
}

func TestRecoverAddressRoundTrip(t *testing.T) {
	key := testKey(t)
	msg := []byte("hello world")

	addr, err := RecoverAddress(msg, Sign(msg, key))
	require.NoError(t, err)
	require.Equal(t, Address(key), addr)
}

func TestRecoverAddressBadLength(t *testing.T) {
	_, err := RecoverAddress([]byte("x"), "0xdeadbeef")
	require.ErrorContains(t, err, "65 bytes")
}

func TestDecodeRoundTrip(t *testing.T) {
	key := testKey(t)
	p := signedPayment(t, key, nil)

	decoded, err := Decode(Encode(p))
	require.NoError(t, err)
	require.Equal(t, p, decoded)
}

func TestDecodeMalformed(t *testing.T) {
	for _, header := range []string{
		"not base64 at all!!!",
		base64.StdEncoding.EncodeToString([]byte(`not json`)),
		base64.StdEncoding.EncodeToString([]byte(`{"from":"0x1"}`)),
	} {
		_, err := Decode(header)
		require.ErrorIs(t, err, ErrMalformed)
	}
}

func TestVerifyValidPayment(t *testing.T) {
	key := testKey(t)
	p := signedPayment(t, key, nil)
	require.NoError(t, testVerifier().Verify(p, 2000))
}

func TestVerifyOverpaymentAccepted(t *testing.T) {
	key := testKey(t)
	p := signedPayment(t, key, func(p *Payment) { p.Value = 9999 })
	require.NoError(t, testVerifier().Verify(p, 2000))
}

func TestVerifyWrongRecipient(t *testing.T) {
	key := testKey(t)
	p := signedPayment(t, key, func(p *Payment) {
		p.To = "0x00000000000000000000000000000000000000cc"
	})
	require.ErrorIs(t, testVerifier().Verify(p, 2000), ErrWrongRecipient)
}

func TestVerifyUnderpayment(t *testing.T) {
	key := testKey(t)
	p := signedPayment(t, key, func(p *Payment) { p.Value = 1999 })
	require.ErrorIs(t, testVerifier().Verify(p, 2000), ErrUnderpayment)
}

func TestVerifyExpired(t *testing.T) {
	key := testKey(t)
	now := time.Now().Unix()

	p := signedPayment(t, key, func(p *Payment) {
		p.ValidAfter = now - 600
		p.ValidBefore = now - 300
	})
	require.ErrorIs(t, testVerifier().Verify(p, 2000), ErrExpired)

	p = signedPayment(t, key, func(p *Payment) {
		p.ValidAfter = now + 300
		p.ValidBefore = now + 600
	})
	require.ErrorIs(t, testVerifier().Verify(p, 2000), ErrExpired)
}

func TestVerifyTamperedValue(t *testing.T) {
	key := testKey(t)
	p := signedPayment(t, key, nil)
	p.Value = 9999 // signed over 2000
	require.ErrorIs(t, testVerifier().Verify(p, 2000), ErrBadSignature)
}

func TestVerifyForeignSigner(t *testing.T) {
	key := testKey(t)
	other := testKey(t)

	p := signedPayment(t, key, nil)
	p.Signature = Sign([]byte(p.Message()), other)
	require.ErrorIs(t, testVerifier().Verify(p, 2000), ErrBadSignature)
}

func TestRejectReason(t *testing.T) {
	require.Equal(t, "wrong_recipient", RejectReason(ErrWrongRecipient))
	require.Equal(t, "underpayment", RejectReason(ErrUnderpayment))
	require.Equal(t, "expired", RejectReason(ErrExpired))
	require.Equal(t, "replayed", RejectReason(ErrReplayed))
	require.Equal(t, "bad_signature", RejectReason(ErrBadSignature))
	require.Equal(t, "malformed", RejectReason(ErrMalformed))
}
