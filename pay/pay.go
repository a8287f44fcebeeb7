// Package pay implements the micropayment gate: a per-route price
// schedule, decoding and verification of signed payment headers, and the
// HTTP 402 middleware that demands them.
package pay

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Header carries the payment on inbound requests.
const Header = "X-Payment"

// Verification failures. All of them surface to the client as a 402 with
// the requirements body; the sentinel picks the rejection reason.
var (
	ErrMalformed      = errors.New("malformed payment header")
	ErrWrongRecipient = errors.New("payment addressed to wrong recipient")
	ErrUnderpayment   = errors.New("payment value below route price")
	ErrExpired        = errors.New("payment outside validity window")
	ErrReplayed       = errors.New("payment nonce already settled")
	ErrBadSignature   = errors.New("payment signature invalid")
)

// Payment is the decoded X-Payment header.
type Payment struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Value       int64  `json:"value"`
	ValidAfter  int64  `json:"validAfter"`
	ValidBefore int64  `json:"validBefore"`
	Nonce       string `json:"nonce"`
	Signature   string `json:"signature"`
}

// Message is the canonical string the payer signs (Ethereum personal-sign).
// Addresses are lowercased so checksummed and plain hex sign identically.
func (p Payment) Message() string {
	return fmt.Sprintf("%s|%s|%d|%d|%d|%s",
		strings.ToLower(p.From), strings.ToLower(p.To),
		p.Value, p.ValidAfter, p.ValidBefore, p.Nonce)
}

// Decode parses a base64 X-Payment header value.
func Decode(header string) (Payment, error) {
	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return Payment{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var p Payment
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payment{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if p.From == "" || p.To == "" || p.Nonce == "" || p.Signature == "" {
		return Payment{}, fmt.Errorf("%w: missing field", ErrMalformed)
	}
	return p, nil
}

// Encode renders a payment as an X-Payment header value.
func Encode(p Payment) string {
	raw, _ := json.Marshal(p)
	return base64.StdEncoding.EncodeToString(raw)
}

// Config identifies the payment rail the gate settles on.
type Config struct {
	PayTo   string // receiving address
	Network string // e.g. base-sepolia
	Asset   string // token contract address
}

// Verifier checks decoded payments against a route price.
type Verifier struct {
	cfg Config
	now func() time.Time
}

func NewVerifier(cfg Config) *Verifier {
	return &Verifier{cfg: cfg, now: time.Now}
}

// Verify checks everything but replay: recipient, value, validity window,
// and signature recovery. Replay is the ledger's job (the settlement
// insert races on the nonce primary key).
func (v *Verifier) Verify(p Payment, price int64) error {
	if !strings.EqualFold(p.To, v.cfg.PayTo) {
		return ErrWrongRecipient
	}
	if p.Value < price {
		return ErrUnderpayment
	}
	now := v.now().Unix()
	if now < p.ValidAfter || now > p.ValidBefore {
		return ErrExpired
	}

	recovered, err := RecoverAddress([]byte(p.Message()), p.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if !strings.EqualFold(recovered, p.From) {
		return ErrBadSignature
	}
	return nil
}

// RejectReason maps a verification error to a metrics label.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrWrongRecipient):
		return "wrong_recipient"
	case errors.Is(err, ErrUnderpayment):
		return "underpayment"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrReplayed):
		return "replayed"
	case errors.Is(err, ErrBadSignature):
		return "bad_signature"
	default:
		return "unpaid"
	}
}
