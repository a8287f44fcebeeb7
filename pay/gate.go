package pay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"hn402/metrics"
)

// validityWindow is how long a quote in a 402 body is good for.
const validityWindow = 5 * time.Minute

// Schedule maps route keys to prices in USDC atomic units (6 decimals).
// A zero price means free: the gate never demands a header for it.
type Schedule map[string]int64

// Terms is the route-independent half of a payment quote: the rail,
// recipient, and validity window. Served as-is by the pricing endpoint.
type Terms struct {
	Scheme          string `json:"scheme"`
	Network         string `json:"network"`
	Asset           string `json:"asset"`
	PayTo           string `json:"payTo"`
	ValiditySeconds int64  `json:"validitySeconds"`
	QuotedAt        int64  `json:"quotedAt"`
}

// Requirements is the JSON body of a 402 response: the terms plus the
// price and resource of the route that demanded payment.
type Requirements struct {
	Terms
	MaxAmountRequired int64  `json:"maxAmountRequired"`
	Resource          string `json:"resource"`
	Error             string `json:"error,omitempty"`
}

// Settler records settled payments. Seen is a cheap replay pre-check;
// Record is authoritative and must surface a replayed nonce as an error
// wrapping ErrReplayed.
type Settler interface {
	Seen(ctx context.Context, nonce string) (bool, error)
	Record(ctx context.Context, nonce, payer, route string, amount int64) error
}

// Gate is the payment middleware. With Free set it waves everything
// through without demanding or verifying payment.
type Gate struct {
	cfg      Config
	schedule Schedule
	verifier *Verifier
	settler  Settler
	Free     bool
}

func NewGate(cfg Config, schedule Schedule, settler Settler) *Gate {
	return &Gate{
		cfg:      cfg,
		schedule: schedule,
		verifier: NewVerifier(cfg),
		settler:  settler,
	}
}

// Prices returns the price table, for the pricing endpoint.
func (g *Gate) Prices() Schedule { return g.schedule }

// Terms builds the route-independent quote half.
func (g *Gate) Terms() Terms {
	return Terms{
		Scheme:          "exact",
		Network:         g.cfg.Network,
		Asset:           g.cfg.Asset,
		PayTo:           g.cfg.PayTo,
		ValiditySeconds: int64(validityWindow.Seconds()),
		QuotedAt:        time.Now().Unix(),
	}
}

// Requirements builds the quote body for a route.
func (g *Gate) Requirements(route string, errMsg string) Requirements {
	return Requirements{
		Terms:             g.Terms(),
		MaxAmountRequired: g.schedule[route],
		Resource:          route,
		Error:             errMsg,
	}
}

// Wrap gates a handler behind the route's price. Free routes pass
// through untouched.
func (g *Gate) Wrap(route string, next http.HandlerFunc) http.Handler {
	price := g.schedule[route]
	if price == 0 {
		return http.HandlerFunc(next)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.Free {
			next(w, r)
			return
		}

		header := r.Header.Get(Header)
		if header == "" {
			g.demand(w, route, "")
			return
		}

		payment, err := Decode(header)
		if err == nil {
			// Reject known nonces before the signature work; the settlement
			// insert below still catches the race, so a failed lookup only
			// degrades to the slower path.
			seen, seenErr := g.settler.Seen(r.Context(), payment.Nonce)
			if seenErr != nil {
				slog.Warn("settlement lookup failed", "route", route, "nonce", payment.Nonce, "error", seenErr)
			}
			if seen {
				err = ErrReplayed
			} else {
				err = g.verifier.Verify(payment, price)
			}
		}
		if err != nil {
			metrics.RecordRejection(RejectReason(err))
			g.demand(w, route, err.Error())
			return
		}

		// The settlement insert is the replay check: losing the race on
		// the nonce is a rejection, any other write failure is a 500
		// because serving without a recorded settlement would let the
		// same nonce pay twice.
		err = g.settler.Record(r.Context(), payment.Nonce, payment.From, route, payment.Value)
		if err != nil {
			if errors.Is(err, ErrReplayed) {
				metrics.RecordRejection(RejectReason(err))
				g.demand(w, route, ErrReplayed.Error())
				return
			}
			slog.Error("settlement write failed", "route", route, "nonce", payment.Nonce, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		metrics.RecordSettlement(route, payment.Value)
		w.Header().Set("X-Payment-Response", "settled")
		next(w, r)
	})
}

func (g *Gate) demand(w http.ResponseWriter, route, errMsg string) {
	body, err := json.Marshal(g.Requirements(route, errMsg))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusPaymentRequired)
	w.Write(body)
}
