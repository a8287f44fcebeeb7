package api

import (
	"net/http"
	"sort"

	"hn402/pay"
)

type PricingHandler struct {
	gate *pay.Gate
}

func NewPricingHandler(gate *pay.Gate) *PricingHandler {
	return &PricingHandler{gate: gate}
}

type routePrice struct {
	Route string `json:"route"`
	Price int64  `json:"price"`
}

// ServeHTTP handles GET /api/pricing: the full price schedule plus the
// payment requirements a payer needs, so clients can discover terms
// without burning a 402 round trip.
func (h *PricingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prices := h.gate.Prices()
	routes := make([]routePrice, 0, len(prices))
	for route, price := range prices {
		routes = append(routes, routePrice{Route: route, Price: price})
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Route < routes[j].Route })

	resp := map[string]interface{}{
		"asset":  "USDC (atomic units, 6 decimals)",
		"routes": routes,
		"terms":  h.gate.Terms(),
	}
	writeJSON(w, r, resp)
}
