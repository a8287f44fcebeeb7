package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/peterbourgon/ff/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hn402/api"
	"hn402/hn"
	"hn402/ledger"
	"hn402/pay"
)

// defaultAsset is the USDC contract on Base Sepolia.
const defaultAsset = "0x036CbD53842c5426634e7929541eC2318f3dCF7e"

// prices in USDC atomic units (6 decimals) per invocation.
var schedule = pay.Schedule{
	"overview": 0,
	"top":      1000,
	"new":      1000,
	"best":     1000,
	"story":    2000,
	"trending": 5000,
	"article":  3000,
	"pricing":  0,
	"health":   0,
}

func main() {
	flagSet := flag.NewFlagSet("hn402", flag.ExitOnError)

	var (
		addr        string
		port        int
		dbPath      string
		upstreamURL string
		payTo       string
		payNetwork  string
		payAsset    string
		freeMode    bool
	)
	flagSet.StringVar(&addr, "addr", "", "Address to listen on")
	flagSet.IntVar(&port, "port", 3000, "Port to listen on")
	flagSet.StringVar(&dbPath, "db-path", "hn402.db", "Path to SQLite settlement ledger")
	flagSet.StringVar(&upstreamURL, "upstream-url", hn.DefaultBaseURL, "Hacker News API base URL")
	flagSet.StringVar(&payTo, "pay-to", "", "Receiving address for payments")
	flagSet.StringVar(&payNetwork, "pay-network", "base-sepolia", "Payment network identifier")
	flagSet.StringVar(&payAsset, "pay-asset", defaultAsset, "Payment asset contract address")
	flagSet.BoolVar(&freeMode, "free-mode", false, "Disable the payment gate")

	if err := ff.Parse(flagSet, os.Args[1:], ff.WithEnvVars()); err != nil {
		slog.Error("failed to parse flags", "error", err)
		os.Exit(1)
	}

	if payTo == "" && !freeMode {
		slog.Error("pay-to must be set unless free-mode is enabled (via flags or env vars PAY_TO, FREE_MODE)")
		os.Exit(1)
	}

	// Settlement ledger
	l, err := ledger.Open(dbPath)
	if err != nil {
		slog.Error("failed to open ledger", "error", err)
		os.Exit(1)
	}
	defer l.Close()

	// Payment gate
	gate := pay.NewGate(pay.Config{
		PayTo:   payTo,
		Network: payNetwork,
		Asset:   payAsset,
	}, schedule, settler{l})
	gate.Free = freeMode
	if freeMode {
		slog.Info("payment gate disabled")
	} else {
		slog.Info("payment gate configured", "network", payNetwork, "pay_to", payTo)
	}

	// HN client
	hnClient := hn.NewClient(upstreamURL)

	// API handlers
	storiesHandler := api.NewStoriesHandler(hnClient)
	trendingHandler := api.NewTrendingHandler(hnClient)
	articlesHandler := api.NewArticlesHandler(hnClient)
	pricingHandler := api.NewPricingHandler(gate)
	healthHandler := api.NewHealthHandler(l)

	// Routes: payment gate innermost, metrics outermost so rejected
	// requests still count.
	priced := func(route string, hf http.HandlerFunc) http.Handler {
		return api.Instrument(route, gate.Wrap(route, hf))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /api/overview", priced("overview", storiesHandler.Overview))
	mux.Handle("GET /api/stories/top", priced("top", storiesHandler.Top))
	mux.Handle("GET /api/stories/new", priced("new", storiesHandler.New))
	mux.Handle("GET /api/stories/best", priced("best", storiesHandler.Best))
	mux.Handle("GET /api/stories/{id}/article", priced("article", articlesHandler.GetArticle))
	mux.Handle("GET /api/stories/{id}", priced("story", storiesHandler.GetStory))
	mux.Handle("GET /api/trending", priced("trending", trendingHandler.Trending))
	mux.Handle("GET /api/pricing", api.Instrument("pricing", pricingHandler))
	mux.Handle("GET /api/health", api.Instrument("health", healthHandler))
	mux.Handle("GET /metrics", promhttp.Handler())

	// HTTP server with graceful shutdown
	listenAddr := fmt.Sprintf("%s:%d", addr, port)
	srv := &http.Server{
		Addr:    listenAddr,
		Handler: mux,
	}

	go func() {
		slog.Info("server starting", "addr", listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("received signal, shutting down", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}

// settler adapts the ledger to the gate, translating the duplicate-nonce
// sentinel into the gate's replay error.
type settler struct {
	ledger *ledger.Ledger
}

func (s settler) Seen(ctx context.Context, nonce string) (bool, error) {
	return s.ledger.Seen(ctx, nonce)
}

func (s settler) Record(ctx context.Context, nonce, payer, route string, amount int64) error {
	err := s.ledger.Record(ctx, ledger.Settlement{
		Nonce:     nonce,
		Payer:     payer,
		Route:     route,
		Amount:    amount,
		SettledAt: time.Now().Unix(),
	})
	if errors.Is(err, ledger.ErrDuplicateNonce) {
		return pay.ErrReplayed
	}
	return err
}
