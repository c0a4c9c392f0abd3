// Package metrics exposes prometheus counters for the signal engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Skip reasons recorded by SymbolSkipsTotal.
const (
	SkipPending   = "pending"
	SkipClaimed   = "claimed"
	SkipNoSetup   = "no_setup"
	SkipDuplicate = "duplicate"
)

var (
	CandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signal_candidates_total", Help: "Signals emitted by the engine"},
		[]string{"symbol", "timeframe", "direction"},
	)
	SymbolSkipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signal_symbol_skips_total", Help: "Symbols skipped during bot runs"},
		[]string{"reason"},
	)
	ProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signal_provider_errors_total", Help: "Failed market data requests"},
		[]string{"timeframe"},
	)
	PersistErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "signal_persist_errors_total", Help: "Signals that could not be stored"},
	)
)

func init() {
	prometheus.MustRegister(CandidatesTotal, SymbolSkipsTotal, ProviderErrorsTotal, PersistErrorsTotal)
}

// Handler serves the default registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
