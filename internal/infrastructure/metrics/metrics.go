package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TradeMetrics counts offer lifecycle operations.
type TradeMetrics struct {
	OffersCreatedTotal    prometheus.Counter
	OfferTransitionsTotal *prometheus.CounterVec
}

// NewTradeMetrics registers the trade metrics on the default registry.
func NewTradeMetrics() *TradeMetrics {
	return &TradeMetrics{
		OffersCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "trade_offers_created_total",
			Help: "Total number of trade offers created",
		}),
		OfferTransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trade_offer_transitions_total",
			Help: "Trade offer transition attempts by action and outcome",
		}, []string{"action", "outcome"}),
	}
}

func (m *TradeMetrics) OfferCreated() {
	m.OffersCreatedTotal.Inc()
}

func (m *TradeMetrics) OfferTransition(action, outcome string) {
	m.OfferTransitionsTotal.WithLabelValues(action, outcome).Inc()
}
