// Package metrics exposes the prometheus counters and gauges the matching
// shard reports, grounded on the teacher's internal/monitoring component
// but scoped down to what spec.md's matching subsystem actually produces.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sban26/matchshard/internal/book"
)

// Collector owns the matching shard's prometheus instruments.
type Collector struct {
	marketBuySuccess prometheus.Counter
	marketBuyFailure prometheus.Counter
	fills            prometheus.Counter
	limitSells       prometheus.Counter
	cancellations    prometheus.Counter
	bookDepth        *prometheus.GaugeVec
	bookBestPrice    *prometheus.GaugeVec
}

// NewCollector registers the shard's instruments against reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		marketBuySuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchshard_market_buy_success_total",
			Help: "Number of market buys that completed successfully.",
		}),
		marketBuyFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchshard_market_buy_failure_total",
			Help: "Number of market buys that failed depth/budget checks.",
		}),
		fills: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchshard_fills_total",
			Help: "Number of individual sale_update fills emitted.",
		}),
		limitSells: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchshard_limit_sells_total",
			Help: "Number of limit sell orders admitted to the book.",
		}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchshard_cancellations_total",
			Help: "Number of resting orders removed by cancellation.",
		}),
		bookDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "matchshard_book_depth",
			Help: "Number of resting sell orders for an instrument.",
		}, []string{"stock_id"}),
		bookBestPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "matchshard_book_best_price",
			Help: "Lowest resting sell price for an instrument.",
		}, []string{"stock_id"}),
	}

	reg.MustRegister(c.marketBuySuccess, c.marketBuyFailure, c.fills, c.limitSells,
		c.cancellations, c.bookDepth, c.bookBestPrice)
	return c
}

// ObserveMarketBuy records a completed market buy and its fill count.
func (c *Collector) ObserveMarketBuy(success bool, fillCount int) {
	if success {
		c.marketBuySuccess.Inc()
	} else {
		c.marketBuyFailure.Inc()
	}
	c.fills.Add(float64(fillCount))
}

// ObserveLimitSell records a new resting order admitted for stockID.
func (c *Collector) ObserveLimitSell(stockID string) {
	c.limitSells.Inc()
}

// ObserveCancellation records a successful cancellation for stockID.
func (c *Collector) ObserveCancellation(stockID string) {
	c.cancellations.Inc()
}

// ObserveBookStats refreshes the depth/best-price gauges for every
// instrument the book has ever created a heap for, grounded on the
// teacher's Engine.GetStats (SPEC_FULL.md §8.A). An instrument with no
// resting orders reports zero depth and has its best-price gauge cleared.
func (c *Collector) ObserveBookStats(b *book.Book) {
	for _, stockID := range b.Instruments() {
		depth, bestPrice, ok := b.Stats(stockID)
		if !ok {
			c.bookDepth.WithLabelValues(stockID).Set(0)
			c.bookBestPrice.DeleteLabelValues(stockID)
			continue
		}
		c.bookDepth.WithLabelValues(stockID).Set(float64(depth))
		c.bookBestPrice.WithLabelValues(stockID).Set(bestPrice)
	}
}
