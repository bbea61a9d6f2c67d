package matching

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sban26/matchshard/internal/book"
	"github.com/sban26/matchshard/internal/broker"
	"github.com/sban26/matchshard/internal/metrics"
)

// Consumer is the order consumer: it decodes broker deliveries, dispatches
// by order type, and serializes all book mutations under one exclusion
// boundary (spec.md §5).
type Consumer struct {
	mu       sync.RWMutex
	book     *book.Book
	adapter  *broker.Adapter
	pools    map[string]*ants.Pool
	shardID  int
	logger   *zap.Logger
	validate *validator.Validate
	metrics  *metrics.Collector
}

// Config configures a Consumer.
type Config struct {
	ShardID int
}

// orderTypes enumerates the routing-key order types a shard binds a queue
// for (spec.md §6). Each gets its own single-worker pool.
var orderTypes = []string{broker.TypeMarketBuy, broker.TypeLimitSell, broker.TypeLimitSellCancellation}

// New creates a Consumer backed by an empty book store.
func New(cfg Config, adapter *broker.Adapter, collector *metrics.Collector, logger *zap.Logger) (*Consumer, error) {
	panicHandler := ants.WithPanicHandler(func(i interface{}) {
		logger.Error("order handler task panicked", zap.Any("recovered", i))
	})

	pools := make(map[string]*ants.Pool, len(orderTypes))
	for _, orderType := range orderTypes {
		pool, err := ants.NewPool(1, panicHandler)
		if err != nil {
			return nil, err
		}
		pools[orderType] = pool
	}

	return &Consumer{
		book:     book.New(),
		adapter:  adapter,
		pools:    pools,
		shardID:  cfg.ShardID,
		logger:   logger,
		validate: validator.New(),
		metrics:  collector,
	}, nil
}

// Close releases the worker pools, waiting up to ten seconds per pool for
// tasks that are already running to finish.
func (c *Consumer) Close() {
	for orderType, pool := range c.pools {
		if err := pool.ReleaseTimeout(10 * time.Second); err != nil {
			c.logger.Warn("worker pool did not drain before release timeout", zap.String("order_type", orderType), zap.Error(err))
		}
	}
}

// Dispatch submits one delivery to the worker pool dedicated to its order
// type. Each queue's pool has exactly one worker, so deliveries for the same
// queue execute strictly in broker-delivered order (spec.md §5); deliveries
// for different queues still run concurrently, each on its own worker. The
// delivery is always acknowledged once its handler returns, to prevent
// poison-message loops (spec.md §4.2, §7).
func (c *Consumer) Dispatch(d amqp.Delivery) error {
	orderType := orderTypeFromRoutingKey(d.RoutingKey)

	pool, ok := c.pools[orderType]
	if !ok {
		c.logger.Error("unknown routing key", zap.String("routing_key", d.RoutingKey))
		c.adapter.Ack(d.DeliveryTag)
		return nil
	}

	return pool.Submit(func() {
		c.handleDelivery(orderType, d)
	})
}

func orderTypeFromRoutingKey(routingKey string) string {
	parts := strings.Split(routingKey, ".")
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

func (c *Consumer) handleDelivery(orderType string, d amqp.Delivery) {
	defer c.adapter.Ack(d.DeliveryTag)

	switch orderType {
	case broker.TypeMarketBuy:
		c.handleMarketBuy(d.Body)
	case broker.TypeLimitSell:
		c.handleLimitSell(d.Body)
	case broker.TypeLimitSellCancellation:
		c.handleCancel(d.Body)
	}
}

func (c *Consumer) handleMarketBuy(body []byte) {
	var req MarketBuyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.logger.Error("failed to parse market buy order", zap.Error(err))
		return
	}
	if err := c.validate.Struct(req); err != nil {
		c.logger.Error("market buy order failed validation", zap.Error(err))
		return
	}

	result := c.processMarketBuy(req)
	if c.metrics != nil {
		c.metrics.ObserveMarketBuy(result.response.Success, len(result.updates))
		c.reportBookStats()
	}

	if err := c.adapter.PublishOrderUpdate(broker.KindBuyCompleted, result.response); err != nil {
		c.logger.Error("failed to publish buy completion event", zap.Error(err))
	}

	for _, u := range result.updates {
		if err := c.adapter.PublishOrderUpdate(broker.KindSaleUpdate, u); err != nil {
			c.logger.Error("failed to publish order update", zap.Error(err))
		}
	}

	if result.haveCompletedSell {
		c.publishStockPrice(req.StockID)
	}
}

func (c *Consumer) handleLimitSell(body []byte) {
	var req LimitSellRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.logger.Error("failed to parse limit sell order", zap.Error(err))
		return
	}
	if err := c.validate.Struct(req); err != nil {
		c.logger.Error("limit sell order failed validation", zap.Error(err))
		return
	}

	c.processLimitSell(req)
	if c.metrics != nil {
		c.metrics.ObserveLimitSell(req.StockID)
		c.reportBookStats()
	}

	// Published unconditionally, even if the insert did not become the new
	// top-of-book — deduplication is explicitly out of scope (spec.md §9).
	c.publishStockPrice(req.StockID)
}

func (c *Consumer) handleCancel(body []byte) {
	var req LimitSellCancelRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.logger.Error("failed to parse limit sell cancellation", zap.Error(err))
		return
	}
	if err := c.validate.Struct(req); err != nil {
		c.logger.Error("limit sell cancellation failed validation", zap.Error(err))
		return
	}

	removed := c.processCancel(req)
	if removed == nil {
		if err := c.adapter.PublishOrderUpdate(broker.KindCancelled, LimitSellCancelResponse{Success: false}); err != nil {
			c.logger.Error("failed to publish cancellation response", zap.Error(err))
		}
		return
	}

	response := LimitSellCancelResponse{
		Success: true,
		Data: &LimitSellCancelData{
			StockID:       removed.StockID,
			StockTxID:     removed.StockTxID,
			PartiallySold: removed.PartiallySold,
			OriQuantity:   removed.OriQuantity,
			CurQuantity:   removed.CurQuantity,
			SoldQuantity:  removed.OriQuantity - removed.CurQuantity,
			Price:         removed.Price,
		},
	}
	if err := c.adapter.PublishOrderUpdate(broker.KindCancelled, response); err != nil {
		c.logger.Error("failed to publish cancellation response", zap.Error(err))
	}
	if c.metrics != nil {
		c.metrics.ObserveCancellation(removed.StockID)
		c.reportBookStats()
	}

	c.publishStockPrice(removed.StockID)
}

func (c *Consumer) publishStockPrice(stockID string) {
	price := c.currentTopOfBook(stockID)
	if err := c.adapter.PublishStockPrice(stockID, price); err != nil {
		c.logger.Error("failed to publish latest stock price", zap.String("stock_id", stockID), zap.Error(err))
	}
}

// reportBookStats refreshes the depth/best-price gauges for every
// instrument under a brief read lock (SPEC_FULL.md §8.A).
func (c *Consumer) reportBookStats() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	c.metrics.ObserveBookStats(c.book)
}
