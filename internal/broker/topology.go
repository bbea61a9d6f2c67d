package broker

import "fmt"

// Exchange names, per spec.md §6. All three are declared non-durable: the
// book is never persisted across restarts, so durable exchanges would only
// survive the shard they're meaningless without.
const (
	OrderExchange       = "order_exchange"        // topic, inbound orders
	OrderUpdateExchange = "order_update_exchange"  // direct, outbound fills/cancellations/buy-completions
	StockPricesExchange = "stock_prices_exchange"  // topic, outbound top-of-book snapshots
)

// Inbound order types, selecting the routing-key shape
// order.<type>.shard_<id>.
const (
	TypeMarketBuy             = "market_buy"
	TypeLimitSell              = "limit_sell"
	TypeLimitSellCancellation = "limit_sell_cancellation"
)

// Outbound order-update kinds, routed as order.<kind> on OrderUpdateExchange.
const (
	KindBuyCompleted = "buy_completed"
	KindSaleUpdate   = "sale_update"
	KindCancelled    = "cancelled"
)

// InboundRoutingKey builds the routing key a shard binds its queues to for
// a given order type: order.<type>.shard_<id>.
func InboundRoutingKey(orderType string, shardID int) string {
	return fmt.Sprintf("order.%s.shard_%d", orderType, shardID)
}

// OutboundOrderUpdateRoutingKey builds order.<kind> for publishes onto
// OrderUpdateExchange.
func OutboundOrderUpdateRoutingKey(kind string) string {
	return fmt.Sprintf("order.%s", kind)
}

// StockPriceRoutingKey builds stock.price.<stock_id> for publishes onto
// StockPricesExchange.
func StockPriceRoutingKey(stockID string) string {
	return fmt.Sprintf("stock.price.%s", stockID)
}

// StockPriceBindingKey is the wildcard binding the price cache subscribes
// with: stock.price.*.
const StockPriceBindingKey = "stock.price.*"

// ShardQueueNames returns the three per-shard queue names spec.md §6 names.
func ShardQueueNames(shardID int) (marketBuy, limitSell, cancelSell string) {
	return fmt.Sprintf("market_buy_queue_shard_%d", shardID),
		fmt.Sprintf("limit_sell_queue_shard_%d", shardID),
		fmt.Sprintf("cancel_sell_queue_shard_%d", shardID)
}

// PriceQueueName is the single queue the price cache consumes from.
const PriceQueueName = "stock_prices_queue"
