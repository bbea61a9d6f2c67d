// Package matching implements the order consumer: it decodes broker
// messages, dispatches by order type under the shard's exclusion boundary,
// mutates the book store, and emits outbound events.
package matching

// MarketBuyRequest is the inbound payload for routing key
// order.market_buy.shard_<id>.
type MarketBuyRequest struct {
	StockID   string  `json:"stock_id" validate:"required"`
	Quantity  uint64  `json:"quantity" validate:"gt=0"`
	StockTxID string  `json:"stock_tx_id" validate:"required"`
	Budget    float64 `json:"budget" validate:"gt=0"`
	UserName  string  `json:"user_name" validate:"required"`
}

// MarketBuyResponse is the buy_completed outbound event.
type MarketBuyResponse struct {
	Success bool           `json:"success"`
	Data    MarketBuyData  `json:"data"`
}

// MarketBuyData carries the buy's outcome. Quantity and PriceTotal are nil
// on failure.
type MarketBuyData struct {
	StockID     string   `json:"stock_id"`
	StockTxID   string   `json:"stock_tx_id"`
	Quantity    *uint64  `json:"quantity"`
	PriceTotal  *float64 `json:"price_total"`
}

// OrderUpdate is the sale_update outbound event, emitted once per fill.
type OrderUpdate struct {
	StockID           string  `json:"stock_id"`
	StockTxID         string  `json:"stock_tx_id"`
	Price             float64 `json:"price"`
	SoldQuantity      uint64  `json:"sold_quantity"`
	RemainingQuantity uint64  `json:"remaining_quantity"`
	UserName          string  `json:"user_name"`
}

// LimitSellRequest is the inbound payload for routing key
// order.limit_sell.shard_<id>.
type LimitSellRequest struct {
	StockID   string  `json:"stock_id" validate:"required"`
	StockName string  `json:"stock_name" validate:"required"`
	Quantity  uint64  `json:"quantity" validate:"gt=0"`
	Price     float64 `json:"price" validate:"gt=0"`
	StockTxID string  `json:"stock_tx_id" validate:"required"`
	UserName  string  `json:"user_name" validate:"required"`
}

// LimitSellCancelRequest is the inbound payload for routing key
// order.limit_sell_cancellation.shard_<id>. Quantity and Price are accepted
// for wire-shape compatibility but unused: lookup is by StockTxID alone
// (spec.md §9).
type LimitSellCancelRequest struct {
	StockID   string  `json:"stock_id" validate:"required"`
	Quantity  uint64  `json:"quantity"`
	Price     float64 `json:"price"`
	StockTxID string  `json:"stock_tx_id" validate:"required"`
}

// LimitSellCancelResponse is the cancelled outbound event.
type LimitSellCancelResponse struct {
	Success bool                     `json:"success"`
	Data    *LimitSellCancelData     `json:"data"`
}

// LimitSellCancelData describes the cancelled resting order. Nil on the
// failure response.
type LimitSellCancelData struct {
	StockID       string  `json:"stock_id"`
	StockTxID     string  `json:"stock_tx_id"`
	PartiallySold bool    `json:"partially_sold"`
	OriQuantity   uint64  `json:"ori_quantity"`
	CurQuantity   uint64  `json:"cur_quantity"`
	SoldQuantity  uint64  `json:"sold_quantity"`
	Price         float64 `json:"price"`
}

// StockPrice is the outbound top-of-book snapshot, routing key
// stock.price.<stock_id>. StockName and CurrentPrice are nil when the
// instrument has no resting orders.
type StockPrice struct {
	StockID      string   `json:"stock_id"`
	StockName    *string  `json:"stock_name"`
	CurrentPrice *float64 `json:"current_price"`
}
