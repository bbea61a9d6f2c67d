package priceservice

import (
	"encoding/json"

	"go.uber.org/zap"
)

// priceUpdate is the stock.price.<id> wire payload. StockName and
// CurrentPrice are nil when the instrument has no resting sell orders
// (matching.StockPrice emits both fields unset in that case).
type priceUpdate struct {
	StockID      string   `json:"stock_id"`
	StockName    *string  `json:"stock_name"`
	CurrentPrice *float64 `json:"current_price"`
}

// Consumer applies incoming stock.price.* events to a Store.
type Consumer struct {
	store  *Store
	logger *zap.Logger
}

// NewConsumer builds a Consumer writing into store.
func NewConsumer(store *Store, logger *zap.Logger) *Consumer {
	return &Consumer{store: store, logger: logger}
}

// Handle applies one stock.price.* delivery body to the store: upserts when
// both name and price are present, removes the entry otherwise
// (original_source's consumer.rs).
func (c *Consumer) Handle(body []byte) {
	var pu priceUpdate
	if err := json.Unmarshal(body, &pu); err != nil {
		c.logger.Error("failed to parse price update", zap.Error(err))
		return
	}

	if pu.CurrentPrice != nil && pu.StockName != nil {
		c.store.Upsert(pu.StockID, *pu.StockName, *pu.CurrentPrice)
		return
	}
	c.store.Remove(pu.StockID)
}
