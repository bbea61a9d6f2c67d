package matching

import (
	"github.com/sban26/matchshard/internal/book"
	"go.uber.org/zap"
)

// marketBuyResult bundles everything handleMarketBuy needs to publish,
// computed entirely under the book's exclusion lock so the caller publishes
// it without re-reading the book; only the top-of-book price is sampled
// again afterwards (currentTopOfBook).
type marketBuyResult struct {
	response          MarketBuyResponse
	updates           []OrderUpdate
	haveCompletedSell bool
}

func failedMarketBuy(stockID, stockTxID string) marketBuyResult {
	return marketBuyResult{
		response: MarketBuyResponse{
			Success: false,
			Data: MarketBuyData{
				StockID:   stockID,
				StockTxID: stockTxID,
			},
		},
	}
}

// processMarketBuy runs the full market-buy algorithm (spec.md §4.3) under
// a single write-lock acquisition so the depth check, dry-run, and
// execution all observe identical book state.
func (c *Consumer) processMarketBuy(req MarketBuyRequest) marketBuyResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Step 1: depth check, excluding the requester's own resting orders.
	var availableShares uint64
	for _, o := range c.book.GetAllOrders(req.StockID) {
		if o.UserName != req.UserName {
			availableShares += o.CurQuantity
		}
	}
	if req.Quantity > availableShares {
		c.logger.Warn("insufficient depth for market buy",
			zap.String("stock_id", req.StockID),
			zap.Uint64("requested", req.Quantity),
			zap.Uint64("available", availableShares))
		return failedMarketBuy(req.StockID, req.StockTxID)
	}

	// Step 2: dry-run cost over a cloned heap; never mutates the live book.
	cloned, ok := c.book.CloneHeap(req.StockID)
	if !ok {
		// Unreachable given a passing depth check (it would have summed to
		// zero), kept as a defensive guard against the critical invariant
		// it protects.
		c.logger.Error("market buy passed depth check but book is missing",
			zap.String("stock_id", req.StockID))
		return failedMarketBuy(req.StockID, req.StockTxID)
	}

	var totalPriceDry float64
	remainingDry := req.Quantity
	for remainingDry > 0 {
		top, rest := book.PopFromClone(cloned)
		if top == nil {
			break
		}
		cloned = rest
		if top.UserName == req.UserName {
			continue
		}
		take := remainingDry
		if top.CurQuantity < take {
			take = top.CurQuantity
		}
		totalPriceDry += float64(take) * top.Price
		remainingDry -= take
	}

	// Step 3: budget check.
	if totalPriceDry > req.Budget {
		c.logger.Warn("market buy over budget",
			zap.String("stock_id", req.StockID),
			zap.Float64("required", totalPriceDry),
			zap.Float64("budget", req.Budget))
		return failedMarketBuy(req.StockID, req.StockTxID)
	}

	// Step 4: execute against the live book.
	var (
		totalPrice        float64
		sharesBought      uint64
		updates           []OrderUpdate
		haveCompletedSell bool
	)

	sharesToBuy := req.Quantity
	for sharesToBuy > 0 {
		top := c.book.Pop(req.StockID)
		if top == nil {
			c.logger.Error("market buy ran out of resting orders mid-execution",
				zap.String("stock_id", req.StockID))
			break
		}

		// Self-trade prevention: discard, do not reinsert, do not charge.
		if top.UserName == req.UserName {
			continue
		}

		if sharesToBuy >= top.CurQuantity {
			take := top.CurQuantity
			totalPrice += float64(take) * top.Price
			sharesBought += take
			sharesToBuy -= take

			top.CurQuantity = 0
			updates = append(updates, OrderUpdate{
				StockID:           top.StockID,
				StockTxID:         top.StockTxID,
				Price:             top.Price,
				SoldQuantity:      take,
				RemainingQuantity: 0,
				UserName:          top.UserName,
			})
			haveCompletedSell = true
		} else {
			take := sharesToBuy
			totalPrice += float64(take) * top.Price
			sharesBought += take

			top.CurQuantity -= take
			top.PartiallySold = true
			sharesToBuy = 0

			updates = append(updates, OrderUpdate{
				StockID:           top.StockID,
				StockTxID:         top.StockTxID,
				Price:             top.Price,
				SoldQuantity:      take,
				RemainingQuantity: top.CurQuantity,
				UserName:          top.UserName,
			})
			c.book.Insert(top)
		}
	}

	quantity := sharesBought
	priceTotal := totalPrice
	return marketBuyResult{
		response: MarketBuyResponse{
			Success: true,
			Data: MarketBuyData{
				StockID:    req.StockID,
				StockTxID:  req.StockTxID,
				Quantity:   &quantity,
				PriceTotal: &priceTotal,
			},
		},
		updates:           updates,
		haveCompletedSell: haveCompletedSell,
	}
}

// processLimitSell inserts a new resting order under the book's exclusion
// lock (spec.md §4.4).
func (c *Consumer) processLimitSell(req LimitSellRequest) {
	c.mu.Lock()
	c.book.Insert(&book.SellOrder{
		StockID:       req.StockID,
		StockName:     req.StockName,
		StockTxID:     req.StockTxID,
		Price:         req.Price,
		OriQuantity:   req.Quantity,
		CurQuantity:   req.Quantity,
		PartiallySold: false,
		UserName:      req.UserName,
	})
	c.mu.Unlock()
}

// processCancel removes a resting order by transaction id (spec.md §4.5).
// The returned order is nil if no such order was resting.
func (c *Consumer) processCancel(req LimitSellCancelRequest) *book.SellOrder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.book.RemoveOrder(req.StockID, req.StockTxID)
}

// currentTopOfBook samples the top-of-book under a brief read lock. Used
// after releasing the write lock (spec.md §5's deliberate relaxation): the
// published price is the top as of some moment after the mutation, not
// necessarily immediately after.
func (c *Consumer) currentTopOfBook(stockID string) StockPrice {
	c.mu.RLock()
	defer c.mu.RUnlock()

	top := c.book.Peek(stockID)
	if top == nil {
		return StockPrice{StockID: stockID}
	}
	name := top.StockName
	price := top.Price
	return StockPrice{StockID: stockID, StockName: &name, CurrentPrice: &price}
}
