package book

import (
	"container/heap"
)

// Book is the per-shard collection of per-instrument sell-order heaps.
//
// Book itself is not safe for concurrent use — the matching shard's
// exclusion boundary (internal/matching.Consumer) acquires a single
// reader-writer lock around each handler's full book computation, releases
// it before publishing, and calls into Book only while holding it. This mirrors spec.md §5: the dry-run
// feasibility check and the actual execution must observe identical state,
// which only holds if nothing else can mutate the book in between.
type Book struct {
	stocks map[string]*sellHeap
}

// New creates an empty book store.
func New() *Book {
	return &Book{stocks: make(map[string]*sellHeap)}
}

func (b *Book) heapFor(stockID string) *sellHeap {
	h, ok := b.stocks[stockID]
	if !ok {
		h = &sellHeap{}
		heap.Init(h)
		b.stocks[stockID] = h
	}
	return h
}

// Insert adds a resting order to its instrument's heap, creating the heap
// on first use. order.CurQuantity must be > 0.
func (b *Book) Insert(order *SellOrder) {
	h := b.heapFor(order.StockID)
	heap.Push(h, order)
}

// Peek returns the minimum-price resting order for an instrument, or nil if
// the instrument has no book or an empty one.
func (b *Book) Peek(stockID string) *SellOrder {
	h, ok := b.stocks[stockID]
	if !ok || h.Len() == 0 {
		return nil
	}
	return (*h)[0]
}

// Pop removes and returns the minimum-price resting order for an
// instrument, or nil if there is none.
func (b *Book) Pop(stockID string) *SellOrder {
	h, ok := b.stocks[stockID]
	if !ok || h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*SellOrder)
}

// GetAllOrders returns an unordered view of all resting orders for an
// instrument, used for depth summation.
func (b *Book) GetAllOrders(stockID string) []*SellOrder {
	h, ok := b.stocks[stockID]
	if !ok {
		return nil
	}
	out := make([]*SellOrder, len(*h))
	copy(out, *h)
	return out
}

// RemoveOrder removes and returns the resting order with the given
// transaction id for an instrument, or nil if not found. O(n log n):
// drains the heap into a temporary, omitting the match, then swaps back.
func (b *Book) RemoveOrder(stockID, stockTxID string) *SellOrder {
	h, ok := b.stocks[stockID]
	if !ok {
		return nil
	}

	var removed *SellOrder
	temp := &sellHeap{}
	heap.Init(temp)

	for h.Len() > 0 {
		order := heap.Pop(h).(*SellOrder)
		if order.StockTxID == stockTxID {
			removed = order
			continue
		}
		heap.Push(temp, order)
	}

	b.stocks[stockID] = temp
	return removed
}

// CloneHeap returns an independent copy of an instrument's resting orders,
// for the market-buy dry-run to pop against without mutating the live book.
// ok is false if the instrument has no book at all.
func (b *Book) CloneHeap(stockID string) (cloned []*SellOrder, ok bool) {
	h, exists := b.stocks[stockID]
	if !exists {
		return nil, false
	}
	c := h.clone()
	out := make([]*SellOrder, len(c))
	copy(out, c)
	return out, true
}

// Stats reports the resting depth and best price for an instrument. ok is
// false if the instrument has no resting orders.
func (b *Book) Stats(stockID string) (depth int, bestPrice float64, ok bool) {
	h, exists := b.stocks[stockID]
	if !exists || h.Len() == 0 {
		return 0, 0, false
	}
	return h.Len(), (*h)[0].Price, true
}

// Instruments returns the set of instrument ids the book has ever seen a
// heap created for (including instruments whose heap is currently empty).
func (b *Book) Instruments() []string {
	out := make([]string, 0, len(b.stocks))
	for id := range b.stocks {
		out = append(out, id)
	}
	return out
}

// PopFromClone pops the minimum-price order out of a cloned slice produced
// by CloneHeap, maintaining heap order. The slice must have been obtained
// via CloneHeap (or build up via successive PopFromClone calls on the same
// slice) so its backing array is already heap-ordered via container/heap.
func PopFromClone(cloned []*SellOrder) (*SellOrder, []*SellOrder) {
	if len(cloned) == 0 {
		return nil, cloned
	}
	h := sellHeap(cloned)
	top := heap.Pop(&h).(*SellOrder)
	return top, []*SellOrder(h)
}
