package book

// sellHeap is a container/heap.Interface over resting sell orders for a
// single instrument, ordered by ascending price (min-heap). Ties at equal
// price fall back to heap-internal order; no time priority is guaranteed
// beyond insertion order into the heap.
type sellHeap []*SellOrder

func (h sellHeap) Len() int { return len(h) }

func (h sellHeap) Less(i, j int) bool {
	return comparePrice(h[i].Price, h[j].Price) < 0
}

func (h sellHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *sellHeap) Push(x interface{}) {
	order := x.(*SellOrder)
	order.index = len(*h)
	*h = append(*h, order)
}

func (h *sellHeap) Pop() interface{} {
	old := *h
	n := len(old)
	order := old[n-1]
	old[n-1] = nil
	order.index = -1
	*h = old[:n-1]
	return order
}

// clone returns a deep-enough copy for the market-buy dry-run: the order
// pointers themselves are cloned so that popping the cloned heap cannot
// mutate the live book's resting orders.
func (h sellHeap) clone() sellHeap {
	c := make(sellHeap, len(h))
	for i, o := range h {
		cl := o.Clone()
		cl.index = i
		c[i] = cl
	}
	return c
}
