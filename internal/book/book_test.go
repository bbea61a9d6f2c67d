package book

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkOrder(stockID, tx string, price float64, qty uint64, user string) *SellOrder {
	return &SellOrder{
		StockID:     stockID,
		StockName:   stockID + " Co",
		StockTxID:   tx,
		Price:       price,
		OriQuantity: qty,
		CurQuantity: qty,
		UserName:    user,
	}
}

func TestInsertAndPeekOrdersByPrice(t *testing.T) {
	b := New()
	b.Insert(mkOrder("X", "A", 5.0, 10, "alice"))
	b.Insert(mkOrder("X", "B", 3.0, 5, "alice"))
	b.Insert(mkOrder("X", "C", 4.0, 5, "alice"))

	top := b.Peek("X")
	require.NotNil(t, top)
	assert.Equal(t, "B", top.StockTxID)
	assert.Equal(t, 3.0, top.Price)
}

func TestPopRemovesMinimum(t *testing.T) {
	b := New()
	b.Insert(mkOrder("X", "A", 5.0, 10, "alice"))
	b.Insert(mkOrder("X", "B", 3.0, 5, "alice"))

	first := b.Pop("X")
	require.NotNil(t, first)
	assert.Equal(t, "B", first.StockTxID)

	second := b.Pop("X")
	require.NotNil(t, second)
	assert.Equal(t, "A", second.StockTxID)

	assert.Nil(t, b.Pop("X"))
}

func TestPeekMissingOrEmptyBookYieldsNothing(t *testing.T) {
	b := New()
	assert.Nil(t, b.Peek("missing"))

	b.Insert(mkOrder("Y", "A", 1.0, 1, "alice"))
	b.Pop("Y")
	assert.Nil(t, b.Peek("Y"))
}

func TestGetAllOrdersIsUnordered(t *testing.T) {
	b := New()
	b.Insert(mkOrder("X", "A", 5.0, 10, "alice"))
	b.Insert(mkOrder("X", "B", 3.0, 5, "bob"))

	all := b.GetAllOrders("X")
	assert.Len(t, all, 2)
}

func TestRemoveOrderByTxID(t *testing.T) {
	b := New()
	b.Insert(mkOrder("X", "A", 5.0, 10, "alice"))
	b.Insert(mkOrder("X", "B", 3.0, 5, "bob"))
	b.Insert(mkOrder("X", "C", 4.0, 5, "carol"))

	removed := b.RemoveOrder("X", "B")
	require.NotNil(t, removed)
	assert.Equal(t, "B", removed.StockTxID)

	assert.Nil(t, b.RemoveOrder("X", "B"))

	top := b.Peek("X")
	require.NotNil(t, top)
	assert.Equal(t, "C", top.StockTxID)
}

func TestRemoveOrderUnknownTx(t *testing.T) {
	b := New()
	b.Insert(mkOrder("X", "A", 5.0, 10, "alice"))
	assert.Nil(t, b.RemoveOrder("X", "nonexistent"))
	assert.Nil(t, b.RemoveOrder("unknown-stock", "A"))
}

func TestCloneHeapDoesNotMutateLiveBook(t *testing.T) {
	b := New()
	b.Insert(mkOrder("X", "A", 5.0, 10, "alice"))
	b.Insert(mkOrder("X", "B", 3.0, 5, "bob"))

	cloned, ok := b.CloneHeap("X")
	require.True(t, ok)

	top, rest := PopFromClone(cloned)
	require.NotNil(t, top)
	assert.Equal(t, "B", top.StockTxID)
	_, rest = PopFromClone(rest)
	assert.Empty(t, rest)

	// live book untouched
	assert.Equal(t, "B", b.Peek("X").StockTxID)
	all := b.GetAllOrders("X")
	assert.Len(t, all, 2)
}

func TestCloneHeapMissingStock(t *testing.T) {
	b := New()
	_, ok := b.CloneHeap("missing")
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	b := New()
	_, _, ok := b.Stats("X")
	assert.False(t, ok)

	b.Insert(mkOrder("X", "A", 5.0, 10, "alice"))
	b.Insert(mkOrder("X", "B", 3.0, 5, "bob"))
	depth, price, ok := b.Stats("X")
	assert.True(t, ok)
	assert.Equal(t, 2, depth)
	assert.Equal(t, 3.0, price)
}

func TestComparePriceTotalOrderingTreatsNaNAsGreatest(t *testing.T) {
	assert.Equal(t, 0, comparePrice(1.0, 1.0))
	assert.Equal(t, -1, comparePrice(1.0, 2.0))
	assert.Equal(t, 1, comparePrice(2.0, 1.0))
	assert.Equal(t, 1, comparePrice(math.NaN(), 1.0))
	assert.Equal(t, -1, comparePrice(1.0, math.NaN()))
	assert.Equal(t, 0, comparePrice(math.NaN(), math.NaN()))
}

func TestPartiallySoldInvariantIsCallerMaintained(t *testing.T) {
	o := mkOrder("X", "A", 1.0, 10, "alice")
	o.CurQuantity = 6
	o.PartiallySold = o.CurQuantity < o.OriQuantity
	assert.True(t, o.PartiallySold)
	assert.LessOrEqual(t, o.CurQuantity, o.OriQuantity)
}
