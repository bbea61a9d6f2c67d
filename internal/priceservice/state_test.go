package priceservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpsertRoundsPriceToNearestInt(t *testing.T) {
	s := NewStore()
	s.Upsert("AAPL", "Apple", 101.6)

	all := s.All()
	assert.Len(t, all, 1)
	assert.Equal(t, int64(102), all[0].CurrentPrice)
	assert.Equal(t, "Apple", all[0].StockName)
}

func TestUpsertOverwritesExistingEntry(t *testing.T) {
	s := NewStore()
	s.Upsert("AAPL", "Apple", 100)
	s.Upsert("AAPL", "Apple", 150)

	all := s.All()
	assert.Len(t, all, 1)
	assert.Equal(t, int64(150), all[0].CurrentPrice)
}

func TestRemoveDropsEntry(t *testing.T) {
	s := NewStore()
	s.Upsert("AAPL", "Apple", 100)
	s.Remove("AAPL")

	assert.Empty(t, s.All())
}

func TestRemoveUnknownStockIsNoop(t *testing.T) {
	s := NewStore()
	assert.NotPanics(t, func() { s.Remove("NOPE") })
}
