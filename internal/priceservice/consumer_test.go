package priceservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestConsumerUpsertsOnFullPayload(t *testing.T) {
	store := NewStore()
	c := NewConsumer(store, zap.NewNop())

	c.Handle([]byte(`{"stock_id":"AAPL","stock_name":"Apple","current_price":101.9}`))

	all := store.All()
	assert.Len(t, all, 1)
	assert.Equal(t, int64(102), all[0].CurrentPrice)
}

func TestConsumerRemovesOnNullFields(t *testing.T) {
	store := NewStore()
	store.Upsert("AAPL", "Apple", 100)
	c := NewConsumer(store, zap.NewNop())

	c.Handle([]byte(`{"stock_id":"AAPL","stock_name":null,"current_price":null}`))

	assert.Empty(t, store.All())
}

func TestConsumerIgnoresMalformedPayload(t *testing.T) {
	store := NewStore()
	c := NewConsumer(store, zap.NewNop())

	assert.NotPanics(t, func() { c.Handle([]byte(`not json`)) })
	assert.Empty(t, store.All())
}
