package broker

import (
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Adapter is the broker adapter: it declares the exchange/queue topology,
// exposes publish primitives, and a consumer-registration entry point. It
// holds the one AMQP channel the shard uses for both consuming and
// publishing — amqp091-go channels tolerate concurrent Publish calls from
// multiple goroutines, so handlers may publish without additional locking.
type Adapter struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *zap.Logger
}

// Dial connects to RabbitMQ and declares the three top-level exchanges.
func Dial(cfg Config, logger *zap.Logger) (*Adapter, error) {
	conn, err := amqp.Dial(cfg.URI())
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	a := &Adapter{conn: conn, ch: ch, logger: logger}
	if err := a.declareExchanges(); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return a, nil
}

func (a *Adapter) declareExchanges() error {
	exchanges := []struct {
		name, kind string
	}{
		{OrderExchange, "topic"},
		{OrderUpdateExchange, "direct"},
		{StockPricesExchange, "topic"},
	}

	for _, ex := range exchanges {
		if err := a.ch.ExchangeDeclare(ex.name, ex.kind, false, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}
	return nil
}

// Close releases the channel and connection. In-flight handlers should be
// allowed to finish before Close is called (see cmd/shard's shutdown path).
func (a *Adapter) Close() error {
	if err := a.ch.Close(); err != nil {
		a.logger.Warn("error closing amqp channel", zap.Error(err))
	}
	return a.conn.Close()
}

// DeclareAndBind declares a non-durable queue bound to an exchange with a
// routing key, returning the queue name.
func (a *Adapter) DeclareAndBind(queueName, exchange, routingKey string) (string, error) {
	q, err := a.ch.QueueDeclare(queueName, false, false, false, false, nil)
	if err != nil {
		return "", fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	if err := a.ch.QueueBind(q.Name, routingKey, exchange, false, nil); err != nil {
		return "", fmt.Errorf("bind queue %s to %s: %w", q.Name, routingKey, err)
	}

	return q.Name, nil
}

// Consume registers a consumer on a queue, acking manually (the caller acks
// via Ack after its handler runs, so a poison message never retries forever
// within the same delivery — spec.md §4.2).
func (a *Adapter) Consume(queue, consumerTag string) (<-chan amqp.Delivery, error) {
	deliveries, err := a.ch.Consume(queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", queue, err)
	}
	return deliveries, nil
}

// Ack acknowledges a single delivery. Acknowledgement is unconditional
// after a handler returns, regardless of success or failure outcome.
func (a *Adapter) Ack(tag uint64) {
	if err := a.ch.Ack(tag, false); err != nil {
		a.logger.Error("failed to ack delivery", zap.Uint64("delivery_tag", tag), zap.Error(err))
	}
}

// NewConsumerTag builds a unique per-process consumer tag for a named
// queue role, following the teacher's id-generation idiom
// (google/uuid in internal/architecture/cqrs/eventbus).
func NewConsumerTag(role string, shardID int) string {
	return fmt.Sprintf("%s_consumer_%d_%s", role, shardID, uuid.NewString())
}

// PublishOrderUpdate publishes one of buy_completed/sale_update/cancelled
// onto OrderUpdateExchange with routing key order.<kind>, mandatory and
// persistent delivery (spec.md §6).
func (a *Adapter) PublishOrderUpdate(kind string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", kind, err)
	}

	routingKey := OutboundOrderUpdateRoutingKey(kind)
	err = a.ch.Publish(OrderUpdateExchange, routingKey, true, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

// PublishStockPrice publishes a top-of-book snapshot onto
// StockPricesExchange with routing key stock.price.<stock_id>. Unlike order
// updates this is not mandatory nor persistent — a dropped or lost price
// tick is superseded by the next one.
func (a *Adapter) PublishStockPrice(stockID string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal stock price payload: %w", err)
	}

	routingKey := StockPriceRoutingKey(stockID)
	err = a.ch.Publish(StockPricesExchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}
