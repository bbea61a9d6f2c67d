// Command shard runs one matching-engine shard: it consumes market buy,
// limit sell, and limit sell cancellation orders for its shard id and
// emits fills, cancellations, and top-of-book price ticks (spec.md §4, §6).
package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sban26/matchshard/internal/broker"
	"github.com/sban26/matchshard/internal/config"
	"github.com/sban26/matchshard/internal/matching"
	"github.com/sban26/matchshard/internal/metrics"
)

func main() {
	app := fx.New(
		fx.Provide(
			loadConfig,
			newLogger,
			newAdapter,
			newMetricsRegistry,
			newCollector,
			newConsumer,
		),
		fx.Invoke(startConsuming, startMetricsServer),
		fx.NopLogger,
	)
	app.Run()
}

func loadConfig() (*config.ShardConfig, error) {
	return config.LoadShardConfig()
}

func newLogger(cfg *config.ShardConfig) (*zap.Logger, error) {
	return config.NewLogger(cfg.LogLevel)
}

func newAdapter(lc fx.Lifecycle, cfg *config.ShardConfig, logger *zap.Logger) (*broker.Adapter, error) {
	adapter, err := broker.Dial(cfg.RabbitMQ, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("closing broker connection")
			return adapter.Close()
		},
	})
	return adapter, nil
}

func newMetricsRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func newCollector(reg *prometheus.Registry) *metrics.Collector {
	return metrics.NewCollector(reg)
}

func newConsumer(cfg *config.ShardConfig, adapter *broker.Adapter, collector *metrics.Collector, logger *zap.Logger) (*matching.Consumer, error) {
	return matching.New(matching.Config{ShardID: cfg.ShardID}, adapter, collector, logger)
}

// startConsuming binds the shard's three queues and feeds their deliveries
// into the consumer's per-queue worker pools for the lifetime of the
// process, one reader goroutine per queue preserving broker-delivered
// submission order.
func startConsuming(lc fx.Lifecycle, cfg *config.ShardConfig, adapter *broker.Adapter, consumer *matching.Consumer, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			marketBuyQ, limitSellQ, cancelQ := broker.ShardQueueNames(cfg.ShardID)

			bindings := []struct {
				queue, orderType string
			}{
				{marketBuyQ, broker.TypeMarketBuy},
				{limitSellQ, broker.TypeLimitSell},
				{cancelQ, broker.TypeLimitSellCancellation},
			}

			for _, b := range bindings {
				queueName, err := adapter.DeclareAndBind(b.queue, broker.OrderExchange, broker.InboundRoutingKey(b.orderType, cfg.ShardID))
				if err != nil {
					return err
				}

				tag := broker.NewConsumerTag(b.orderType, cfg.ShardID)
				deliveries, err := adapter.Consume(queueName, tag)
				if err != nil {
					return err
				}

				go func(orderType string, deliveries <-chan amqp.Delivery) {
					for d := range deliveries {
						if err := consumer.Dispatch(d); err != nil {
							logger.Error("failed to dispatch delivery to worker pool", zap.String("order_type", orderType), zap.Error(err))
							adapter.Ack(d.DeliveryTag)
						}
					}
				}(b.orderType, deliveries)
			}

			logger.Info("shard consuming", zap.Int("shard_id", cfg.ShardID))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			consumer.Close()
			return nil
		},
	})
}

func startMetricsServer(lc fx.Lifecycle, reg *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: ":9100", Handler: mux}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("metrics server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
