// Command pricecache runs the price cache service: it consumes top-of-book
// price ticks off stock_prices_exchange and serves the current snapshot
// over an authenticated HTTP endpoint (spec.md §6).
package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sban26/matchshard/internal/broker"
	"github.com/sban26/matchshard/internal/config"
	"github.com/sban26/matchshard/internal/priceservice"
)

func main() {
	app := fx.New(
		fx.Provide(
			loadConfig,
			newLogger,
			newAdapter,
			priceservice.NewStore,
			newConsumer,
			newRouter,
		),
		fx.Invoke(startConsuming, startServer),
		fx.NopLogger,
	)
	app.Run()
}

func loadConfig() (*config.PriceCacheConfig, error) {
	return config.LoadPriceCacheConfig()
}

func newLogger(cfg *config.PriceCacheConfig) (*zap.Logger, error) {
	return config.NewLogger(cfg.LogLevel)
}

func newAdapter(lc fx.Lifecycle, cfg *config.PriceCacheConfig, logger *zap.Logger) (*broker.Adapter, error) {
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

func newConsumer(store *priceservice.Store, logger *zap.Logger) *priceservice.Consumer {
	return priceservice.NewConsumer(store, logger)
}

func newRouter(cfg *config.PriceCacheConfig, store *priceservice.Store, logger *zap.Logger) *gin.Engine {
	return priceservice.NewRouter(store, cfg.JWTSecret, logger)
}

// startConsuming binds the single stock_prices_queue with the stock.price.*
// wildcard and applies every delivery to the in-memory store directly,
// un-acked deliveries are acknowledged immediately per original_source's
// manual_ack(false) consumer.
func startConsuming(lc fx.Lifecycle, adapter *broker.Adapter, consumer *priceservice.Consumer, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			queueName, err := adapter.DeclareAndBind(broker.PriceQueueName, broker.StockPricesExchange, broker.StockPriceBindingKey)
			if err != nil {
				return err
			}

			deliveries, err := adapter.Consume(queueName, broker.NewConsumerTag("price_cache", 0))
			if err != nil {
				return err
			}

			go func(deliveries <-chan amqp.Delivery) {
				for d := range deliveries {
					consumer.Handle(d.Body)
					adapter.Ack(d.DeliveryTag)
				}
			}(deliveries)

			logger.Info("price cache consuming")
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, cfg *config.PriceCacheConfig, engine *gin.Engine, logger *zap.Logger) {
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: engine}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("price cache listening", zap.Int("port", cfg.Port))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("price cache server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
