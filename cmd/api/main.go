package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/application/order"
	"github.com/jhoicas/wms-ledger/internal/application/usecase"
	"github.com/jhoicas/wms-ledger/internal/bootstrap"
	domaininventory "github.com/jhoicas/wms-ledger/internal/domain/inventory"
	infrakafka "github.com/jhoicas/wms-ledger/internal/infrastructure/kafka"
	"github.com/jhoicas/wms-ledger/internal/infrastructure/metrics"
	infraredis "github.com/jhoicas/wms-ledger/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/wms-ledger/internal/interfaces/http"
	"github.com/jhoicas/wms-ledger/pkg/config"
	"github.com/jhoicas/wms-ledger/pkg/logger"
)

func main() {
	migrate := flag.Bool("migrate", false, "aplicar migraciones embebidas al arrancar (solo postgres)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	storage, err := bootstrap.OpenStorage(ctx, cfg, log, *migrate)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer storage.Close()

	ledgerMetrics := metrics.New(cfg.Metrics.Prefix)
	ledger := inventory.NewLedger(storage.TxRunner, domaininventory.NewSKUGenerator(nil), ledgerMetrics, log)

	// Eventos de stock: Kafka solo si hay brokers configurados
	var publisher order.StockEventPublisher = order.NopPublisher{}
	var kafkaPublisher *infrakafka.StockEventPublisher
	if cfg.Kafka.Enabled() {
		kafkaPublisher = infrakafka.NewStockEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.StockTopic, cfg.Kafka.LowStockTopic)
		publisher = kafkaPublisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("publicación de eventos en Kafka habilitada")
	}

	orderUC := order.NewOrderUseCase(storage.TxRunner, ledger, storage.Orders, publisher, ledgerMetrics, log)
	queryUC := inventory.NewQueryUseCase(storage.Products, storage.Transactions)
	validator := inventory.NewStockValidator(storage.Products)
	productUC := usecase.NewProductUseCase(storage.Products)

	deps := httpRouter.RouterDeps{
		OrderUC:        orderUC,
		QueryUC:        queryUC,
		StockValidator: validator,
		ProductUC:      productUC,
		Metrics:        ledgerMetrics,
		MetricsHandler: ledgerMetrics.Handler(),
		Logger:         log,
		JWTSecret:      cfg.JWT.Secret,
		ServiceName:    cfg.App.Name,
	}

	// Idempotency-Key: Redis solo si REDIS_ADDR está definido
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		deps.Idempotency = infraredis.NewIdempotencyStore(client, cfg.Idempotency.TTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotencia con Redis habilitada")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "WMS Ledger API",
	}))

	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Error().Err(err).Msg("cierre del writer de Kafka")
		}
	}

	log.Info().Msg("aplicación detenida")
}
