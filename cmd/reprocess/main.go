// Command reprocess concilia las órdenes completadas que quedaron sin procesar
// (datos anteriores al ledger o fallos previos) y termina.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/application/order"
	"github.com/jhoicas/wms-ledger/internal/bootstrap"
	domaininventory "github.com/jhoicas/wms-ledger/internal/domain/inventory"
	"github.com/jhoicas/wms-ledger/pkg/config"
	"github.com/jhoicas/wms-ledger/pkg/logger"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "tiempo máximo del reproceso")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name + "-reprocess",
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	storage, err := bootstrap.OpenStorage(ctx, cfg, log, false)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer storage.Close()

	ledger := inventory.NewLedger(storage.TxRunner, domaininventory.NewSKUGenerator(nil), nil, log)
	orderUC := order.NewOrderUseCase(storage.TxRunner, ledger, storage.Orders, nil, nil, log)

	out, err := orderUC.ReprocessCompleted(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reproceso abortado")
		storage.Close()
		os.Exit(1)
	}
	for _, it := range out.Items {
		if it.Error != "" {
			log.Warn().Int64("order_id", it.OrderID).Str("order_number", it.OrderNumber).Str("error", it.Error).Msg("orden no conciliada")
		}
	}
	log.Info().
		Int("total", out.Total).
		Int("succeeded", out.Succeeded).
		Int("failed", out.Failed).
		Msg("reproceso terminado")
	if out.Failed > 0 {
		storage.Close()
		os.Exit(2)
	}
}
