package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/domain/repository"
	"github.com/jhoicas/wms-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/wms-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/wms-ledger/pkg/config"
	"github.com/jhoicas/wms-ledger/pkg/logger"
)

// Storage repositorios fuera de transacción más el runner transaccional del backend elegido.
type Storage struct {
	TxRunner     inventory.TxRunner
	Products     repository.ProductRepository
	Orders       repository.OrderRepository
	Transactions repository.InventoryTransactionRepository
	close        func()
}

// Close libera el pool (no-op en memoria).
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage abre PostgreSQL o el store en memoria según APP_STORAGE.
// Con migrate=true aplica las migraciones embebidas antes de devolver.
func OpenStorage(ctx context.Context, cfg *config.Config, log *logger.Logger, migrate bool) (*Storage, error) {
	switch cfg.App.Storage {
	case config.StorageMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		st := memory.NewStore()
		return &Storage{
			TxRunner:     st,
			Products:     st.Products(),
			Orders:       st.Orders(),
			Transactions: st.Transactions(),
		}, nil
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if migrate {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				pool.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
			log.Info().Strs("files", applied).Msg("migraciones aplicadas")
		}
		return &Storage{
			TxRunner:     postgres.NewTxRunner(pool),
			Products:     postgres.NewProductRepository(pool),
			Orders:       postgres.NewOrderRepository(pool),
			Transactions: postgres.NewInventoryTransactionRepository(pool),
			close:        pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("APP_STORAGE desconocido: %q", cfg.App.Storage)
	}
}
