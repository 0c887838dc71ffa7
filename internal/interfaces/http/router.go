package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/application/order"
	"github.com/jhoicas/wms-ledger/internal/application/usecase"
	"github.com/jhoicas/wms-ledger/pkg/jwt"
	"github.com/jhoicas/wms-ledger/pkg/logger"
)

// RouterDeps dependencias para el router. Idempotency, Metrics y MetricsHandler son opcionales.
type RouterDeps struct {
	OrderUC        *order.OrderUseCase
	QueryUC        *inventory.QueryUseCase
	StockValidator *inventory.StockValidator
	ProductUC      *usecase.ProductUseCase
	Idempotency    idempotencyReserver
	Metrics        httpObserver
	MetricsHandler http.Handler
	Logger         *logger.Logger
	JWTSecret      string
	ServiceName    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	app.Use(RequestLogger(log, deps.Metrics))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor)
	warehouse := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)

	// Orders
	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Post("/reprocess", RequireRole(jwt.RoleAdmin), orderHandler.Reprocess)
	orders.Post("/", anyRole, orderHandler.Create)
	orders.Get("/:id", anyRole, orderHandler.GetByID)
	statusChain := []fiber.Handler{warehouse}
	if deps.Idempotency != nil {
		statusChain = append(statusChain, RequireIdempotency(deps.Idempotency, log))
	}
	statusChain = append(statusChain, orderHandler.UpdateStatus)
	orders.Patch("/:id/status", statusChain...)

	// Inventory (ledger)
	inv := api.Group("/inventory", anyRole)
	inventoryHandler := NewInventoryHandler(deps.QueryUC, deps.StockValidator)
	inv.Post("/validate", inventoryHandler.ValidateStock)
	inv.Get("/low-stock", inventoryHandler.LowStock)
	inv.Get("/products/:id/transactions", inventoryHandler.History)
	inv.Get("/products/:id/reconciliation", inventoryHandler.Reconciliation)

	// Products (solo lectura)
	products := api.Group("/products", anyRole)
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
}
