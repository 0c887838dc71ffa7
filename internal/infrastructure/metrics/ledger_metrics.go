package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appinventory "github.com/jhoicas/wms-ledger/internal/application/inventory"
	"github.com/jhoicas/wms-ledger/internal/domain"
	"github.com/jhoicas/wms-ledger/internal/domain/inventory"
)

// LedgerMetrics métricas del ledger y del API sobre un registry propio (permite varias instancias en tests).
type LedgerMetrics struct {
	registry *prometheus.Registry

	reconcileTotal     *prometheus.CounterVec
	reconcileDuration  *prometheus.HistogramVec
	transactionsTotal  *prometheus.CounterVec
	autoProvisioned    prometheus.Counter
	httpRequestsTotal  *prometheus.CounterVec
	httpRequestSeconds *prometheus.HistogramVec
}

var _ appinventory.Recorder = (*LedgerMetrics)(nil)

// New registra las métricas con el prefijo dado (METRICS_PREFIX).
func New(prefix string) *LedgerMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &LedgerMetrics{
		registry: reg,
		reconcileTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_reconcile_total",
			Help: "Conciliaciones de inventario por acción y resultado",
		}, []string{"action", "outcome"}),
		reconcileDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_reconcile_duration_seconds",
			Help:    "Duración de la conciliación incluyendo la transacción",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
		transactionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_stock_transactions_total",
			Help: "Transacciones de inventario confirmadas por tipo",
		}, []string{"type"}),
		autoProvisioned: f.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_auto_provisioned_products_total",
			Help: "Productos creados automáticamente desde órdenes de entrada",
		}),
		httpRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total de peticiones HTTP",
		}, []string{"method", "path", "status"}),
		httpRequestSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP en segundos",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// RecordReconcile implementa appinventory.Recorder.
func (m *LedgerMetrics) RecordReconcile(action inventory.Action, result *appinventory.ReconcileResult, err error, elapsed time.Duration) {
	m.reconcileTotal.WithLabelValues(string(action), outcome(err)).Inc()
	m.reconcileDuration.WithLabelValues(string(action)).Observe(elapsed.Seconds())
	if err != nil || result == nil {
		return
	}
	for _, tx := range result.Transactions {
		m.transactionsTotal.WithLabelValues(tx.TransactionType).Inc()
	}
	m.autoProvisioned.Add(float64(len(result.AutoProvisioned)))
}

// ObserveHTTP registra una petición; path debe ser la ruta registrada, no la URL cruda.
func (m *LedgerMetrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.httpRequestSeconds.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
}

// Handler expone el registry en formato Prometheus.
func (m *LedgerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry para tests y colectores adicionales.
func (m *LedgerMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, domain.ErrStockValidation):
		return "stock_validation"
	case domain.IsPersistence(err):
		return "persistence"
	default:
		return "error"
	}
}
