package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-ledger/internal/application/dto"
	apphttp "github.com/jhoicas/wms-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/wms-ledger/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "wms-ledger-test"
	testExpMin    = 60
)

// tokenFor genera un header Authorization para el usuario y rol dados.
func tokenFor(t *testing.T, userID, role string, expMin int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, role, testIssuer, expMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	return tokenFor(t, testUserID, role, testExpMin)
}

// ──────────────────────────────────────────────────────────────────────────────
// RBAC sobre las rutas del ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestRBAC_MatrizDeRutas(t *testing.T) {
	api := newAPI(t)

	cases := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"admin reprocesa", http.MethodPost, "/api/orders/reprocess", pkgjwt.RoleAdmin, http.StatusOK},
		{"bodeguero no reprocesa", http.MethodPost, "/api/orders/reprocess", pkgjwt.RoleBodeguero, http.StatusForbidden},
		{"vendedor no reprocesa", http.MethodPost, "/api/orders/reprocess", pkgjwt.RoleVendedor, http.StatusForbidden},
		// 404: pasa el RBAC y llega al caso de uso con una orden inexistente
		{"admin cambia estado", http.MethodPatch, "/api/orders/999/status", pkgjwt.RoleAdmin, http.StatusNotFound},
		{"bodeguero cambia estado", http.MethodPatch, "/api/orders/999/status", pkgjwt.RoleBodeguero, http.StatusNotFound},
		{"vendedor no cambia estado", http.MethodPatch, "/api/orders/999/status", pkgjwt.RoleVendedor, http.StatusForbidden},
		{"vendedor consulta stock bajo", http.MethodGet, "/api/inventory/low-stock", pkgjwt.RoleVendedor, http.StatusOK},
		{"bodeguero lista productos", http.MethodGet, "/api/products", pkgjwt.RoleBodeguero, http.StatusOK},
		{"rol desconocido", http.MethodGet, "/api/products", "auditor", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body any
			if tc.method == http.MethodPatch {
				body = map[string]string{"status": "completed"}
			}
			resp, raw := api.do(tc.method, tc.path, tc.role, body)
			assert.Equal(t, tc.want, resp.StatusCode, string(raw))
			if tc.want == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", decode[dto.ErrorResponse](t, raw).Code)
			}
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware: tokens ausentes o inválidos en /api/inventory
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_TokensRechazados(t *testing.T) {
	api := newAPI(t)
	const path = "/api/inventory/low-stock"

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema distinto de Bearer", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"expirado", tokenFor(t, testUserID, pkgjwt.RoleAdmin, -1), "INVALID_TOKEN"},
		{"sin rol", tokenFor(t, testUserID, "", testExpMin), "MISSING_ROLE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var headers []string
			if tc.header != "" {
				headers = []string{"Authorization", tc.header}
			}
			resp, raw := api.do(http.MethodGet, path, "", nil, headers...)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tc.code, decode[dto.ErrorResponse](t, raw).Code)
		})
	}
}

func TestAuth_FirmaConOtroSecretoRechazada(t *testing.T) {
	api := newAPI(t)
	tok, err := pkgjwt.Generate("otro-secreto", testUserID, pkgjwt.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	resp, _ := api.do(http.MethodGet, "/api/inventory/low-stock", "", nil, "Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// La Idempotency-Key se aísla por usuario: dos usuarios pueden reutilizar el mismo valor.
func TestAuth_IdempotencyKeyPorUsuario(t *testing.T) {
	api := newAPI(t)
	otherUser := tokenFor(t, "00000000-0000-0000-0000-000000000002", pkgjwt.RoleBodeguero, testExpMin)
	body := map[string]string{"status": "completed"}

	// el 404 libera la llave, así que se reserva con una orden existente
	api.seedProduct("Gadget", 10, 2)
	_, raw := api.do(http.MethodPost, "/api/orders", pkgjwt.RoleAdmin, map[string]any{
		"order_type": "inbound",
		"items":      []map[string]any{{"name": "Gadget", "quantity": 1, "unit_price": "1"}},
	})
	path := "/api/orders/" + itoa(decode[dto.OrderStatusResponse](t, raw).Order.ID) + "/status"

	resp, _ := api.do(http.MethodPatch, path, pkgjwt.RoleBodeguero, body, apphttp.HeaderIdempotencyKey, "same")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = api.do(http.MethodPatch, path, "", body, "Authorization", otherUser, apphttp.HeaderIdempotencyKey, "same")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "otro usuario no choca con la llave: %s", raw)
	assert.Len(t, api.idem.keys, 2)
}
