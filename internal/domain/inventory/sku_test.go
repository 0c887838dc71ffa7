package inventory_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/wms-ledger/internal/domain/inventory"
)

// fixedClock devuelve siempre un instante cuyo Unix() termina en 042.
func fixedClock() time.Time {
	return time.Unix(1_700_000_042, 0)
}

type setChecker map[string]bool

func (s setChecker) SKUExists(_ context.Context, sku string) (bool, error) {
	return s[sku], nil
}

type failingChecker struct{}

func (failingChecker) SKUExists(context.Context, string) (bool, error) {
	return false, errors.New("db caída")
}

func TestBaseSKU_IniciaConCategoriaYIniciales(t *testing.T) {
	g := inventory.NewSKUGenerator(fixedClock)
	assert.Equal(t, "AUBRW042", g.BaseSKU("blue  red widget", "Auto-Generated"))
}

func TestBaseSKU_NombreDeUnaPalabra(t *testing.T) {
	g := inventory.NewSKUGenerator(fixedClock)
	assert.Equal(t, "AUW042", g.BaseSKU("Widget", "Auto-Generated"))
}

func TestBaseSKU_SufijoConCerosALaIzquierda(t *testing.T) {
	g := inventory.NewSKUGenerator(func() time.Time { return time.Unix(1_700_000_007, 0) })
	assert.Equal(t, "TOH007", g.BaseSKU("hammer", "tools"))
}

func TestBaseSKU_QuitaAcentos(t *testing.T) {
	g := inventory.NewSKUGenerator(fixedClock)
	assert.Equal(t, "ELCN042", g.BaseSKU("café ñandú", "Électrico"))
}

func TestBaseSKU_NombreLargoCabeEnLaColumna(t *testing.T) {
	g := inventory.NewSKUGenerator(fixedClock)
	name := strings.TrimSpace(strings.Repeat("a ", 127))

	sku := g.BaseSKU(name, "Auto-Generated")
	assert.Equal(t, "AU"+strings.Repeat("A", 56)+"042", sku)

	withCounter, err := g.Generate(context.Background(), setChecker{sku: true}, name, "Auto-Generated")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(withCounter), 64, "products.sku es VARCHAR(64)")
}

func TestGenerate_SinColision(t *testing.T) {
	g := inventory.NewSKUGenerator(fixedClock)
	sku, err := g.Generate(context.Background(), setChecker{}, "Widget", "Auto-Generated")
	require.NoError(t, err)
	assert.Equal(t, "AUW042", sku)
}

func TestGenerate_AgregaContadorHastaSerUnico(t *testing.T) {
	g := inventory.NewSKUGenerator(fixedClock)
	taken := setChecker{"AUW042": true, "AUW0421": true}
	sku, err := g.Generate(context.Background(), taken, "Widget", "Auto-Generated")
	require.NoError(t, err)
	assert.Equal(t, "AUW0422", sku, "debe probar 1 y luego 2")
}

func TestGenerate_PropagaErrorDelChecker(t *testing.T) {
	g := inventory.NewSKUGenerator(fixedClock)
	_, err := g.Generate(context.Background(), failingChecker{}, "Widget", "Auto-Generated")
	assert.Error(t, err)
}
