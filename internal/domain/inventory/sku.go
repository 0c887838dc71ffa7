package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSKUInitials deja espacio en products.sku (VARCHAR(64)) para prefijo, dígitos y contador.
const maxSKUInitials = 56

// SKUChecker consulta si un SKU ya está en uso.
type SKUChecker interface {
	SKUExists(ctx context.Context, sku string) (bool, error)
}

// SKUGenerator genera SKUs "probablemente únicos" para productos auto-creados.
// Formato: CATEGORÍA[0:2] + iniciales del nombre + 3 dígitos del reloj; ante colisión se añade 1, 2, ...
type SKUGenerator struct {
	now func() time.Time
}

// NewSKUGenerator construye el generador. now nil usa time.Now.
func NewSKUGenerator(now func() time.Time) *SKUGenerator {
	if now == nil {
		now = time.Now
	}
	return &SKUGenerator{now: now}
}

// BaseSKU devuelve el SKU sin el contador de colisión.
func (g *SKUGenerator) BaseSKU(name, category string) string {
	var b strings.Builder
	b.WriteString(categoryPrefix(foldAccents(category)))
	for i, word := range strings.Fields(foldAccents(name)) {
		if i == maxSKUInitials {
			break
		}
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	fmt.Fprintf(&b, "%03d", g.now().Unix()%1000)
	return b.String()
}

// Generate devuelve un SKU que no existe según checker.
func (g *SKUGenerator) Generate(ctx context.Context, checker SKUChecker, name, category string) (string, error) {
	base := g.BaseSKU(name, category)
	sku := base
	for counter := 1; ; counter++ {
		exists, err := checker.SKUExists(ctx, sku)
		if err != nil {
			return "", fmt.Errorf("check sku %s: %w", sku, err)
		}
		if !exists {
			return sku, nil
		}
		sku = fmt.Sprintf("%s%d", base, counter)
	}
}

func categoryPrefix(category string) string {
	runes := []rune(strings.TrimSpace(category))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

// foldAccents quita diacríticos (Ñ -> N, É -> E) para que el SKU quede en ASCII.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
