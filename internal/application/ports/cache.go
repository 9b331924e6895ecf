package ports

import (
	"context"
	"time"
)

// Cache caché de lectura (advisory): ninguna mutación la consulta, solo la invalida.
// Las implementaciones tragan errores de red y se comportan como miss.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Del(ctx context.Context, keys ...string)
	// DelPattern borra las llaves que coinciden con el patrón glob; devuelve cuántas.
	DelPattern(ctx context.Context, pattern string) int
	Exists(ctx context.Context, key string) bool
}

// NopCache caché desactivada: siempre miss.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) bool           { return false }
func (NopCache) Set(context.Context, string, any, time.Duration) {}
func (NopCache) Del(context.Context, ...string)                  {}
func (NopCache) DelPattern(context.Context, string) int          { return 0 }
func (NopCache) Exists(context.Context, string) bool             { return false }

// Llaves de caché de productos.
const (
	ProductCachePrefix = "product:"
	ProductsListPrefix = "products:"
)

// ProductCacheKey llave del detalle de un producto.
func ProductCacheKey(productID string) string { return ProductCachePrefix + productID }
