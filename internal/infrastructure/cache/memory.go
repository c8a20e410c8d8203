// Package cache implementa ports.CredentialCache en memoria del proceso.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/jhoicas/productos-api/internal/application/ports"
)

var _ ports.CredentialCache = (*Memory)(nil)

// Memory cache con expiración por entrada sobre patrickmn/go-cache.
type Memory struct {
	c *gocache.Cache
}

// NewMemory crea el cache; las entradas vencidas se purgan cada cleanup.
func NewMemory(defaultTTL, cleanup time.Duration) *Memory {
	return &Memory{c: gocache.New(defaultTTL, cleanup)}
}

func (m *Memory) Get(key string) (any, bool)                   { return m.c.Get(key) }
func (m *Memory) Set(key string, value any, ttl time.Duration) { m.c.Set(key, value, ttl) }
func (m *Memory) Delete(key string)                            { m.c.Delete(key) }

// Len número de entradas (incluye vencidas aún no purgadas).
func (m *Memory) Len() int { return m.c.ItemCount() }
