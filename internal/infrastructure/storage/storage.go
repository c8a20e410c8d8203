package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/productos-api/internal/application/ports"
	"github.com/jhoicas/productos-api/pkg/config"
)

// New construye el adaptador configurado en cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (ports.FileStorage, error) {
	switch cfg.Driver {
	case "", config.StorageLocal:
		return NewLocalStorage(cfg.Dir)
	case config.StorageMinio:
		return NewMinioStorage(ctx, cfg.Minio)
	default:
		return nil, fmt.Errorf("driver de almacenamiento desconocido %q", cfg.Driver)
	}
}
