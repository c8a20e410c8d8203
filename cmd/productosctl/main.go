// Command productosctl tareas administrativas de la API de productos.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/productos-api/internal/domain/repository"
	"github.com/jhoicas/productos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/productos-api/pkg/config"
)

func main() {
	root := newRootCmd(openUserRepository)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openUserRepository conecta con la base configurada por entorno; close libera el pool.
func openUserRepository(ctx context.Context, migrate bool) (repository.UserRepository, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if migrate || cfg.DB.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	return postgres.NewUserRepository(pool), pool.Close, nil
}
