package repository

import (
	"context"

	"github.com/jhoicas/productos-api/internal/domain/entity"
)

// ProductoRepository define el puerto de persistencia para Producto (DIP).
// Todas las lecturas traen la Presentacion en la misma consulta (LEFT JOIN).
type ProductoRepository interface {
	// ListAll devuelve todos los productos ordenados ascendentemente por sort.
	ListAll(ctx context.Context, sort Sort) ([]*entity.Producto, error)
	// ListPage devuelve una página; el total se calcula con una consulta de conteo aparte.
	ListPage(ctx context.Context, req PageRequest) (*Page[*entity.Producto], error)
	// FindByID devuelve (nil, nil) si no existe.
	FindByID(ctx context.Context, id int64) (*entity.Producto, error)
	// Save inserta si ID == 0, si no reemplaza la fila con ese ID.
	Save(ctx context.Context, producto *entity.Producto) (*entity.Producto, error)
	Delete(ctx context.Context, producto *entity.Producto) error
}
