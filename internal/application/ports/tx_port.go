package ports

import (
	"context"

	"github.com/jhoicas/productos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando el repositorio atado a esa tx.
// Si fn devuelve error la transacción se revierte.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.ProductoRepository) error) error
}
