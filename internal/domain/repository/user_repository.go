package repository

import (
	"context"

	"github.com/jhoicas/productos-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// FindByEmail devuelve (nil, nil) si no existe.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	DeleteByEmail(ctx context.Context, email string) error
	FindAll(ctx context.Context) ([]*entity.User, error)
}
