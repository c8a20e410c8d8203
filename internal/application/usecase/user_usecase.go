package usecase

import (
	"context"
	"errors"

	"github.com/jhoicas/productos-api/internal/application/auth"
	"github.com/jhoicas/productos-api/internal/domain"
	"github.com/jhoicas/productos-api/internal/domain/entity"
	"github.com/jhoicas/productos-api/internal/domain/repository"
)

// CredentialEvictor lo implementa *auth.BasicAuthenticator; se invoca cuando cambia una cuenta.
type CredentialEvictor interface {
	Forget(email string)
}

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo     repository.UserRepository
	hashCost int
	evictor  CredentialEvictor
}

// NewUserUseCase construye el caso de uso. hashCost <= 0 usa el costo bcrypt por defecto; evictor puede ser nil.
func NewUserUseCase(repo repository.UserRepository, hashCost int, evictor CredentialEvictor) *UserUseCase {
	return &UserUseCase{repo: repo, hashCost: hashCost, evictor: evictor}
}

// Add crea la cuenta. Devuelve domain.ErrEmailAlreadyExists si el email ya está registrado.
func (uc *UserUseCase) Add(ctx context.Context, user *entity.User) (*entity.User, error) {
	existing, err := uc.repo.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	if user.Role == "" {
		user.Role = entity.RoleUser
	}
	if !user.Role.Valid() {
		return nil, domain.ErrInvalidInput
	}
	hash, err := auth.HashPassword(user.Password, uc.hashCost)
	if err != nil {
		return nil, err
	}
	user.Password = hash
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail devuelve domain.ErrUserNotFound si no existe.
func (uc *UserUseCase) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// Update reemplaza nombre, apellido, rol y password (re-hasheado) de la cuenta con ese email.
func (uc *UserUseCase) Update(ctx context.Context, user *entity.User) (*entity.User, error) {
	existing, err := uc.FindByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if user.Role != "" && !user.Role.Valid() {
		return nil, domain.ErrInvalidInput
	}
	hash, err := auth.HashPassword(user.Password, uc.hashCost)
	if err != nil {
		return nil, err
	}
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.Password = hash
	if user.Role != "" {
		existing.Role = user.Role
	}
	if err := uc.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	uc.forget(existing.Email)
	return existing, nil
}

// DeleteByEmail elimina la cuenta; no falla si no existía.
func (uc *UserUseCase) DeleteByEmail(ctx context.Context, email string) error {
	if err := uc.repo.DeleteByEmail(ctx, email); err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	uc.forget(email)
	return nil
}

// FindAll lista todas las cuentas.
func (uc *UserUseCase) FindAll(ctx context.Context) ([]*entity.User, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *UserUseCase) forget(email string) {
	if uc.evictor != nil {
		uc.evictor.Forget(email)
	}
}
