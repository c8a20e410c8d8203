package dto

import "github.com/jhoicas/productos-api/internal/domain/entity"

// UserRequest entrada para alta y actualización (password en texto, se hashea en el use case).
type UserRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"omitempty,oneof=ADMIN USER"`
}

// ToEntity construye la entidad; el rol por defecto es USER.
func (r UserRequest) ToEntity() *entity.User {
	role := entity.Role(r.Role)
	if role == "" {
		role = entity.RoleUser
	}
	return &entity.User{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
		Role:      role,
	}
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// NewUserResponse mapea la entidad omitiendo el hash del password.
func NewUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
	}
}
