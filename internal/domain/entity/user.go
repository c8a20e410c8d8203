package entity

// Role etiqueta de autorización de un usuario.
type Role string

// Roles válidos para User.
const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid indica si el rol pertenece al conjunto enumerado.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User representa una cuenta del módulo de usuarios.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string // único a nivel de almacén
	Password  string // hash bcrypt, nunca texto plano después de persistir
	Role      Role
}
