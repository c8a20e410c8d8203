package ports

import "time"

// CredentialCache recuerda verificaciones de credenciales exitosas para no repetir bcrypt en cada request.
type CredentialCache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
}
