package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"time"

	"github.com/jhoicas/productos-api/internal/application/ports"
	"github.com/jhoicas/productos-api/internal/domain"
	"github.com/jhoicas/productos-api/internal/domain/entity"
	"github.com/jhoicas/productos-api/internal/domain/repository"
)

// BasicAuthenticator verifica credenciales HTTP Basic (email + password) contra el hash bcrypt guardado.
// Las verificaciones exitosas se recuerdan durante ttl para no pagar bcrypt en cada request.
type BasicAuthenticator struct {
	users repository.UserRepository
	cache ports.CredentialCache
	ttl   time.Duration
}

type cachedCredential struct {
	fingerprint [sha256.Size]byte
	user        entity.User
}

// NewBasicAuthenticator construye el verificador. cache puede ser nil (sin memoria de verificaciones).
func NewBasicAuthenticator(users repository.UserRepository, cache ports.CredentialCache, ttl time.Duration) *BasicAuthenticator {
	return &BasicAuthenticator{users: users, cache: cache, ttl: ttl}
}

// Authenticate devuelve el usuario si email y password son correctos, si no domain.ErrUnauthorized.
func (a *BasicAuthenticator) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrUnauthorized
	}
	fp := fingerprint(email, password)
	if a.cache != nil {
		if v, ok := a.cache.Get(email); ok {
			if c, ok := v.(cachedCredential); ok && subtle.ConstantTimeCompare(c.fingerprint[:], fp[:]) == 1 {
				u := c.user
				return &u, nil
			}
		}
	}

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !CheckPassword(user.Password, password) {
		return nil, domain.ErrUnauthorized
	}
	if a.cache != nil && a.ttl > 0 {
		a.cache.Set(email, cachedCredential{fingerprint: fp, user: *user}, a.ttl)
	}
	return user, nil
}

// Forget descarta la verificación recordada para email (tras actualizar o borrar la cuenta).
func (a *BasicAuthenticator) Forget(email string) {
	if a.cache != nil {
		a.cache.Delete(email)
	}
}

func fingerprint(email, password string) [sha256.Size]byte {
	return sha256.Sum256([]byte(email + "\x00" + password))
}
