package http

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/productos-api/internal/application/dto"
	"github.com/jhoicas/productos-api/internal/domain"
	"github.com/jhoicas/productos-api/internal/domain/entity"
	"github.com/jhoicas/productos-api/pkg/logger"
)

// LocalUser clave en c.Locals del usuario autenticado.
const LocalUser = "user"

// Realm anunciado en WWW-Authenticate.
const Realm = "productos"

// Authenticator lo implementa *auth.BasicAuthenticator.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*entity.User, error)
}

// Policy regla de autorización aplicada a un prefijo de ruta.
type Policy struct {
	PermitAll bool
	Roles     []entity.Role // vacío = cualquier identidad autenticada
}

// Políticas predefinidas.
var (
	PermitAll     = Policy{PermitAll: true}
	Authenticated = Policy{}
)

// HasRole política que exige alguno de los roles indicados.
func HasRole(roles ...entity.Role) Policy {
	return Policy{Roles: roles}
}

// AccessRule asocia un prefijo de ruta a una política.
type AccessRule struct {
	Prefix string
	Policy Policy
}

// DefaultAccessRules se evalúan en orden; lo que no coincide exige autenticación.
var DefaultAccessRules = []AccessRule{
	{Prefix: "/users", Policy: PermitAll},
	{Prefix: "/productos", Policy: HasRole(entity.RoleAdmin)},
}

// policyFor devuelve la política de la primera regla cuyo prefijo coincide con path.
// La comparación ignora mayúsculas igual que el router (CaseSensitive: false):
// /PRODUCTOS llega a los mismos handlers que /productos y debe exigir la misma política.
func policyFor(rules []AccessRule, path string) Policy {
	path = utils.ToLower(path)
	for _, r := range rules {
		prefix := utils.ToLower(r.Prefix)
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return r.Policy
		}
	}
	return Authenticated
}

// AccessControl valida HTTP Basic y aplica las reglas por prefijo antes de los handlers.
//   - 401 + WWW-Authenticate si faltan credenciales o son incorrectas.
//   - 403 si la identidad no tiene el rol exigido.
//   - 503 si no se pudo consultar el almacén de usuarios.
func AccessControl(authn Authenticator, rules []AccessRule, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		policy := policyFor(rules, c.Path())
		if policy.PermitAll {
			return c.Next()
		}

		email, password, ok := basicCredentials(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c, "MISSING_CREDENTIALS", "credenciales HTTP Basic requeridas")
		}
		user, err := authn.Authenticate(c.UserContext(), email, password)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				log.Warn().Str("email", email).Str("path", c.Path()).Msg("credenciales rechazadas")
				return unauthorized(c, "INVALID_CREDENTIALS", "credenciales inválidas")
			}
			log.Error().Err(err).Str("email", email).Msg("verificación de credenciales")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "AUTH_UNAVAILABLE", Message: "no se pudo verificar la identidad, intente más tarde"})
		}
		c.Locals(LocalUser, user)

		if len(policy.Roles) > 0 && !hasAnyRole(user.Role, policy.Roles) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el rol " + string(user.Role) + " no tiene acceso a este recurso"})
		}
		return c.Next()
	}
}

// GetUser devuelve el usuario autenticado (después de AccessControl) o nil.
func GetUser(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalUser).(*entity.User)
	return u
}

func basicCredentials(header string) (user, password string, ok bool) {
	scheme, payload, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return "", "", false
	}
	user, password, ok = strings.Cut(string(raw), ":")
	if !ok || user == "" {
		return "", "", false
	}
	return user, password, true
}

func hasAnyRole(role entity.Role, allowed []entity.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func unauthorized(c *fiber.Ctx, code, msg string) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="`+Realm+`"`)
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
