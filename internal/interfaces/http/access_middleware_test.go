package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/productos-api/internal/application/dto"
	"github.com/jhoicas/productos-api/internal/domain"
	"github.com/jhoicas/productos-api/internal/domain/entity"
	apphttp "github.com/jhoicas/productos-api/internal/interfaces/http"
	"github.com/jhoicas/productos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// stubAuthenticator acepta un único par email/password con el rol indicado.
type stubAuthenticator struct {
	email, password string
	role            entity.Role
	err             error
}

func (s stubAuthenticator) Authenticate(_ context.Context, email, password string) (*entity.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if email != s.email || password != s.password {
		return nil, domain.ErrUnauthorized
	}
	return &entity.User{ID: 1, Email: email, Role: s.role}, nil
}

// buildAccessApp monta AccessControl con las reglas por defecto y handlers dummy que devuelven 200.
func buildAccessApp(authn apphttp.Authenticator) *fiber.App {
	app := fiber.New()
	app.Use(apphttp.AccessControl(authn, apphttp.DefaultAccessRules, logger.Nop()))
	ok := func(c *fiber.Ctx) error {
		u := apphttp.GetUser(c)
		if u == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(u.Email)
	}
	app.Get("/users", ok)
	app.Get("/users/:email", ok)
	app.Get("/productos", ok)
	app.Get("/productos/:id", ok)
	app.Get("/usersettings", ok)
	app.Get("/otra", ok)
	return app
}

func get(t *testing.T, app *fiber.App, target, authorization string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Reglas
// ──────────────────────────────────────────────────────────────────────────────

func TestAccessControl_UsersEsPublico(t *testing.T) {
	app := buildAccessApp(stubAuthenticator{email: "a@b.c", password: "x", role: entity.RoleAdmin})

	assert.Equal(t, http.StatusOK, get(t, app, "/users", "").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, app, "/users/a@b.c", "").StatusCode)
}

func TestAccessControl_PrefijoNoCoincideConSegmentoParcial(t *testing.T) {
	app := buildAccessApp(stubAuthenticator{email: "a@b.c", password: "x", role: entity.RoleUser})

	// /usersettings no está bajo /users: exige autenticación.
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/usersettings", "").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, app, "/usersettings", basicAuth("a@b.c", "x")).StatusCode)
}

func TestAccessControl_SinCredencialesDevuelve401ConDesafio(t *testing.T) {
	app := buildAccessApp(stubAuthenticator{email: "a@b.c", password: "x", role: entity.RoleAdmin})

	for _, path := range []string{"/productos", "/productos/1", "/otra"} {
		resp := get(t, app, path, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, `Basic realm="productos"`, resp.Header.Get("WWW-Authenticate"), path)
	}
}

func TestAccessControl_CredencialesInvalidas(t *testing.T) {
	app := buildAccessApp(stubAuthenticator{email: "a@b.c", password: "x", role: entity.RoleAdmin})

	resp := get(t, app, "/productos", basicAuth("a@b.c", "mala"))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INVALID_CREDENTIALS", body.Code)
}

func TestAccessControl_CabeceraMalFormada(t *testing.T) {
	app := buildAccessApp(stubAuthenticator{email: "a@b.c", password: "x", role: entity.RoleAdmin})

	for _, h := range []string{"Bearer abc", "Basic !!!", "Basic " + "bm9jb2xvbg=="} {
		resp := get(t, app, "/otra", h)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, h)
	}
}

func TestAccessControl_AdminAccedeAProductos(t *testing.T) {
	app := buildAccessApp(stubAuthenticator{email: "a@b.c", password: "x", role: entity.RoleAdmin})

	resp := get(t, app, "/productos/1", basicAuth("a@b.c", "x"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAccessControl_UserNoAccedeAProductos(t *testing.T) {
	app := buildAccessApp(stubAuthenticator{email: "a@b.c", password: "x", role: entity.RoleUser})

	resp := get(t, app, "/productos", basicAuth("a@b.c", "x"))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "FORBIDDEN", body.Code)
}

func TestAccessControl_OtrasRutasAceptanCualquierRol(t *testing.T) {
	app := buildAccessApp(stubAuthenticator{email: "a@b.c", password: "x", role: entity.RoleUser})

	resp := get(t, app, "/otra", basicAuth("a@b.c", "x"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAccessControl_AlmacenNoDisponible(t *testing.T) {
	app := buildAccessApp(stubAuthenticator{err: errors.New("pool closed")})

	resp := get(t, app, "/otra", basicAuth("a@b.c", "x"))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAccessControl_ReglasPersonalizadas(t *testing.T) {
	app := fiber.New()
	rules := []apphttp.AccessRule{{Prefix: "/otra", Policy: apphttp.PermitAll}}
	app.Use(apphttp.AccessControl(stubAuthenticator{}, rules, logger.Nop()))
	app.Get("/otra", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	app.Get("/productos", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(t, app, "/otra", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/productos", "").StatusCode)
}

func TestAccessControl_ProductosIgnoraMayusculasDelPath(t *testing.T) {
	app := buildAccessApp(stubAuthenticator{email: "u@b.c", password: "x", role: entity.RoleUser})
	auth := basicAuth("u@b.c", "x")

	for _, target := range []string{"/PRODUCTOS", "/Productos", "/Productos/1", "/pRoDuCtOs/1"} {
		assert.Equal(t, http.StatusForbidden, get(t, app, target, auth).StatusCode, target)
	}
}
