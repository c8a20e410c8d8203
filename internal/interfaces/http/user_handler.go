package http

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/productos-api/internal/application/dto"
	"github.com/jhoicas/productos-api/internal/application/usecase"
	"github.com/jhoicas/productos-api/internal/domain"
	"github.com/jhoicas/productos-api/pkg/logger"
	"github.com/jhoicas/productos-api/pkg/validator"
)

// UserHandler maneja /users (público) y /me (autenticado).
type UserHandler struct {
	uc       *usecase.UserUseCase
	validate *validator.Validator
	log      *logger.Logger
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase, validate *validator.Validator, log *logger.Logger) *UserHandler {
	return &UserHandler{uc: uc, validate: validate, log: log.Named("users_http")}
}

// Create godoc
// @Summary      Registrar usuario
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UserRequest  true  "Datos del usuario"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	in, done := h.bind(c)
	if done != nil {
		return done()
	}
	user, err := h.uc.Add(c.UserContext(), in.ToEntity())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewUserResponse(user))
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Produce      json
// @Success      200  {array}   dto.UserResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.uc.FindAll(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewUserResponse(u))
	}
	return c.JSON(out)
}

// GetByEmail godoc
// @Summary      Obtener usuario por email
// @Tags         users
// @Produce      json
// @Param        email  path  string  true  "Email"
// @Success      200    {object}  dto.UserResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /users/{email} [get]
func (h *UserHandler) GetByEmail(c *fiber.Ctx) error {
	user, err := h.uc.FindByEmail(c.UserContext(), pathEmail(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Update godoc
// @Summary      Actualizar usuario
// @Description  Reemplaza nombre, apellido, rol y password de la cuenta; el email de la ruta manda.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        email  path  string           true  "Email"
// @Param        body   body  dto.UserRequest  true  "Datos del usuario"
// @Success      200    {object}  dto.UserResponse
// @Failure      400    {object}  dto.ValidationErrorResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /users/{email} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	in, done := h.bind(c)
	if done != nil {
		return done()
	}
	user := in.ToEntity()
	if in.Role == "" {
		// sin rol en el cuerpo se conserva el actual
		user.Role = ""
	}
	updated, err := h.uc.Update(c.UserContext(), user)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewUserResponse(updated))
}

// Delete godoc
// @Summary      Eliminar usuario
// @Tags         users
// @Param        email  path  string  true  "Email"
// @Success      204
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /users/{email} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteByEmail(c.UserContext(), pathEmail(c)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me godoc
// @Summary      Perfil del usuario autenticado
// @Tags         users
// @Security     BasicAuth
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user := GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "identidad requerida"})
	}
	return c.JSON(dto.NewUserResponse(user))
}

// bind decodifica y valida el cuerpo. Si done != nil la respuesta ya está decidida.
func (h *UserHandler) bind(c *fiber.Ctx) (dto.UserRequest, func() error) {
	var in dto.UserRequest
	if err := c.BodyParser(&in); err != nil {
		return in, func() error {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	if email := pathEmail(c); email != "" {
		// En PUT el email de la ruta manda; el cuerpo puede omitirlo.
		in.Email = email
	}
	msgs, err := h.validate.Struct(in)
	if err != nil {
		return in, func() error { return err }
	}
	if len(msgs) > 0 {
		return in, func() error {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{Errores: msgs})
		}
	}
	return in, nil
}

func (h *UserHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "ya existe una cuenta con ese email"})
	case errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "USER_NOT_FOUND", Message: "usuario no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "rol inválido"})
	}
	h.log.Error().Err(err).Str("path", c.Path()).Msg("operación de usuario")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// pathEmail devuelve el email de la ruta decodificado (%40 → @).
func pathEmail(c *fiber.Ctx) string {
	raw := c.Params("email")
	if email, err := url.PathUnescape(raw); err == nil {
		return email
	}
	return raw
}
