package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/productos-api/internal/application/usecase"
	"github.com/jhoicas/productos-api/pkg/logger"
	"github.com/jhoicas/productos-api/pkg/validator"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductoUC    *usecase.ProductoUseCase
	UserUC        *usecase.UserUseCase
	Authenticator Authenticator
	Validator     *validator.Validator
	Metrics       *Metrics     // nil desactiva /metrics
	AccessRules   []AccessRule // nil usa DefaultAccessRules
	Log           *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	val := deps.Validator
	if val == nil {
		val = validator.New()
	}
	rules := deps.AccessRules
	if rules == nil {
		rules = DefaultAccessRules
	}

	// Infraestructura (antes del control de acceso)
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", deps.Metrics.Handler())
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use(AccessControl(deps.Authenticator, rules, log.Named("access")))

	// Users (público)
	userHandler := NewUserHandler(deps.UserUC, val, log)
	users := app.Group("/users")
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:email", userHandler.GetByEmail)
	users.Put("/:email", userHandler.Update)
	users.Delete("/:email", userHandler.Delete)

	// Cualquier identidad autenticada
	app.Get("/me", userHandler.Me)

	// Productos (rol ADMIN)
	productoHandler := NewProductoHandler(deps.ProductoUC, val, deps.Metrics, log)
	productos := app.Group("/productos")
	productos.Get("/", productoHandler.List)
	productos.Post("/", productoHandler.Create)
	productos.Get("/downloadFile/:fileCode", productoHandler.DownloadFile)
	productos.Get("/:id", productoHandler.GetByID)
	productos.Put("/:id", productoHandler.Update)
	productos.Delete("/:id", productoHandler.Delete)
}
