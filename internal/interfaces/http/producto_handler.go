package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/productos-api/internal/application/dto"
	"github.com/jhoicas/productos-api/internal/application/usecase"
	"github.com/jhoicas/productos-api/internal/domain"
	"github.com/jhoicas/productos-api/internal/domain/repository"
	"github.com/jhoicas/productos-api/pkg/logger"
	"github.com/jhoicas/productos-api/pkg/validator"
)

// Partes del formulario multipart de alta/modificación.
const (
	partProducto = "producto"
	partFile     = "file"
)

// ProductoHandler maneja /productos (requiere rol ADMIN).
type ProductoHandler struct {
	uc       *usecase.ProductoUseCase
	validate *validator.Validator
	metrics  *Metrics
	log      *logger.Logger
}

// NewProductoHandler construye el handler. metrics puede ser nil.
func NewProductoHandler(uc *usecase.ProductoUseCase, validate *validator.Validator, metrics *Metrics, log *logger.Logger) *ProductoHandler {
	return &ProductoHandler{uc: uc, validate: validate, metrics: metrics, log: log.Named("productos_http")}
}

// List godoc
// @Summary      Listar productos
// @Description  Con page y size devuelve una página (cabeceras X-Total-Count y X-Total-Pages); sin ellos, la lista completa ordenada.
// @Tags         productos
// @Security     BasicAuth
// @Produce      json
// @Param        page  query  int     false  "Número de página (desde 0)"
// @Param        size  query  int     false  "Tamaño de página (>= 1)"
// @Param        sort  query  string  false  "Campo de orden: id, nombre, descripcion, precio, stock o fechaAlta (por defecto nombre, en ambos modos)"
// @Success      200   {array}   dto.ProductoResponse
// @Success      204
// @Failure      400   {object}  map[string]string
// @Router       /productos [get]
func (h *ProductoHandler) List(c *fiber.Ctx) error {
	sort := repository.Sort(c.Query("sort", string(repository.DefaultSort)))
	pageStr, sizeStr := c.Query("page"), c.Query("size")

	if pageStr == "" || sizeStr == "" {
		list, err := h.uc.ListAll(c.UserContext(), sort)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidSort) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			h.log.Error().Err(err).Msg("listar productos")
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.JSON(dto.NewProductoListResponse(list))
	}

	page, err := strconv.Atoi(pageStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "page debe ser un entero"})
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "size debe ser un entero"})
	}
	result, err := h.uc.ListPage(c.UserContext(), page, size, sort)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPage) || errors.Is(err, domain.ErrInvalidSort) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.log.Error().Err(err).Int("page", page).Int("size", size).Msg("listar página de productos")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error al consultar la base de datos"})
	}
	c.Set("X-Total-Count", strconv.FormatInt(result.Total, 10))
	c.Set("X-Total-Pages", strconv.Itoa(result.TotalPages()))
	return c.JSON(dto.NewProductoListResponse(result.Content))
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         productos
// @Security     BasicAuth
// @Produce      json
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /productos/{id} [get]
func (h *ProductoHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id debe ser un entero"})
	}
	producto, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		h.log.Error().Err(err).Int64("producto_id", id).Msg("buscar producto")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error al consultar la base de datos: " + domain.RootCause(err).Error()})
	}
	if producto == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No se ha encontrado el producto con id: " + strconv.FormatInt(id, 10)})
	}
	return c.JSON(fiber.Map{
		"message":  "Se ha encontrado el producto con id: " + strconv.FormatInt(id, 10),
		"producto": dto.NewProductoResponse(producto),
	})
}

// Create godoc
// @Summary      Crear producto
// @Description  Acepta JSON o multipart/form-data con las partes producto (JSON) y file (opcional).
// @Tags         productos
// @Security     BasicAuth
// @Accept       json,mpfd
// @Produce      json
// @Param        body      body      dto.ProductoRequest  false  "Producto (variante JSON)"
// @Param        producto  formData  string               false  "Producto en JSON (variante multipart)"
// @Param        file      formData  file                 false  "Imagen del producto"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  dto.ValidationErrorResponse
// @Failure      500  {object}  map[string]string
// @Router       /productos [post]
func (h *ProductoHandler) Create(c *fiber.Ctx) error {
	in, upload, done := h.bind(c)
	if done != nil {
		return done()
	}
	if upload != nil {
		defer upload.close()
	}

	result, err := h.uc.Create(c.UserContext(), in.ToEntity(), upload.usecase())
	if err != nil {
		return h.saveFailed(c, err)
	}
	h.recordFile(result.File)

	body := fiber.Map{
		"message":    "El producto se ha creado correctamente",
		"productoDB": dto.NewProductoResponse(result.Producto),
	}
	if result.File != nil {
		body["fileInfo"] = result.File
	}
	return c.Status(fiber.StatusCreated).JSON(body)
}

// Update godoc
// @Summary      Reemplazar producto
// @Description  Reemplazo completo sobre el id de la ruta; el id del cuerpo se ignora.
// @Tags         productos
// @Security     BasicAuth
// @Accept       json,mpfd
// @Produce      json
// @Param        id        path      int                  true   "ID del producto"
// @Param        body      body      dto.ProductoRequest  false  "Producto (variante JSON)"
// @Param        producto  formData  string               false  "Producto en JSON (variante multipart)"
// @Param        file      formData  file                 false  "Imagen nueva"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  dto.ValidationErrorResponse
// @Failure      500  {object}  map[string]string
// @Router       /productos/{id} [put]
func (h *ProductoHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id debe ser un entero"})
	}
	in, upload, done := h.bind(c)
	if done != nil {
		return done()
	}
	if upload != nil {
		defer upload.close()
	}

	result, err := h.uc.Update(c.UserContext(), id, in.ToEntity(), upload.usecase())
	if err != nil {
		return h.saveFailed(c, err)
	}
	h.recordFile(result.File)

	body := fiber.Map{
		"message":  "El producto se ha actualizado correctamente",
		"producto": dto.NewProductoResponse(result.Producto),
	}
	if result.File != nil {
		body["fileInfo"] = result.File
	}
	return c.JSON(body)
}

// Delete godoc
// @Summary      Eliminar producto
// @Tags         productos
// @Security     BasicAuth
// @Param        id   path  int  true  "ID del producto"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      404
// @Failure      500  {object}  map[string]string
// @Router       /productos/{id} [delete]
func (h *ProductoHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "id debe ser un entero"})
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		h.log.Error().Err(err).Int64("producto_id", id).Msg("eliminar producto")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"errorGrave": graveMessage(err)})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DownloadFile godoc
// @Summary      Descargar imagen de producto
// @Description  Resuelve por nombre almacenado exacto o por el código generado en el alta.
// @Tags         productos
// @Security     BasicAuth
// @Produce      octet-stream
// @Param        fileCode  path  string  true  "Nombre almacenado o código"
// @Success      200  {file}    binary
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /productos/downloadFile/{fileCode} [get]
func (h *ProductoHandler) DownloadFile(c *fiber.Ctx) error {
	code := c.Params("fileCode")
	file, err := h.uc.OpenFile(c.UserContext(), code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidFileName):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "nombre de archivo inválido"})
		case errors.Is(err, domain.ErrFileNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
		}
		h.log.Error().Err(err).Str("file", code).Msg("abrir archivo")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error al leer el archivo"})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	return c.SendStream(file.Content, int(file.Size))
}

// bind decodifica y valida el producto (JSON o multipart). Si done != nil la respuesta ya está decidida.
func (h *ProductoHandler) bind(c *fiber.Ctx) (in dto.ProductoRequest, upload *formFile, done func() error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		raw, f, err := readMultipart(c)
		if err != nil {
			return in, nil, func() error {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
		}
		if err := json.Unmarshal(raw, &in); err != nil {
			if f != nil {
				f.close()
			}
			return in, nil, func() error {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "la parte producto no es JSON válido"})
			}
		}
		upload = f
	} else if err := c.BodyParser(&in); err != nil {
		return in, nil, func() error {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cuerpo inválido"})
		}
	}

	msgs, err := h.validate.Struct(in)
	if err == nil && len(msgs) == 0 {
		return in, upload, nil
	}
	if upload != nil {
		upload.close()
	}
	if err != nil {
		return in, nil, func() error { return err }
	}
	return in, nil, func() error {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{Errores: msgs})
	}
}

func (h *ProductoHandler) saveFailed(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrInvalidFileName) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "nombre de archivo inválido"})
	}
	h.log.Error().Err(err).Msg("guardar producto")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"errorGrave": graveMessage(err)})
}

func (h *ProductoHandler) recordFile(f *dto.FileUploadResponse) {
	if f != nil && h.metrics != nil {
		h.metrics.FileStored(f.Size)
	}
}

func graveMessage(err error) string {
	return "Ha tenido lugar un error grave y la causa más probable puede ser: " + domain.RootCause(err).Error()
}

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil
}

// formFile archivo adjunto abierto desde el formulario multipart.
type formFile struct {
	name string
	size int64
	rc   multipart.File
}

func (f *formFile) usecase() *usecase.Upload {
	if f == nil {
		return nil
	}
	return &usecase.Upload{Name: f.name, Size: f.size, Content: f.rc}
}

func (f *formFile) close() {
	if f != nil && f.rc != nil {
		_ = f.rc.Close()
	}
}

// readMultipart extrae la parte producto (valor o archivo) y el archivo opcional.
func readMultipart(c *fiber.Ctx) ([]byte, *formFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, errors.New("formulario multipart inválido")
	}

	var raw []byte
	if vals := form.Value[partProducto]; len(vals) > 0 && vals[0] != "" {
		raw = []byte(vals[0])
	} else if files := form.File[partProducto]; len(files) > 0 {
		raw, err = readPart(files[0])
		if err != nil {
			return nil, nil, errors.New("no se pudo leer la parte producto")
		}
	}
	if len(raw) == 0 {
		return nil, nil, errors.New("falta la parte producto")
	}

	files := form.File[partFile]
	if len(files) == 0 || files[0].Size == 0 {
		return raw, nil, nil
	}
	fh := files[0]
	rc, err := fh.Open()
	if err != nil {
		return nil, nil, errors.New("no se pudo leer el archivo adjunto")
	}
	return raw, &formFile{name: fh.Filename, size: fh.Size, rc: rc}, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
