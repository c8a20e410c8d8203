package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jhoicas/productos-api/internal/application/dto"
	"github.com/jhoicas/productos-api/internal/application/ports"
	"github.com/jhoicas/productos-api/internal/domain"
	"github.com/jhoicas/productos-api/internal/domain/entity"
	"github.com/jhoicas/productos-api/internal/domain/repository"
	"github.com/jhoicas/productos-api/pkg/logger"
)

// DownloadPath prefijo de la URI de descarga de imágenes.
const DownloadPath = "/productos/downloadFile/"

// Upload archivo recibido junto con un producto.
type Upload struct {
	Name    string
	Size    int64
	Content io.Reader
}

// SaveResult producto persistido y, si hubo adjunto, los metadatos del archivo.
type SaveResult struct {
	Producto *entity.Producto
	File     *dto.FileUploadResponse
}

// ProductoUseCase casos de uso CRUD para productos más la gestión de su imagen.
type ProductoUseCase struct {
	repo    repository.ProductoRepository
	tx      ports.TxRunner
	storage ports.FileStorage
	log     *logger.Logger
}

// NewProductoUseCase construye el caso de uso.
func NewProductoUseCase(repo repository.ProductoRepository, tx ports.TxRunner, storage ports.FileStorage, log *logger.Logger) *ProductoUseCase {
	return &ProductoUseCase{repo: repo, tx: tx, storage: storage, log: log.Named("productos")}
}

// ListAll lista todos los productos ordenados por sort.
func (uc *ProductoUseCase) ListAll(ctx context.Context, sort repository.Sort) ([]*entity.Producto, error) {
	return uc.repo.ListAll(ctx, sort)
}

// ListPage lista una página de productos. page < 0 o size < 1 devuelve domain.ErrInvalidPage.
func (uc *ProductoUseCase) ListPage(ctx context.Context, page, size int, sort repository.Sort) (*repository.Page[*entity.Producto], error) {
	req, err := repository.NewPageRequest(page, size, sort)
	if err != nil {
		return nil, err
	}
	return uc.repo.ListPage(ctx, req)
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (uc *ProductoUseCase) GetByID(ctx context.Context, id int64) (*entity.Producto, error) {
	return uc.repo.FindByID(ctx, id)
}

// Create persiste un producto nuevo. Si llega archivo se guarda primero y su nombre
// almacenado pasa a ser ImagenProducto; si luego falla la escritura en BD el archivo se elimina.
func (uc *ProductoUseCase) Create(ctx context.Context, producto *entity.Producto, file *Upload) (*SaveResult, error) {
	producto.ID = 0
	producto.ImagenProducto = ""
	if producto.FechaAlta.IsZero() {
		producto.FechaAlta = time.Now().UTC().Truncate(time.Microsecond)
	}
	return uc.save(ctx, producto, file, nil)
}

// Update reemplaza el producto con el id de la ruta (semántica de reemplazo completo).
// La imagen existente se conserva salvo que llegue un archivo nuevo.
// Si el id no existe se inserta como producto nuevo con un id generado por el almacén.
func (uc *ProductoUseCase) Update(ctx context.Context, id int64, producto *entity.Producto, file *Upload) (*SaveResult, error) {
	producto.ID = id
	producto.ImagenProducto = ""
	return uc.save(ctx, producto, file, func(existing *entity.Producto) {
		if existing == nil {
			producto.ID = 0
			return
		}
		producto.ImagenProducto = existing.ImagenProducto
		if producto.FechaAlta.IsZero() {
			producto.FechaAlta = existing.FechaAlta
		}
	})
}

func (uc *ProductoUseCase) save(ctx context.Context, producto *entity.Producto, file *Upload, merge func(existing *entity.Producto)) (*SaveResult, error) {
	result := &SaveResult{}
	var stored string
	if file != nil && file.Size > 0 {
		code, err := uc.storage.Save(ctx, file.Name, file.Content, file.Size)
		if err != nil {
			return nil, fmt.Errorf("guardar archivo: %w", err)
		}
		stored = ports.StoredName(code, file.Name)
		result.File = &dto.FileUploadResponse{
			FileName:    stored,
			DownloadURI: DownloadPath + stored,
			Size:        file.Size,
		}
	}

	err := uc.tx.Run(ctx, func(repo repository.ProductoRepository) error {
		if merge != nil {
			existing, err := repo.FindByID(ctx, producto.ID)
			if err != nil {
				return err
			}
			merge(existing)
			if producto.FechaAlta.IsZero() {
				producto.FechaAlta = time.Now().UTC().Truncate(time.Microsecond)
			}
		}
		if stored != "" {
			producto.ImagenProducto = stored
		}
		saved, err := repo.Save(ctx, producto)
		if err != nil {
			return err
		}
		if saved == nil {
			return domain.ErrNotSaved
		}
		result.Producto = saved
		return nil
	})
	if err != nil {
		if stored != "" {
			if derr := uc.storage.Delete(ctx, stored); derr != nil {
				uc.log.Warn().Err(derr).Str("file", stored).Msg("no se pudo eliminar el archivo huérfano")
			}
		}
		return nil, fmt.Errorf("guardar producto: %w", err)
	}
	return result, nil
}

// Delete elimina el producto con ese id. Devuelve domain.ErrNotFound si no existe.
func (uc *ProductoUseCase) Delete(ctx context.Context, id int64) error {
	return uc.tx.Run(ctx, func(repo repository.ProductoRepository) error {
		producto, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if producto == nil {
			return domain.ErrNotFound
		}
		return repo.Delete(ctx, producto)
	})
}

// OpenFile resuelve una imagen almacenada por su nombre o por su code.
func (uc *ProductoUseCase) OpenFile(ctx context.Context, fileCode string) (*ports.StoredFile, error) {
	return uc.storage.Open(ctx, fileCode)
}
