package repository

import "github.com/jhoicas/productos-api/internal/domain"

// Sort nombre de campo por el que se ordena un listado (siempre ascendente).
type Sort string

// Campos de ordenación soportados para Producto.
const (
	SortByID          Sort = "id"
	SortByNombre      Sort = "nombre"
	SortByDescripcion Sort = "descripcion"
	SortByPrecio      Sort = "precio"
	SortByStock       Sort = "stock"
	SortByFechaAlta   Sort = "fechaAlta"
)

// DefaultSort orden aplicado cuando no se indica campo, en listados completos y paginados.
const DefaultSort = SortByNombre

// PageRequest índice de página (base 0), tamaño y criterio de orden.
type PageRequest struct {
	Page int
	Size int
	Sort Sort
}

// NewPageRequest valida y construye la petición: page >= 0 y size >= 1.
func NewPageRequest(page, size int, sort Sort) (PageRequest, error) {
	if page < 0 || size < 1 {
		return PageRequest{}, domain.ErrInvalidPage
	}
	return PageRequest{Page: page, Size: size, Sort: sort}, nil
}

// Offset filas a saltar para llegar a la página.
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// Page porción acotada de un resultado ordenado más el total de registros.
type Page[T any] struct {
	Content []T
	Number  int
	Size    int
	Total   int64
}

// TotalPages número de páginas para el total y tamaño dados.
func (p *Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}
