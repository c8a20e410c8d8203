package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/productos-api/internal/domain/entity"
)

// PresentacionRef referencia a una presentación existente.
type PresentacionRef struct {
	ID          int64  `json:"id" validate:"gt=0"`
	Nombre      string `json:"nombre,omitempty"`
	Descripcion string `json:"descripcion,omitempty"`
}

// ProductoRequest entrada para crear o reemplazar un producto.
// En PUT el id del cuerpo se ignora: manda el id de la ruta. La imagen solo llega como archivo adjunto.
type ProductoRequest struct {
	ID           int64            `json:"id,omitempty"`
	Nombre       string           `json:"nombre" validate:"required,min=4,max=25"`
	Descripcion  string           `json:"descripcion" validate:"required"`
	Precio       decimal.Decimal  `json:"precio" validate:"gte=0"`
	Stock        int              `json:"stock" validate:"gte=0"`
	FechaAlta    *time.Time       `json:"fechaAlta,omitempty"`
	Presentacion *PresentacionRef `json:"presentacion,omitempty" validate:"omitempty"`
}

// ToEntity construye la entidad de dominio a partir del request.
func (r ProductoRequest) ToEntity() *entity.Producto {
	p := &entity.Producto{
		ID:          r.ID,
		Nombre:      r.Nombre,
		Descripcion: r.Descripcion,
		Precio:      r.Precio,
		Stock:       r.Stock,
	}
	if r.FechaAlta != nil {
		p.FechaAlta = *r.FechaAlta
	}
	if r.Presentacion != nil {
		p.Presentacion = &entity.Presentacion{
			ID:          r.Presentacion.ID,
			Nombre:      r.Presentacion.Nombre,
			Descripcion: r.Presentacion.Descripcion,
		}
	}
	return p
}

// PresentacionResponse salida de una presentación.
type PresentacionResponse struct {
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
}

// ProductoResponse salida de un producto.
type ProductoResponse struct {
	ID             int64                 `json:"id"`
	Nombre         string                `json:"nombre"`
	Descripcion    string                `json:"descripcion"`
	Precio         decimal.Decimal       `json:"precio"`
	Stock          int                   `json:"stock"`
	FechaAlta      time.Time             `json:"fechaAlta"`
	ImagenProducto string                `json:"imagenProducto,omitempty"`
	Presentacion   *PresentacionResponse `json:"presentacion"`
}

// NewProductoResponse mapea la entidad a su representación JSON.
func NewProductoResponse(p *entity.Producto) *ProductoResponse {
	if p == nil {
		return nil
	}
	out := &ProductoResponse{
		ID:             p.ID,
		Nombre:         p.Nombre,
		Descripcion:    p.Descripcion,
		Precio:         p.Precio,
		Stock:          p.Stock,
		FechaAlta:      p.FechaAlta,
		ImagenProducto: p.ImagenProducto,
	}
	if p.Presentacion != nil {
		out.Presentacion = &PresentacionResponse{
			ID:          p.Presentacion.ID,
			Nombre:      p.Presentacion.Nombre,
			Descripcion: p.Presentacion.Descripcion,
		}
	}
	return out
}

// NewProductoListResponse mapea una lista de entidades; nunca devuelve nil.
func NewProductoListResponse(list []*entity.Producto) []ProductoResponse {
	out := make([]ProductoResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *NewProductoResponse(p))
	}
	return out
}

// FileUploadResponse metadatos del archivo recibido junto con un producto.
type FileUploadResponse struct {
	FileName    string `json:"fileName"`
	DownloadURI string `json:"downloadURI"`
	Size        int64  `json:"size"`
}
