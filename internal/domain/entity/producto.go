package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto representa un producto del catálogo.
// ID lo genera el almacén y no cambia después de persistido.
// ImagenProducto solo se asigna cuando la creación o actualización trae un archivo adjunto.
type Producto struct {
	ID             int64
	Nombre         string
	Descripcion    string
	Precio         decimal.Decimal
	Stock          int
	FechaAlta      time.Time
	ImagenProducto string        // "{fileCode}-{nombreOriginal}" o vacío
	Presentacion   *Presentacion // opcional; las lecturas la traen con LEFT JOIN
}

// IsNew indica si el producto aún no tiene identificador asignado por el almacén.
func (p *Producto) IsNew() bool {
	return p.ID == 0
}
