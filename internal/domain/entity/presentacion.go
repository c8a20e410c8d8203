package entity

// Presentacion describe el empaque o formato de venta de un producto.
type Presentacion struct {
	ID          int64
	Nombre      string
	Descripcion string
}
