package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/productos-api/internal/domain"
	"github.com/jhoicas/productos-api/internal/domain/entity"
	"github.com/jhoicas/productos-api/internal/domain/repository"
)

var _ repository.ProductoRepository = (*ProductoRepo)(nil)

// selectProductos trae el producto y su presentación en una sola consulta (LEFT JOIN),
// evitando N+1 consultas y subconsultas correlacionadas.
const selectProductos = `
		SELECT p.id, p.nombre, p.descripcion, p.precio, p.stock, p.fecha_alta, p.imagen_producto,
		       pr.id, pr.nombre, pr.descripcion
		FROM productos p
		LEFT JOIN presentaciones pr ON pr.id = p.presentacion_id`

// countProductos no necesita el JOIN: con LEFT JOIN a una relación uno a uno el conteo no cambia.
const countProductos = `SELECT count(*) FROM productos`

const insertProducto = `
	INSERT INTO productos (nombre, descripcion, precio, stock, fecha_alta, imagen_producto, presentacion_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id`

const updateProducto = `
	UPDATE productos SET
		nombre = $2,
		descripcion = $3,
		precio = $4,
		stock = $5,
		fecha_alta = $6,
		imagen_producto = $7,
		presentacion_id = $8
	WHERE id = $1`

var sortColumns = map[repository.Sort]string{
	repository.SortByID:          "p.id",
	repository.SortByNombre:      "p.nombre",
	repository.SortByDescripcion: "p.descripcion",
	repository.SortByPrecio:      "p.precio",
	repository.SortByStock:       "p.stock",
	repository.SortByFechaAlta:   "p.fecha_alta",
}

// orderBy traduce el criterio a SQL. Solo columnas de la lista blanca llegan a la consulta.
func orderBy(sort repository.Sort) (string, error) {
	if sort == "" {
		sort = repository.DefaultSort
	}
	col, ok := sortColumns[sort]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidSort, sort)
	}
	if col == "p.id" {
		return " ORDER BY p.id ASC", nil
	}
	return " ORDER BY " + col + " ASC, p.id ASC", nil
}

// ProductoRepo implementación del puerto ProductoRepository sobre PostgreSQL (usable con pool o tx).
type ProductoRepo struct {
	q Querier
}

// NewProductoRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductoRepository(q Querier) *ProductoRepo {
	return &ProductoRepo{q: q}
}

// ListAll lista todos los productos con su presentación, ordenados ascendentemente.
func (r *ProductoRepo) ListAll(ctx context.Context, sort repository.Sort) ([]*entity.Producto, error) {
	order, err := orderBy(sort)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, selectProductos+order)
	if err != nil {
		return nil, fmt.Errorf("list productos: %w", err)
	}
	return collectProductos(rows)
}

// ListPage devuelve una página de productos y el total de registros.
func (r *ProductoRepo) ListPage(ctx context.Context, req repository.PageRequest) (*repository.Page[*entity.Producto], error) {
	if req.Page < 0 || req.Size < 1 {
		return nil, domain.ErrInvalidPage
	}
	order, err := orderBy(req.Sort)
	if err != nil {
		return nil, err
	}
	var total int64
	if err := r.q.QueryRow(ctx, countProductos).Scan(&total); err != nil {
		return nil, fmt.Errorf("count productos: %w", err)
	}
	rows, err := r.q.Query(ctx, selectProductos+order+" LIMIT $1 OFFSET $2", req.Size, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("page productos: %w", err)
	}
	content, err := collectProductos(rows)
	if err != nil {
		return nil, err
	}
	return &repository.Page[*entity.Producto]{
		Content: content,
		Number:  req.Page,
		Size:    req.Size,
		Total:   total,
	}, nil
}

// FindByID obtiene un producto con su presentación; (nil, nil) si no existe.
func (r *ProductoRepo) FindByID(ctx context.Context, id int64) (*entity.Producto, error) {
	p, err := scanProducto(r.q.QueryRow(ctx, selectProductos+" WHERE p.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get producto: %w", err)
	}
	return p, nil
}

// Save inserta (ID == 0) o reemplaza por ID y devuelve la fila releída con su presentación.
// Nunca inserta con un id explícito: la secuencia identity es la única fuente de ids.
// Si el ID no existe devuelve (nil, nil).
func (r *ProductoRepo) Save(ctx context.Context, p *entity.Producto) (*entity.Producto, error) {
	var presentacionID *int64
	if p.Presentacion != nil && p.Presentacion.ID > 0 {
		id := p.Presentacion.ID
		presentacionID = &id
	}

	if p.IsNew() {
		err := r.q.QueryRow(ctx, insertProducto,
			p.Nombre, p.Descripcion, p.Precio, p.Stock, p.FechaAlta, p.ImagenProducto, presentacionID,
		).Scan(&p.ID)
		if err != nil {
			return nil, fmt.Errorf("insert producto: %w", err)
		}
	} else {
		tag, err := r.q.Exec(ctx, updateProducto,
			p.ID, p.Nombre, p.Descripcion, p.Precio, p.Stock, p.FechaAlta, p.ImagenProducto, presentacionID,
		)
		if err != nil {
			return nil, fmt.Errorf("update producto: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, nil
		}
	}
	return r.FindByID(ctx, p.ID)
}

// Delete elimina el producto por su ID.
func (r *ProductoRepo) Delete(ctx context.Context, p *entity.Producto) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM productos WHERE id = $1`, p.ID); err != nil {
		return fmt.Errorf("delete producto: %w", err)
	}
	return nil
}

func collectProductos(rows pgx.Rows) ([]*entity.Producto, error) {
	defer rows.Close()
	list := make([]*entity.Producto, 0)
	for rows.Next() {
		p, err := scanProducto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan producto: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProducto(row pgx.Row) (*entity.Producto, error) {
	var (
		p         entity.Producto
		presID    *int64
		presNom   *string
		presDescr *string
	)
	if err := row.Scan(
		&p.ID, &p.Nombre, &p.Descripcion, &p.Precio, &p.Stock, &p.FechaAlta, &p.ImagenProducto,
		&presID, &presNom, &presDescr,
	); err != nil {
		return nil, err
	}
	if presID != nil {
		p.Presentacion = &entity.Presentacion{ID: *presID}
		if presNom != nil {
			p.Presentacion.Nombre = *presNom
		}
		if presDescr != nil {
			p.Presentacion.Descripcion = *presDescr
		}
	}
	return &p, nil
}
