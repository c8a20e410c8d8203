package ports

import (
	"context"
	"io"
	"path"
	"strings"
)

// StoredFile archivo resuelto por el almacenamiento, listo para enviarse al cliente.
// El llamador debe cerrar Content.
type StoredFile struct {
	Name    string // nombre almacenado "{code}-{nombreOriginal}"
	Size    int64
	Content io.ReadCloser
}

// FileStorage define el puerto de salida para guardar y recuperar las imágenes de productos.
// Los adaptadores (disco local, MinIO) deben rechazar nombres que escapen de su raíz.
type FileStorage interface {
	// Save guarda content bajo "{code}-{originalName}" y devuelve code (UUID aleatorio).
	Save(ctx context.Context, originalName string, content io.Reader, size int64) (code string, err error)
	// Open resuelve un nombre almacenado (o solo su code) y devuelve domain.ErrFileNotFound si no existe.
	Open(ctx context.Context, storedName string) (*StoredFile, error)
	// Delete elimina un archivo; no falla si ya no existe.
	Delete(ctx context.Context, storedName string) error
}

// StoredName nombre bajo el que se guarda un archivo: "{code}-{base(originalName)}".
// Se descarta cualquier componente de directorio del nombre original.
func StoredName(code, originalName string) string {
	name := path.Base(strings.ReplaceAll(originalName, `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		name = "file"
	}
	return code + "-" + name
}
