package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvalidSort        = errors.New("criterio de ordenación no soportado")
	ErrInvalidPage        = errors.New("parámetros de paginación inválidos")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrFileNotFound       = errors.New("archivo no encontrado")
	ErrInvalidFileName    = errors.New("nombre de archivo inválido")
	ErrNotSaved           = errors.New("el almacén no devolvió la entidad guardada")
)

// RootCause devuelve el error más interno de la cadena de wrapping (%w).
// Se usa para informar la causa más probable de un fallo del almacén.
func RootCause(err error) error {
	for err != nil {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return nil
}
