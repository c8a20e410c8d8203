package storage

import (
	"strings"

	"github.com/jhoicas/productos-api/internal/domain"
)

// checkName rechaza nombres que podrían escapar del directorio o bucket raíz.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return domain.ErrInvalidFileName
	}
	return nil
}
