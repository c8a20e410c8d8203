// Package storage contiene los adaptadores de ports.FileStorage: disco local y MinIO.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/productos-api/internal/application/ports"
	"github.com/jhoicas/productos-api/internal/domain"
)

var _ ports.FileStorage = (*LocalStorage)(nil)

// LocalStorage guarda los archivos en un directorio del disco.
type LocalStorage struct {
	root string
}

// NewLocalStorage crea el directorio raíz si no existe.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolver directorio de archivos: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de archivos: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

// Root directorio absoluto donde se guardan los archivos.
func (s *LocalStorage) Root() string {
	return s.root
}

// Save escribe content en un temporal y lo renombra a "{code}-{originalName}".
func (s *LocalStorage) Save(ctx context.Context, originalName string, content io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return "", fmt.Errorf("crear directorio de archivos: %w", err)
	}
	code := uuid.NewString()
	name := ports.StoredName(code, originalName)
	if err := checkName(name); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("crear temporal: %w", err)
	}
	tmpName := tmp.Name()
	written, err := io.Copy(tmp, content)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil && size > 0 && written != size {
		err = fmt.Errorf("se escribieron %d de %d bytes", written, size)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("escribir archivo %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.root, name)); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("renombrar archivo %s: %w", name, err)
	}
	return code, nil
}

// Open busca primero el nombre exacto y después el primer archivo cuyo nombre empiece por storedName.
func (s *LocalStorage) Open(ctx context.Context, storedName string) (*ports.StoredFile, error) {
	if err := checkName(storedName); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(storedName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrFileNotFound
		}
		return nil, fmt.Errorf("abrir archivo: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat archivo: %w", err)
	}
	return &ports.StoredFile{Name: filepath.Base(path), Size: info.Size(), Content: f}, nil
}

func (s *LocalStorage) resolve(storedName string) (string, error) {
	exact := filepath.Join(s.root, storedName)
	if rel, err := filepath.Rel(s.root, exact); err != nil || strings.HasPrefix(rel, "..") {
		return "", domain.ErrInvalidFileName
	}
	info, err := os.Stat(exact)
	if err == nil && info.Mode().IsRegular() {
		return exact, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat archivo: %w", err)
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrFileNotFound
		}
		return "", fmt.Errorf("listar directorio: %w", err)
	}
	var matches []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasPrefix(e.Name(), storedName) && !strings.HasPrefix(e.Name(), ".") {
			matches = append(matches, e.Name())
		}
	}
	if len(matches) == 0 {
		return "", domain.ErrFileNotFound
	}
	sort.Strings(matches)
	return filepath.Join(s.root, matches[0]), nil
}

// Delete elimina el archivo; si no existe no hace nada.
func (s *LocalStorage) Delete(ctx context.Context, storedName string) error {
	if err := checkName(storedName); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, storedName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("eliminar archivo: %w", err)
	}
	return nil
}
