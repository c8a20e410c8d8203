package usecase_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jhoicas/productos-api/internal/application/ports"
	"github.com/jhoicas/productos-api/internal/domain"
	"github.com/jhoicas/productos-api/internal/domain/entity"
	"github.com/jhoicas/productos-api/internal/domain/repository"
)

type fakeProductoRepo struct {
	rows    map[int64]entity.Producto
	nextID  int64
	saveErr error
	saveNil bool
}

func newFakeProductoRepo() *fakeProductoRepo {
	return &fakeProductoRepo{rows: map[int64]entity.Producto{}, nextID: 1}
}

func (r *fakeProductoRepo) ListAll(_ context.Context, _ repository.Sort) ([]*entity.Producto, error) {
	out := make([]*entity.Producto, 0, len(r.rows))
	for id := int64(1); id < r.nextID; id++ {
		if p, ok := r.rows[id]; ok {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *fakeProductoRepo) ListPage(ctx context.Context, req repository.PageRequest) (*repository.Page[*entity.Producto], error) {
	all, _ := r.ListAll(ctx, req.Sort)
	from := min(req.Offset(), len(all))
	to := min(from+req.Size, len(all))
	return &repository.Page[*entity.Producto]{Content: all[from:to], Number: req.Page, Size: req.Size, Total: int64(len(all))}, nil
}

func (r *fakeProductoRepo) FindByID(_ context.Context, id int64) (*entity.Producto, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeProductoRepo) Save(_ context.Context, p *entity.Producto) (*entity.Producto, error) {
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	if r.saveNil {
		return nil, nil
	}
	cp := *p
	if cp.ID == 0 {
		cp.ID = r.nextID
		r.nextID++
	} else if _, ok := r.rows[cp.ID]; !ok {
		return nil, nil
	}
	r.rows[cp.ID] = cp
	return &cp, nil
}

func (r *fakeProductoRepo) Delete(_ context.Context, p *entity.Producto) error {
	delete(r.rows, p.ID)
	return nil
}

type fakeTx struct {
	repo repository.ProductoRepository
	runs int
}

func (t *fakeTx) Run(_ context.Context, fn func(repo repository.ProductoRepository) error) error {
	t.runs++
	return fn(t.repo)
}

// fakeStorage guarda en memoria; los códigos son secuenciales.
type fakeStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	seq     int
	saveErr error
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string][]byte{}}
}

func (s *fakeStorage) Save(_ context.Context, originalName string, content io.Reader, _ int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.seq++
	code := fmt.Sprintf("code%03d", s.seq)
	s.files[ports.StoredName(code, originalName)] = data
	return code, nil
}

func (s *fakeStorage) Open(_ context.Context, storedName string) (*ports.StoredFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[storedName]
	if !ok {
		return nil, domain.ErrFileNotFound
	}
	return &ports.StoredFile{Name: storedName, Size: int64(len(data)), Content: io.NopCloser(bytes.NewReader(data))}, nil
}

func (s *fakeStorage) Delete(_ context.Context, storedName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, storedName)
	s.deleted = append(s.deleted, storedName)
	return nil
}

type fakeUserRepo struct {
	rows    map[string]entity.User
	nextID  int64
	creates int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: map[string]entity.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	if _, ok := r.rows[u.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}
	r.creates++
	u.ID = r.nextID
	r.nextID++
	r.rows[u.Email] = *u
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := r.rows[email]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.rows[u.Email]; !ok {
		return domain.ErrUserNotFound
	}
	r.rows[u.Email] = *u
	return nil
}

func (r *fakeUserRepo) DeleteByEmail(_ context.Context, email string) error {
	if _, ok := r.rows[email]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.rows, email)
	return nil
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(r.rows))
	for _, u := range r.rows {
		u := u
		out = append(out, &u)
	}
	return out, nil
}

type recordingEvictor struct{ forgotten []string }

func (e *recordingEvictor) Forget(email string) { e.forgotten = append(e.forgotten, email) }
