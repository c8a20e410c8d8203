package http_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/productos-api/internal/application/auth"
	"github.com/jhoicas/productos-api/internal/application/usecase"
	"github.com/jhoicas/productos-api/internal/domain"
	"github.com/jhoicas/productos-api/internal/domain/entity"
	"github.com/jhoicas/productos-api/internal/domain/repository"
	"github.com/jhoicas/productos-api/internal/infrastructure/cache"
	"github.com/jhoicas/productos-api/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/productos-api/internal/interfaces/http"
	"github.com/jhoicas/productos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memProductoRepo struct {
	mu      sync.Mutex
	rows    map[int64]*entity.Producto
	nextID  int64
	saveErr error
	saveNil bool
	listErr error
}

func newMemProductoRepo() *memProductoRepo {
	return &memProductoRepo{rows: map[int64]*entity.Producto{}, nextID: 1}
}

func cloneProducto(p *entity.Producto) *entity.Producto {
	cp := *p
	if p.Presentacion != nil {
		pres := *p.Presentacion
		cp.Presentacion = &pres
	}
	return &cp
}

func (r *memProductoRepo) sorted(s repository.Sort) ([]*entity.Producto, error) {
	var less func(a, b *entity.Producto) bool
	switch s {
	case repository.SortByID:
		less = func(a, b *entity.Producto) bool { return a.ID < b.ID }
	case "", repository.SortByNombre:
		less = func(a, b *entity.Producto) bool { return a.Nombre < b.Nombre }
	case repository.SortByPrecio:
		less = func(a, b *entity.Producto) bool { return a.Precio.LessThan(b.Precio) }
	case repository.SortByStock:
		less = func(a, b *entity.Producto) bool { return a.Stock < b.Stock }
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSort, s)
	}
	out := make([]*entity.Producto, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, cloneProducto(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if less(out[i], out[j]) {
			return true
		}
		if less(out[j], out[i]) {
			return false
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memProductoRepo) ListAll(_ context.Context, s repository.Sort) ([]*entity.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.sorted(s)
}

func (r *memProductoRepo) ListPage(_ context.Context, req repository.PageRequest) (*repository.Page[*entity.Producto], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	all, err := r.sorted(req.Sort)
	if err != nil {
		return nil, err
	}
	from := req.Offset()
	if from > len(all) {
		from = len(all)
	}
	to := from + req.Size
	if to > len(all) {
		to = len(all)
	}
	return &repository.Page[*entity.Producto]{Content: all[from:to], Number: req.Page, Size: req.Size, Total: int64(len(all))}, nil
}

func (r *memProductoRepo) FindByID(_ context.Context, id int64) (*entity.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return cloneProducto(p), nil
}

func (r *memProductoRepo) Save(_ context.Context, p *entity.Producto) (*entity.Producto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	if r.saveNil {
		return nil, nil
	}
	cp := cloneProducto(p)
	if cp.ID == 0 {
		cp.ID = r.nextID
		r.nextID++
	} else if _, ok := r.rows[cp.ID]; !ok {
		return nil, nil
	}
	r.rows[cp.ID] = cp
	return cloneProducto(cp), nil
}

func (r *memProductoRepo) Delete(_ context.Context, p *entity.Producto) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, p.ID)
	return nil
}

func (r *memProductoRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// memTx ejecuta fn sobre el mismo repositorio (sin aislamiento).
type memTx struct{ repo repository.ProductoRepository }

func (t memTx) Run(_ context.Context, fn func(repo repository.ProductoRepository) error) error {
	return fn(t.repo)
}

type memUserRepo struct {
	mu     sync.Mutex
	rows   map[string]*entity.User
	nextID int64
	finds  int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{rows: map[string]*entity.User{}, nextID: 1}
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[u.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}
	u.ID = r.nextID
	r.nextID++
	cp := *u
	r.rows[u.Email] = &cp
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	u, ok := r.rows[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[u.Email]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *u
	r.rows[u.Email] = &cp
	return nil
}

func (r *memUserRepo) DeleteByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[email]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.rows, email)
	return nil
}

func (r *memUserRepo) FindAll(_ context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.User, 0, len(r.rows))
	for _, u := range r.rows {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memUserRepo) lookups() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finds
}

// ──────────────────────────────────────────────────────────────────────────────
// Servidor de prueba
// ──────────────────────────────────────────────────────────────────────────────

const (
	adminEmail    = "admin@productos.test"
	adminPassword = "admin-secret"
	userEmail     = "user@productos.test"
	userPassword  = "user-secret"
)

type testServer struct {
	app        *fiber.App
	productos  *memProductoRepo
	users      *memUserRepo
	storageDir string
	registry   *prometheus.Registry
}

// newTestServer construye la API completa sobre repositorios en memoria y
// almacenamiento local en un directorio temporal, con un ADMIN y un USER ya creados.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.Nop()

	productos := newMemProductoRepo()
	users := newMemUserRepo()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	authn := auth.NewBasicAuthenticator(users, cache.NewMemory(time.Minute, time.Minute), time.Minute)
	userUC := usecase.NewUserUseCase(users, bcrypt.MinCost, authn)
	productoUC := usecase.NewProductoUseCase(productos, memTx{repo: productos}, store, log)

	ctx := context.Background()
	_, err = userUC.Add(ctx, &entity.User{FirstName: "Ada", Email: adminEmail, Password: adminPassword, Role: entity.RoleAdmin})
	require.NoError(t, err)
	_, err = userUC.Add(ctx, &entity.User{FirstName: "Bob", Email: userEmail, Password: userPassword, Role: entity.RoleUser})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics, err := apphttp.NewMetrics(reg)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	apphttp.Router(app, apphttp.RouterDeps{
		ProductoUC:    productoUC,
		UserUC:        userUC,
		Authenticator: authn,
		Metrics:       metrics,
		Log:           log,
	})
	return &testServer{app: app, productos: productos, users: users, storageDir: dir, registry: reg}
}

func basicAuth(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func adminAuth() string { return basicAuth(adminEmail, adminPassword) }

func productoJSON(nombre string, precio string, stock int) string {
	return fmt.Sprintf(`{"nombre":%q,"descripcion":"descripción de %s","precio":%s,"stock":%d}`,
		nombre, strings.ToLower(nombre), precio, stock)
}
