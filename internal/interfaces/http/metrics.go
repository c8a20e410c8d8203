package http

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedPath etiqueta para peticiones que no coinciden con ninguna ruta.
const unmatchedPath = "unmatched"

// Metrics agrupa los collectors HTTP y de archivos de la API.
type Metrics struct {
	gatherer prometheus.Gatherer

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inflight        *prometheus.GaugeVec
	filesStored     prometheus.Counter
	fileBytesStored prometheus.Counter
}

// NewMetrics crea y registra las métricas en reg. Los collectors extra (p. ej. el del pool) se registran también.
// Registrar dos veces el mismo collector no es error.
func NewMetrics(reg *prometheus.Registry, extra ...prometheus.Collector) (*Metrics, error) {
	m := &Metrics{
		gatherer: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		inflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método",
		}, []string{"method"}),
		filesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "productos_files_stored_total",
			Help: "Imágenes de producto almacenadas",
		}),
		fileBytesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "productos_file_bytes_stored_total",
			Help: "Bytes de imágenes de producto almacenados",
		}),
	}
	collectors := []prometheus.Collector{m.requestsTotal, m.requestDuration, m.inflight, m.filesStored, m.fileBytesStored}
	for _, c := range append(collectors, extra...) {
		if err := registerCollector(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware instrumenta cada request con la ruta registrada como etiqueta (no la URL cruda).
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		m.inflight.WithLabelValues(method).Inc()
		start := time.Now()

		err := c.Next()

		m.inflight.WithLabelValues(method).Dec()
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		path := routePath(c)
		m.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		return err
	}
}

// Handler expone /metrics a través del adaptador net/http de Fiber.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}

// FileStored cuenta una imagen almacenada de size bytes.
func (m *Metrics) FileStored(size int64) {
	m.filesStored.Inc()
	if size > 0 {
		m.fileBytesStored.Add(float64(size))
	}
}

func routePath(c *fiber.Ctx) string {
	r := c.Route()
	if r == nil || r.Path == "" || r.Path == "/" && c.Path() != "/" {
		return unmatchedPath
	}
	return r.Path
}

func registerCollector(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}
