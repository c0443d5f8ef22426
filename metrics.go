package gallery

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the prometheus collectors of one App. Each App has its own
// registry so several can live in one process.
type Metrics struct {
	Registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	reloads        *prometheus.CounterVec
	viewerRequests *prometheus.CounterVec
}

// NewMetrics registers the gallery collectors for a.
func NewMetrics(a *App) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	m := &Metrics{
		Registry: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gallery_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gallery_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gallery_library_reloads_total",
			Help: "Library reloads by result",
		}, []string{"result"}),
		viewerRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gallery_viewer_requests_total",
			Help: "Viewer page requests by outcome",
		}, []string{"outcome"}),
	}

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gallery_library_images",
		Help: "Images in the current library snapshot",
	}, func() float64 { return float64(a.Library.Current().Len()) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gallery_library_generation",
		Help: "Generation of the current library snapshot",
	}, func() float64 { return float64(a.Library.Current().Generation) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gallery_library_pending_probes",
		Help: "Images whose size was still unknown when the snapshot settled",
	}, func() float64 { return float64(a.Library.Current().Pending) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Name: "gallery_viewer_sessions_created_total",
		Help: "Viewer sessions constructed",
	}, func() float64 { return float64(a.viewers.Created()) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gallery_thumbnails_cached",
		Help: "Thumbnails held in memory",
	}, func() float64 {
		if a.Thumbs == nil {
			return 0
		}
		return float64(a.Thumbs.Len())
	})
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "gallery_websocket_clients",
		Help: "Connected live reload clients",
	}, func() float64 {
		if a.Hub == nil {
			return 0
		}
		return float64(a.Hub.ClientCount())
	})
	return m
}

func (m *Metrics) reload(result string) {
	if m != nil {
		m.reloads.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) viewer(outcome string) {
	if m != nil {
		m.viewerRequests.WithLabelValues(outcome).Inc()
	}
}

// middleware records request counts and latencies by route pattern.
func (m *Metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		status := c.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}
		m.requests.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(path).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
