package obs

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	businessRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scx_business_rule_rejections_total",
			Help: "Operations refused by a domain invariant.",
		},
		[]string{"operation"},
	)

	deliveriesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scx_deliveries_completed_total",
		Help: "Deliveries that reached LIVREE.",
	})

	tokensIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scx_auth_tokens_issued_total",
			Help: "Token pairs issued, by grant.",
		},
		[]string{"grant"},
	)

	tokensSwept = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scx_refresh_tokens_swept_total",
		Help: "Expired refresh tokens deleted by the sweeper.",
	})

	readyGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scx_ready",
		Help: "1 when the database answered the last readiness probe.",
	})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scx_build_info",
		Help: "Always 1; labels carry the running version and commit.",
	}, []string{"version", "commit"})
)

// Init registers all collectors with the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight, httpRequestsTotal, httpRequestDuration,
			businessRejections, deliveriesCompleted, tokensIssued, tokensSwept, readyGauge,
			buildInfo,
		)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordBusinessRejection(operation string) { businessRejections.WithLabelValues(operation).Inc() }

func RecordDeliveryCompleted() { deliveriesCompleted.Inc() }

func RecordTokensIssued(grant string) { tokensIssued.WithLabelValues(grant).Inc() }

func RecordTokensSwept(n int64) { tokensSwept.Add(float64(n)) }

func SetReady(ok bool) {
	if ok {
		readyGauge.Set(1)
		return
	}
	readyGauge.Set(0)
}

// SetBuildInfo replaces the single scx_build_info series.
func SetBuildInfo(version, commit string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, commit).Set(1)
}

// Instrument records in-flight, count and latency per canonical path.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		defer httpInFlight.Dec()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	})
}

// CanonicalPath replaces numeric path segments with :id so that metric label
// cardinality stays bounded. Status literals are folded into :status.
func CanonicalPath(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	segs := strings.Split(p, "/")
	for i, s := range segs {
		switch {
		case s == "":
		case isDigits(s):
			segs[i] = ":id"
		case i > 0 && segs[i-1] == "status" && strings.ToUpper(s) == s:
			segs[i] = ":status"
		}
	}
	return strings.Join(segs, "/")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
