package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"supplychainx.org/internal/auth"
	"supplychainx.org/internal/fulfilment"
	"supplychainx.org/internal/obs"
	"supplychainx.org/internal/planning"
	"supplychainx.org/internal/procurement"
	"supplychainx.org/internal/production"
)

const appName = "supplychainx"

func init() {
	// Money leaves the API as JSON numbers; requests may use numbers or strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Pinger is satisfied by store.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyProbe checks that the backing store answers.
type ReadyProbe struct {
	Store Pinger
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.Store == nil {
		return nil
	}
	return rp.Store.Ping(ctx)
}

// Services are the workflows exposed over HTTP.
type Services struct {
	Auth        *auth.Service
	Procurement *procurement.Service
	Production  *production.Service
	Fulfilment  *fulfilment.Service
	Planning    *planning.Service
}

func (s Services) validate() error {
	switch {
	case s.Auth == nil:
		return errors.New("httpapi: auth service is required")
	case s.Procurement == nil:
		return errors.New("httpapi: procurement service is required")
	case s.Production == nil:
		return errors.New("httpapi: production service is required")
	case s.Fulfilment == nil:
		return errors.New("httpapi: fulfilment service is required")
	case s.Planning == nil:
		return errors.New("httpapi: planning service is required")
	}
	return nil
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	auth        *auth.Service
	procurement *procurement.Service
	production  *production.Service
	fulfilment  *fulfilment.Service
	planning    *planning.Service

	ratePerSec int
	rateBurst  int
	maxBody    int64
}

// Option tweaks API construction.
type Option func(*API)

// WithLoginRateLimit bounds requests per client IP on /auth/*.
func WithLoginRateLimit(perSecond, burst int) Option {
	return func(a *API) {
		if perSecond > 0 {
			a.ratePerSec = perSecond
		}
		if burst > 0 {
			a.rateBurst = burst
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(a *API) {
		if n > 0 {
			a.maxBody = n
		}
	}
}

func New(rp ReadyProbe, version string, svcs Services, opts ...Option) (*API, error) {
	if err := svcs.validate(); err != nil {
		return nil, err
	}
	a := &API{
		mux:         http.NewServeMux(),
		readyProbe:  rp,
		version:     version,
		auth:        svcs.Auth,
		procurement: svcs.Procurement,
		production:  svcs.Production,
		fulfilment:  svcs.Fulfilment,
		planning:    svcs.Planning,
		ratePerSec:  5,
		rateBurst:   10,
		maxBody:     1 << 20,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.routes()
	return a, nil
}

func (a *API) routes() {
	a.mux.HandleFunc("/", a.Home)
	a.mux.HandleFunc("/health", a.Health)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.Handle("/metrics", obs.Handler())

	authMux := http.NewServeMux()
	authMux.HandleFunc("/auth/login", a.handleLogin)
	authMux.HandleFunc("/auth/refresh", a.handleRefresh)
	authMux.HandleFunc("/auth/logout", a.handleLogout)
	authMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound(r))
	})
	a.mux.Handle("/auth/", RateLimit(authMux, a.rateBurst, a.ratePerSec))

	a.handleTree("/api/suppliers", a.handleSuppliers)
	a.handleTree("/api/raw-materials", a.handleRawMaterials)
	a.handleTree("/api/supply-orders", a.handleSupplyOrders)
	a.handleTree("/api/products", a.handleProducts)
	a.handleTree("/api/bom", a.handleBOM)
	a.handleTree("/api/production-orders", a.handleProductionOrders)
	a.handleTree("/api/planning", a.handlePlanning)
	a.handleTree("/api/customers", a.handleCustomers)
	a.handleTree("/api/orders", a.handleOrders)
	a.handleTree("/api/deliveries", a.handleDeliveries)
	a.handleTree("/api/users", a.handleUsers)
}

// handleTree routes prefix and everything below it to h.
func (a *API) handleTree(prefix string, h func(http.ResponseWriter, *http.Request, []string)) {
	fn := func(w http.ResponseWriter, r *http.Request) {
		h(w, r, subpath(r.URL.Path, prefix))
	}
	a.mux.HandleFunc(prefix, fn)
	a.mux.HandleFunc(prefix+"/", fn)
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, a.maxBody)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- diagnostics ---

func (a *API) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, r, notFound(r))
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, r, methodNotSupported(r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"application": appName,
		"version":     a.version,
		"status":      "running",
		"endpoints": map[string]string{
			"auth":        "/auth/login, /auth/refresh, /auth/logout",
			"procurement": "/api/suppliers, /api/raw-materials, /api/supply-orders",
			"production":  "/api/products, /api/bom, /api/production-orders, /api/planning",
			"fulfilment":  "/api/customers, /api/orders, /api/deliveries",
			"admin":       "/api/users",
			"health":      "/health, /readyz, /metrics",
		},
	})
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, methodNotSupported(r))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "UP",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
