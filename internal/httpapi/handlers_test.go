package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"supplychainx.org/internal/auth"
	"supplychainx.org/internal/domain"
	"supplychainx.org/internal/fulfilment"
	"supplychainx.org/internal/planning"
	"supplychainx.org/internal/procurement"
	"supplychainx.org/internal/production"
	"supplychainx.org/internal/store/memory"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testPassword = "s3cret-pass"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	auth    *auth.Service
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	st := memory.New()
	authSvc, err := auth.NewService(st, testSecret)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	proc, err := procurement.NewService(st)
	if err != nil {
		t.Fatalf("procurement service: %v", err)
	}
	prod, err := production.NewService(st)
	if err != nil {
		t.Fatalf("production service: %v", err)
	}
	ful, err := fulfilment.NewService(st)
	if err != nil {
		t.Fatalf("fulfilment service: %v", err)
	}
	plan, err := planning.NewService(st)
	if err != nil {
		t.Fatalf("planning service: %v", err)
	}

	api, err := New(ReadyProbe{Store: st}, "test", Services{
		Auth:        authSvc,
		Procurement: proc,
		Production:  prod,
		Fulfilment:  ful,
		Planning:    plan,
	}, WithLoginRateLimit(100, 100))
	if err != nil {
		t.Fatalf("new api: %v", err)
	}

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		auth:    authSvc,
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, token string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) get(path string, params url.Values, token string) *http.Response {
	c.t.Helper()
	if params != nil {
		path += "?" + params.Encode()
	}
	return c.do(http.MethodGet, path, nil, token)
}

// login creates a user with role and returns its access token.
func (c *apiClient) login(email string, role domain.Role) string {
	c.t.Helper()
	_, err := c.auth.CreateUser(context.Background(), auth.NewUser{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  testPassword,
		Role:      string(role),
	})
	if err != nil {
		c.t.Fatalf("create user: %v", err)
	}
	resp := c.do(http.MethodPost, "/auth/login", map[string]any{"email": email, "password": testPassword}, "")
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("unexpected login status: %d", resp.StatusCode)
	}
	payload := decode[tokenResponse](c.t, resp)
	if payload.AccessToken == "" {
		c.t.Fatalf("empty token issued")
	}
	return payload.AccessToken
}

// create POSTs body and returns the id of the created resource.
func (c *apiClient) create(path string, body any, token string) int64 {
	c.t.Helper()
	resp := c.do(http.MethodPost, path, body, token)
	if resp.StatusCode != http.StatusCreated {
		msg := decode[errorResponse](c.t, resp)
		c.t.Fatalf("POST %s: expected 201, got %d (%s)", path, resp.StatusCode, msg.Message)
	}
	out := decode[map[string]any](c.t, resp)
	id, ok := out["id"].(float64)
	if !ok || id <= 0 {
		c.t.Fatalf("POST %s: missing id in %v", path, out)
	}
	return int64(id)
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectError(t *testing.T, resp *http.Response, status int) errorResponse {
	t.Helper()
	if resp.StatusCode != status {
		body := decode[errorResponse](t, resp)
		t.Fatalf("expected %d, got %d (%s)", status, resp.StatusCode, body.Message)
	}
	body := decode[errorResponse](t, resp)
	if body.Status != status || body.Message == "" || body.Timestamp == "" {
		t.Fatalf("unexpected error body: %+v", body)
	}
	return body
}

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}

func TestPublicDiagnostics(t *testing.T) {
	api := newTestAPI(t)

	resp := api.get("/health", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: unexpected status %d", resp.StatusCode)
	}
	health := decode[map[string]any](t, resp)
	if health["status"] != "UP" || health["timestamp"] == "" {
		t.Fatalf("unexpected health body: %v", health)
	}

	resp = api.get("/", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("home: unexpected status %d", resp.StatusCode)
	}
	home := decode[map[string]any](t, resp)
	if home["application"] != appName || home["version"] != "test" {
		t.Fatalf("unexpected home body: %v", home)
	}

	resp = api.get("/readyz", nil, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz: unexpected status %d", resp.StatusCode)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestAPIEnforcesAuth(t *testing.T) {
	api := newTestAPI(t)

	resp := api.get("/api/suppliers", nil, "")
	if got := resp.Header.Get("WWW-Authenticate"); got == "" {
		t.Fatalf("expected WWW-Authenticate header set")
	}
	expectError(t, resp, http.StatusUnauthorized)

	resp = api.get("/api/suppliers", nil, "not-a-jwt")
	expectError(t, resp, http.StatusUnauthorized)

	// Unmapped paths still need a token.
	resp = api.get("/api/unknown", nil, "")
	expectError(t, resp, http.StatusUnauthorized)
}

func TestRoleMatrix(t *testing.T) {
	api := newTestAPI(t)
	planner := api.login("planner@example.com", domain.RolePlanificateur)
	buyer := api.login("buyer@example.com", domain.RoleResponsableAchats)

	expectError(t, api.do(http.MethodPost, "/api/suppliers", map[string]any{"name": "x"}, planner), http.StatusForbidden)
	expectError(t, api.get("/api/users", nil, buyer), http.StatusForbidden)

	resp := api.get("/api/suppliers", nil, buyer)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for buyer, got %d", resp.StatusCode)
	}
	if list := decode[[]supplierResponse](t, resp); len(list) != 0 {
		t.Fatalf("expected empty list, got %v", list)
	}

	// Known path, unsupported method.
	expectError(t, api.do(http.MethodPatch, "/api/suppliers", nil, buyer), http.StatusNotFound)
}

func TestLoginRefreshLogout(t *testing.T) {
	api := newTestAPI(t)
	api.login("ops@example.com", domain.RoleAdmin)

	resp := api.do(http.MethodPost, "/auth/login", map[string]any{"email": "ops@example.com", "password": "wrong-pass"}, "")
	expectError(t, resp, http.StatusUnauthorized)

	resp = api.do(http.MethodPost, "/auth/login", map[string]any{"email": "ops@example.com", "password": testPassword}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: unexpected status %d", resp.StatusCode)
	}
	first := decode[tokenResponse](t, resp)
	if first.TokenType != "Bearer" || first.Role != domain.RoleAdmin || first.Email != "ops@example.com" {
		t.Fatalf("unexpected login body: %+v", first)
	}

	resp = api.do(http.MethodPost, "/auth/refresh", map[string]any{"refreshToken": first.RefreshToken}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh: unexpected status %d", resp.StatusCode)
	}
	second := decode[tokenResponse](t, resp)
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	// The rotated-out token is dead.
	resp = api.do(http.MethodPost, "/auth/refresh", map[string]any{"refreshToken": first.RefreshToken}, "")
	expectError(t, resp, http.StatusUnauthorized)

	resp = api.do(http.MethodPost, "/auth/logout", map[string]any{"refreshToken": second.RefreshToken}, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", resp.StatusCode)
	}
	resp = api.do(http.MethodPost, "/auth/refresh", map[string]any{"refreshToken": second.RefreshToken}, "")
	expectError(t, resp, http.StatusUnauthorized)

	expectError(t, api.do(http.MethodPost, "/auth/refresh", map[string]any{}, ""), http.StatusBadRequest)
	expectError(t, api.get("/auth/login", nil, ""), http.StatusNotFound)
}

func TestValidationErrorsAreJoined(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", domain.RoleAdmin)

	body := expectError(t, api.do(http.MethodPost, "/api/customers", map[string]any{}, admin), http.StatusBadRequest)
	for _, field := range []string{"name", "address", "city"} {
		if !strings.Contains(body.Message, field) {
			t.Fatalf("expected %q in message %q", field, body.Message)
		}
	}

	body = expectError(t, api.do(http.MethodPost, "/api/customers", map[string]any{"bogus": 1}, admin), http.StatusBadRequest)
	if !strings.Contains(body.Message, "bogus") {
		t.Fatalf("expected unknown field in message, got %q", body.Message)
	}

	expectError(t, api.get("/api/customers/abc", nil, admin), http.StatusBadRequest)
	expectError(t, api.get("/api/customers/999", nil, admin), http.StatusNotFound)
}

func TestDeliveryCompletesOrder(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", domain.RoleAdmin)

	customerID := api.create("/api/customers", map[string]any{"name": "Acme", "address": "1 Main St", "city": "Casablanca"}, admin)
	productID := api.create("/api/products", map[string]any{"name": "Chair", "productionTime": 2, "cost": 100, "stock": 10}, admin)
	orderID := api.create("/api/orders", map[string]any{
		"customerId": customerID,
		"productId":  productID,
		"quantity":   2,
		"status":     "EN_PREPARATION",
	}, admin)

	resp := api.do(http.MethodPost, "/api/deliveries", map[string]any{
		"orderId":      orderID,
		"vehicle":      "VAN-1",
		"driver":       "Sam",
		"status":       "PLANIFIEE",
		"deliveryDate": "2024-05-02",
	}, admin)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create delivery: unexpected status %d", resp.StatusCode)
	}
	delivery := decode[map[string]any](t, resp)
	if delivery["cost"] != float64(220) {
		t.Fatalf("expected computed cost 220, got %v", delivery["cost"])
	}
	deliveryID := int64(delivery["id"].(float64))

	// One delivery per order.
	resp = api.do(http.MethodPost, "/api/deliveries", map[string]any{
		"orderId":      orderID,
		"status":       "PLANIFIEE",
		"deliveryDate": "2024-05-03",
	}, admin)
	expectError(t, resp, http.StatusBadRequest)

	resp = api.do(http.MethodPut, idPath("/api/deliveries", deliveryID)+"/status", map[string]any{"status": "LIVREE"}, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status: unexpected status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.get(idPath("/api/orders", orderID), nil, admin)
	order := decode[orderResponse](t, resp)
	if order.Status != domain.OrderDelivered {
		t.Fatalf("expected order LIVREE, got %s", order.Status)
	}

	resp = api.get("/api/deliveries", url.Values{"status": []string{"LIVREE"}}, admin)
	if list := decode[[]deliveryResponse](t, resp); len(list) != 1 || list[0].ID != deliveryID {
		t.Fatalf("unexpected deliveries by status: %+v", list)
	}

	resp = api.do(http.MethodPost, idPath("/api/deliveries", deliveryID)+"/calculate-cost", map[string]any{
		"baseCost":  "50",
		"distance":  12.5,
		"ratePerKm": 2,
	}, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("calculate cost: unexpected status %d", resp.StatusCode)
	}
	if got := decode[map[string]any](t, resp); got["cost"] != float64(75) {
		t.Fatalf("expected recalculated cost 75, got %v", got["cost"])
	}

	// Delivered orders cannot be cancelled.
	expectError(t, api.do(http.MethodDelete, idPath("/api/orders", orderID), nil, admin), http.StatusBadRequest)
}

func TestSupplierDeletionGuard(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", domain.RoleAdmin)

	supplierID := api.create("/api/suppliers", map[string]any{"name": "Steel Co", "contact": "ops@steel.test", "rating": 4.5, "leadTime": 3}, admin)
	materialID := api.create("/api/raw-materials", map[string]any{"name": "Steel", "stock": 5, "stockMin": 10, "unit": "kg", "supplierIds": []int64{supplierID}}, admin)
	orderID := api.create("/api/supply-orders", map[string]any{
		"supplierId": supplierID,
		"orderDate":  "2024-03-01",
		"status":     "EN_ATTENTE",
		"materials":  []map[string]any{{"materialId": materialID, "quantity": 100}},
	}, admin)

	resp := api.get("/api/raw-materials/critical", nil, admin)
	critical := decode[[]rawMaterialResponse](t, resp)
	if len(critical) != 1 || !critical[0].IsCritical || len(critical[0].SupplierIDs) != 1 {
		t.Fatalf("unexpected critical materials: %+v", critical)
	}

	body := expectError(t, api.do(http.MethodDelete, idPath("/api/suppliers", supplierID), nil, admin), http.StatusBadRequest)
	if !strings.Contains(body.Message, "active orders") {
		t.Fatalf("unexpected message: %q", body.Message)
	}

	resp = api.do(http.MethodPut, idPath("/api/supply-orders", orderID), map[string]any{
		"supplierId": supplierID,
		"orderDate":  "2024-03-01",
		"status":     "RECUE",
		"materials":  []map[string]any{{"materialId": materialID, "quantity": 100}},
	}, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update supply order: unexpected status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.get("/api/supply-orders/status/RECUE", nil, admin)
	if list := decode[[]supplyOrderResponse](t, resp); len(list) != 1 || len(list[0].Materials) != 1 {
		t.Fatalf("unexpected supply orders by status: %+v", list)
	}

	resp = api.do(http.MethodDelete, idPath("/api/suppliers", supplierID), nil, admin)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestPlanningEndpoints(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", domain.RoleAdmin)

	productID := api.create("/api/products", map[string]any{"name": "Table", "productionTime": 3, "cost": "80.50", "stock": 0}, admin)
	woodID := api.create("/api/raw-materials", map[string]any{"name": "Wood", "stock": 20, "stockMin": 5, "unit": "kg"}, admin)
	screwID := api.create("/api/raw-materials", map[string]any{"name": "Screw", "stock": 10, "stockMin": 5, "unit": "pc"}, admin)
	api.create("/api/bom", map[string]any{"productId": productID, "materialId": woodID, "quantity": 4}, admin)
	api.create("/api/bom", map[string]any{"productId": productID, "materialId": screwID, "quantity": 3}, admin)

	q := url.Values{"productId": []string{strconv.FormatInt(productID, 10)}, "quantity": []string{"5"}}
	resp := api.get("/api/planning/check-availability", q, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("availability: unexpected status %d", resp.StatusCode)
	}
	avail := decode[planning.Availability](t, resp)
	if avail.CanProduce || len(avail.Materials) != 2 {
		t.Fatalf("unexpected availability: %+v", avail)
	}
	if !avail.Materials[0].OK || avail.Materials[1].OK || avail.Materials[1].Required != 15 {
		t.Fatalf("unexpected material lines: %+v", avail.Materials)
	}

	resp = api.get("/api/planning/calculate-time", q, admin)
	if got := decode[planning.ProductionTime](t, resp); got.TotalProductionTime != 15 {
		t.Fatalf("expected 15, got %+v", got)
	}

	resp = api.get(idPath("/api/bom/product", productID), nil, admin)
	if list := decode[[]bomResponse](t, resp); len(list) != 2 {
		t.Fatalf("expected 2 BOM entries, got %+v", list)
	}

	expectError(t, api.get("/api/planning/check-availability", url.Values{"productId": []string{"1"}}, admin), http.StatusBadRequest)
	expectError(t, api.get("/api/planning/calculate-time", url.Values{"productId": []string{"999"}, "quantity": []string{"1"}}, admin), http.StatusNotFound)

	huge := url.Values{"productId": []string{strconv.FormatInt(productID, 10)}, "quantity": []string{"4611686018427387904"}}
	expectError(t, api.get("/api/planning/check-availability", huge, admin), http.StatusBadRequest)
	body := expectError(t, api.get("/api/planning/calculate-time", huge, admin), http.StatusBadRequest)
	if !strings.Contains(body.Message, "quantity") {
		t.Fatalf("unexpected message: %q", body.Message)
	}
}

func TestProductionOrderCancel(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", domain.RoleAdmin)

	productID := api.create("/api/products", map[string]any{"name": "Desk", "productionTime": 1, "cost": 40, "stock": 0}, admin)
	waiting := api.create("/api/production-orders", map[string]any{"productId": productID, "quantity": 3, "status": "EN_ATTENTE", "startDate": "2024-06-01"}, admin)
	running := api.create("/api/production-orders", map[string]any{"productId": productID, "quantity": 3, "status": "EN_PRODUCTION", "startDate": "2024-06-01"}, admin)

	expectError(t, api.do(http.MethodDelete, idPath("/api/production-orders", running), nil, admin), http.StatusBadRequest)

	resp := api.do(http.MethodDelete, idPath("/api/production-orders", waiting), nil, admin)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	expectError(t, api.get("/api/production-orders/status/NOPE", nil, admin), http.StatusBadRequest)
}

func TestUserAdministration(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@example.com", domain.RoleAdmin)

	userID := api.create("/api/users", map[string]any{
		"firstName": "Lina",
		"lastName":  "K",
		"email":     "lina@example.com",
		"password":  testPassword,
		"role":      "PLANIFICATEUR",
	}, admin)

	resp := api.do(http.MethodPost, "/api/users", map[string]any{
		"firstName": "Lina",
		"lastName":  "K",
		"email":     "lina@example.com",
		"password":  testPassword,
		"role":      "PLANIFICATEUR",
	}, admin)
	expectError(t, resp, http.StatusBadRequest)

	resp = api.do(http.MethodPut, idPath("/api/users", userID)+"/role", map[string]any{"role": "CHEF_PRODUCTION"}, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update role: unexpected status %d", resp.StatusCode)
	}
	if u := decode[userResponse](t, resp); u.Role != domain.RoleChefProduction {
		t.Fatalf("unexpected role: %s", u.Role)
	}

	resp = api.get("/api/users", nil, admin)
	raw := decode[[]map[string]any](t, resp)
	if len(raw) != 2 {
		t.Fatalf("expected 2 users, got %d", len(raw))
	}
	for _, u := range raw {
		if _, ok := u["passwordHash"]; ok {
			t.Fatalf("password hash leaked: %v", u)
		}
	}
}
