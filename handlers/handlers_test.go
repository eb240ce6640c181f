package handlers_test

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront-service/handlers"
	"storefront-service/internal/auth"
	"storefront-service/internal/backend"
	"storefront-service/internal/cart"
	"storefront-service/internal/orders"
	"storefront-service/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu          sync.Mutex
	token       string
	items       []cart.Item
	orderCalls  int
	clearCalls  int
	addCalls    int
	putCalls    []int
	forbidPaths map[string]bool
	srv         *httptest.Server
}

func newFakeBackend(token string) *fakeBackend {
	b := &fakeBackend{
		token: token,
		items: []cart.Item{
			{ID: 5, ProductID: 5, Quantity: 2, ProductPrice: 100, ProductName: "kettle", ProductStockQuantity: 10},
		},
		forbidPaths: map[string]bool{},
	}

	// Go 1.21 ServeMux has no method patterns or path wildcards, so routes
	// register by path and dispatch on method (and trailing path segment)
	// inside the handler.
	requireMethod := func(method string, h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			h(w, r)
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", requireMethod(http.MethodPost, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 7, "token": b.token})
	}))
	mux.HandleFunc("/clients/profile", requireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 42})
	}))
	mux.HandleFunc("/cart/42", requireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": 9, "clientId": 42})
	}))
	mux.HandleFunc("/cart/9/items", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			b.mu.Lock()
			defer b.mu.Unlock()
			json.NewEncoder(w).Encode(b.items)
		case http.MethodPost:
			productID, _ := strconv.Atoi(r.URL.Query().Get("productId"))
			quantity, _ := strconv.Atoi(r.URL.Query().Get("quantity"))
			b.mu.Lock()
			b.addCalls++
			b.mu.Unlock()
			json.NewEncoder(w).Encode(cart.Item{
				ID:                   77,
				ProductID:            int64(productID),
				Quantity:             quantity,
				ProductPrice:         40,
				ProductName:          "mug",
				ProductStockQuantity: 5,
			})
		case http.MethodDelete:
			b.mu.Lock()
			b.clearCalls++
			b.mu.Unlock()
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/products/", requireMethod(http.MethodGet, func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/products/"))
		json.NewEncoder(w).Encode(map[string]any{
			"id": id, "name": "mug", "price": 40.0, "stockQuantity": 5,
		})
	}))
	mux.HandleFunc("/cart/items/", requireMethod(http.MethodPut, func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/cart/items/"))
		quantity, _ := strconv.Atoi(r.URL.Query().Get("quantity"))
		b.mu.Lock()
		b.putCalls = append(b.putCalls, quantity)
		item := b.items[0]
		b.mu.Unlock()
		item.ID = int64(id)
		item.Quantity = quantity
		json.NewEncoder(w).Encode(item)
	}))
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			b.mu.Lock()
			b.orderCalls++
			b.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]any{"id": 1001})
		case http.MethodGet:
			if b.forbidden("/orders") {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			json.NewEncoder(w).Encode([]map[string]any{{"id": 1001, "statusName": "NEW"}})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	b.srv = httptest.NewServer(mux)
	return b
}

func (b *fakeBackend) forbidden(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.forbidPaths[path]
}

func (b *fakeBackend) puts() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]int, len(b.putCalls))
	copy(out, b.putCalls)
	return out
}

type appFixture struct {
	backend *fakeBackend
	engine  *gin.Engine
	cookie  *http.Cookie
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	keys, err := auth.NewKeys(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":   "7",
		"roles": []any{"CLIENT"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString(priv)
	require.NoError(t, err)

	fb := newFakeBackend(token)
	t.Cleanup(fb.srv.Close)

	store := session.NewMemoryStore()
	client := backend.NewClient(backend.StaticResolver(fb.srv.URL), store)
	carts := cart.NewRegistry(client, cart.WithDebounce(10*time.Millisecond))
	client.OnSessionTeardown(carts.Drop)
	orderSvc := orders.NewService(client)

	engine := handlers.API("/api", keys, store, client, carts, orderSvc, nil)

	f := &appFixture{backend: fb, engine: engine}
	f.login(t)
	return f
}

func (f *appFixture) login(t *testing.T) {
	t.Helper()
	body := bytes.NewBufferString(`{"username":"alice","password":"secret"}`)
	w := f.request(t, http.MethodPost, "/api/auth/login", body, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, c := range w.Result().Cookies() {
		if c.Name == "storefront_session" {
			f.cookie = c
			return
		}
	}
	t.Fatal("login response carried no session cookie")
}

func (f *appFixture) request(t *testing.T, method, path string, body *bytes.Buffer, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestLoginStartsSessionWithRoles(t *testing.T) {
	f := newAppFixture(t)
	require.NotNil(t, f.cookie)

	w := f.request(t, http.MethodGet, "/api/navigation", nil, f.cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "alice", body["username"])
	assert.Contains(t, body["roles"], "CLIENT")
	assert.Contains(t, body["capabilities"], "use-cart")
}

func TestGetCartLoadsAndTotals(t *testing.T) {
	f := newAppFixture(t)

	w := f.request(t, http.MethodGet, "/api/client/cart", nil, f.cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, 200.0, body["total_price"])
}

func TestAddItemAppearsInCart(t *testing.T) {
	f := newAppFixture(t)

	body := bytes.NewBufferString(`{"productId":8,"quantity":3}`)
	w := f.request(t, http.MethodPost, "/api/client/cart/items", body, f.cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 320.0, decode(t, w)["total_price"])
	assert.Equal(t, 1, f.backend.addCalls)

	// The new line is part of the session's cart state from now on.
	w = f.request(t, http.MethodGet, "/api/client/cart", nil, f.cookie)
	assert.Equal(t, 320.0, decode(t, w)["total_price"])
}

func TestAddItemInsufficientStockIssuesNoCall(t *testing.T) {
	f := newAppFixture(t)

	body := bytes.NewBufferString(`{"productId":8,"quantity":9}`)
	w := f.request(t, http.MethodPost, "/api/client/cart/items", body, f.cookie)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, f.backend.addCalls)
}

func TestAddItemInvalidRequestRejected(t *testing.T) {
	f := newAppFixture(t)

	body := bytes.NewBufferString(`{"productId":0,"quantity":3}`)
	w := f.request(t, http.MethodPost, "/api/client/cart/items", body, f.cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, f.backend.addCalls)
}

func TestUpdateQuantityDebouncesToBackend(t *testing.T) {
	f := newAppFixture(t)

	w := f.request(t, http.MethodPut, "/api/client/cart/items/5?quantity=3", nil, f.cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["scheduled"])

	require.Eventually(t, func() bool { return len(f.backend.puts()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{3}, f.backend.puts())

	w = f.request(t, http.MethodGet, "/api/client/cart", nil, f.cookie)
	assert.Equal(t, 300.0, decode(t, w)["total_price"])
}

func TestUpdateQuantityClampIssuesNoBackendCall(t *testing.T) {
	f := newAppFixture(t)

	w := f.request(t, http.MethodPut, "/api/client/cart/items/5?quantity=50", nil, f.cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["clamped"])
	assert.Equal(t, "10", body["raw"])
	assert.NotEmpty(t, body["warning"])

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.backend.puts())
}

func TestCheckoutMissingAddressRejectedLocally(t *testing.T) {
	f := newAppFixture(t)

	body := bytes.NewBufferString(`{"deliveryDate":"2026-09-01T10:00"}`)
	w := f.request(t, http.MethodPost, "/api/client/cart/checkout", body, f.cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, f.backend.orderCalls)
}

func TestCheckoutEmptyCartRejectedLocally(t *testing.T) {
	f := newAppFixture(t)
	f.backend.mu.Lock()
	f.backend.items = nil
	f.backend.mu.Unlock()

	body := bytes.NewBufferString(`{"deliveryAddress":"12 High Street","deliveryDate":"2026-09-01T10:00"}`)
	w := f.request(t, http.MethodPost, "/api/client/cart/checkout", body, f.cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, f.backend.orderCalls)
}

func TestCheckoutCreatesOrderAndClearsCart(t *testing.T) {
	f := newAppFixture(t)

	body := bytes.NewBufferString(`{"deliveryAddress":"12 High Street","deliveryDate":"2026-09-01T10:00","comment":"ring the bell"}`)
	w := f.request(t, http.MethodPost, "/api/client/cart/checkout", body, f.cookie)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, float64(1001), resp["order_id"])
	assert.Equal(t, "/client/orders", resp["redirect"])
	assert.Equal(t, 1, f.backend.orderCalls)
	assert.Equal(t, 1, f.backend.clearCalls)

	w = f.request(t, http.MethodGet, "/api/client/cart", nil, f.cookie)
	assert.Equal(t, 0.0, decode(t, w)["total_price"])
}

func TestForbiddenBackendResponseRedirectsToUnauthorized(t *testing.T) {
	f := newAppFixture(t)
	f.backend.mu.Lock()
	f.backend.forbidPaths["/orders"] = true
	f.backend.mu.Unlock()

	w := f.request(t, http.MethodGet, "/api/client/orders", nil, f.cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/unauthorized", w.Header().Get("Location"))
}

func TestLoginFailureSurfacesInline(t *testing.T) {
	gin.SetMode(gin.TestMode)

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	keys, err := auth.NewKeys(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"bad credentials"}`)
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	client := backend.NewClient(backend.StaticResolver(srv.URL), store)
	engine := handlers.API("/api", keys, store, client,
		cart.NewRegistry(client), orders.NewService(client), nil)

	body := bytes.NewBufferString(`{"username":"alice","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Get("Location"), "failed login must not redirect")
}

func TestLogoutTearsDownSession(t *testing.T) {
	f := newAppFixture(t)

	w := f.request(t, http.MethodPost, "/api/auth/logout", nil, f.cookie)
	require.Equal(t, http.StatusOK, w.Code)

	// The old cookie no longer resolves a session.
	w = f.request(t, http.MethodGet, "/api/client/cart", nil, f.cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}
