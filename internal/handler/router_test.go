package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shop_backend/internal/imagestore"
	"shop_backend/internal/middleware"
	"shop_backend/internal/repository"
	"shop_backend/internal/service"
	"shop_backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminEmail = "admin@shop.test"

type testServer struct {
	router *gin.Engine
	users  repository.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users, products, orders := repository.NewMemoryRepositories()
	images, err := imagestore.NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)
	jwtUtil := utils.NewJWTUtil("handler-test-secret", 0)

	router := NewRouter(RouterConfig{
		Auth:        NewAuthHandler(service.NewAuthService(users, jwtUtil, adminEmail)),
		Products:    NewProductHandler(service.NewProductService(products, images)),
		Orders:      NewOrderHandler(service.NewOrderService(orders)),
		Cart:        NewCartHandler(service.NewCartService(users)),
		AuthMW:      middleware.JWTAuthMiddleware(jwtUtil, users),
		AdminMW:     middleware.AdminMiddleware(),
		CORSMW:      middleware.CORSMiddleware(nil),
		HealthCheck: func(context.Context) error { return nil },
		ImagesDir:   images.Dir(),
	})
	return &testServer{router: router, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.AuthTokenHeader, token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) signup(t *testing.T, name, email, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/signup", "", map[string]string{"username": name, "email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeObject(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (s *testServer) addProduct(t *testing.T, token string, fields map[string]string, filename string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile(ProductImageField, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/addproduct", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.AuthTokenHeader, token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func decodeArray(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func productFields(name, category string) map[string]string {
	return map[string]string{"name": name, "category": category, "new_price": "19.99", "old_price": "25", "description": "cotton"}
}

func TestRouter_Liveness(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "API Running", w.Body.String())

	w = s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_HealthReportsStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users, products, orders := repository.NewMemoryRepositories()
	jwtUtil := utils.NewJWTUtil("x", 0)
	router := NewRouter(RouterConfig{
		Auth:        NewAuthHandler(service.NewAuthService(users, jwtUtil, "")),
		Products:    NewProductHandler(service.NewProductService(products, nil)),
		Orders:      NewOrderHandler(service.NewOrderService(orders)),
		Cart:        NewCartHandler(service.NewCartService(users)),
		AuthMW:      middleware.JWTAuthMiddleware(jwtUtil, users),
		AdminMW:     middleware.AdminMiddleware(),
		HealthCheck: func(context.Context) error { return errors.New("connection refused") },
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_SignupAndLogin(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "a", "a@x.com", "p")

	w := s.do(t, http.MethodPost, "/login", "", map[string]string{"email": "a@x.com", "password": "p"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeObject(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])

	w = s.do(t, http.MethodPost, "/login", "", map[string]string{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body = decodeObject(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid credentials", body["errors"])

	w = s.do(t, http.MethodPost, "/login", "", map[string]string{"email": "nobody@x.com", "password": "p"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/signup", "", map[string]string{"username": "b", "email": "a@x.com", "password": "q"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "existing user found with same email address", decodeObject(t, w)["errors"])

	w = s.do(t, http.MethodPost, "/signup", "", map[string]string{"username": "c", "email": "not-an-email", "password": "q"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/signup", "", map[string]string{"username": "d", "email": "d@x.com", "password": strings.Repeat("p", 73)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body = decodeObject(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "password must not exceed 72 bytes", body["errors"])

	w = s.do(t, http.MethodPost, "/login", "", map[string]string{"email": "d@x.com", "password": strings.Repeat("p", 73)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_OrdersRequireAuthentication(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/createorder", "", map[string]interface{}{
		"items": []map[string]interface{}{{"id": 1}}, "totalAmount": 10, "paymentMethod": "card",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeObject(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Please authenticate using a valid token", body["errors"])

	w = s.do(t, http.MethodGet, "/myorders", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_OrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	userToken := s.signup(t, "ann", "ann@x.com", "p")
	otherToken := s.signup(t, "bob", "bob@x.com", "p")
	adminToken := s.signup(t, "boss", adminEmail, "p")

	w := s.do(t, http.MethodPost, "/createorder", userToken, map[string]interface{}{
		"items": []map[string]interface{}{{"id": 3, "quantity": 2}}, "totalAmount": 39.98, "paymentMethod": "card",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decodeObject(t, w)["order"].(map[string]interface{})
	orderID := created["orderId"].(string)
	assert.True(t, strings.HasPrefix(orderID, "ORD"))
	assert.Equal(t, "Pending", created["status"])
	assert.Equal(t, 39.98, created["totalAmount"])

	w = s.do(t, http.MethodPost, "/createorder", userToken, map[string]interface{}{"paymentMethod": "card"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// an empty item list is stored as given
	w = s.do(t, http.MethodPost, "/createorder", otherToken, map[string]interface{}{"items": []interface{}{}, "totalAmount": 0, "paymentMethod": "cod"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	emptyOrder := decodeObject(t, w)["order"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, emptyOrder["items"])

	w = s.do(t, http.MethodGet, "/myorders", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeArray(t, w), 1)

	w = s.do(t, http.MethodGet, "/myorders", otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	theirs := decodeArray(t, w)
	require.Len(t, theirs, 1)
	assert.Equal(t, emptyOrder["orderId"], theirs[0]["orderId"])

	w = s.do(t, http.MethodGet, "/admin/orders", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/admin/orders", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decodeArray(t, w)
	require.Len(t, all, 2)
	owner := all[0]["user"].(map[string]interface{})
	assert.Equal(t, "ann", owner["name"])
	assert.Equal(t, "ann@x.com", owner["email"])

	w = s.do(t, http.MethodPut, "/admin/updateorder/"+orderID, adminToken, map[string]string{"status": "Shipped"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeObject(t, w)["order"].(map[string]interface{})
	assert.Equal(t, "Shipped", updated["status"])
	assert.Equal(t, created["items"], updated["items"])

	w = s.do(t, http.MethodPut, "/admin/updateorder/ORD-UNKNOWN", adminToken, map[string]string{"status": "Shipped"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", decodeObject(t, w)["errors"])

	w = s.do(t, http.MethodGet, "/admin/orders/export/csv", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders_export_")
	assert.Contains(t, w.Body.String(), orderID)
}

func TestRouter_CatalogAdministration(t *testing.T) {
	s := newTestServer(t)
	userToken := s.signup(t, "ann", "ann@x.com", "p")
	adminToken := s.signup(t, "boss", adminEmail, "p")

	w := s.addProduct(t, userToken, productFields("Shirt", "men"), "shirt.png")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.addProduct(t, "", productFields("Shirt", "men"), "shirt.png")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.addProduct(t, adminToken, productFields("Shirt", "men"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Image required", decodeObject(t, w)["errors"])

	w = s.addProduct(t, adminToken, productFields("Shirt", "men"), "shirt.gif")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.addProduct(t, adminToken, productFields("Shirt", "men"), "shirt.png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	product := decodeObject(t, w)["product"].(map[string]interface{})
	assert.Equal(t, float64(1), product["id"])
	assert.Equal(t, 19.99, product["new_price"])
	assert.Equal(t, true, product["available"])
	imageURL := product["image"].(string)
	assert.True(t, strings.HasPrefix(imageURL, imagestore.PublicPath+"/"))

	w = s.do(t, http.MethodGet, imageURL, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.addProduct(t, adminToken, productFields("Dress", "women"), "dress.jpg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeObject(t, w)["product"].(map[string]interface{})["id"])

	w = s.do(t, http.MethodGet, "/allproducts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeArray(t, w), 2)

	w = s.do(t, http.MethodGet, "/popularinwomen", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	women := decodeArray(t, w)
	require.Len(t, women, 1)
	assert.Equal(t, "Dress", women[0]["name"])

	w = s.do(t, http.MethodPost, "/relatedproducts", "", map[string]string{"category": "men"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeArray(t, w), 1)

	w = s.do(t, http.MethodGet, "/newcollections", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeArray(t, w), 2)

	w = s.do(t, http.MethodGet, "/product/2", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/removeproduct", adminToken, map[string]int{"id": 1})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Product removed successfully", decodeObject(t, w)["message"])

	w = s.do(t, http.MethodPost, "/removeproduct", adminToken, map[string]int{"id": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decodeObject(t, w)["errors"])

	w = s.do(t, http.MethodGet, "/product/1", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/allproducts", "", nil)
	assert.Len(t, decodeArray(t, w), 1)
}

func TestRouter_Cart(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "ann", "ann@x.com", "p")

	w := s.do(t, http.MethodPost, "/addtocart", token, map[string]int{"itemId": 4})
	require.Equal(t, http.StatusOK, w.Code)
	cart := decodeObject(t, w)["cartData"].(map[string]interface{})
	assert.Equal(t, float64(1), cart["4"])

	w = s.do(t, http.MethodPost, "/addtocart", token, map[string]int{"itemId": 300})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/removefromcart", token, map[string]int{"itemId": 4})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/getcart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 300)
	assert.Equal(t, 0, got["4"])

	w = s.do(t, http.MethodPost, "/getcart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
