package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authsvc "github.com/vallyhouse/vally-backend/internal/auth"
	blogsvc "github.com/vallyhouse/vally-backend/internal/blogs"
	cartsvc "github.com/vallyhouse/vally-backend/internal/cart"
	catalogsvc "github.com/vallyhouse/vally-backend/internal/catalog"
	categorysvc "github.com/vallyhouse/vally-backend/internal/categories"
	checkoutsvc "github.com/vallyhouse/vally-backend/internal/checkout"
	contactsvc "github.com/vallyhouse/vally-backend/internal/contacts"
	featuredsvc "github.com/vallyhouse/vally-backend/internal/featured"
	"github.com/vallyhouse/vally-backend/internal/users"
	"github.com/vallyhouse/vally-backend/pkg/config"
	"github.com/vallyhouse/vally-backend/pkg/db"
	"github.com/vallyhouse/vally-backend/pkg/db/models"
	"github.com/vallyhouse/vally-backend/pkg/storage/imagekit"
)

const testImageEndpoint = "https://ik.imagekit.io/vally"

// routerSessions keeps session state in memory so the full login/logout
// path runs without Redis.
type routerSessions struct {
	live map[string]string
}

func newRouterSessions() *routerSessions {
	return &routerSessions{live: map[string]string{}}
}

func (s *routerSessions) Register(_ context.Context, sessionID, userID string) error {
	s.live[sessionID] = userID
	return nil
}

func (s *routerSessions) Revoke(_ context.Context, sessionID string) error {
	delete(s.live, sessionID)
	return nil
}

func (s *routerSessions) HasSession(_ context.Context, sessionID string) (bool, error) {
	_, ok := s.live[sessionID]
	return ok, nil
}

type stubImages struct{}

func (stubImages) URL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return testImageEndpoint + "/" + strings.TrimPrefix(path, "/")
}

func (stubImages) RelativePath(value string) string {
	return strings.TrimPrefix(value, testImageEndpoint)
}

func (stubImages) Upload(_ context.Context, fileName string, _ []byte, folder string) (*imagekit.UploadResult, error) {
	path := folder + "/" + fileName
	return &imagekit.UploadResult{
		FileID:   "file-" + fileName,
		URL:      testImageEndpoint + path,
		FilePath: path,
	}, nil
}

func (stubImages) Delete(_ context.Context, _ string) error {
	return nil
}

type routerFixture struct {
	conn   *gorm.DB
	router chi.Router

	catalog    catalogsvc.Service
	categories categorysvc.Service
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.User{}, &models.Cart{}, &models.CartItem{},
		&models.Category{}, &models.SubCategory{},
		&models.Product{}, &models.FeaturedProduct{},
		&models.Blog{}, &models.Contact{},
	))

	client := db.NewWithConn(conn)
	images := stubImages{}
	sessions := newRouterSessions()

	cfg := &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret-router-test-secret",
			Issuer:            "vally",
			ExpirationMinutes: 60,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		WhatsApp: config.WhatsAppConfig{BusinessNumber: "+2348012345678", SiteName: "Vally"},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	registerSvc, err := authsvc.NewRegisterService(authsvc.RegisterServiceParams{
		DB:             client,
		PasswordConfig: cfg.Password,
	})
	require.NoError(t, err)

	authSvc, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:  users.NewRepository(conn),
		Sessions:  sessions,
		JWTConfig: cfg.JWT,
	})
	require.NoError(t, err)

	categoryRepo := categorysvc.NewRepository(conn)
	categoriesSvc, err := categorysvc.NewService(categorysvc.ServiceParams{DB: client, Repo: categoryRepo})
	require.NoError(t, err)

	catalogRepo := catalogsvc.NewRepository(conn)
	catalogSvc, err := catalogsvc.NewService(catalogsvc.ServiceParams{
		DB:         client,
		Repo:       catalogRepo,
		Categories: categoryRepo,
		Images:     images,
	})
	require.NoError(t, err)

	featuredSvc, err := featuredsvc.NewService(featuredsvc.ServiceParams{
		DB:       client,
		Repo:     featuredsvc.NewRepository(conn),
		Products: catalogRepo,
		Images:   images,
	})
	require.NoError(t, err)

	cartSvc, err := cartsvc.NewService(cartsvc.ServiceParams{
		DB:       client,
		Repo:     cartsvc.NewRepository(conn),
		Products: catalogRepo,
		Images:   images,
	})
	require.NoError(t, err)

	checkoutSvc, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Carts:    cartSvc,
		WhatsApp: cfg.WhatsApp,
	})
	require.NoError(t, err)

	blogsSvc, err := blogsvc.NewService(blogsvc.ServiceParams{
		DB:     client,
		Repo:   blogsvc.NewRepository(conn),
		Images: images,
	})
	require.NoError(t, err)

	contactsSvc, err := contactsvc.NewService(contactsvc.ServiceParams{
		Repo: contactsvc.NewRepository(conn),
	})
	require.NoError(t, err)

	router := NewRouter(RouterParams{
		Config:     cfg,
		Sessions:   sessions,
		Auth:       authSvc,
		Register:   registerSvc,
		Catalog:    catalogSvc,
		Featured:   featuredSvc,
		Categories: categoriesSvc,
		Cart:       cartSvc,
		Checkout:   checkoutSvc,
		Blogs:      blogsSvc,
		Contacts:   contactsSvc,
	})

	return &routerFixture{
		conn:       conn,
		router:     router,
		catalog:    catalogSvc,
		categories: categoriesSvc,
	}
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func (f *routerFixture) registerUser(t *testing.T, username, email, password string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, rec, &out)
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func (f *routerFixture) loginAdmin(t *testing.T) string {
	t.Helper()
	f.registerUser(t, "admin", "admin@vallyhouse.com", "super-secret-pw")
	require.NoError(t, f.conn.Model(&models.User{}).
		Where("email = ?", "admin@vallyhouse.com").
		Update("role", "admin").Error)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "admin@vallyhouse.com",
		"password": "super-secret-pw",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, rec, &out)
	return out.AccessToken
}

func (f *routerFixture) seedProduct(t *testing.T, vallyID string, published bool) *catalogsvc.ProductDTO {
	t.Helper()

	category, err := f.categories.CreateCategory(context.Background(), categorysvc.CreateCategoryRequest{
		Name: "fabrics " + vallyID,
	})
	require.NoError(t, err)

	product, err := f.catalog.Create(context.Background(), catalogsvc.CreateProductRequest{
		VallyID:     vallyID,
		Name:        "Aso Oke " + vallyID,
		Description: "Handwoven aso oke fabric",
		Price:       decimal.RequireFromString("150.00"),
		CategoryID:  category.ID,
		Brand:       "Vally",
		Sizes:       []string{"5 yards"},
		Images:      []string{"/products/a.jpg", "/products/b.jpg", "/products/c.jpg", "/products/d.jpg"},
		Stock:       10,
		Material:    "aso oke",
		IsPublished: published,
		Variants: []catalogsvc.VariantRequest{
			{Color: "indigo", Images: []string{"/v/1.jpg", "/v/2.jpg", "/v/3.jpg", "/v/4.jpg"}},
		},
	})
	require.NoError(t, err)
	return product
}

func TestHealthLive(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", rec.Header().Get("X-Vally-Env"))
}

func TestPublicProductListingHidesDrafts(t *testing.T) {
	f := newRouterFixture(t)
	f.seedProduct(t, "VLY-001", true)
	f.seedProduct(t, "VLY-002", false)

	rec := f.do(t, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Items []catalogsvc.ProductDTO `json:"items"`
	}
	decodeData(t, rec, &out)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "VLY-001", out.Items[0].VallyID)
}

func TestCartRequiresAuth(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterThenCartFlow(t *testing.T) {
	f := newRouterFixture(t)
	product := f.seedProduct(t, "VLY-010", true)
	token := f.registerUser(t, "amina", "amina@example.com", "correct-horse")

	rec := f.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var cart cartsvc.CartDTO
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Items)

	rec = f.do(t, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"product_id": product.ID,
		"size":       "5 yards",
		"color":      "indigo",
		"quantity":   2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	rec = f.do(t, http.MethodPost, "/api/v1/cart/checkout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "wa.me")
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newRouterFixture(t)
	token := f.registerUser(t, "bola", "bola@example.com", "correct-horse")

	rec := f.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesEnforceRole(t *testing.T) {
	f := newRouterFixture(t)
	userToken := f.registerUser(t, "chidi", "chidi@example.com", "correct-horse")

	rec := f.do(t, http.MethodGet, "/api/admin/v1/products", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken := f.loginAdmin(t)
	rec = f.do(t, http.MethodGet, "/api/admin/v1/products", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAdminFeaturedRoundTrip(t *testing.T) {
	f := newRouterFixture(t)
	first := f.seedProduct(t, "VLY-020", true)
	second := f.seedProduct(t, "VLY-021", true)
	adminToken := f.loginAdmin(t)

	rec := f.do(t, http.MethodPut, "/api/admin/v1/products/featured", adminToken, map[string]any{
		"product_ids": []uuid.UUID{second.ID, first.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/v1/products/featured", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out []featuredsvc.FeaturedProductDTO
	decodeData(t, rec, &out)
	require.Len(t, out, 2)
	assert.Equal(t, "VLY-021", out[0].VallyID)
	assert.Equal(t, "VLY-020", out[1].VallyID)
}

func TestContactFormAndAdminTriage(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/contacts", "", map[string]string{
		"name":    "Ada",
		"email":   "Ada@Example.com",
		"subject": "Wholesale order",
		"content": "Do you ship bulk aso oke to Abuja?",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	adminToken := f.loginAdmin(t)
	rec = f.do(t, http.MethodGet, "/api/admin/v1/contacts?contacted=false", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out contactsvc.ListResult
	decodeData(t, rec, &out)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "ada@example.com", out.Items[0].Email)

	path := fmt.Sprintf("/api/admin/v1/contacts/%s", out.Items[0].ID)
	rec = f.do(t, http.MethodPatch, path, adminToken, map[string]bool{"contacted": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/admin/v1/contacts?contacted=false", adminToken, nil)
	decodeData(t, rec, &out)
	assert.Empty(t, out.Items)
}

func TestUnknownProductReturnsNotFound(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/products/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
