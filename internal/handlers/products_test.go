package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/api/internal/config"
	"shopfront/api/internal/models"
	"shopfront/api/internal/repository"
)

type fakeStoreStore struct {
	stores map[string]models.Store
}

func (f *fakeStoreStore) Create(_ context.Context, store models.Store) error {
	f.stores[store.ID] = store
	return nil
}

func (f *fakeStoreStore) GetByID(_ context.Context, id string) (models.Store, error) {
	store, ok := f.stores[id]
	if !ok {
		return models.Store{}, repository.ErrStoreNotFound
	}
	return store, nil
}

func (f *fakeStoreStore) ListByOwner(_ context.Context, ownerID string) ([]models.Store, error) {
	var out []models.Store
	for _, store := range f.stores {
		if store.OwnerID == ownerID {
			out = append(out, store)
		}
	}
	return out, nil
}

func (f *fakeStoreStore) Update(_ context.Context, store models.Store) error {
	f.stores[store.ID] = store
	return nil
}

func (f *fakeStoreStore) Delete(_ context.Context, id string) error {
	delete(f.stores, id)
	return nil
}

type fakeProductStore struct {
	products  map[string]models.Product
	listCalls int
}

func (f *fakeProductStore) Create(_ context.Context, product models.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductStore) GetByID(_ context.Context, id string) (models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return models.Product{}, repository.ErrProductNotFound
	}
	return product, nil
}

func (f *fakeProductStore) ListByStore(_ context.Context, storeID string, _, _ int) ([]models.Product, error) {
	f.listCalls++
	var out []models.Product
	for _, product := range f.products {
		if product.StoreID == storeID {
			out = append(out, product)
		}
	}
	return out, nil
}

func (f *fakeProductStore) Update(_ context.Context, product models.Product) error {
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductStore) Delete(_ context.Context, id string) error {
	delete(f.products, id)
	return nil
}

type productRouter struct {
	engine   *gin.Engine
	products *fakeProductStore
	store    models.Store
}

func newProductRouter(t *testing.T) *productRouter {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	owner := models.Account{ID: "acct_owner", Email: "owner@example.com", Role: models.AccountRoleCustomer}
	store := models.Store{ID: "store_1", OwnerID: owner.ID, Name: "Plants", Slug: "plants"}

	stores := &fakeStoreStore{stores: map[string]models.Store{store.ID: store}}
	products := &fakeProductStore{products: make(map[string]models.Product)}

	h := HandlerSet{
		log:      zerolog.Nop(),
		cfg:      &config.AppConfig{Environment: "test"},
		cache:    cache,
		stores:   stores,
		products: products,
	}

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("current_account", owner) })
	grp := r.Group("/api/v1/stores/:storeId/products")
	grp.POST("", h.CreateProduct)
	grp.GET("", h.ListProducts)
	grp.PUT("/:productId", h.UpdateProduct)
	grp.DELETE("/:productId", h.DeleteProduct)

	return &productRouter{engine: r, products: products, store: store}
}

func (pr *productRouter) createProduct(t *testing.T, name, sku string) string {
	t.Helper()
	w := doJSON(t, pr.engine, http.MethodPost, "/api/v1/stores/store_1/products", gin.H{
		"name":       name,
		"sku":        sku,
		"priceCents": 1500,
		"currency":   "USD",
		"active":     true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Product struct {
			ID string `json:"id"`
		} `json:"product"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Product.ID
}

func (pr *productRouter) list(t *testing.T, query string) *httptest.ResponseRecorder {
	t.Helper()
	w := doJSON(t, pr.engine, http.MethodGet, "/api/v1/stores/store_1/products"+query, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return w
}

func TestListProducts_CacheReadThrough(t *testing.T) {
	pr := newProductRouter(t)
	pr.createProduct(t, "Monstera", "MON-1")

	first := pr.list(t, "")
	assert.Equal(t, 1, pr.products.listCalls)
	assert.Contains(t, first.Body.String(), "Monstera")

	// Second default-page read is served from redis without touching the
	// repository, byte for byte.
	second := pr.list(t, "")
	assert.Equal(t, 1, pr.products.listCalls)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestListProducts_NonDefaultPageBypassesCache(t *testing.T) {
	pr := newProductRouter(t)
	pr.createProduct(t, "Monstera", "MON-1")

	pr.list(t, "?perPage=10")
	pr.list(t, "?perPage=10")
	assert.Equal(t, 2, pr.products.listCalls)

	pr.list(t, "?page=2")
	assert.Equal(t, 3, pr.products.listCalls)
}

func TestListProducts_WriteInvalidatesCache(t *testing.T) {
	pr := newProductRouter(t)
	pr.createProduct(t, "Monstera", "MON-1")

	pr.list(t, "")
	pr.list(t, "")
	require.Equal(t, 1, pr.products.listCalls)

	// A product write drops the cached page; the next read sees the new
	// catalog state.
	id := pr.createProduct(t, "Ficus", "FIC-1")
	after := pr.list(t, "")
	assert.Equal(t, 2, pr.products.listCalls)
	assert.Contains(t, after.Body.String(), "Ficus")

	// Same for delete.
	w := doJSON(t, pr.engine, http.MethodDelete, "/api/v1/stores/store_1/products/"+id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	after = pr.list(t, "")
	assert.Equal(t, 3, pr.products.listCalls)
	assert.NotContains(t, after.Body.String(), "Ficus")
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", query: "", wantLimit: 50, wantOffset: 0},
		{name: "second page", query: "?page=2", wantLimit: 50, wantOffset: 50},
		{name: "custom per page", query: "?perPage=20&page=3", wantLimit: 20, wantOffset: 40},
		{name: "per page over cap ignored", query: "?perPage=5000", wantLimit: 50, wantOffset: 0},
		{name: "page beyond bound ignored", query: "?page=2000000", wantLimit: 50, wantOffset: 0},
		{name: "max int page does not overflow", query: "?page=9223372036854775807&perPage=200", wantLimit: 200, wantOffset: 0},
		{name: "negative page ignored", query: "?page=-4", wantLimit: 50, wantOffset: 0},
	}

	gin.SetMode(gin.TestMode)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)

			limit, offset := pageParams(c)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
			assert.GreaterOrEqual(t, offset, 0)
		})
	}
}
