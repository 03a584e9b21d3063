package product_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/georgemunganga/pulse-backend/internal/modules/access"
	"github.com/georgemunganga/pulse-backend/internal/modules/auth"
	"github.com/georgemunganga/pulse-backend/internal/modules/product"
	"github.com/georgemunganga/pulse-backend/internal/modules/store"
	"github.com/georgemunganga/pulse-backend/pkg/errutil"
	"github.com/go-chi/chi/v5"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeAuthorizer answers permission checks for a single fixed store.
type storeAuthorizer struct{ st *store.Store }

func (a *storeAuthorizer) Authorize(_ context.Context, storeID, actorID string, perms ...access.Permission) (*store.Store, error) {
	if storeID != a.st.ID || actorID == "" {
		return nil, oops.Code(store.CodeStoreNotFound).Errorf("store not found")
	}
	member := actorID == a.st.OwnerID
	for _, id := range a.st.SharedWith {
		member = member || id == actorID
	}
	if !member {
		return nil, oops.Code(store.CodeStoreNotFound).Errorf("store not found")
	}
	if !store.CanPerform(a.st, actorID, perms...) {
		return nil, oops.Code(errutil.CodeForbidden).Errorf("forbidden")
	}
	return a.st, nil
}

type memRepo struct{ products map[string]*product.Product }

func (m *memRepo) CreateProduct(_ context.Context, p *product.Product) error {
	c := *p
	m.products[p.ID] = &c
	return nil
}

func (m *memRepo) GetProduct(_ context.Context, storeID, id string) (*product.Product, error) {
	p, ok := m.products[id]
	if !ok || p.StoreID != storeID {
		return nil, oops.Code(product.CodeProductNotFound).Errorf("product not found")
	}
	c := *p
	return &c, nil
}

func (m *memRepo) ListProducts(_ context.Context, storeID, after string, limit int) ([]*product.Product, error) {
	all := []*product.Product{}
	for _, p := range m.products {
		if p.StoreID == storeID {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].UpdatedAt.Before(all[j].UpdatedAt)
	})
	start := 0
	if after != "" {
		start = len(all)
		for i, p := range all {
			if p.ID == after {
				start = i + 1
			}
		}
	}
	all = all[start:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memRepo) UpdateProduct(_ context.Context, p *product.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return oops.Code(product.CodeProductNotFound).Errorf("product not found")
	}
	c := *p
	m.products[p.ID] = &c
	return nil
}

func (m *memRepo) DeleteProduct(_ context.Context, storeID, id string) error {
	p, ok := m.products[id]
	if !ok || p.StoreID != storeID {
		return oops.Code(product.CodeProductNotFound).Errorf("product not found")
	}
	delete(m.products, id)
	return nil
}

type productNotes struct{ changed []string }

func (n *productNotes) ProductsChanged(_ context.Context, storeID string) {
	n.changed = append(n.changed, storeID)
}

func newService() (product.Service, *memRepo) {
	repo := &memRepo{products: map[string]*product.Product{}}
	st := &store.Store{
		ID:         "s1",
		OwnerID:    "owner",
		Admins:     []string{"admin"},
		Managers:   []string{"manager"},
		SharedWith: []string{"owner", "admin", "manager"},
	}
	return product.NewService(repo, &storeAuthorizer{st: st}, nil), repo
}

func TestAddProduct(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	p, err := svc.AddProduct(ctx, "admin", "s1", product.AddProductRequest{
		Name: " Tea ", Price: 40, Tags: []string{"Drinks", " drinks ", ""}, AvailableStock: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tea", p.Name)
	assert.Equal(t, product.Inventory{Total: 12, Sold: 0, Left: 12}, p.Inventory)
	assert.Equal(t, []string{"drinks"}, p.Tags)
	assert.Equal(t, "admin", p.AddedBy)

	_, err = svc.AddProduct(ctx, "manager", "s1", product.AddProductRequest{Name: "Tea"})
	errutil.AssertErrorCode(t, err, errutil.CodeForbidden)

	_, err = svc.AddProduct(ctx, "stranger", "s1", product.AddProductRequest{Name: "Tea"})
	errutil.AssertErrorCode(t, err, store.CodeStoreNotFound)

	for name, req := range map[string]product.AddProductRequest{
		"no name":        {Price: 1},
		"negative price": {Name: "x", Price: -1},
		"negative stock": {Name: "x", AvailableStock: -3},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.AddProduct(ctx, "owner", "s1", req)
			errutil.AssertErrorCode(t, err, errutil.CodeInvalidInput)
		})
	}
}

func TestUpdateInventory(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	p, err := svc.AddProduct(ctx, "owner", "s1", product.AddProductRequest{Name: "Rice", AvailableStock: 10})
	require.NoError(t, err)
	repo.products[p.ID].Inventory = product.Inventory{Total: 10, Sold: 4, Left: 6}

	updated, err := svc.UpdateInventory(ctx, "manager", "s1", p.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, product.Inventory{Total: 24, Sold: 4, Left: 20}, updated.Inventory)

	_, err = svc.UpdateInventory(ctx, "manager", "s1", p.ID, -1)
	errutil.AssertErrorCode(t, err, errutil.CodeInvalidInput)

	_, err = svc.UpdateInventory(ctx, "manager", "s1", "missing", 1)
	errutil.AssertErrorCode(t, err, product.CodeProductNotFound)
}

func TestUpdateAndRemoveProduct(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	p, err := svc.AddProduct(ctx, "owner", "s1", product.AddProductRequest{Name: "Rice", Price: 5})
	require.NoError(t, err)

	price := 7.5
	_, err = svc.UpdateProduct(ctx, "manager", "s1", p.ID, product.UpdateProductRequest{Price: &price})
	errutil.AssertErrorCode(t, err, errutil.CodeForbidden)

	updated, err := svc.UpdateProduct(ctx, "admin", "s1", p.ID, product.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 7.5, updated.Price)
	assert.Equal(t, "Rice", updated.Name)

	negative := -2.0
	_, err = svc.UpdateProduct(ctx, "admin", "s1", p.ID, product.UpdateProductRequest{Price: &negative})
	errutil.AssertErrorCode(t, err, errutil.CodeInvalidInput)

	err = svc.RemoveProduct(ctx, "manager", "s1", p.ID)
	errutil.AssertErrorCode(t, err, errutil.CodeForbidden)

	require.NoError(t, svc.RemoveProduct(ctx, "admin", "s1", p.ID))
	_, err = svc.GetProduct(ctx, "manager", "s1", p.ID)
	errutil.AssertErrorCode(t, err, product.CodeProductNotFound)
}

func TestProductChangesNotifySubscribers(t *testing.T) {
	repo := &memRepo{products: map[string]*product.Product{}}
	st := &store.Store{ID: "s1", OwnerID: "owner", Managers: []string{"manager"}, SharedWith: []string{"owner", "manager"}}
	notes := &productNotes{}
	svc := product.NewService(repo, &storeAuthorizer{st: st}, nil, product.WithNotifier(notes))
	ctx := context.Background()

	p, err := svc.AddProduct(ctx, "owner", "s1", product.AddProductRequest{Name: "Tea", AvailableStock: 3})
	require.NoError(t, err)
	name := "Green tea"
	_, err = svc.UpdateProduct(ctx, "owner", "s1", p.ID, product.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	_, err = svc.UpdateInventory(ctx, "manager", "s1", p.ID, 9)
	require.NoError(t, err)
	require.NoError(t, svc.RemoveProduct(ctx, "owner", "s1", p.ID))
	assert.Equal(t, []string{"s1", "s1", "s1", "s1"}, notes.changed)

	// Reads and rejected writes stay quiet.
	notes.changed = nil
	_, err = svc.ListProducts(ctx, "manager", "s1", product.Page{})
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, "manager", "s1", product.AddProductRequest{Name: "Rice"})
	errutil.AssertErrorCode(t, err, errutil.CodeForbidden)
	assert.Empty(t, notes.changed)
}

func TestListProducts_Pages(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		p, err := svc.AddProduct(ctx, "owner", "s1", product.AddProductRequest{Name: "p" + string(rune('a'+i))})
		require.NoError(t, err)
		repo.products[p.ID].UpdatedAt = base.Add(time.Duration(i) * time.Minute)
	}

	first, err := svc.ListProducts(ctx, "manager", "s1", product.Page{})
	require.NoError(t, err)
	require.Len(t, first.Items, product.DefaultPageSize)
	assert.Equal(t, "pa", first.Items[0].Name)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListProducts(ctx, "manager", "s1", product.Page{After: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "pe", second.Items[0].Name)
	assert.Empty(t, second.NextCursor)

	all, err := svc.ListProducts(ctx, "manager", "s1", product.Page{Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, all.Items, 6)

	_, err = svc.ListProducts(ctx, "stranger", "s1", product.Page{})
	errutil.AssertErrorCode(t, err, store.CodeStoreNotFound)
}

func TestHandler_Products(t *testing.T) {
	svc, _ := newService()
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), r.Header.Get("X-User"))))
		})
	})
	product.NewHandler(svc).RegisterRoutes(router)

	do := func(method, path, as, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("X-User", as)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/stores/s1/products", "manager", `{"name":"Tea","price":3}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(http.MethodPost, "/stores/s1/products", "owner", `{"name":"Tea","price":3,"available_stock":5}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(http.MethodGet, "/stores/s1/products?limit=x", "manager", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodGet, "/stores/s1/products?limit=2", "manager", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Tea"`)

	rec = do(http.MethodGet, "/stores/s1/products/nope", "manager", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(http.MethodPut, "/stores/s1/products/nope/inventory", "manager", `{"left":3}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
