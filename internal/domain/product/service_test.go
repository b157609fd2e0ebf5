package product_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/example/retail-shop/internal/domain/product"
	"github.com/example/retail-shop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*product.Service, *mocks.MockProductCatalog) {
	shoe := mocks.PricedProduct(1, "Trail Shoe", "89.99")
	shoe.Category = "Footwear"
	shoe.Brand = "Acme"
	sock := mocks.PricedProduct(2, "Wool Sock", "9.50")
	sock.Category = "Apparel"
	catalog := mocks.NewMockProductCatalog(shoe, sock, product.Product{ID: 3, Name: "Unpriced Hat", Brand: "Acme"})
	return product.NewService(catalog), catalog
}

func TestService_List(t *testing.T) {
	svc, _ := newTestService()

	products, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, int64(1), products[0].ID)
	assert.False(t, products[2].UnitPrice.Valid)
}

func TestService_List_EmptyCatalog(t *testing.T) {
	svc := product.NewService(mocks.NewMockProductCatalog())

	products, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestService_Search(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	byBrand, err := svc.Search(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, byBrand, 2)

	byCategory, err := svc.Search(ctx, "APPAREL")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Wool Sock", byCategory[0].Name)

	none, err := svc.Search(ctx, "kayak")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	all, err := svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestService_GetByID(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "9.50", p.UnitPrice.Decimal.StringFixed(2))

	_, err = svc.GetByID(ctx, 99)
	assert.ErrorIs(t, err, product.ErrProductNotFound)

	_, err = svc.GetByID(ctx, -1)
	assert.ErrorIs(t, err, product.ErrInvalidID)
}

func TestService_RepositoryError(t *testing.T) {
	svc, catalog := newTestService()
	catalog.Err = errors.New("timeout")

	_, err := svc.List(context.Background())
	assert.EqualError(t, err, "timeout")
}

func TestProductJSON(t *testing.T) {
	raw, err := json.Marshal(mocks.PricedProduct(1, "Trail Shoe", "89.9"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"unit_price":"89.90"`)

	raw, err = json.Marshal(product.Product{ID: 3, Name: "Unpriced Hat"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"unit_price":null`)
}
