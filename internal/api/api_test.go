package api

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"product-catalog-mcp/internal/domain"
	"product-catalog-mcp/internal/store"
)

// PtrTo returns a pointer to the given value. Helper for tests.
func PtrTo[T any](v T) *T {
	return &v
}

// mockStore is a testify mock over store.ProductStorer.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateProduct(ctx context.Context, create *domain.ProductCreate) (*domain.Product, error) {
	args := m.Called(ctx, create)
	product, _ := args.Get(0).(*domain.Product)
	return product, args.Error(1)
}

func (m *mockStore) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*domain.Product)
	return product, args.Error(1)
}

func (m *mockStore) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	args := m.Called(ctx, sku)
	product, _ := args.Get(0).(*domain.Product)
	return product, args.Error(1)
}

func (m *mockStore) SearchProducts(ctx context.Context, filter domain.ProductSearchFilter) []domain.Product {
	args := m.Called(ctx, filter)
	products, _ := args.Get(0).([]domain.Product)
	return products
}

func (m *mockStore) UpdateProduct(ctx context.Context, id string, update *domain.ProductUpdate) (*domain.Product, error) {
	args := m.Called(ctx, id, update)
	product, _ := args.Get(0).(*domain.Product)
	return product, args.Error(1)
}

func (m *mockStore) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) InventorySummary(ctx context.Context) domain.InventorySummary {
	args := m.Called(ctx)
	summary, _ := args.Get(0).(domain.InventorySummary)
	return summary
}

func (m *mockStore) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	args := m.Called(ctx, pipeline)
	results, _ := args.Get(0).([]bson.M)
	return results, args.Error(1)
}

func (m *mockStore) HealthCheck(ctx context.Context) domain.HealthStatus {
	args := m.Called(ctx)
	status, _ := args.Get(0).(domain.HealthStatus)
	return status
}

// callReq builds a tool call with the given arguments.
func callReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// toolResponse mirrors the JSON envelope every tool answers with.
type toolResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Warning string                 `json:"warning"`
	Data    map[string]interface{} `json:"data"`
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) toolResponse {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T, want mcp.TextContent", result.Content[0])

	var resp toolResponse
	require.NoError(t, json.Unmarshal([]byte(text.Text), &resp))
	return resp
}

func sampleProduct() *domain.Product {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Product{
		ID:          primitive.NewObjectID(),
		Name:        "Wireless Headphones",
		Description: "Noise-cancelling over-ear headphones",
		Price:       199.99,
		Stock:       50,
		Category:    domain.CategoryElectronics,
		Status:      domain.StatusActive,
		SKU:         "ELEC-WH-001",
		Tags:        []string{"audio", "wireless"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestFindProduct_ByID(t *testing.T) {
	st := &mockStore{}
	product := sampleProduct()
	st.On("GetProductByID", mock.Anything, product.ID.Hex()).Return(product, nil)

	got, errResult := findProduct(context.Background(), st, product.ID.Hex(), false)

	require.Nil(t, errResult)
	assert.Equal(t, product, got)
	st.AssertNotCalled(t, "GetProductBySKU", mock.Anything, mock.Anything)
}

func TestFindProduct_BySKUNotFound(t *testing.T) {
	st := &mockStore{}
	st.On("GetProductBySKU", mock.Anything, "MISSING-001").Return(nil, store.ErrProductNotFound)

	got, errResult := findProduct(context.Background(), st, "MISSING-001", true)

	assert.Nil(t, got)
	resp := decodeResult(t, errResult)
	assert.False(t, resp.Success)
	assert.Equal(t, "Product not found with SKU: MISSING-001", resp.Error)
}

func TestAsFloat(t *testing.T) {
	assert.Equal(t, 1.5, asFloat(1.5))
	assert.Equal(t, 2.0, asFloat(int32(2)))
	assert.Equal(t, 3.0, asFloat(int64(3)))
	assert.Equal(t, 4.0, asFloat(4))
	assert.Equal(t, 0.0, asFloat("not a number"))
}
