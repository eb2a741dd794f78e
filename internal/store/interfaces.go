package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"product-catalog-mcp/internal/domain"
)

// ProductStorer defines the persistence operations for products.
//
// SearchProducts and InventorySummary are fail-soft read paths: on any
// underlying store failure they log and return an empty result rather than
// an error. Write paths report failures through the sentinel errors in this
// package.
type ProductStorer interface {
	CreateProduct(ctx context.Context, create *domain.ProductCreate) (*domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	SearchProducts(ctx context.Context, filter domain.ProductSearchFilter) []domain.Product
	UpdateProduct(ctx context.Context, id string, update *domain.ProductUpdate) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	InventorySummary(ctx context.Context) domain.InventorySummary
	Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error)
	HealthCheck(ctx context.Context) domain.HealthStatus
}
