package store

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"product-catalog-mcp/internal/domain"
)

const testNamespace = "testdb.products"

// PtrTo returns a pointer to the given value. Helper for tests.
func PtrTo[T any](v T) *T {
	return &v
}

func newMockStore(mt *mtest.T) *MongoStore {
	return NewMongoStore(mt.Client, "testdb", 10, log.New(io.Discard, "", 0))
}

func productDoc(id primitive.ObjectID) bson.D {
	now := primitive.NewDateTimeFromTime(time.Now().UTC())
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Wireless Headphones"},
		{Key: "description", Value: "Noise-cancelling over-ear headphones"},
		{Key: "price", Value: 199.99},
		{Key: "stock", Value: 50},
		{Key: "category", Value: "electronics"},
		{Key: "status", Value: "active"},
		{Key: "sku", Value: "ELEC-WH-001"},
		{Key: "tags", Value: bson.A{"audio", "wireless"}},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
	}
}

func TestMongoStore_CreateProduct(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		product, err := st.CreateProduct(context.Background(), &domain.ProductCreate{
			Name:     "Wireless Headphones",
			Price:    199.99,
			Stock:    50,
			Category: domain.CategoryElectronics,
			SKU:      "ELEC-WH-001",
			Tags:     []string{"audio", "wireless"},
		})

		require.NoError(mt, err)
		require.NotNil(mt, product)
		assert.False(mt, product.ID.IsZero())
		assert.Equal(mt, "Wireless Headphones", product.Name)
		assert.Equal(mt, domain.StatusActive, product.Status)
		assert.False(mt, product.CreatedAt.IsZero())
		assert.Equal(mt, product.CreatedAt, product.UpdatedAt)
	})

	mt.Run("nil tags becomes empty slice", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		product, err := st.CreateProduct(context.Background(), &domain.ProductCreate{
			Name:     "Bare Product",
			Price:    9.99,
			Category: domain.CategoryOther,
			SKU:      "OTHER-001",
		})

		require.NoError(mt, err)
		require.NotNil(mt, product.Tags)
		assert.Empty(mt, product.Tags)
	})

	mt.Run("duplicate SKU", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Code:    11000,
			Message: "E11000 duplicate key error collection: testdb.products index: sku_unique",
		}))

		product, err := st.CreateProduct(context.Background(), &domain.ProductCreate{
			Name:     "Wireless Headphones",
			Price:    199.99,
			Category: domain.CategoryElectronics,
			SKU:      "ELEC-WH-001",
		})

		assert.Nil(mt, product)
		assert.True(mt, errors.Is(err, ErrProductSKUExists))
	})
}

func TestMongoStore_GetProductByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		st := newMockStore(mt)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, productDoc(oid)))

		product, err := st.GetProductByID(context.Background(), oid.Hex())

		require.NoError(mt, err)
		require.NotNil(mt, product)
		assert.Equal(mt, oid, product.ID)
		assert.Equal(mt, "ELEC-WH-001", product.SKU)
		assert.Equal(mt, domain.CategoryElectronics, product.Category)
	})

	mt.Run("not found", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch))

		product, err := st.GetProductByID(context.Background(), primitive.NewObjectID().Hex())

		assert.Nil(mt, product)
		assert.True(mt, errors.Is(err, ErrProductNotFound))
	})

	mt.Run("malformed id skips the database", func(mt *mtest.T) {
		st := newMockStore(mt)
		// No mock responses queued: a store round trip would fail the test.

		product, err := st.GetProductByID(context.Background(), "not-a-hex-id")

		assert.Nil(mt, product)
		assert.True(mt, errors.Is(err, ErrProductNotFound))
	})
}

func TestMongoStore_GetProductBySKU(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found with lowercase input", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, productDoc(primitive.NewObjectID())))

		product, err := st.GetProductBySKU(context.Background(), "elec-wh-001")

		require.NoError(mt, err)
		assert.Equal(mt, "ELEC-WH-001", product.SKU)
	})

	mt.Run("invalid SKU skips the database", func(mt *mtest.T) {
		st := newMockStore(mt)

		product, err := st.GetProductBySKU(context.Background(), "bad sku!")

		assert.Nil(mt, product)
		assert.True(mt, errors.Is(err, ErrProductNotFound))
	})

	mt.Run("not found", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch))

		product, err := st.GetProductBySKU(context.Background(), "MISSING-001")

		assert.Nil(mt, product)
		assert.True(mt, errors.Is(err, ErrProductNotFound))
	})
}

func TestMongoStore_SearchProducts(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns matching products", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch,
			productDoc(primitive.NewObjectID()),
			productDoc(primitive.NewObjectID()),
		))

		products := st.SearchProducts(context.Background(), domain.ProductSearchFilter{
			Category: PtrTo(domain.CategoryElectronics),
		})

		require.Len(mt, products, 2)
		assert.Equal(mt, "Wireless Headphones", products[0].Name)
	})

	mt.Run("fail-soft on query error", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "text index required for $text query",
			Name:    "BadValue",
		}))

		products := st.SearchProducts(context.Background(), domain.ProductSearchFilter{Query: "headphones"})

		require.NotNil(mt, products)
		assert.Empty(mt, products)
	})
}

func TestMongoStore_UpdateProduct(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		st := newMockStore(mt)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, productDoc(oid)),
		)

		product, err := st.UpdateProduct(context.Background(), oid.Hex(), &domain.ProductUpdate{
			Price: PtrTo(179.99),
		})

		require.NoError(mt, err)
		require.NotNil(mt, product)
		assert.Equal(mt, oid, product.ID)
	})

	mt.Run("empty update reads back without writing", func(mt *mtest.T) {
		st := newMockStore(mt)
		oid := primitive.NewObjectID()
		// Only the read-back find is queued; an update command would not match.
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, productDoc(oid)))

		product, err := st.UpdateProduct(context.Background(), oid.Hex(), &domain.ProductUpdate{})

		require.NoError(mt, err)
		assert.Equal(mt, oid, product.ID)
	})

	mt.Run("not found", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		product, err := st.UpdateProduct(context.Background(), primitive.NewObjectID().Hex(), &domain.ProductUpdate{
			Stock: PtrTo(5),
		})

		assert.Nil(mt, product)
		assert.True(mt, errors.Is(err, ErrProductNotFound))
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		st := newMockStore(mt)

		product, err := st.UpdateProduct(context.Background(), "nope", &domain.ProductUpdate{Stock: PtrTo(5)})

		assert.Nil(mt, product)
		assert.True(mt, errors.Is(err, ErrProductNotFound))
	})
}

func TestMongoStore_DeleteProduct(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := st.DeleteProduct(context.Background(), primitive.NewObjectID().Hex())

		assert.NoError(mt, err)
	})

	mt.Run("not found", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := st.DeleteProduct(context.Background(), primitive.NewObjectID().Hex())

		assert.True(mt, errors.Is(err, ErrProductNotFound))
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		st := newMockStore(mt)

		err := st.DeleteProduct(context.Background(), "not-a-hex-id")

		assert.True(mt, errors.Is(err, ErrProductNotFound))
	})
}

func TestMongoStore_InventorySummary(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("assembles rollups", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: nil},
				{Key: "total_products", Value: 25},
				{Key: "total_value", Value: 48210.50},
				{Key: "low_stock_count", Value: 4},
				{Key: "out_of_stock_count", Value: 1},
			}),
			mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: "electronics"},
					{Key: "count", Value: 8},
					{Key: "total_value", Value: 30000.0},
					{Key: "avg_price", Value: 412.49},
				},
				bson.D{
					{Key: "_id", Value: "books"},
					{Key: "count", Value: 4},
					{Key: "total_value", Value: 2400.0},
					{Key: "avg_price", Value: 41.24},
				},
			),
		)

		summary := st.InventorySummary(context.Background())

		assert.Equal(mt, 25, summary.TotalProducts)
		assert.Equal(mt, 48210.50, summary.TotalValue)
		assert.Equal(mt, 4, summary.LowStockProducts)
		assert.Equal(mt, 1, summary.OutOfStockProducts)
		require.Len(mt, summary.CategoriesBreakdown, 2)
		assert.Equal(mt, "electronics", summary.CategoriesBreakdown[0].Category)
		assert.Equal(mt, 8, summary.CategoriesBreakdown[0].Count)
		assert.False(mt, summary.LastUpdated.IsZero())
	})

	mt.Run("zero summary on rollup failure", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    8000,
			Message: "aggregation failed",
			Name:    "AtlasError",
		}))

		summary := st.InventorySummary(context.Background())

		assert.Equal(mt, 0, summary.TotalProducts)
		assert.Equal(mt, 0.0, summary.TotalValue)
		require.NotNil(mt, summary.CategoriesBreakdown)
		assert.Empty(mt, summary.CategoriesBreakdown)
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch))

		summary := st.InventorySummary(context.Background())

		assert.Equal(mt, 0, summary.TotalProducts)
		assert.Empty(mt, summary.CategoriesBreakdown)
	})
}

func TestMongoStore_Aggregate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns raw documents", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, testNamespace, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "electronics"},
			{Key: "total", Value: 8},
		}))

		results, err := st.Aggregate(context.Background(), nil)

		require.NoError(mt, err)
		require.Len(mt, results, 1)
		assert.Equal(mt, "electronics", results[0]["_id"])
	})

	mt.Run("surfaces command errors", func(mt *mtest.T) {
		st := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    40324,
			Message: "unrecognized pipeline stage",
			Name:    "Location40324",
		}))

		results, err := st.Aggregate(context.Background(), nil)

		assert.Nil(mt, results)
		assert.Error(mt, err)
	})
}
