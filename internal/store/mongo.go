package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"product-catalog-mcp/internal/domain"
)

// Predefined errors for store operations
var (
	ErrProductNotFound  = errors.New("store: product not found")
	ErrProductSKUExists = errors.New("store: product SKU already exists")
)

const productsCollection = "products"

// MongoStore implements the ProductStorer interface over a MongoDB
// collection. It holds no per-call mutable state; the driver's pooled client
// makes it safe for concurrent use.
type MongoStore struct {
	client    *mongo.Client
	db        *mongo.Database
	products  *mongo.Collection
	dbName    string
	threshold int
	logger    *log.Logger
}

// NewMongoStore creates a MongoStore over an already-connected client. The
// caller owns the client lifecycle; threshold is the low-stock boundary used
// by search filters and the inventory summary.
func NewMongoStore(client *mongo.Client, dbName string, threshold int, logger *log.Logger) *MongoStore {
	if logger == nil {
		logger = log.Default()
	}
	db := client.Database(dbName)
	return &MongoStore{
		client:    client,
		db:        db,
		products:  db.Collection(productsCollection),
		dbName:    dbName,
		threshold: threshold,
		logger:    logger,
	}
}

// Connect dials MongoDB with the standard client settings and verifies the
// connection with a ping. Callers treat a returned error as fatal at startup.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(10 * time.Second).
		SetMaxPoolSize(10).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("store: failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("store: failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// EnsureIndexes provisions the collection's indexes. Failures are logged and
// swallowed: the store stays usable with degraded query performance.
func (s *MongoStore) EnsureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("sku_unique"),
		},
		{
			Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().SetName("text_search"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category_idx"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status_idx"),
		},
		{
			Keys:    bson.D{{Key: "price", Value: 1}},
			Options: options.Index().SetName("price_idx"),
		},
		{
			Keys:    bson.D{{Key: "stock", Value: 1}},
			Options: options.Index().SetName("stock_idx"),
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "status", Value: 1},
				{Key: "stock", Value: 1},
			},
			Options: options.Index().SetName("category_status_stock_idx"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("updated_at_idx"),
		},
	}

	if _, err := s.products.Indexes().CreateMany(ctx, indexes); err != nil {
		s.logger.Printf("WARN: Error creating indexes: %v", err)
		return
	}
	s.logger.Println("INFO: Database indexes created successfully.")
}

// CreateProduct persists a validated create shape. The store assigns the id
// and both timestamps and forces status to active. A duplicate SKU returns
// ErrProductSKUExists with no partial write.
func (s *MongoStore) CreateProduct(ctx context.Context, create *domain.ProductCreate) (*domain.Product, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		Name:        create.Name,
		Description: create.Description,
		Price:       create.Price,
		Stock:       create.Stock,
		Category:    create.Category,
		Status:      domain.StatusActive,
		SKU:         create.SKU,
		Tags:        create.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}

	result, err := s.products.InsertOne(ctx, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			s.logger.Printf("WARN: Duplicate SKU attempted: %s", create.SKU)
			return nil, ErrProductSKUExists
		}
		return nil, fmt.Errorf("store: CreateProduct failed to insert: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("store: CreateProduct got unexpected inserted id type %T", result.InsertedID)
	}
	product.ID = oid
	return product, nil
}

// GetProductByID retrieves a product by its hex id. A malformed id is
// reported as not found, not as a distinct failure.
func (s *MongoStore) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var product domain.Product
	err = s.products.FindOne(ctx, bson.M{"_id": oid}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductByID failed: %w", err)
	}
	return &product, nil
}

// GetProductBySKU retrieves a product by SKU, normalizing case first.
func (s *MongoStore) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	normalized, err := domain.ValidateSKU(sku)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var product domain.Product
	err = s.products.FindOne(ctx, bson.M{"sku": normalized}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductBySKU failed: %w", err)
	}
	return &product, nil
}

// SearchProducts runs a filtered query against the collection. This is a
// fail-soft read path: any store failure is logged and an empty slice is
// returned, never an error.
func (s *MongoStore) SearchProducts(ctx context.Context, filter domain.ProductSearchFilter) []domain.Product {
	filter.Normalize()

	query := bson.M{}
	if filter.Query != "" {
		query["$text"] = bson.M{"$search": filter.Query}
	}
	if filter.Category != nil {
		query["category"] = *filter.Category
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		priceQuery := bson.M{}
		if filter.MinPrice != nil {
			priceQuery["$gte"] = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			priceQuery["$lte"] = *filter.MaxPrice
		}
		query["price"] = priceQuery
	}
	// InStockOnly wins over LowStockOnly when both are set.
	if filter.InStockOnly {
		query["stock"] = bson.M{"$gt": 0}
	} else if filter.LowStockOnly {
		query["stock"] = bson.M{"$lte": s.threshold}
	}
	if len(filter.Tags) > 0 {
		query["tags"] = bson.M{"$in": filter.Tags}
	}

	opts := options.Find().
		SetSkip(int64(filter.Skip)).
		SetLimit(int64(filter.Limit))
	if filter.Query != "" {
		opts.SetSort(bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}})
	} else {
		opts.SetSort(bson.D{{Key: "name", Value: 1}})
	}

	cursor, err := s.products.Find(ctx, query, opts)
	if err != nil {
		s.logger.Printf("ERROR: SearchProducts query failed: %v", err)
		return []domain.Product{}
	}
	defer cursor.Close(ctx)

	products := make([]domain.Product, 0, filter.Limit)
	if err := cursor.All(ctx, &products); err != nil {
		s.logger.Printf("ERROR: SearchProducts cursor failed: %v", err)
		return []domain.Product{}
	}
	return products
}

// UpdateProduct merges the present fields of the partial-update shape and
// stamps updated_at. An empty update is not an error; the current entity is
// returned unchanged. The read-then-write sequence is not transactional: a
// concurrent delete between lookup and write surfaces as ErrProductNotFound.
func (s *MongoStore) UpdateProduct(ctx context.Context, id string, update *domain.ProductUpdate) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	update.Normalize()
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Stock != nil {
		set["stock"] = *update.Stock
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.Tags != nil {
		set["tags"] = update.Tags
	}

	if len(set) == 0 {
		return s.GetProductByID(ctx, id)
	}
	set["updated_at"] = time.Now().UTC()

	result, err := s.products.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("store: UpdateProduct failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrProductNotFound
	}
	return s.GetProductByID(ctx, id)
}

// DeleteProduct removes a product by id. ErrProductNotFound is returned when
// nothing was removed.
func (s *MongoStore) DeleteProduct(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrProductNotFound
	}

	result, err := s.products.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}
	return nil
}

type summaryRollup struct {
	TotalProducts   int     `bson:"total_products"`
	TotalValue      float64 `bson:"total_value"`
	LowStockCount   int     `bson:"low_stock_count"`
	OutOfStockCount int     `bson:"out_of_stock_count"`
}

// InventorySummary computes the derived collection snapshot with a global
// rollup followed by a per-category rollup. On any failure an all-zero
// summary is returned; the caller never sees the store error.
func (s *MongoStore) InventorySummary(ctx context.Context) domain.InventorySummary {
	zero := domain.InventorySummary{
		CategoriesBreakdown: []domain.CategoryStat{},
		LastUpdated:         time.Now().UTC(),
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_products", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total_value", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$multiply", Value: bson.A{"$price", "$stock"}},
			}}}},
			{Key: "low_stock_count", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{
					bson.D{{Key: "$lte", Value: bson.A{"$stock", s.threshold}}}, 1, 0,
				}},
			}}}},
			{Key: "out_of_stock_count", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$stock", 0}}}, 1, 0,
				}},
			}}}},
		}}},
	}

	cursor, err := s.products.Aggregate(ctx, pipeline)
	if err != nil {
		s.logger.Printf("ERROR: InventorySummary rollup failed: %v", err)
		return zero
	}
	var rollups []summaryRollup
	if err := cursor.All(ctx, &rollups); err != nil {
		s.logger.Printf("ERROR: InventorySummary rollup cursor failed: %v", err)
		return zero
	}
	if len(rollups) == 0 {
		return zero
	}

	categoryPipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total_value", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$multiply", Value: bson.A{"$price", "$stock"}},
			}}}},
			{Key: "avg_price", Value: bson.D{{Key: "$avg", Value: "$price"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}

	categories := []domain.CategoryStat{}
	catCursor, err := s.products.Aggregate(ctx, categoryPipeline)
	if err != nil {
		s.logger.Printf("ERROR: InventorySummary category rollup failed: %v", err)
		return zero
	}
	if err := catCursor.All(ctx, &categories); err != nil {
		s.logger.Printf("ERROR: InventorySummary category cursor failed: %v", err)
		return zero
	}

	rollup := rollups[0]
	return domain.InventorySummary{
		TotalProducts:       rollup.TotalProducts,
		TotalValue:          rollup.TotalValue,
		LowStockProducts:    rollup.LowStockCount,
		OutOfStockProducts:  rollup.OutOfStockCount,
		CategoriesBreakdown: categories,
		LastUpdated:         time.Now().UTC(),
	}
}

// Aggregate runs an arbitrary pipeline against the product collection and
// returns the raw result documents. Callers decide the fail-soft policy.
func (s *MongoStore) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	cursor, err := s.products.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("store: Aggregate failed: %w", err)
	}
	defer cursor.Close(ctx)

	results := []bson.M{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("store: Aggregate cursor failed: %w", err)
	}
	return results, nil
}

// HealthCheck pings the store and collects storage metrics. It never returns
// an error; failures fold into an unhealthy status.
func (s *MongoStore) HealthCheck(ctx context.Context) domain.HealthStatus {
	status := domain.HealthStatus{
		Database:  s.dbName,
		LastCheck: time.Now().UTC(),
	}

	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
		return status
	}

	count, err := s.products.CountDocuments(ctx, bson.M{})
	if err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
		return status
	}
	status.TotalProducts = count

	var dbStats bson.M
	if err := s.db.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&dbStats); err == nil {
		status.DatabaseSize = asInt64(dbStats["dataSize"])
	}
	var collStats bson.M
	if err := s.db.RunCommand(ctx, bson.D{{Key: "collStats", Value: productsCollection}}).Decode(&collStats); err == nil {
		status.CollectionSize = asInt64(collStats["size"])
		if sizes, ok := collStats["indexSizes"].(bson.M); ok {
			status.IndexCount = len(sizes)
		}
	}

	status.Status = "healthy"
	status.Connected = true
	return status
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	s.logger.Println("INFO: Closing database connection...")
	if err := s.client.Disconnect(ctx); err != nil {
		s.logger.Printf("ERROR: Failed to close database connection: %v", err)
		return err
	}
	s.logger.Println("INFO: Database connection closed.")
	return nil
}

// asInt64 copes with the numeric types the server reports sizes as.
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
