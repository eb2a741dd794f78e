package queries

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// priceBucketBoundaries segments the catalog into fixed price bands. The
// final boundary is unbounded so every price lands in a bucket.
func priceBucketBoundaries() bson.A {
	return bson.A{0, 50, 100, 200, 500, 1000, math.Inf(1)}
}

// SalesAnalyticsByPeriod groups revenue and unit counts by a calendar
// period. Unknown period names fall back to yearly grouping. An optional
// category narrows the input set, and includeTrends appends a trend marker
// to each bucket.
func SalesAnalyticsByPeriod(period, category string, includeTrends bool) mongo.Pipeline {
	var pipeline mongo.Pipeline
	if category != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"category": category}}})
	}

	var periodKey interface{}
	switch period {
	case "day":
		periodKey = bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$created_at"}}
	case "week":
		periodKey = bson.M{"$isoWeek": "$created_at"}
	case "month":
		periodKey = bson.M{"$month": "$created_at"}
	case "quarter":
		periodKey = bson.M{"$ceil": bson.M{"$divide": bson.A{bson.M{"$month": "$created_at"}, 3}}}
	default:
		periodKey = bson.M{"$year": "$created_at"}
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$group", Value: bson.M{
			"_id":           periodKey,
			"total_revenue": bson.M{"$sum": bson.M{"$multiply": bson.A{"$price", "$total_sold"}}},
			"total_units":   bson.M{"$sum": "$total_sold"},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
	)
	if includeTrends {
		pipeline = append(pipeline, bson.D{{Key: "$set", Value: bson.M{"trend": "n/a"}}})
	}
	return pipeline
}

// CategoryPerformanceAnalysis ranks categories by total inventory value.
func CategoryPerformanceAnalysis() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":            "$category",
			"total_products": bson.M{"$sum": 1},
			"total_value":    bson.M{"$sum": bson.M{"$multiply": bson.A{"$price", "$stock"}}},
			"avg_price":      bson.M{"$avg": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"total_value": -1}}},
	}
}

// PriceAnalysisByCategory buckets products into fixed price bands.
func PriceAnalysisByCategory() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$bucket", Value: bson.M{
			"groupBy":    "$price",
			"boundaries": priceBucketBoundaries(),
			"default":    "other",
			"output": bson.M{
				"count":     bson.M{"$sum": 1},
				"avg_stock": bson.M{"$avg": "$stock"},
			},
		}}},
	}
}

// TrendingProductsAnalysis lists the best sellers created within the recency
// window ending at now.
func TrendingProductsAnalysis(now time.Time, days int) mongo.Pipeline {
	cutoff := now.AddDate(0, 0, -days)
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": cutoff}}}},
		{{Key: "$sort", Value: bson.M{"total_sold": -1}}},
		{{Key: "$limit", Value: 20}},
	}
}

// InventoryVelocityAnalysis computes units sold per unit in stock. A $max
// guard keeps the divisor at one or more for out-of-stock products.
func InventoryVelocityAnalysis() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$project", Value: bson.M{
			"name":     1,
			"sku":      1,
			"stock":    1,
			"velocity": bson.M{"$divide": bson.A{"$total_sold", bson.M{"$max": bson.A{1, "$stock"}}}},
		}}},
		{{Key: "$sort", Value: bson.M{"velocity": -1}}},
	}
}

// TopSellingProducts returns the highest-selling products with their
// revenue.
func TopSellingProducts(limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.M{"total_sold": -1}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{
			"name":       1,
			"sku":        1,
			"total_sold": 1,
			"price":      1,
			"revenue":    bson.M{"$multiply": bson.A{"$total_sold", "$price"}},
		}}},
	}
}

// RevenueByCategory ranks categories by realized revenue.
func RevenueByCategory() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":            "$category",
			"total_revenue":  bson.M{"$sum": bson.M{"$multiply": bson.A{"$total_sold", "$price"}}},
			"total_products": bson.M{"$sum": 1},
			"avg_price":      bson.M{"$avg": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"total_revenue": -1}}},
	}
}

// LowStockProducts lists products strictly below the threshold, lowest
// stock first.
func LowStockProducts(threshold int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"stock_quantity": bson.M{"$lt": threshold}}}},
		{{Key: "$sort", Value: bson.M{"stock_quantity": 1}}},
		{{Key: "$project", Value: bson.M{
			"name":           1,
			"sku":            1,
			"stock_quantity": 1,
			"price":          1,
			"category":       1,
		}}},
	}
}

// SalesSummary rolls the whole catalog into a single summary document.
func SalesSummary() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":              nil,
			"total_products":   bson.M{"$sum": 1},
			"total_revenue":    bson.M{"$sum": bson.M{"$multiply": bson.A{"$total_sold", "$price"}}},
			"total_units_sold": bson.M{"$sum": "$total_sold"},
			"avg_price":        bson.M{"$avg": "$price"},
			"categories":       bson.M{"$addToSet": "$category"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":              0,
			"total_products":   1,
			"total_revenue":    1,
			"total_units_sold": 1,
			"avg_price":        1,
			"category_count":   bson.M{"$size": "$categories"},
		}}},
	}
}
