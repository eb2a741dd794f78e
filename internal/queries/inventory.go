// Package queries is a catalog of parameterized aggregation pipelines for
// the product collection. Every function is stateless and deterministic
// given its inputs: it builds a declarative pipeline specification and never
// touches the store. Time-dependent pipelines take the reference time as a
// parameter.
package queries

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const millisPerDay = 1000 * 60 * 60 * 24

// LowStockAnalysis classifies products at or below the stock threshold by
// urgency and scores their reorder priority (price x stock shortfall).
// Discontinued products are excluded.
func LowStockAnalysis(threshold int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"stock":  bson.M{"$lte": threshold},
			"status": bson.M{"$ne": "discontinued"},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"urgency_level": bson.M{
				"$switch": bson.M{
					"branches": bson.A{
						bson.M{"case": bson.M{"$eq": bson.A{"$stock", 0}}, "then": "critical"},
						bson.M{"case": bson.M{"$lte": bson.A{"$stock", 5}}, "then": "high"},
						bson.M{"case": bson.M{"$lte": bson.A{"$stock", threshold}}, "then": "medium"},
					},
					"default": "low",
				},
			},
			"reorder_priority": bson.M{
				"$multiply": bson.A{
					"$price",
					bson.M{"$subtract": bson.A{threshold, "$stock"}},
				},
			},
		}}},
		{{Key: "$project", Value: bson.M{
			"name":             1,
			"sku":              1,
			"category":         1,
			"current_stock":    "$stock",
			"price":            1,
			"urgency_level":    1,
			"reorder_priority": bson.M{"$round": bson.A{"$reorder_priority", 2}},
			"estimated_days_left": bson.M{
				"$cond": bson.A{
					bson.M{"$eq": bson.A{"$stock", 0}},
					0,
					bson.M{"$multiply": bson.A{"$stock", 30}},
				},
			},
			"potential_lost_revenue": bson.M{
				"$round": bson.A{
					bson.M{"$multiply": bson.A{
						"$price",
						bson.M{"$subtract": bson.A{threshold, "$stock"}},
					}},
					2,
				},
			},
		}}},
		{{Key: "$sort", Value: bson.M{"reorder_priority": -1}}},
	}
}

// StockDistributionByCategory summarizes stock health and concentration per
// category.
func StockDistributionByCategory(threshold int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":                   "$category",
			"total_stock":           bson.M{"$sum": "$stock"},
			"total_products":        bson.M{"$sum": 1},
			"avg_stock_per_product": bson.M{"$avg": "$stock"},
			"stock_values":          bson.M{"$push": "$stock"},
			"total_stock_value": bson.M{"$sum": bson.M{
				"$multiply": bson.A{"$stock", "$price"},
			}},
			"zero_stock_count": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$stock", 0}}, 1, 0},
			}},
			"low_stock_count": bson.M{"$sum": bson.M{
				"$cond": bson.A{
					bson.M{"$and": bson.A{
						bson.M{"$gt": bson.A{"$stock", 0}},
						bson.M{"$lte": bson.A{"$stock", threshold}},
					}},
					1, 0,
				},
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"category":              "$_id",
			"total_stock":           1,
			"total_products":        1,
			"avg_stock_per_product": bson.M{"$round": bson.A{"$avg_stock_per_product", 1}},
			"total_stock_value":     bson.M{"$round": bson.A{"$total_stock_value", 2}},
			"stock_health": bson.M{
				"zero_stock_products": "$zero_stock_count",
				"low_stock_products":  "$low_stock_count",
				"healthy_stock_products": bson.M{
					"$subtract": bson.A{
						"$total_products",
						bson.M{"$add": bson.A{"$zero_stock_count", "$low_stock_count"}},
					},
				},
			},
			"stock_concentration": bson.M{
				"min": bson.M{"$min": "$stock_values"},
				"max": bson.M{"$max": "$stock_values"},
				"median": bson.M{
					"$arrayElemAt": bson.A{
						bson.M{"$slice": bson.A{
							bson.M{"$sortArray": bson.M{"input": "$stock_values", "sortBy": 1}},
							bson.M{"$floor": bson.M{"$divide": bson.A{"$total_products", 2}}},
							1,
						}},
						0,
					},
				},
			},
			"_id": 0,
		}}},
		{{Key: "$sort", Value: bson.M{"total_stock_value": -1}}},
	}
}

// InventoryTurnoverAnalysis scores how fast inventory moves relative to its
// age. The turnover score guards against division by zero for out-of-stock
// products.
func InventoryTurnoverAnalysis(now time.Time) mongo.Pipeline {
	daysInInventory := bson.M{
		"$divide": bson.A{
			bson.M{"$subtract": bson.A{now, "$created_at"}},
			millisPerDay,
		},
	}

	return mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{
			"days_in_inventory": daysInInventory,
			"inventory_value":   bson.M{"$multiply": bson.A{"$stock", "$price"}},
			"turnover_score": bson.M{
				"$cond": bson.A{
					bson.M{"$eq": bson.A{"$stock", 0}},
					0,
					bson.M{"$divide": bson.A{
						bson.M{"$multiply": bson.A{"$price", 365}},
						bson.M{"$multiply": bson.A{
							daysInInventory,
							bson.M{"$multiply": bson.A{"$stock", "$price"}},
						}},
					}},
				},
			},
		}}},
		{{Key: "$project", Value: bson.M{
			"name":              1,
			"sku":               1,
			"category":          1,
			"stock":             1,
			"price":             1,
			"inventory_value":   bson.M{"$round": bson.A{"$inventory_value", 2}},
			"days_in_inventory": bson.M{"$round": bson.A{"$days_in_inventory", 0}},
			"turnover_classification": bson.M{
				"$switch": bson.M{
					"branches": bson.A{
						bson.M{"case": bson.M{"$eq": bson.A{"$stock", 0}}, "then": "out_of_stock"},
						bson.M{"case": bson.M{"$gt": bson.A{"$days_in_inventory", 180}}, "then": "slow_moving"},
						bson.M{"case": bson.M{"$gt": bson.A{"$days_in_inventory", 90}}, "then": "medium_moving"},
						bson.M{"case": bson.M{"$lte": bson.A{"$days_in_inventory", 90}}, "then": "fast_moving"},
					},
					"default": "unknown",
				},
			},
			"restock_recommendation": bson.M{
				"$switch": bson.M{
					"branches": bson.A{
						bson.M{"case": bson.M{"$eq": bson.A{"$stock", 0}}, "then": "urgent_restock"},
						bson.M{"case": bson.M{"$lte": bson.A{"$stock", 5}}, "then": "restock_soon"},
						bson.M{"case": bson.M{"$gt": bson.A{"$days_in_inventory", 180}}, "then": "reduce_stock"},
						bson.M{"case": bson.M{"$gt": bson.A{"$days_in_inventory", 90}}, "then": "monitor_closely"},
					},
					"default": "maintain_current",
				},
			},
		}}},
		{{Key: "$sort", Value: bson.M{"days_in_inventory": -1}}},
	}
}

// WarehouseSpaceUtilization measures value density per category.
func WarehouseSpaceUtilization() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":            "$category",
			"total_units":    bson.M{"$sum": "$stock"},
			"total_value":    bson.M{"$sum": bson.M{"$multiply": bson.A{"$stock", "$price"}}},
			"product_count":  bson.M{"$sum": 1},
			"avg_unit_value": bson.M{"$avg": "$price"},
		}}},
		{{Key: "$project", Value: bson.M{
			"category": "$_id",
			"space_metrics": bson.M{
				"total_units":   "$total_units",
				"total_value":   bson.M{"$round": bson.A{"$total_value", 2}},
				"product_count": "$product_count",
				"avg_units_per_product": bson.M{
					"$round": bson.A{
						bson.M{"$divide": bson.A{"$total_units", "$product_count"}},
						1,
					},
				},
				"value_density": bson.M{
					"$round": bson.A{
						bson.M{"$divide": bson.A{"$total_value", "$total_units"}},
						2,
					},
				},
			},
			"efficiency_score": bson.M{
				"$round": bson.A{
					bson.M{"$multiply": bson.A{
						bson.M{"$divide": bson.A{"$total_value", "$total_units"}},
						bson.M{"$sqrt": "$product_count"},
					}},
					2,
				},
			},
			"_id": 0,
		}}},
		{{Key: "$sort", Value: bson.M{"efficiency_score": -1}}},
	}
}

// StockAlertDashboard produces prioritized stock alerts, including an
// overstocked class for stock at or above 100 units. Products in a normal
// state are filtered out.
func StockAlertDashboard(threshold int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{
			"alert_level": bson.M{
				"$switch": bson.M{
					"branches": bson.A{
						bson.M{"case": bson.M{"$eq": bson.A{"$stock", 0}}, "then": "critical"},
						bson.M{"case": bson.M{"$lte": bson.A{"$stock", 3}}, "then": "high"},
						bson.M{"case": bson.M{"$lte": bson.A{"$stock", threshold}}, "then": "medium"},
						bson.M{"case": bson.M{"$gte": bson.A{"$stock", 100}}, "then": "overstocked"},
					},
					"default": "normal",
				},
			},
			"financial_impact": bson.M{"$multiply": bson.A{"$price", "$stock"}},
			"action_priority": bson.M{
				"$switch": bson.M{
					"branches": bson.A{
						bson.M{"case": bson.M{"$eq": bson.A{"$stock", 0}}, "then": 10},
						bson.M{"case": bson.M{"$lte": bson.A{"$stock", 3}}, "then": 8},
						bson.M{"case": bson.M{"$lte": bson.A{"$stock", threshold}}, "then": 5},
						bson.M{"case": bson.M{"$gte": bson.A{"$stock", 100}}, "then": 3},
					},
					"default": 1,
				},
			},
		}}},
		{{Key: "$match", Value: bson.M{
			"alert_level": bson.M{"$ne": "normal"},
		}}},
		{{Key: "$project", Value: bson.M{
			"product_info": bson.M{
				"name":     "$name",
				"sku":      "$sku",
				"category": "$category",
			},
			"stock_info": bson.M{
				"current_stock":    "$stock",
				"alert_level":      "$alert_level",
				"price":            "$price",
				"financial_impact": bson.M{"$round": bson.A{"$financial_impact", 2}},
			},
			"recommendations": bson.M{
				"$switch": bson.M{
					"branches": bson.A{
						bson.M{
							"case": bson.M{"$eq": bson.A{"$alert_level", "critical"}},
							"then": bson.A{"immediate_restock", "check_supplier", "notify_sales"},
						},
						bson.M{
							"case": bson.M{"$eq": bson.A{"$alert_level", "high"}},
							"then": bson.A{"schedule_restock", "contact_supplier"},
						},
						bson.M{
							"case": bson.M{"$eq": bson.A{"$alert_level", "medium"}},
							"then": bson.A{"plan_restock", "monitor_sales"},
						},
						bson.M{
							"case": bson.M{"$eq": bson.A{"$alert_level", "overstocked"}},
							"then": bson.A{"review_demand", "consider_promotion", "reduce_orders"},
						},
					},
					"default": bson.A{"monitor"},
				},
			},
			"action_priority": 1,
		}}},
		{{Key: "$sort", Value: bson.M{"action_priority": -1}}},
	}
}
