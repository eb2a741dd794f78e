package queries

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func pctRounded(numerator, denominator interface{}, places int) bson.M {
	return bson.M{
		"$round": bson.A{
			bson.M{"$multiply": bson.A{
				bson.M{"$divide": bson.A{numerator, denominator}},
				100,
			}},
			places,
		},
	}
}

// ExecutiveDashboardSummary assembles headline metrics, category and status
// breakdowns, and the top stock alerts in a single facet pass.
func ExecutiveDashboardSummary() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"overall_metrics": bson.A{
				bson.M{"$group": bson.M{
					"_id":                   nil,
					"total_products":        bson.M{"$sum": 1},
					"total_inventory_value": bson.M{"$sum": bson.M{"$multiply": bson.A{"$price", "$stock"}}},
					"avg_product_price":     bson.M{"$avg": "$price"},
					"total_stock_units":     bson.M{"$sum": "$stock"},
				}},
			},
			"category_breakdown": bson.A{
				bson.M{"$group": bson.M{
					"_id":   "$category",
					"count": bson.M{"$sum": 1},
					"value": bson.M{"$sum": bson.M{"$multiply": bson.A{"$price", "$stock"}}},
				}},
				bson.M{"$sort": bson.M{"value": -1}},
			},
			"status_breakdown": bson.A{
				bson.M{"$group": bson.M{
					"_id":   "$status",
					"count": bson.M{"$sum": 1},
					"value": bson.M{"$sum": bson.M{"$multiply": bson.A{"$price", "$stock"}}},
				}},
			},
			"alerts": bson.A{
				bson.M{"$match": bson.M{
					"$or": bson.A{
						bson.M{"stock": 0},
						bson.M{"stock": bson.M{"$lte": 10}},
					},
				}},
				bson.M{"$project": bson.M{
					"name":  1,
					"sku":   1,
					"stock": 1,
					"alert_type": bson.M{
						"$cond": bson.A{
							bson.M{"$eq": bson.A{"$stock", 0}},
							"out_of_stock",
							"low_stock",
						},
					},
				}},
				bson.M{"$limit": 10},
			},
		}}},
	}
}

// FinancialPerformanceReport breaks inventory value down by recency,
// category, and price segment. Products created within the window ending at
// now count as recent.
func FinancialPerformanceReport(now time.Time, days int) mongo.Pipeline {
	cutoff := now.AddDate(0, 0, -days)

	return mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{
			"is_recent":       bson.M{"$gte": bson.A{"$created_at", cutoff}},
			"inventory_value": bson.M{"$multiply": bson.A{"$price", "$stock"}},
		}}},
		{{Key: "$facet", Value: bson.M{
			"current_period": bson.A{
				bson.M{"$group": bson.M{
					"_id":         nil,
					"total_value": bson.M{"$sum": "$inventory_value"},
					"new_products_value": bson.M{"$sum": bson.M{
						"$cond": bson.A{"$is_recent", "$inventory_value", 0},
					}},
					"avg_price": bson.M{"$avg": "$price"},
					"price_distribution": bson.M{"$push": bson.M{
						"category": "$category",
						"price":    "$price",
						"value":    "$inventory_value",
					}},
				}},
			},
			"category_financials": bson.A{
				bson.M{"$group": bson.M{
					"_id":           "$category",
					"total_value":   bson.M{"$sum": "$inventory_value"},
					"avg_price":     bson.M{"$avg": "$price"},
					"product_count": bson.M{"$sum": 1},
					"new_products": bson.M{"$sum": bson.M{
						"$cond": bson.A{"$is_recent", 1, 0},
					}},
				}},
				bson.M{"$project": bson.M{
					"category": "$_id",
					"financial_metrics": bson.M{
						"total_value":   bson.M{"$round": bson.A{"$total_value", 2}},
						"avg_price":     bson.M{"$round": bson.A{"$avg_price", 2}},
						"product_count": "$product_count",
						"value_per_product": bson.M{"$round": bson.A{
							bson.M{"$divide": bson.A{"$total_value", "$product_count"}},
							2,
						}},
					},
					"growth_indicators": bson.M{
						"new_products": "$new_products",
						"growth_rate":  pctRounded("$new_products", "$product_count", 1),
					},
					"_id": 0,
				}},
				bson.M{"$sort": bson.M{"financial_metrics.total_value": -1}},
			},
			"price_segments": bson.A{
				bson.M{"$bucket": bson.M{
					"groupBy":    "$price",
					"boundaries": priceBucketBoundaries(),
					"default":    "other",
					"output": bson.M{
						"count":       bson.M{"$sum": 1},
						"total_value": bson.M{"$sum": "$inventory_value"},
						"avg_stock":   bson.M{"$avg": "$stock"},
					},
				}},
			},
		}}},
	}
}

// OperationalEfficiencyReport computes per-category availability and
// premium-product ratios, SKU hygiene metrics, and the share of the catalog
// held by each category.
func OperationalEfficiencyReport() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{
			"stock_efficiency": bson.M{
				"$cond": bson.A{
					bson.M{"$eq": bson.A{"$stock", 0}},
					0,
					bson.M{"$divide": bson.A{
						bson.M{"$multiply": bson.A{"$price", "$stock"}},
						"$stock",
					}},
				},
			},
			"category_value_density": bson.M{"$multiply": bson.A{"$price", "$stock"}},
			"sku_efficiency":         bson.M{"$strLenCP": "$sku"},
		}}},
		{{Key: "$facet", Value: bson.M{
			"inventory_efficiency": bson.A{
				bson.M{"$group": bson.M{
					"_id":                  "$category",
					"avg_stock_efficiency": bson.M{"$avg": "$stock_efficiency"},
					"total_products":       bson.M{"$sum": 1},
					"zero_stock_count": bson.M{"$sum": bson.M{
						"$cond": bson.A{bson.M{"$eq": bson.A{"$stock", 0}}, 1, 0},
					}},
					"high_value_count": bson.M{"$sum": bson.M{
						"$cond": bson.A{bson.M{"$gt": bson.A{"$price", 200}}, 1, 0},
					}},
				}},
				bson.M{"$project": bson.M{
					"category": "$_id",
					"efficiency_metrics": bson.M{
						"stock_efficiency": bson.M{"$round": bson.A{"$avg_stock_efficiency", 2}},
						"availability_rate": pctRounded(
							bson.M{"$subtract": bson.A{"$total_products", "$zero_stock_count"}},
							"$total_products", 1,
						),
						"premium_product_ratio": pctRounded("$high_value_count", "$total_products", 1),
					},
					"_id": 0,
				}},
				bson.M{"$sort": bson.M{"efficiency_metrics.stock_efficiency": -1}},
			},
			"sku_management": bson.A{
				bson.M{"$group": bson.M{
					"_id":            nil,
					"avg_sku_length": bson.M{"$avg": "$sku_efficiency"},
					"total_skus":     bson.M{"$sum": 1},
					"unique_skus":    bson.M{"$addToSet": "$sku"},
				}},
				bson.M{"$project": bson.M{
					"sku_metrics": bson.M{
						"avg_sku_length":   bson.M{"$round": bson.A{"$avg_sku_length", 1}},
						"total_skus":       "$total_skus",
						"unique_sku_count": bson.M{"$size": "$unique_skus"},
						"sku_uniqueness":   pctRounded(bson.M{"$size": "$unique_skus"}, "$total_skus", 2),
					},
					"_id": 0,
				}},
			},
			"category_distribution": bson.A{
				bson.M{"$group": bson.M{
					"_id":   "$category",
					"count": bson.M{"$sum": 1},
				}},
				bson.M{"$group": bson.M{
					"_id": nil,
					"categories": bson.M{"$push": bson.M{
						"category": "$_id",
						"count":    "$count",
					}},
					"total": bson.M{"$sum": "$count"},
				}},
				bson.M{"$project": bson.M{
					"distribution_metrics": bson.M{
						"$map": bson.M{
							"input": "$categories",
							"as":    "cat",
							"in": bson.M{
								"category":   "$$cat.category",
								"count":      "$$cat.count",
								"percentage": pctRounded("$$cat.count", "$total", 1),
							},
						},
					},
					"_id": 0,
				}},
			},
		}}},
	}
}

// ComplianceAuditReport audits data quality: description and tag coverage,
// SKU format compliance, and price sanity, with a capped list of offending
// products.
func ComplianceAuditReport() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{
			"has_description": bson.M{"$ne": bson.A{"$description", nil}},
			"has_tags":        bson.M{"$gt": bson.A{bson.M{"$size": "$tags"}, 0}},
			"sku_valid": bson.M{"$regexMatch": bson.M{
				"input": "$sku",
				"regex": "^[A-Z0-9_-]+$",
			}},
			"price_reasonable": bson.M{"$and": bson.A{
				bson.M{"$gt": bson.A{"$price", 0}},
				bson.M{"$lt": bson.A{"$price", 10000}},
			}},
		}}},
		{{Key: "$facet", Value: bson.M{
			"data_quality": bson.A{
				bson.M{"$group": bson.M{
					"_id":               nil,
					"total_products":    bson.M{"$sum": 1},
					"with_description":  bson.M{"$sum": bson.M{"$cond": bson.A{"$has_description", 1, 0}}},
					"with_tags":         bson.M{"$sum": bson.M{"$cond": bson.A{"$has_tags", 1, 0}}},
					"valid_skus":        bson.M{"$sum": bson.M{"$cond": bson.A{"$sku_valid", 1, 0}}},
					"reasonable_prices": bson.M{"$sum": bson.M{"$cond": bson.A{"$price_reasonable", 1, 0}}},
				}},
				bson.M{"$project": bson.M{
					"quality_metrics": bson.M{
						"description_coverage": pctRounded("$with_description", "$total_products", 1),
						"tag_coverage":         pctRounded("$with_tags", "$total_products", 1),
						"sku_compliance":       pctRounded("$valid_skus", "$total_products", 1),
						"price_validity":       pctRounded("$reasonable_prices", "$total_products", 1),
					},
					"_id": 0,
				}},
			},
			"compliance_issues": bson.A{
				bson.M{"$match": bson.M{
					"$or": bson.A{
						bson.M{"has_description": false},
						bson.M{"has_tags": false},
						bson.M{"sku_valid": false},
						bson.M{"price_reasonable": false},
					},
				}},
				bson.M{"$project": bson.M{
					"product": bson.M{
						"name":     "$name",
						"sku":      "$sku",
						"category": "$category",
					},
					"issues": bson.M{"$filter": bson.M{
						"input": bson.A{
							bson.M{"type": "missing_description", "has_issue": bson.M{"$not": "$has_description"}},
							bson.M{"type": "missing_tags", "has_issue": bson.M{"$not": "$has_tags"}},
							bson.M{"type": "invalid_sku", "has_issue": bson.M{"$not": "$sku_valid"}},
							bson.M{"type": "unreasonable_price", "has_issue": bson.M{"$not": "$price_reasonable"}},
						},
						"cond": "$$this.has_issue",
					}},
				}},
				bson.M{"$limit": 50},
			},
		}}},
	}
}
