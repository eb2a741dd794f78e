package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"product-catalog-mcp/internal/domain"
)

func TestGetInventorySummary_Healthy(t *testing.T) {
	st := &mockStore{}
	st.On("InventorySummary", mock.Anything).Return(domain.InventorySummary{
		TotalProducts:       20,
		TotalValue:          12345.678,
		LowStockProducts:    2,
		OutOfStockProducts:  1,
		CategoriesBreakdown: []domain.CategoryStat{{Category: "electronics", Count: 8}},
		LastUpdated:         time.Now().UTC(),
	})

	tools := NewInventoryTools(st, 10)
	result, err := tools.getInventorySummary(context.Background(), callReq(nil))

	require.NoError(t, err)
	resp := decodeResult(t, result)
	assert.True(t, resp.Success)

	metrics := resp.Data["summary_metrics"].(map[string]interface{})
	assert.Equal(t, 20.0, metrics["total_products"])
	assert.Equal(t, 12345.68, metrics["total_inventory_value"])

	health := resp.Data["health_indicators"].(map[string]interface{})
	assert.Equal(t, "healthy", health["stock_health"])
	// 19 of 20 products in stock.
	assert.Equal(t, 95.0, health["availability_rate"])
	assert.Equal(t, 10.0, health["low_stock_threshold"])
}

func TestGetInventorySummary_NeedsAttention(t *testing.T) {
	st := &mockStore{}
	st.On("InventorySummary", mock.Anything).Return(domain.InventorySummary{
		TotalProducts:    10,
		LowStockProducts: 5,
	})

	tools := NewInventoryTools(st, 10)
	result, err := tools.getInventorySummary(context.Background(), callReq(nil))

	require.NoError(t, err)
	resp := decodeResult(t, result)
	health := resp.Data["health_indicators"].(map[string]interface{})
	assert.Equal(t, "needs_attention", health["stock_health"])
}

func TestGetInventorySummary_EmptyCatalog(t *testing.T) {
	st := &mockStore{}
	st.On("InventorySummary", mock.Anything).Return(domain.InventorySummary{})

	tools := NewInventoryTools(st, 10)
	result, err := tools.getInventorySummary(context.Background(), callReq(nil))

	require.NoError(t, err)
	resp := decodeResult(t, result)
	health := resp.Data["health_indicators"].(map[string]interface{})
	assert.Equal(t, 0.0, health["availability_rate"])
}

func TestCheckLowStock_GroupsByUrgency(t *testing.T) {
	st := &mockStore{}
	st.On("Aggregate", mock.Anything, mock.Anything).Return([]bson.M{
		{"name": "A", "urgency_level": "critical"},
		{"name": "B", "urgency_level": "high"},
		{"name": "C", "urgency_level": "high"},
		{"name": "D", "urgency_level": "something_else"},
	}, nil)

	tools := NewInventoryTools(st, 10)
	result, err := tools.checkLowStock(context.Background(), callReq(nil))

	require.NoError(t, err)
	resp := decodeResult(t, result)
	assert.True(t, resp.Success)
	assert.Equal(t, "Low stock analysis completed (threshold: 10)", resp.Message)
	assert.Equal(t, 4.0, resp.Data["total_low_stock"])

	breakdown := resp.Data["urgency_breakdown"].(map[string]interface{})
	assert.Equal(t, 1.0, breakdown["critical"])
	assert.Equal(t, 2.0, breakdown["high"])
	assert.Equal(t, 0.0, breakdown["medium"])
	// An unknown urgency level folds into the low group.
	assert.Equal(t, 1.0, breakdown["low"])

	recs := resp.Data["recommendations"].(map[string]interface{})
	assert.Equal(t, 1.0, recs["immediate_action_needed"])
	assert.Equal(t, 2.0, recs["urgent_restock"])
}

func TestCheckLowStock_NegativeThreshold(t *testing.T) {
	st := &mockStore{}
	tools := NewInventoryTools(st, 10)

	result, err := tools.checkLowStock(context.Background(), callReq(map[string]interface{}{
		"threshold": -1,
	}))

	require.NoError(t, err)
	resp := decodeResult(t, result)
	assert.Equal(t, "Stock threshold must be non-negative", resp.Error)
	st.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
}

func TestUpdateStock_Increase(t *testing.T) {
	st := &mockStore{}
	product := sampleProduct()
	updated := *product
	updated.Stock = 75
	st.On("GetProductByID", mock.Anything, product.ID.Hex()).Return(product, nil)
	st.On("UpdateProduct", mock.Anything, product.ID.Hex(), mock.MatchedBy(func(u *domain.ProductUpdate) bool {
		return u.Stock != nil && *u.Stock == 75 && u.Price == nil
	})).Return(&updated, nil)

	tools := NewInventoryTools(st, 10)
	result, err := tools.updateStock(context.Background(), callReq(map[string]interface{}{
		"identifier": product.ID.Hex(),
		"new_stock":  "75",
	}))

	require.NoError(t, err)
	resp := decodeResult(t, result)
	assert.True(t, resp.Success)

	change := resp.Data["stock_change"].(map[string]interface{})
	assert.Equal(t, 50.0, change["old_stock"])
	assert.Equal(t, 75.0, change["new_stock"])
	assert.Equal(t, 25.0, change["change"])
	assert.Equal(t, "increased", change["change_type"])
	assert.Empty(t, resp.Data["alerts"])
}

func TestUpdateStock_ToZeroRaisesAlert(t *testing.T) {
	st := &mockStore{}
	product := sampleProduct()
	updated := *product
	updated.Stock = 0
	st.On("GetProductByID", mock.Anything, product.ID.Hex()).Return(product, nil)
	st.On("UpdateProduct", mock.Anything, product.ID.Hex(), mock.Anything).Return(&updated, nil)

	tools := NewInventoryTools(st, 10)
	result, err := tools.updateStock(context.Background(), callReq(map[string]interface{}{
		"identifier": product.ID.Hex(),
		"new_stock":  "0",
	}))

	require.NoError(t, err)
	resp := decodeResult(t, result)
	alerts := resp.Data["alerts"].([]interface{})
	require.Len(t, alerts, 1)
	assert.Equal(t, "CRITICAL: Product is now out of stock", alerts[0])

	change := resp.Data["stock_change"].(map[string]interface{})
	assert.Equal(t, "decreased", change["change_type"])
}

func TestUpdateStock_BelowThresholdWarns(t *testing.T) {
	st := &mockStore{}
	product := sampleProduct()
	updated := *product
	updated.Stock = 7
	st.On("GetProductByID", mock.Anything, product.ID.Hex()).Return(product, nil)
	st.On("UpdateProduct", mock.Anything, product.ID.Hex(), mock.Anything).Return(&updated, nil)

	tools := NewInventoryTools(st, 10)
	result, err := tools.updateStock(context.Background(), callReq(map[string]interface{}{
		"identifier": product.ID.Hex(),
		"new_stock":  "7",
	}))

	require.NoError(t, err)
	resp := decodeResult(t, result)
	alerts := resp.Data["alerts"].([]interface{})
	require.Len(t, alerts, 1)
	assert.Equal(t, "WARNING: Stock is below threshold (10)", alerts[0])
}

func TestUpdateStock_NegativeQuantity(t *testing.T) {
	st := &mockStore{}
	tools := NewInventoryTools(st, 10)

	result, err := tools.updateStock(context.Background(), callReq(map[string]interface{}{
		"identifier": "ELEC-WH-001",
		"new_stock":  "-5",
		"by_sku":     true,
	}))

	require.NoError(t, err)
	resp := decodeResult(t, result)
	assert.Equal(t, "Stock quantity cannot be negative", resp.Error)
	st.AssertNotCalled(t, "GetProductBySKU", mock.Anything, mock.Anything)
}

func TestUpdateStock_InvalidFormat(t *testing.T) {
	st := &mockStore{}
	tools := NewInventoryTools(st, 10)

	result, err := tools.updateStock(context.Background(), callReq(map[string]interface{}{
		"identifier": "ELEC-WH-001",
		"new_stock":  "many",
	}))

	require.NoError(t, err)
	resp := decodeResult(t, result)
	assert.Equal(t, "Invalid stock format: 'many'. Stock must be a valid integer.", resp.Error)
}

func TestAnalyzeInventoryTurnover_DaysBounds(t *testing.T) {
	st := &mockStore{}
	tools := NewInventoryTools(st, 10)

	for _, days := range []int{0, 366, -10} {
		result, err := tools.analyzeInventoryTurnover(context.Background(), callReq(map[string]interface{}{
			"days": days,
		}))
		require.NoError(t, err)
		resp := decodeResult(t, result)
		assert.Equal(t, "Days parameter must be between 1 and 365", resp.Error, "days=%d", days)
	}
	st.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
}

func TestAnalyzeInventoryTurnover_GroupsByClassification(t *testing.T) {
	st := &mockStore{}
	st.On("Aggregate", mock.Anything, mock.Anything).Return([]bson.M{
		{"name": "A", "turnover_classification": "fast_moving"},
		{"name": "B", "turnover_classification": "slow_moving"},
		{"name": "C", "turnover_classification": "out_of_stock"},
	}, nil)

	tools := NewInventoryTools(st, 10)
	result, err := tools.analyzeInventoryTurnover(context.Background(), callReq(nil))

	require.NoError(t, err)
	resp := decodeResult(t, result)
	assert.Equal(t, "Inventory turnover analysis for 90 days", resp.Message)

	breakdown := resp.Data["turnover_breakdown"].(map[string]interface{})
	assert.Equal(t, 1.0, breakdown["fast_moving"])
	assert.Equal(t, 0.0, breakdown["medium_moving"])
	assert.Equal(t, 1.0, breakdown["slow_moving"])
	assert.Equal(t, 1.0, breakdown["out_of_stock"])
}

func TestGetStockAlertsDashboard(t *testing.T) {
	st := &mockStore{}
	st.On("Aggregate", mock.Anything, mock.Anything).Return([]bson.M{
		{"stock_info": bson.M{"alert_level": "critical"}},
		{"stock_info": bson.M{"alert_level": "overstocked"}},
		{"stock_info": bson.M{"alert_level": "overstocked"}},
	}, nil)

	tools := NewInventoryTools(st, 10)
	result, err := tools.getStockAlertsDashboard(context.Background(), callReq(nil))

	require.NoError(t, err)
	resp := decodeResult(t, result)
	assert.True(t, resp.Success)
	assert.Equal(t, 3.0, resp.Data["total_alerts"])

	summary := resp.Data["alert_summary"].(map[string]interface{})
	assert.Equal(t, 1.0, summary["critical"])
	assert.Equal(t, 2.0, summary["overstocked"])
	assert.Equal(t, 0.0, summary["high"])
}

func TestGetStockDistribution_StoreError(t *testing.T) {
	st := &mockStore{}
	st.On("Aggregate", mock.Anything, mock.Anything).Return(nil, errors.New("aggregation failed"))

	tools := NewInventoryTools(st, 10)
	result, err := tools.getStockDistribution(context.Background(), callReq(nil))

	require.NoError(t, err)
	resp := decodeResult(t, result)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "Internal error")
}
