package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.mongodb.org/mongo-driver/bson"

	"product-catalog-mcp/internal/domain"
	"product-catalog-mcp/internal/queries"
	"product-catalog-mcp/internal/store"
)

// InventoryTools holds dependencies for the stock management tools.
type InventoryTools struct {
	store     store.ProductStorer
	threshold int
}

// NewInventoryTools creates an InventoryTools using the configured low-stock
// threshold as the default for threshold-taking tools.
func NewInventoryTools(st store.ProductStorer, threshold int) *InventoryTools {
	return &InventoryTools{store: st, threshold: threshold}
}

// Register adds the inventory tools to the MCP server.
func (t *InventoryTools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("get_inventory_summary",
		mcp.WithDescription("Get a comprehensive inventory summary with key metrics."),
	), t.getInventorySummary)

	s.AddTool(mcp.NewTool("check_low_stock",
		mcp.WithDescription("Check for products with low stock levels."),
		mcp.WithNumber("threshold", mcp.Description("Custom stock threshold (configured default when omitted)")),
	), t.checkLowStock)

	s.AddTool(mcp.NewTool("update_stock",
		mcp.WithDescription("Update the stock level for a specific product."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Product ID or SKU")),
		mcp.WithString("new_stock", mcp.Required(), mcp.Description("New stock quantity as string (converted to an integer, non-negative)")),
		mcp.WithBoolean("by_sku", mcp.Description("If true, identify the product by SKU; otherwise by ID")),
	), t.updateStock)

	s.AddTool(mcp.NewTool("get_stock_distribution",
		mcp.WithDescription("Analyze stock distribution across categories."),
	), t.getStockDistribution)

	s.AddTool(mcp.NewTool("analyze_inventory_turnover",
		mcp.WithDescription("Analyze inventory turnover and product velocity."),
		mcp.WithNumber("days", mcp.Description("Number of days for the turnover analysis (1-365)")),
	), t.analyzeInventoryTurnover)

	s.AddTool(mcp.NewTool("get_stock_alerts_dashboard",
		mcp.WithDescription("Get a prioritized stock alerts dashboard with recommendations."),
	), t.getStockAlertsDashboard)
}

func (t *InventoryTools) getInventorySummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary := t.store.InventorySummary(ctx)

	stockHealth := "healthy"
	if summary.LowStockProducts >= 5 {
		stockHealth = "needs_attention"
	}
	divisor := summary.TotalProducts
	if divisor < 1 {
		divisor = 1
	}
	availabilityRate := math.Round(float64(summary.TotalProducts-summary.OutOfStockProducts)/float64(divisor)*1000) / 10

	return resultOK("Inventory summary generated", map[string]interface{}{
		"summary_metrics": map[string]interface{}{
			"total_products":        summary.TotalProducts,
			"total_inventory_value": math.Round(summary.TotalValue*100) / 100,
			"low_stock_alerts":      summary.LowStockProducts,
			"out_of_stock_alerts":   summary.OutOfStockProducts,
		},
		"categories_breakdown": summary.CategoriesBreakdown,
		"health_indicators": map[string]interface{}{
			"stock_health":        stockHealth,
			"availability_rate":   availabilityRate,
			"low_stock_threshold": t.threshold,
		},
		"last_updated": summary.LastUpdated,
	}), nil
}

func (t *InventoryTools) checkLowStock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	threshold := req.GetInt("threshold", t.threshold)
	if threshold < 0 {
		return resultErr("Stock threshold must be non-negative"), nil
	}

	results, err := t.store.Aggregate(ctx, queries.LowStockAnalysis(threshold))
	if err != nil {
		log.Printf("ERROR: Low stock analysis failed: %v", err)
		return resultErr("Internal error: %v", err), nil
	}

	urgencyGroups := map[string][]bson.M{
		"critical": {},
		"high":     {},
		"medium":   {},
		"low":      {},
	}
	for _, product := range results {
		urgency, _ := product["urgency_level"].(string)
		if _, ok := urgencyGroups[urgency]; !ok {
			urgency = "low"
		}
		urgencyGroups[urgency] = append(urgencyGroups[urgency], product)
	}

	breakdown := make(map[string]int, len(urgencyGroups))
	for level, products := range urgencyGroups {
		breakdown[level] = len(products)
	}

	return resultOK(fmt.Sprintf("Low stock analysis completed (threshold: %d)", threshold), map[string]interface{}{
		"threshold_used":      threshold,
		"total_low_stock":     len(results),
		"urgency_breakdown":   breakdown,
		"products_by_urgency": urgencyGroups,
		"recommendations": map[string]interface{}{
			"immediate_action_needed": len(urgencyGroups["critical"]),
			"urgent_restock":          len(urgencyGroups["high"]),
			"plan_restock":            len(urgencyGroups["medium"]),
		},
	}), nil
}

func (t *InventoryTools) updateStock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return resultErr("Missing required argument: identifier"), nil
	}
	stockStr, err := req.RequireString("new_stock")
	if err != nil {
		return resultErr("Missing required argument: new_stock"), nil
	}
	newStock, err := strconv.Atoi(stockStr)
	if err != nil {
		return resultErr("Invalid stock format: '%s'. Stock must be a valid integer.", stockStr), nil
	}
	if newStock < 0 {
		return resultErr("Stock quantity cannot be negative"), nil
	}

	product, errResult := findProduct(ctx, t.store, identifier, req.GetBool("by_sku", false))
	if errResult != nil {
		return errResult, nil
	}
	oldStock := product.Stock

	updated, err := t.store.UpdateProduct(ctx, product.ID.Hex(), &domain.ProductUpdate{Stock: &newStock})
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return resultErr("Product not found with ID: %s", product.ID.Hex()), nil
		}
		log.Printf("ERROR: Stock update for %s failed: %v", product.ID.Hex(), err)
		return resultErr("Failed to update stock"), nil
	}

	change := newStock - oldStock
	changeType := "unchanged"
	switch {
	case change > 0:
		changeType = "increased"
	case change < 0:
		changeType = "decreased"
	}

	alerts := []string{}
	if newStock == 0 {
		alerts = append(alerts, "CRITICAL: Product is now out of stock")
	} else if newStock <= t.threshold {
		alerts = append(alerts, fmt.Sprintf("WARNING: Stock is below threshold (%d)", t.threshold))
	}

	return resultOK(fmt.Sprintf("Stock updated for '%s'", updated.Name), map[string]interface{}{
		"product": map[string]interface{}{
			"name": updated.Name,
			"sku":  updated.SKU,
			"id":   updated.ID.Hex(),
		},
		"stock_change": map[string]interface{}{
			"old_stock":   oldStock,
			"new_stock":   newStock,
			"change":      change,
			"change_type": changeType,
		},
		"alerts":     alerts,
		"updated_at": updated.UpdatedAt,
	}), nil
}

func (t *InventoryTools) getStockDistribution(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := t.store.Aggregate(ctx, queries.StockDistributionByCategory(t.threshold))
	if err != nil {
		log.Printf("ERROR: Stock distribution analysis failed: %v", err)
		return resultErr("Internal error: %v", err), nil
	}

	return resultOK("Stock distribution analysis completed", map[string]interface{}{
		"distribution_analysis": results,
		"categories_analyzed":   len(results),
		"analysis_type":         "category_based_distribution",
	}), nil
}

func (t *InventoryTools) analyzeInventoryTurnover(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", 90)
	if days < 1 || days > 365 {
		return resultErr("Days parameter must be between 1 and 365"), nil
	}

	results, err := t.store.Aggregate(ctx, queries.InventoryTurnoverAnalysis(time.Now().UTC()))
	if err != nil {
		log.Printf("ERROR: Inventory turnover analysis failed: %v", err)
		return resultErr("Internal error: %v", err), nil
	}

	turnoverGroups := map[string][]bson.M{
		"fast_moving":   {},
		"medium_moving": {},
		"slow_moving":   {},
		"out_of_stock":  {},
	}
	for _, product := range results {
		classification, _ := product["turnover_classification"].(string)
		if _, ok := turnoverGroups[classification]; ok {
			turnoverGroups[classification] = append(turnoverGroups[classification], product)
		}
	}

	breakdown := make(map[string]int, len(turnoverGroups))
	for classification, products := range turnoverGroups {
		breakdown[classification] = len(products)
	}

	return resultOK(fmt.Sprintf("Inventory turnover analysis for %d days", days), map[string]interface{}{
		"analysis_period_days":    days,
		"turnover_breakdown":      breakdown,
		"products_by_turnover":    turnoverGroups,
		"total_products_analyzed": len(results),
	}), nil
}

func (t *InventoryTools) getStockAlertsDashboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := t.store.Aggregate(ctx, queries.StockAlertDashboard(t.threshold))
	if err != nil {
		log.Printf("ERROR: Stock alerts dashboard failed: %v", err)
		return resultErr("Internal error: %v", err), nil
	}

	alertGroups := map[string][]bson.M{
		"critical":    {},
		"high":        {},
		"medium":      {},
		"overstocked": {},
	}
	for _, alert := range results {
		level := ""
		if info, ok := alert["stock_info"].(bson.M); ok {
			level, _ = info["alert_level"].(string)
		}
		if _, ok := alertGroups[level]; ok {
			alertGroups[level] = append(alertGroups[level], alert)
		}
	}

	summary := make(map[string]int, len(alertGroups))
	for level, alerts := range alertGroups {
		summary[level] = len(alerts)
	}

	return resultOK("Stock alerts dashboard generated", map[string]interface{}{
		"alert_summary":          summary,
		"alerts_by_priority":     alertGroups,
		"total_alerts":           len(results),
		"dashboard_generated_at": time.Now().UTC(),
	}), nil
}
