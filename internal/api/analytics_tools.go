package api

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"product-catalog-mcp/internal/domain"
	"product-catalog-mcp/internal/queries"
	"product-catalog-mcp/internal/store"
)

// AnalyticsTools holds dependencies for the business intelligence tools.
type AnalyticsTools struct {
	store store.ProductStorer
}

// NewAnalyticsTools creates an AnalyticsTools with dependencies.
func NewAnalyticsTools(st store.ProductStorer) *AnalyticsTools {
	return &AnalyticsTools{store: st}
}

// Register adds the analytics and reporting tools to the MCP server.
func (t *AnalyticsTools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("get_sales_analytics",
		mcp.WithDescription("Get sales analytics and performance metrics."),
		mcp.WithString("period", mcp.Description("Time period for analysis (day, week, month, quarter, year)")),
		mcp.WithString("category", mcp.Description("Optional category filter")),
		mcp.WithBoolean("include_trends", mcp.Description("Include trend markers")),
	), t.getSalesAnalytics)

	s.AddTool(mcp.NewTool("get_category_analytics",
		mcp.WithDescription("Get comprehensive category performance analysis."),
	), t.getCategoryAnalytics)

	s.AddTool(mcp.NewTool("get_price_analysis",
		mcp.WithDescription("Get price distribution analysis across fixed price bands."),
	), t.getPriceAnalysis)

	s.AddTool(mcp.NewTool("get_trending_products",
		mcp.WithDescription("Analyze trending products based on recent activity."),
		mcp.WithNumber("days", mcp.Description("Number of days to look back (1-365)")),
	), t.getTrendingProducts)

	s.AddTool(mcp.NewTool("get_inventory_velocity",
		mcp.WithDescription("Analyze inventory turnover and velocity metrics."),
	), t.getInventoryVelocity)

	s.AddTool(mcp.NewTool("generate_executive_summary",
		mcp.WithDescription("Generate an executive summary with key business metrics."),
	), t.generateExecutiveSummary)

	s.AddTool(mcp.NewTool("get_financial_performance",
		mcp.WithDescription("Get a financial performance report with growth indicators and price segments."),
		mcp.WithNumber("days", mcp.Description("Recency window in days for growth metrics (1-365)")),
	), t.getFinancialPerformance)

	s.AddTool(mcp.NewTool("get_compliance_report",
		mcp.WithDescription("Audit catalog data quality: description and tag coverage, SKU format compliance, and price sanity."),
	), t.getComplianceReport)
}

func (t *AnalyticsTools) getSalesAnalytics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	period := req.GetString("period", "month")
	switch period {
	case "day", "week", "month", "quarter", "year":
	default:
		return resultErr("Invalid period '%s'. Valid options: day, week, month, quarter, year", period), nil
	}

	categoryStr := req.GetString("category", "")
	category := ""
	if categoryStr != "" {
		parsed, err := domain.ParseCategory(categoryStr)
		if err != nil {
			return resultErr("%v", err), nil
		}
		category = string(parsed)
	}
	includeTrends := req.GetBool("include_trends", false)

	results, err := t.store.Aggregate(ctx, queries.SalesAnalyticsByPeriod(period, category, includeTrends))
	if err != nil {
		log.Printf("ERROR: Sales analytics failed: %v", err)
		return resultErr("Internal error: %v", err), nil
	}

	return resultOK(fmt.Sprintf("Sales analytics for %s period", period), map[string]interface{}{
		"period":          period,
		"category_filter": categoryStr,
		"include_trends":  includeTrends,
		"analytics":       results,
		"total_periods":   len(results),
	}), nil
}

func (t *AnalyticsTools) getCategoryAnalytics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := t.store.Aggregate(ctx, queries.CategoryPerformanceAnalysis())
	if err != nil {
		log.Printf("ERROR: Category analytics failed: %v", err)
		return resultErr("Internal error: %v", err), nil
	}

	var totalValue float64
	var totalProducts int
	for _, cat := range results {
		totalValue += asFloat(cat["total_value"])
		totalProducts += int(asFloat(cat["total_products"]))
	}
	divisor := len(results)
	if divisor < 1 {
		divisor = 1
	}

	return resultOK("Category performance analysis completed", map[string]interface{}{
		"summary": map[string]interface{}{
			"total_categories":       len(results),
			"total_portfolio_value":  math.Round(totalValue*100) / 100,
			"total_products":         totalProducts,
			"avg_value_per_category": math.Round(totalValue/float64(divisor)*100) / 100,
		},
		"category_analysis": results,
	}), nil
}

func (t *AnalyticsTools) getPriceAnalysis(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := t.store.Aggregate(ctx, queries.PriceAnalysisByCategory())
	if err != nil {
		log.Printf("ERROR: Price analysis failed: %v", err)
		return resultErr("Internal error: %v", err), nil
	}

	return resultOK("Price analysis completed", map[string]interface{}{
		"price_analysis":            results,
		"analysis_type":             "category_based",
		"total_categories_analyzed": len(results),
	}), nil
}

func (t *AnalyticsTools) getTrendingProducts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", 30)
	if days < 1 || days > 365 {
		return resultErr("Days parameter must be between 1 and 365"), nil
	}

	results, err := t.store.Aggregate(ctx, queries.TrendingProductsAnalysis(time.Now().UTC(), days))
	if err != nil {
		log.Printf("ERROR: Trending products analysis failed: %v", err)
		return resultErr("Internal error: %v", err), nil
	}

	return resultOK(fmt.Sprintf("Trending products analysis for last %d days", days), map[string]interface{}{
		"analysis_period_days": days,
		"trending_products":    results,
		"total_trending":       len(results),
	}), nil
}

func (t *AnalyticsTools) getInventoryVelocity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := t.store.Aggregate(ctx, queries.InventoryVelocityAnalysis())
	if err != nil {
		log.Printf("ERROR: Inventory velocity analysis failed: %v", err)
		return resultErr("Internal error: %v", err), nil
	}

	return resultOK("Inventory velocity analysis completed", map[string]interface{}{
		"velocity_analysis":   results,
		"categories_analyzed": len(results),
		"analysis_type":       "turnover_and_velocity",
	}), nil
}

func (t *AnalyticsTools) generateExecutiveSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	categoryResults, err := t.store.Aggregate(ctx, queries.CategoryPerformanceAnalysis())
	if err != nil {
		log.Printf("ERROR: Executive summary category analysis failed: %v", err)
		return resultErr("Internal error: %v", err), nil
	}
	summary := t.store.InventorySummary(ctx)

	var portfolioValue float64
	for _, cat := range categoryResults {
		portfolioValue += asFloat(cat["total_value"])
	}

	topCategory := map[string]interface{}{
		"name":     nil,
		"value":    0,
		"products": 0,
	}
	if len(categoryResults) > 0 {
		top := categoryResults[0]
		topCategory = map[string]interface{}{
			"name":     top["_id"],
			"value":    top["total_value"],
			"products": top["total_products"],
		}
	}

	inventoryHealth := "healthy"
	if summary.LowStockProducts >= 5 {
		inventoryHealth = "needs_attention"
	}

	recommendations := []map[string]interface{}{}
	if summary.OutOfStockProducts > 0 {
		recommendations = append(recommendations, map[string]interface{}{
			"priority": "high",
			"action":   "urgent_restocking",
			"details":  fmt.Sprintf("%d products are out of stock", summary.OutOfStockProducts),
		})
	}
	if summary.LowStockProducts > 10 {
		recommendations = append(recommendations, map[string]interface{}{
			"priority": "medium",
			"action":   "inventory_planning",
			"details":  fmt.Sprintf("%d products have low stock", summary.LowStockProducts),
		})
	}

	return resultOK("Executive summary generated", map[string]interface{}{
		"key_metrics": map[string]interface{}{
			"total_products":      summary.TotalProducts,
			"portfolio_value":     math.Round(portfolioValue*100) / 100,
			"low_stock_alerts":    summary.LowStockProducts,
			"out_of_stock_alerts": summary.OutOfStockProducts,
		},
		"top_performing_category": topCategory,
		"operational_status": map[string]interface{}{
			"categories_active": len(categoryResults),
			"inventory_health":  inventoryHealth,
			"diversification":   len(categoryResults),
		},
		"recommendations": recommendations,
	}), nil
}

func (t *AnalyticsTools) getFinancialPerformance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", 30)
	if days < 1 || days > 365 {
		return resultErr("Days parameter must be between 1 and 365"), nil
	}

	results, err := t.store.Aggregate(ctx, queries.FinancialPerformanceReport(time.Now().UTC(), days))
	if err != nil {
		log.Printf("ERROR: Financial performance report failed: %v", err)
		return resultErr("Internal error: %v", err), nil
	}

	var report interface{}
	if len(results) > 0 {
		report = results[0]
	}

	return resultOK(fmt.Sprintf("Financial performance report for last %d days", days), map[string]interface{}{
		"analysis_period_days": days,
		"report":               report,
	}), nil
}

func (t *AnalyticsTools) getComplianceReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := t.store.Aggregate(ctx, queries.ComplianceAuditReport())
	if err != nil {
		log.Printf("ERROR: Compliance audit report failed: %v", err)
		return resultErr("Internal error: %v", err), nil
	}

	var report interface{}
	if len(results) > 0 {
		report = results[0]
	}

	return resultOK("Compliance audit report generated", map[string]interface{}{
		"report": report,
	}), nil
}
