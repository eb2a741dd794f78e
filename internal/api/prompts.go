package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterPrompts adds the reusable analysis prompts to the MCP server.
func RegisterPrompts(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt("product_recommendation",
		mcp.WithPromptDescription("Recommend the best products within a budget."),
		mcp.WithArgument("budget", mcp.RequiredArgument(),
			mcp.ArgumentDescription("Available budget in the default currency")),
		mcp.WithArgument("category",
			mcp.ArgumentDescription("Optional product category filter")),
	), productRecommendationPrompt)

	s.AddPrompt(mcp.NewPrompt("inventory_overview",
		mcp.WithPromptDescription("Analyze inventory health around a stock threshold."),
		mcp.WithArgument("threshold",
			mcp.ArgumentDescription("Stock threshold for low-stock highlighting (default 10)")),
	), inventoryOverviewPrompt)

	s.AddPrompt(mcp.NewPrompt("executive_summary",
		mcp.WithPromptDescription("Create an executive summary of key business metrics."),
	), executiveSummaryPrompt)
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}

func productRecommendationPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	budgetStr, ok := req.Params.Arguments["budget"]
	if !ok || budgetStr == "" {
		return nil, fmt.Errorf("missing required argument: budget")
	}
	budget, err := strconv.ParseFloat(budgetStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid budget %q: must be a number", budgetStr)
	}

	scope := "the catalog"
	if category := req.Params.Arguments["category"]; category != "" {
		scope = fmt.Sprintf("the %s category", category)
	}
	text := fmt.Sprintf(
		"Recommend the best product options from %s within a budget of %.2f. "+
			"Weigh price/performance, stock availability, and popularity.",
		scope, budget)

	return promptResult("Product recommendation within budget", text), nil
}

func inventoryOverviewPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	threshold := 10
	if thresholdStr := req.Params.Arguments["threshold"]; thresholdStr != "" {
		parsed, err := strconv.Atoi(thresholdStr)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold %q: must be an integer", thresholdStr)
		}
		threshold = parsed
	}
	text := fmt.Sprintf(
		"Analyze the inventory: highlight products with stock below %d units, "+
			"call out critical stock warnings, describe the category-level stock "+
			"distribution, and explain the financial impact.",
		threshold)

	return promptResult("Inventory health overview", text), nil
}

func executiveSummaryPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := "Create an executive summary covering total product count, inventory " +
		"value, the highest-earning category, low-stock alerts, and strategic " +
		"recommendations."

	return promptResult("Executive business summary", text), nil
}
