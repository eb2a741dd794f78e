package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"product-catalog-mcp/internal/domain"
	"product-catalog-mcp/internal/store"
)

// ProductTools holds dependencies for the product management tools.
type ProductTools struct {
	store    store.ProductStorer
	validate *validator.Validate
}

// NewProductTools creates a ProductTools with dependencies.
func NewProductTools(st store.ProductStorer) *ProductTools {
	return &ProductTools{
		store:    st,
		validate: validator.New(),
	}
}

// Register adds the product management tools to the MCP server.
func (t *ProductTools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("create_product",
		mcp.WithDescription("Create a new product in the inventory."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Product name")),
		mcp.WithString("price", mcp.Required(), mcp.Description("Product price as string (converted to a number, must be positive)")),
		mcp.WithString("stock", mcp.Required(), mcp.Description("Initial stock quantity as string (converted to an integer, non-negative)")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Product category (electronics, clothing, food, books, home, sports, health, automotive, toys, other)")),
		mcp.WithString("sku", mcp.Required(), mcp.Description("Stock Keeping Unit - unique product identifier")),
		mcp.WithString("description", mcp.Description("Product description (optional)")),
		mcp.WithArray("tags", mcp.Description("Tags for search and categorization (optional)"),
			mcp.Items(map[string]any{"type": "string"})),
	), t.createProduct)

	s.AddTool(mcp.NewTool("get_product",
		mcp.WithDescription("Retrieve a product by ID or SKU."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Product ID or SKU")),
		mcp.WithBoolean("by_sku", mcp.Description("If true, look up by SKU; otherwise by ID")),
	), t.getProduct)

	s.AddTool(mcp.NewTool("search_products",
		mcp.WithDescription("Search products with various filters."),
		mcp.WithString("query", mcp.Description("Text search in name, description, and tags")),
		mcp.WithString("category", mcp.Description("Filter by category")),
		mcp.WithString("status", mcp.Description("Filter by status (active, inactive, out_of_stock, discontinued, draft)")),
		mcp.WithNumber("min_price", mcp.Description("Minimum price filter")),
		mcp.WithNumber("max_price", mcp.Description("Maximum price filter")),
		mcp.WithBoolean("in_stock_only", mcp.Description("Only products with stock > 0")),
		mcp.WithBoolean("low_stock_only", mcp.Description("Only products with low stock")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (1-100)")),
		mcp.WithArray("tags", mcp.Description("Filter by tags"),
			mcp.Items(map[string]any{"type": "string"})),
	), t.searchProducts)

	s.AddTool(mcp.NewTool("update_product",
		mcp.WithDescription("Update product information. Only the provided fields change."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Product ID or SKU")),
		mcp.WithString("name", mcp.Description("New product name")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("price", mcp.Description("New price as string")),
		mcp.WithString("stock", mcp.Description("New stock quantity as string")),
		mcp.WithString("category", mcp.Description("New category")),
		mcp.WithString("status", mcp.Description("New status")),
		mcp.WithArray("tags", mcp.Description("Replacement tags list"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithBoolean("by_sku", mcp.Description("If true, identify the product by SKU; otherwise by ID")),
	), t.updateProduct)

	s.AddTool(mcp.NewTool("delete_product",
		mcp.WithDescription("Delete a product from the inventory. Requires confirmation."),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Product ID or SKU")),
		mcp.WithBoolean("by_sku", mcp.Description("If true, identify the product by SKU; otherwise by ID")),
		mcp.WithBoolean("confirm", mcp.Description("Confirmation flag to prevent accidental deletion")),
	), t.deleteProduct)
}

func (t *ProductTools) createProduct(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return resultErr("Missing required argument: name"), nil
	}
	priceStr, err := req.RequireString("price")
	if err != nil {
		return resultErr("Missing required argument: price"), nil
	}
	stockStr, err := req.RequireString("stock")
	if err != nil {
		return resultErr("Missing required argument: stock"), nil
	}
	categoryStr, err := req.RequireString("category")
	if err != nil {
		return resultErr("Missing required argument: category"), nil
	}
	sku, err := req.RequireString("sku")
	if err != nil {
		return resultErr("Missing required argument: sku"), nil
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return resultErr("Invalid price format: '%s'. Price must be a valid number.", priceStr), nil
	}
	stock, err := strconv.Atoi(stockStr)
	if err != nil {
		return resultErr("Invalid stock format: '%s'. Stock must be a valid integer.", stockStr), nil
	}
	category, err := domain.ParseCategory(categoryStr)
	if err != nil {
		return resultErr("%v", err), nil
	}

	create := &domain.ProductCreate{
		Name:        name,
		Description: req.GetString("description", ""),
		Price:       price,
		Stock:       stock,
		Category:    category,
		SKU:         sku,
		Tags:        req.GetStringSlice("tags", nil),
	}
	if err := create.Normalize(); err != nil {
		return resultErr("%v", err), nil
	}
	if err := t.validate.Struct(create); err != nil {
		return resultErr("Validation failed: %v", err), nil
	}

	product, err := t.store.CreateProduct(ctx, create)
	if err != nil {
		if errors.Is(err, store.ErrProductSKUExists) {
			return resultErr("Product with SKU '%s' already exists", create.SKU), nil
		}
		log.Printf("ERROR: CreateProduct store operation failed: %v", err)
		return resultErr("Internal error: %v", err), nil
	}

	return resultOK(fmt.Sprintf("Product '%s' created successfully", product.Name), map[string]interface{}{
		"id":         product.ID.Hex(),
		"name":       product.Name,
		"sku":        product.SKU,
		"price":      product.Price,
		"stock":      product.Stock,
		"category":   product.Category,
		"created_at": product.CreatedAt,
	}), nil
}

func (t *ProductTools) getProduct(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return resultErr("Missing required argument: identifier"), nil
	}
	product, errResult := findProduct(ctx, t.store, identifier, req.GetBool("by_sku", false))
	if errResult != nil {
		return errResult, nil
	}

	return toolResult(envelope{Success: true, Data: map[string]interface{}{
		"id":          product.ID.Hex(),
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"stock":       product.Stock,
		"category":    product.Category,
		"status":      product.Status,
		"sku":         product.SKU,
		"tags":        product.Tags,
		"created_at":  product.CreatedAt,
		"updated_at":  product.UpdatedAt,
	}}), nil
}

func (t *ProductTools) searchProducts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := domain.ProductSearchFilter{
		Query:        req.GetString("query", ""),
		InStockOnly:  req.GetBool("in_stock_only", false),
		LowStockOnly: req.GetBool("low_stock_only", false),
		Tags:         req.GetStringSlice("tags", nil),
	}

	categoryStr := req.GetString("category", "")
	if categoryStr != "" {
		category, err := domain.ParseCategory(categoryStr)
		if err != nil {
			return resultErr("%v", err), nil
		}
		filter.Category = &category
	}
	statusStr := req.GetString("status", "")
	if statusStr != "" {
		status, err := domain.ParseStatus(statusStr)
		if err != nil {
			return resultErr("%v", err), nil
		}
		filter.Status = &status
	}

	args := req.GetArguments()
	if _, ok := args["min_price"]; ok {
		min := req.GetFloat("min_price", 0)
		filter.MinPrice = &min
	}
	if _, ok := args["max_price"]; ok {
		max := req.GetFloat("max_price", 0)
		filter.MaxPrice = &max
	}

	limit := req.GetInt("limit", 20)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	filter.Limit = limit

	products := t.store.SearchProducts(ctx, filter)

	results := make([]map[string]interface{}, 0, len(products))
	for _, p := range products {
		results = append(results, map[string]interface{}{
			"id":       p.ID.Hex(),
			"name":     p.Name,
			"sku":      p.SKU,
			"price":    p.Price,
			"stock":    p.Stock,
			"category": p.Category,
			"status":   p.Status,
		})
	}

	minText, maxText := "0", "unlimited"
	if filter.MinPrice != nil {
		minText = strconv.FormatFloat(*filter.MinPrice, 'f', -1, 64)
	}
	if filter.MaxPrice != nil {
		maxText = strconv.FormatFloat(*filter.MaxPrice, 'f', -1, 64)
	}

	return resultOK(fmt.Sprintf("Found %d products", len(results)), map[string]interface{}{
		"products":    results,
		"total_found": len(results),
		"search_params": map[string]interface{}{
			"query":       filter.Query,
			"category":    categoryStr,
			"status":      statusStr,
			"price_range": minText + " - " + maxText,
			"filters": map[string]interface{}{
				"in_stock_only":  filter.InStockOnly,
				"low_stock_only": filter.LowStockOnly,
			},
		},
	}), nil
}

func (t *ProductTools) updateProduct(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return resultErr("Missing required argument: identifier"), nil
	}
	product, errResult := findProduct(ctx, t.store, identifier, req.GetBool("by_sku", false))
	if errResult != nil {
		return errResult, nil
	}

	// Presence-based partial update: an argument the caller omitted must not
	// enter the change set.
	args := req.GetArguments()
	update := &domain.ProductUpdate{}

	if _, ok := args["name"]; ok {
		name := req.GetString("name", "")
		update.Name = &name
	}
	if _, ok := args["description"]; ok {
		description := req.GetString("description", "")
		update.Description = &description
	}
	if _, ok := args["price"]; ok {
		priceStr := req.GetString("price", "")
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			return resultErr("Invalid price format: '%s'. Price must be a valid number.", priceStr), nil
		}
		update.Price = &price
	}
	if _, ok := args["stock"]; ok {
		stockStr := req.GetString("stock", "")
		stock, err := strconv.Atoi(stockStr)
		if err != nil {
			return resultErr("Invalid stock format: '%s'. Stock must be a valid integer.", stockStr), nil
		}
		update.Stock = &stock
	}
	if _, ok := args["category"]; ok {
		category, err := domain.ParseCategory(req.GetString("category", ""))
		if err != nil {
			return resultErr("%v", err), nil
		}
		update.Category = &category
	}
	if _, ok := args["status"]; ok {
		status, err := domain.ParseStatus(req.GetString("status", ""))
		if err != nil {
			return resultErr("%v", err), nil
		}
		update.Status = &status
	}
	if _, ok := args["tags"]; ok {
		tags := req.GetStringSlice("tags", nil)
		if tags == nil {
			tags = []string{}
		}
		update.Tags = tags
	}

	if err := t.validate.Struct(update); err != nil {
		return resultErr("Validation failed: %v", err), nil
	}
	update.Normalize()

	updated, err := t.store.UpdateProduct(ctx, product.ID.Hex(), update)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return resultErr("Product not found with ID: %s", product.ID.Hex()), nil
		}
		log.Printf("ERROR: UpdateProduct store operation for %s failed: %v", product.ID.Hex(), err)
		return resultErr("Failed to update product"), nil
	}

	return resultOK(fmt.Sprintf("Product '%s' updated successfully", updated.Name), map[string]interface{}{
		"id":         updated.ID.Hex(),
		"name":       updated.Name,
		"sku":        updated.SKU,
		"price":      updated.Price,
		"stock":      updated.Stock,
		"category":   updated.Category,
		"status":     updated.Status,
		"updated_at": updated.UpdatedAt,
	}), nil
}

func (t *ProductTools) deleteProduct(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier, err := req.RequireString("identifier")
	if err != nil {
		return resultErr("Missing required argument: identifier"), nil
	}

	// The confirmation gate comes before any lookup so an unconfirmed call
	// leaks nothing about the catalog.
	if !req.GetBool("confirm", false) {
		return toolResult(envelope{
			Success: false,
			Error:   "Deletion requires confirmation. Set confirm=true to proceed.",
			Warning: "This action cannot be undone.",
		}), nil
	}

	product, errResult := findProduct(ctx, t.store, identifier, req.GetBool("by_sku", false))
	if errResult != nil {
		return errResult, nil
	}

	if err := t.store.DeleteProduct(ctx, product.ID.Hex()); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			return resultErr("Product not found with ID: %s", product.ID.Hex()), nil
		}
		log.Printf("ERROR: DeleteProduct store operation for %s failed: %v", product.ID.Hex(), err)
		return resultErr("Failed to delete product"), nil
	}

	return resultOK(fmt.Sprintf("Product '%s' (SKU: %s) deleted successfully", product.Name, product.SKU), nil), nil
}
