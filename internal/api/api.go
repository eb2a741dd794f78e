// Package api is the MCP surface of the catalog: tool, resource, and prompt
// registrations over a store.ProductStorer. Domain failures never surface as
// protocol errors; every tool answers with a JSON envelope carrying a
// success flag and either a message/data pair or an error string.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"

	"product-catalog-mcp/internal/domain"
	"product-catalog-mcp/internal/store"
)

// envelope is the uniform tool response shape.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Warning string      `json:"warning,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func toolResult(env envelope) *mcp.CallToolResult {
	payload, err := json.Marshal(env)
	if err != nil {
		log.Printf("ERROR: Failed to encode tool response: %v", err)
		return mcp.NewToolResultText(`{"success":false,"error":"Internal error: response encoding failed"}`)
	}
	return mcp.NewToolResultText(string(payload))
}

func resultOK(message string, data interface{}) *mcp.CallToolResult {
	return toolResult(envelope{Success: true, Message: message, Data: data})
}

func resultErr(format string, args ...interface{}) *mcp.CallToolResult {
	return toolResult(envelope{Success: false, Error: fmt.Sprintf(format, args...)})
}

// findProduct resolves an identifier to a product by id or SKU. The second
// return value is a ready error result when the product cannot be found.
func findProduct(ctx context.Context, st store.ProductStorer, identifier string, bySKU bool) (*domain.Product, *mcp.CallToolResult) {
	var (
		product *domain.Product
		err     error
	)
	if bySKU {
		product, err = st.GetProductBySKU(ctx, identifier)
	} else {
		product, err = st.GetProductByID(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			kind := "ID"
			if bySKU {
				kind = "SKU"
			}
			return nil, resultErr("Product not found with %s: %s", kind, identifier)
		}
		log.Printf("ERROR: Product lookup failed for %q: %v", identifier, err)
		return nil, resultErr("Internal error: %v", err)
	}
	return product, nil
}

// asFloat reads a numeric aggregation value regardless of the BSON numeric
// type the server chose.
func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}
