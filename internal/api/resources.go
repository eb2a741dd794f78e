package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"product-catalog-mcp/internal/config"
	"product-catalog-mcp/internal/store"
)

// Resources holds dependencies for the read-only MCP resources.
type Resources struct {
	store store.ProductStorer
	cfg   *config.Config
}

// NewResources creates a Resources with dependencies.
func NewResources(st store.ProductStorer, cfg *config.Config) *Resources {
	return &Resources{store: st, cfg: cfg}
}

// Register adds the resources to the MCP server.
func (r *Resources) Register(s *server.MCPServer) {
	s.AddResource(mcp.NewResource("database://status", "Database Status",
		mcp.WithResourceDescription("Database connection status and health metrics"),
		mcp.WithMIMEType("text/markdown"),
	), r.databaseStatus)

	s.AddResource(mcp.NewResource("database://schema", "Database Schema",
		mcp.WithResourceDescription("Product collection schema and index documentation"),
		mcp.WithMIMEType("text/markdown"),
	), r.databaseSchema)

	s.AddResource(mcp.NewResource("server://config", "Server Configuration",
		mcp.WithResourceDescription("Server transport, endpoints, and connection examples"),
		mcp.WithMIMEType("text/markdown"),
	), r.serverConfig)

	s.AddResource(mcp.NewResource("templates://product", "Product Templates",
		mcp.WithResourceDescription("Product creation templates for common categories"),
		mcp.WithMIMEType("text/markdown"),
	), r.productTemplates)
}

func markdownContents(uri, text string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     text,
		},
	}
}

func (r *Resources) databaseStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	health := r.store.HealthCheck(ctx)

	connection := "Disconnected"
	if health.Connected {
		connection = "Connected"
	}

	var b strings.Builder
	b.WriteString("# Database Status\n\n")
	fmt.Fprintf(&b, "**Connection**: %s\n", connection)
	fmt.Fprintf(&b, "**Database**: %s\n", health.Database)
	fmt.Fprintf(&b, "**Total Products**: %d\n\n", health.TotalProducts)
	b.WriteString("## Storage Metrics\n")
	fmt.Fprintf(&b, "- **Database Size**: %d bytes\n", health.DatabaseSize)
	fmt.Fprintf(&b, "- **Collection Size**: %d bytes\n", health.CollectionSize)
	fmt.Fprintf(&b, "- **Index Count**: %d\n\n", health.IndexCount)
	b.WriteString("## Health Check\n")
	fmt.Fprintf(&b, "- **Status**: %s\n", health.Status)
	fmt.Fprintf(&b, "- **Last Check**: %s\n", health.LastCheck.Format("2006-01-02T15:04:05Z07:00"))
	if !health.Connected && health.Error != "" {
		fmt.Fprintf(&b, "\n**Error**: %s\n", health.Error)
	}

	return markdownContents(req.Params.URI, b.String()), nil
}

func (r *Resources) databaseSchema(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return markdownContents(req.Params.URI, `# Database Schema

## Collections

### products
Main product collection with the following fields:

- **_id**: ObjectId (Primary key)
- **name**: String (Product name, indexed for text search)
- **description**: String (Optional product description)
- **price**: Number (Product price, must be positive)
- **stock**: Number (Stock quantity, non-negative)
- **category**: String (Product category, indexed)
- **status**: String (Product status, indexed)
- **sku**: String (Unique product identifier, unique index)
- **tags**: Array[String] (Search tags, text indexed)
- **created_at**: Date (Creation timestamp, indexed)
- **updated_at**: Date (Last update timestamp, indexed)

## Indexes

1. **sku_unique**: Unique index on SKU field
2. **text_search**: Text index on name, description, tags
3. **category_idx**: Index on category field
4. **status_idx**: Index on status field
5. **price_idx**: Index on price field
6. **stock_idx**: Index on stock field
7. **category_status_stock_idx**: Compound index for common queries
8. **created_at_idx**: Index on creation date
9. **updated_at_idx**: Index on update date
`), nil
}

func (r *Resources) serverConfig(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sc := r.cfg.Server

	var b strings.Builder
	b.WriteString("# Server Configuration\n\n")
	fmt.Fprintf(&b, "**Host**: %s\n", sc.Host)
	fmt.Fprintf(&b, "**Port**: %s\n", sc.Port)
	fmt.Fprintf(&b, "**Transport**: %s\n\n", sc.Transport)
	if sc.Remote() {
		b.WriteString("## Endpoints\n")
		fmt.Fprintf(&b, "- **SSE Endpoint**: http://%s/sse\n", sc.Addr())
		fmt.Fprintf(&b, "- **Health Check**: http://%s/healthz\n", sc.Addr())
		fmt.Fprintf(&b, "- **Metrics**: http://%s/metrics\n", sc.Addr())
	} else {
		b.WriteString("The server communicates over stdio. Point your MCP client at\n")
		b.WriteString("the `productmcp serve` command.\n")
	}

	return markdownContents(req.Params.URI, b.String()), nil
}

func (r *Resources) productTemplates(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return markdownContents(req.Params.URI, `# Product Templates

## Electronics Template
`+"```json"+`
{
  "name": "Wireless Headphones",
  "description": "High-quality wireless headphones with noise cancellation",
  "price": 199.99,
  "stock": 50,
  "category": "electronics",
  "sku": "ELEC-WH-001",
  "tags": ["wireless", "audio", "electronics", "bluetooth"]
}
`+"```"+`

## Clothing Template
`+"```json"+`
{
  "name": "Cotton T-Shirt",
  "description": "Comfortable 100% cotton t-shirt",
  "price": 29.99,
  "stock": 100,
  "category": "clothing",
  "sku": "CLO-TS-001",
  "tags": ["cotton", "apparel", "casual", "comfortable"]
}
`+"```"+`

## Books Template
`+"```json"+`
{
  "name": "Programming Guide",
  "description": "Comprehensive programming tutorial",
  "price": 49.99,
  "stock": 25,
  "category": "books",
  "sku": "BOOK-PROG-001",
  "tags": ["programming", "tutorial", "education", "technology"]
}
`+"```"+`

Use these templates as starting points for creating new products.
Adjust the values according to your specific product requirements.
`), nil
}
