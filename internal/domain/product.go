package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is the closed set of product categories. Unknown values are
// rejected at the boundary via ParseCategory and never stored.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryFood        Category = "food"
	CategoryBooks       Category = "books"
	CategoryHome        Category = "home"
	CategorySports      Category = "sports"
	CategoryHealth      Category = "health"
	CategoryAutomotive  Category = "automotive"
	CategoryToys        Category = "toys"
	CategoryOther       Category = "other"
)

// Categories returns all valid categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryElectronics, CategoryClothing, CategoryFood, CategoryBooks,
		CategoryHome, CategorySports, CategoryHealth, CategoryAutomotive,
		CategoryToys, CategoryOther,
	}
}

// ParseCategory resolves a category value case-insensitively. The error
// message lists every accepted value so callers can surface it directly.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Categories() {
		if c == valid {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category %q. Valid options: %s", s, joinCategories())
}

func joinCategories() string {
	vals := Categories()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// Status is the closed set of product lifecycle states.
type Status string

const (
	StatusActive       Status = "active"
	StatusInactive     Status = "inactive"
	StatusOutOfStock   Status = "out_of_stock"
	StatusDiscontinued Status = "discontinued"
	StatusDraft        Status = "draft"
)

// Statuses returns all valid statuses in a stable order.
func Statuses() []Status {
	return []Status{
		StatusActive, StatusInactive, StatusOutOfStock,
		StatusDiscontinued, StatusDraft,
	}
}

// ParseStatus resolves a status value case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Statuses() {
		if st == valid {
			return st, nil
		}
	}
	vals := Statuses()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return "", fmt.Errorf("invalid status %q. Valid options: %s", s, strings.Join(parts, ", "))
}

// skuPattern restricts SKUs to letters, digits, hyphens, and underscores.
var skuPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateSKU trims, validates, and case-normalizes a SKU. The stored form
// is always uppercase.
func ValidateSKU(sku string) (string, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return "", fmt.Errorf("SKU cannot be empty")
	}
	if !skuPattern.MatchString(sku) {
		return "", fmt.Errorf("SKU can only contain letters, numbers, hyphens, and underscores")
	}
	return strings.ToUpper(sku), nil
}

// NormalizeTags trims each tag, drops empties, lowercases, and deduplicates.
// The result is sorted so normalization is idempotent; tag order carries no
// meaning.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Product is a catalog entry. The id is assigned by the persistence layer on
// creation and immutable thereafter.
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64            `json:"price" bson:"price"`
	Stock       int                `json:"stock" bson:"stock"`
	Category    Category           `json:"category" bson:"category"`
	Status      Status             `json:"status" bson:"status"`
	SKU         string             `json:"sku" bson:"sku"`
	Tags        []string           `json:"tags" bson:"tags"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// ProductCreate is the validated input shape for new products.
type ProductCreate struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"omitempty,max=2000"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	Category    Category `json:"category" validate:"required"`
	SKU         string   `json:"sku" validate:"required,min=1,max=50"`
	Tags        []string `json:"tags"`
}

// Normalize applies SKU and tag normalization in place. It must be called
// before the shape is persisted.
func (pc *ProductCreate) Normalize() error {
	sku, err := ValidateSKU(pc.SKU)
	if err != nil {
		return err
	}
	pc.SKU = sku
	pc.Tags = NormalizeTags(pc.Tags)
	return nil
}

// ProductUpdate is the partial-update shape. A nil field means "leave
// untouched"; only non-nil fields enter the persisted change set. Tags uses
// nil-vs-empty: nil is absent, an empty non-nil slice clears the tags.
type ProductUpdate struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price       *float64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	Stock       *int      `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category    *Category `json:"category,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all.
func (pu *ProductUpdate) IsEmpty() bool {
	return pu.Name == nil && pu.Description == nil && pu.Price == nil &&
		pu.Stock == nil && pu.Category == nil && pu.Status == nil && pu.Tags == nil
}

// Normalize cleans the fields that are present.
func (pu *ProductUpdate) Normalize() {
	if pu.Tags != nil {
		pu.Tags = NormalizeTags(pu.Tags)
	}
}

// ProductSearchFilter describes a catalog query. InStockOnly takes precedence
// over LowStockOnly when both are set.
type ProductSearchFilter struct {
	Query       string
	Category    *Category
	Status      *Status
	MinPrice    *float64
	MaxPrice    *float64
	InStockOnly bool
	LowStockOnly bool
	Tags        []string
	Limit       int
	Skip        int
}

// Normalize clamps pagination to the allowed bounds (limit 1-1000, default
// 50; skip non-negative).
func (f *ProductSearchFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 1000 {
		f.Limit = 1000
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
}

// CategoryStat is one row of the per-category inventory breakdown.
type CategoryStat struct {
	Category   string  `json:"category" bson:"_id"`
	Count      int     `json:"count" bson:"count"`
	TotalValue float64 `json:"total_value" bson:"total_value"`
	AvgPrice   float64 `json:"avg_price" bson:"avg_price"`
}

// InventorySummary is a derived snapshot of the whole collection. It is
// recomputed on demand and never cached.
type InventorySummary struct {
	TotalProducts       int            `json:"total_products"`
	TotalValue          float64        `json:"total_value"`
	LowStockProducts    int            `json:"low_stock_products"`
	OutOfStockProducts  int            `json:"out_of_stock_products"`
	CategoriesBreakdown []CategoryStat `json:"categories_breakdown"`
	LastUpdated         time.Time      `json:"last_updated"`
}

// HealthStatus is the structured result of a store health check.
type HealthStatus struct {
	Status         string    `json:"status"`
	Connected      bool      `json:"connected"`
	Database       string    `json:"database"`
	TotalProducts  int64     `json:"total_products"`
	DatabaseSize   int64     `json:"database_size"`
	CollectionSize int64     `json:"collection_size"`
	IndexCount     int       `json:"index_count"`
	Error          string    `json:"error,omitempty"`
	LastCheck      time.Time `json:"last_check"`
}
