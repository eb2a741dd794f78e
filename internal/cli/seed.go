package cli

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"product-catalog-mcp/internal/domain"
	"product-catalog-mcp/internal/store"
)

// demoProducts is the demo catalog loaded by the seed command. It spans
// multiple categories and deliberately includes a zero-stock product so the
// inventory analytics have something to alert on.
var demoProducts = []domain.ProductCreate{
	{
		Name:        "Wireless Noise-Canceling Headphones",
		Description: "Premium wireless headphones with active noise cancellation, 30-hour battery life, and studio-quality sound.",
		Price:       299.99,
		Stock:       45,
		Category:    domain.CategoryElectronics,
		SKU:         "ELEC-WH-001",
		Tags:        []string{"wireless", "bluetooth", "noise-canceling", "premium", "audio"},
	},
	{
		Name:        "Gaming Mechanical Keyboard",
		Description: "Professional gaming keyboard with RGB backlighting, Cherry MX switches, and programmable keys.",
		Price:       159.99,
		Stock:       23,
		Category:    domain.CategoryElectronics,
		SKU:         "ELEC-KB-001",
		Tags:        []string{"gaming", "mechanical", "rgb", "keyboard", "professional"},
	},
	{
		Name:        "4K Webcam with Auto Focus",
		Description: "Ultra HD webcam with auto focus, noise reduction, and wide-angle lens for professional streaming.",
		Price:       129.99,
		Stock:       67,
		Category:    domain.CategoryElectronics,
		SKU:         "ELEC-CAM-001",
		Tags:        []string{"4k", "webcam", "streaming", "professional", "auto-focus"},
	},
	{
		Name:        "Smartphone with 5G",
		Description: "Latest flagship smartphone with 5G connectivity, 108MP camera, and all-day battery life.",
		Price:       899.99,
		Stock:       12,
		Category:    domain.CategoryElectronics,
		SKU:         "ELEC-PHONE-001",
		Tags:        []string{"smartphone", "5g", "camera", "flagship", "mobile"},
	},
	{
		Name:        "Wireless Charging Pad",
		Description: "Fast wireless charging pad compatible with all Qi-enabled devices, sleek design.",
		Price:       39.99,
		Stock:       156,
		Category:    domain.CategoryElectronics,
		SKU:         "ELEC-CHRG-001",
		Tags:        []string{"wireless", "charging", "qi", "fast-charge", "accessories"},
	},
	{
		Name:        "Premium Cotton T-Shirt",
		Description: "100% organic cotton t-shirt with modern fit, available in multiple colors.",
		Price:       29.99,
		Stock:       234,
		Category:    domain.CategoryClothing,
		SKU:         "CLO-TSHIRT-001",
		Tags:        []string{"cotton", "organic", "casual", "comfortable", "basic"},
	},
	{
		Name:        "Professional Dress Shirt",
		Description: "Wrinkle-resistant dress shirt perfect for business and formal occasions.",
		Price:       79.99,
		Stock:       89,
		Category:    domain.CategoryClothing,
		SKU:         "CLO-DRESS-001",
		Tags:        []string{"formal", "business", "wrinkle-resistant", "professional", "shirt"},
	},
	{
		Name:        "Denim Jeans - Classic Fit",
		Description: "Premium denim jeans with classic fit, durable construction, and timeless style.",
		Price:       89.99,
		Stock:       76,
		Category:    domain.CategoryClothing,
		SKU:         "CLO-JEANS-001",
		Tags:        []string{"denim", "jeans", "classic", "durable", "casual"},
	},
	{
		Name:        "Winter Jacket - Waterproof",
		Description: "Insulated winter jacket with waterproof exterior and breathable lining.",
		Price:       199.99,
		Stock:       34,
		Category:    domain.CategoryClothing,
		SKU:         "CLO-JACKET-001",
		Tags:        []string{"winter", "waterproof", "insulated", "outdoor", "jacket"},
	},
	{
		Name:        "Running Shoes",
		Description: "Lightweight running shoes with advanced cushioning and breathable mesh upper.",
		Price:       129.99,
		Stock:       0,
		Category:    domain.CategoryClothing,
		SKU:         "CLO-SHOES-001",
		Tags:        []string{"running", "athletic", "lightweight", "cushioning", "sports"},
	},
	{
		Name:        "Modern Software Architecture",
		Description: "Comprehensive guide to modern software architecture patterns and best practices.",
		Price:       59.99,
		Stock:       145,
		Category:    domain.CategoryBooks,
		SKU:         "BOOK-ARCH-001",
		Tags:        []string{"software", "architecture", "programming", "technical", "guide"},
	},
	{
		Name:        "Data Science with Python",
		Description: "Practical introduction to data science using Python, NumPy, and Pandas.",
		Price:       49.99,
		Stock:       223,
		Category:    domain.CategoryBooks,
		SKU:         "BOOK-DATA-001",
		Tags:        []string{"data-science", "python", "analytics", "programming", "education"},
	},
	{
		Name:        "Digital Marketing Mastery",
		Description: "Complete guide to digital marketing strategies for modern businesses.",
		Price:       39.99,
		Stock:       187,
		Category:    domain.CategoryBooks,
		SKU:         "BOOK-MARK-001",
		Tags:        []string{"marketing", "digital", "business", "strategy", "online"},
	},
	{
		Name:        "Investment Fundamentals",
		Description: "Essential guide to personal investing and financial planning.",
		Price:       34.99,
		Stock:       98,
		Category:    domain.CategoryBooks,
		SKU:         "BOOK-INV-001",
		Tags:        []string{"investing", "finance", "personal", "money", "planning"},
	},
	{
		Name:        "Smart Home Security Camera",
		Description: "WiFi-enabled security camera with motion detection, night vision, and mobile app.",
		Price:       179.99,
		Stock:       56,
		Category:    domain.CategoryHome,
		SKU:         "HOME-CAM-001",
		Tags:        []string{"smart-home", "security", "wifi", "surveillance", "mobile-app"},
	},
	{
		Name:        "Coffee Maker with Grinder",
		Description: "All-in-one coffee maker with built-in grinder and programmable brewing.",
		Price:       249.99,
		Stock:       78,
		Category:    domain.CategoryHome,
		SKU:         "HOME-COFFEE-001",
		Tags:        []string{"coffee", "grinder", "programmable", "kitchen", "appliance"},
	},
	{
		Name:        "Ergonomic Office Chair",
		Description: "Professional office chair with lumbar support, adjustable height, and breathable mesh.",
		Price:       399.99,
		Stock:       23,
		Category:    domain.CategoryHome,
		SKU:         "HOME-CHAIR-001",
		Tags:        []string{"office", "ergonomic", "chair", "professional", "comfortable"},
	},
	{
		Name:        "LED Desk Lamp",
		Description: "Adjustable LED desk lamp with multiple brightness levels and USB charging port.",
		Price:       89.99,
		Stock:       134,
		Category:    domain.CategoryHome,
		SKU:         "HOME-LAMP-001",
		Tags:        []string{"led", "desk", "lamp", "adjustable", "usb-charging"},
	},
	{
		Name:        "Yoga Mat - Premium",
		Description: "Non-slip yoga mat with extra cushioning and carrying strap.",
		Price:       49.99,
		Stock:       267,
		Category:    domain.CategorySports,
		SKU:         "SPORT-YOGA-001",
		Tags:        []string{"yoga", "fitness", "mat", "non-slip", "exercise"},
	},
	{
		Name:        "Resistance Band Set",
		Description: "Complete resistance band set with multiple resistance levels and door anchor.",
		Price:       29.99,
		Stock:       189,
		Category:    domain.CategorySports,
		SKU:         "SPORT-BAND-001",
		Tags:        []string{"resistance", "bands", "fitness", "home-gym", "strength"},
	},
	{
		Name:        "Smart Fitness Tracker",
		Description: "Advanced fitness tracker with heart rate monitoring, GPS, and smartphone notifications.",
		Price:       199.99,
		Stock:       45,
		Category:    domain.CategorySports,
		SKU:         "SPORT-TRACK-001",
		Tags:        []string{"fitness", "tracker", "smart", "gps", "health"},
	},
	{
		Name:        "Protein Powder - Vanilla",
		Description: "Premium whey protein powder with 25g protein per serving, vanilla flavor.",
		Price:       39.99,
		Stock:       156,
		Category:    domain.CategoryHealth,
		SKU:         "HEALTH-PROT-001",
		Tags:        []string{"protein", "whey", "vanilla", "nutrition", "fitness"},
	},
	{
		Name:        "Car Phone Mount",
		Description: "Universal car phone mount with 360-degree rotation and secure grip.",
		Price:       24.99,
		Stock:       345,
		Category:    domain.CategoryAutomotive,
		SKU:         "AUTO-MOUNT-001",
		Tags:        []string{"car", "phone", "mount", "universal", "accessories"},
	},
	{
		Name:        "Dash Camera with GPS",
		Description: "HD dash camera with GPS tracking, night vision, and loop recording.",
		Price:       149.99,
		Stock:       67,
		Category:    domain.CategoryAutomotive,
		SKU:         "AUTO-DASH-001",
		Tags:        []string{"dash-cam", "gps", "hd", "night-vision", "safety"},
	},
	{
		Name:        "Car Emergency Kit",
		Description: "Complete emergency kit with jumper cables, flashlight, and first aid supplies.",
		Price:       79.99,
		Stock:       89,
		Category:    domain.CategoryAutomotive,
		SKU:         "AUTO-EMERG-001",
		Tags:        []string{"emergency", "safety", "jumper-cables", "first-aid", "car"},
	},
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo product catalog (idempotent, duplicate SKUs are skipped)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, logger, st, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closeStore(st, logger)

			st.EnsureIndexes(ctx)

			validate := validator.New()
			created, skipped := 0, 0
			for i := range demoProducts {
				create := demoProducts[i]
				if err := create.Normalize(); err != nil {
					return fmt.Errorf("demo product %s: %w", create.SKU, err)
				}
				if err := validate.Struct(&create); err != nil {
					return fmt.Errorf("demo product %s: %w", create.SKU, err)
				}

				product, err := st.CreateProduct(ctx, &create)
				if err != nil {
					if errors.Is(err, store.ErrProductSKUExists) {
						logger.Printf("INFO: Product with SKU %s already exists, skipping.", create.SKU)
						skipped++
						continue
					}
					return fmt.Errorf("creating %s: %w", create.SKU, err)
				}
				logger.Printf("INFO: Created product: %s (SKU: %s)", product.Name, product.SKU)
				created++
			}

			summary := st.InventorySummary(ctx)
			logger.Printf("INFO: Seeding completed. Created: %d, skipped: %d.", created, skipped)
			logger.Printf("INFO: Total products: %d, inventory value: %.2f, categories: %d.",
				summary.TotalProducts, summary.TotalValue, len(summary.CategoriesBreakdown))
			logger.Printf("INFO: Low stock products: %d, out of stock: %d.",
				summary.LowStockProducts, summary.OutOfStockProducts)
			return nil
		},
	}
}
