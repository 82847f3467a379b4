package main

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/sirupsen/logrus"

	"butik-backend/internal/audit"
	"butik-backend/internal/auth"
	"butik-backend/internal/cart"
	"butik-backend/internal/catalog"
	"butik-backend/internal/checkout"
	"butik-backend/internal/config"
	"butik-backend/internal/database"
	"butik-backend/internal/expense"
	"butik-backend/internal/inventory"
	"butik-backend/internal/mailer"
	"butik-backend/internal/models"
	"butik-backend/internal/orders"
	"butik-backend/internal/pos"
	"butik-backend/internal/reports"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			logrus.WithError(err).Error("Beklenmeyen hata")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den temizleyerek geçir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(corsOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
	}))

	// Sepet ve kasa durumu session'da tutulur (cookie tabanlı)
	store := session.New(session.Config{
		Expiration:     72 * time.Hour,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})

	mail := mailer.New(cfg)

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/register", auth.RegisterHandler())
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Public katalog
	api.Get("/products", catalog.ListProductsHandler())
	api.Get("/products/:id", catalog.ProductDetailHandler())
	api.Get("/categories", catalog.ListCategoriesHandler())
	api.Get("/brands", catalog.ListBrandsHandler())

	// Sepet (session tabanlı, giriş gerektirmez)
	api.Get("/cart", cart.ViewHandler(store))
	api.Post("/cart/add/:productID", cart.AddHandler(store))
	api.Post("/cart/increase/:productID", cart.IncreaseHandler(store))
	api.Post("/cart/decrease/:productID", cart.DecreaseHandler(store))
	api.Delete("/cart/items/:productID", cart.RemoveHandler(store))
	api.Post("/cart/clear", cart.ClearHandler(store))
	api.Get("/cart/count", cart.CountHandler(store))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Checkout ve müşteri siparişleri
	protected.Post("/checkout", checkout.PlaceOrderHandler(store, mail))
	protected.Get("/orders", orders.ListMyOrdersHandler())
	protected.Delete("/orders/:id", orders.DeleteMyOrderHandler())
	protected.Post("/orders/:id/archive", orders.ArchiveMyOrderHandler())
	protected.Get("/orders/:id/receipt", orders.ReceiptHandler(cfg.LogoDir))

	// Favoriler
	protected.Post("/favorites/toggle/:productID", catalog.ToggleFavoriteHandler())
	protected.Get("/favorites", catalog.ListFavoritesHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Ürün yönetimi
	adminRoutes.Post("/products", inventory.CreateProductHandler())
	adminRoutes.Put("/products/:id", inventory.UpdateProductHandler())
	adminRoutes.Delete("/products/:id", inventory.DeleteProductHandler())
	adminRoutes.Get("/products/low-stock", inventory.LowStockHandler())

	// Varyant yönetimi
	adminRoutes.Post("/products/:id/variants", inventory.CreateVariantHandler())
	adminRoutes.Put("/variants/:id", inventory.UpdateVariantHandler())
	adminRoutes.Delete("/variants/:id", inventory.DeleteVariantHandler())

	// Stok hareketleri
	adminRoutes.Post("/stock-movements", inventory.CreateMovementHandler())
	adminRoutes.Get("/stock-movements", inventory.ListMovementsHandler())

	// Katalog yönetimi
	adminRoutes.Post("/brands", catalog.CreateBrandHandler())
	adminRoutes.Delete("/brands/:id", catalog.DeleteBrandHandler())
	adminRoutes.Post("/categories", catalog.CreateCategoryHandler())
	adminRoutes.Post("/sub-categories", catalog.CreateSubCategoryHandler())
	adminRoutes.Post("/product-types", catalog.CreateProductTypeHandler())

	// Sipariş yönetimi
	adminRoutes.Get("/orders", orders.AdminListOrdersHandler())
	adminRoutes.Post("/orders/mark-delivered", orders.AdminMarkDeliveredHandler())
	adminRoutes.Put("/orders/:id", orders.AdminUpdateOrderHandler())
	adminRoutes.Put("/orders/:id/lines/:lineID", orders.AdminUpdateOrderLineHandler())
	adminRoutes.Delete("/orders/:id/lines/:lineID", orders.AdminDeleteOrderLineHandler())

	// Kasa (POS)
	adminRoutes.Get("/pos", pos.ViewHandler(store))
	adminRoutes.Post("/pos/items", pos.AddItemHandler(store))
	adminRoutes.Delete("/pos/items/:key", pos.RemoveItemHandler(store))
	adminRoutes.Post("/pos/charge", pos.ChargeHandler(store))
	adminRoutes.Post("/pos/close-till", pos.CloseTillHandler(store))

	// Raporlar ve ayarlar
	adminRoutes.Get("/reports/financial", reports.FinancialReportHandler())
	adminRoutes.Get("/reports/stock", reports.StockReportHandler())
	adminRoutes.Get("/reports/stock/export", reports.ExportXLSXHandler())
	adminRoutes.Get("/config/shipping", reports.GetShippingConfigHandler())
	adminRoutes.Put("/config/shipping", reports.UpdateShippingConfigHandler())

	// Giderler
	adminRoutes.Get("/expenses", expense.ListExpensesHandler())
	adminRoutes.Post("/expenses", expense.CreateExpenseHandler())
	adminRoutes.Put("/expenses/:id", expense.UpdateExpenseHandler())
	adminRoutes.Delete("/expenses/:id", expense.DeleteExpenseHandler())

	// Denetim kayıtları
	adminRoutes.Get("/audit-logs", audit.ListAuditLogsHandler())

	logrus.WithField("port", cfg.HTTPPort).Info("Sunucu başlatılıyor")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logrus.WithError(err).Fatal("Sunucu başlatılamadı")
	}
}
