package main

import (
	"log"
	"strings"

	"otel-backend/internal/audit"
	"otel-backend/internal/auth"
	"otel-backend/internal/billing"
	"otel-backend/internal/bookings"
	"otel-backend/internal/config"
	"otel-backend/internal/database"
	"otel-backend/internal/finance"
	"otel-backend/internal/guests"
	"otel-backend/internal/housekeeping"
	"otel-backend/internal/inventory"
	"otel-backend/internal/models"
	"otel-backend/internal/pos"
	"otel-backend/internal/rooms"
	"otel-backend/internal/staff"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
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
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Public rezervasyon sayfası (auth yok)
	api.Get("/public/availability", bookings.PublicAvailabilityHandler())
	api.Post("/public/bookings", bookings.PublicCreateBookingHandler())
	api.Get("/public/bookings/:code", bookings.PublicBookingLookupHandler())

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Personel yönetimi
	adminRoutes.Post("/staff", staff.CreateStaffHandler())
	adminRoutes.Get("/staff", staff.ListStaffHandler())
	adminRoutes.Put("/staff/:id", staff.UpdateStaffHandler())
	adminRoutes.Patch("/staff/:id/active", staff.SetStaffActiveHandler())
	adminRoutes.Patch("/staff/:id/password", staff.ResetStaffPasswordHandler())
	adminRoutes.Delete("/staff/:id", staff.DeleteStaffHandler())

	// Gider kategorileri
	adminRoutes.Post("/expense-categories", finance.CreateExpenseCategoryHandler())
	adminRoutes.Put("/expense-categories/:id", finance.UpdateExpenseCategoryHandler())
	adminRoutes.Delete("/expense-categories/:id", finance.DeleteExpenseCategoryHandler())

	// İade kararları
	adminRoutes.Patch("/refunds/:id/decision", finance.DecideRefundHandler())

	// Oda yönetimi (tanım değişiklikleri sadece admin)
	adminRoutes.Post("/rooms", rooms.CreateRoomHandler())
	adminRoutes.Put("/rooms/:id", rooms.UpdateRoomHandler())
	adminRoutes.Delete("/rooms/:id", rooms.DeleteRoomHandler())

	// Ortak (auth gerektiren) route'lar

	// Dashboard
	protected.Get("/dashboard", rooms.DashboardHandler())

	// Odalar
	protected.Get("/rooms", rooms.ListRoomsHandler())
	protected.Get("/rooms/:id", rooms.GetRoomHandler())
	protected.Patch("/rooms/:id/status", rooms.UpdateRoomStatusHandler())

	// Misafirler
	protected.Post("/guests", guests.CreateGuestHandler())
	protected.Get("/guests", guests.ListGuestsHandler())
	protected.Get("/guests/:id", guests.GetGuestHandler())
	protected.Put("/guests/:id", guests.UpdateGuestHandler())
	protected.Delete("/guests/:id", guests.DeleteGuestHandler())
	protected.Get("/guests/:id/billing", billing.GuestBillingHandler())

	// Rezervasyonlar
	protected.Post("/bookings", bookings.CreateBookingHandler())
	protected.Get("/bookings", bookings.ListBookingsHandler())
	protected.Get("/bookings/:id", bookings.GetBookingHandler())
	protected.Put("/bookings/:id", bookings.UpdateBookingHandler())
	protected.Post("/bookings/:id/check-in", bookings.CheckInHandler())
	protected.Post("/bookings/:id/check-out", bookings.CheckOutHandler())
	protected.Post("/bookings/:id/cancel", bookings.CancelBookingHandler())
	protected.Get("/bookings/:id/billing", billing.BookingBillingHandler())
	protected.Post("/bookings/:id/payments", bookings.CreatePaymentHandler())
	protected.Get("/bookings/:id/payments", bookings.ListPaymentsHandler())

	// Stok
	protected.Post("/inventory/items", inventory.CreateItemHandler())
	protected.Get("/inventory/items", inventory.ListItemsHandler())
	protected.Get("/inventory/items/low-stock", inventory.LowStockHandler())
	protected.Get("/inventory/items/:id", inventory.GetItemHandler())
	protected.Put("/inventory/items/:id", inventory.UpdateItemHandler())
	protected.Delete("/inventory/items/:id", inventory.DeleteItemHandler())
	protected.Post("/inventory/items/import", inventory.BulkImportItemsHandler())
	protected.Post("/inventory/items/:id/lots", inventory.CreateLotHandler())
	protected.Get("/inventory/items/:id/lots", inventory.ListLotsHandler())
	protected.Get("/inventory/lots/expiring", inventory.ExpiringLotsHandler())
	protected.Post("/inventory/adjustments", inventory.CreateAdjustmentHandler())
	protected.Get("/inventory/adjustments", inventory.ListAdjustmentsHandler())

	// POS
	protected.Post("/pos/cart/quote", pos.CartQuoteHandler())
	protected.Post("/pos/cart/rebind", pos.CartRebindHandler())
	protected.Post("/pos/checkout", pos.CheckoutHandler())
	protected.Get("/pos/transactions", pos.ListTransactionsHandler())
	protected.Get("/pos/transactions/:id", pos.GetTransactionHandler())
	protected.Post("/pos/transactions/:id/complete", pos.CompleteTransactionHandler())
	protected.Post("/pos/transactions/:id/void", pos.VoidTransactionHandler())

	// Kat hizmetleri
	protected.Post("/housekeeping/tasks", housekeeping.CreateTaskHandler())
	protected.Get("/housekeeping/tasks", housekeeping.ListTasksHandler())
	protected.Put("/housekeeping/tasks/:id", housekeeping.UpdateTaskHandler())
	protected.Patch("/housekeeping/tasks/:id/status", housekeeping.UpdateTaskStatusHandler())
	protected.Delete("/housekeeping/tasks/:id", housekeeping.DeleteTaskHandler())
	protected.Post("/housekeeping/assessments", housekeeping.CreateAssessmentHandler())
	protected.Get("/housekeeping/assessments", housekeeping.ListAssessmentsHandler())
	protected.Put("/housekeeping/assessments/:id", housekeeping.UpdateAssessmentHandler())
	protected.Delete("/housekeeping/assessments/:id", housekeeping.DeleteAssessmentHandler())

	// Giderler
	protected.Get("/expense-categories", finance.ListExpenseCategoriesHandler())
	protected.Post("/expenses", finance.CreateExpenseHandler())
	protected.Get("/expenses", finance.ListExpensesHandler())
	protected.Delete("/expenses/:id", finance.DeleteExpenseHandler())
	protected.Get("/expenses/summary/monthly", finance.MonthlyExpenseSummaryHandler())

	// İadeler
	protected.Post("/refunds", finance.CreateRefundHandler())
	protected.Get("/refunds", finance.ListRefundsHandler())

	// Finansal özet
	protected.Get("/finance/summary/daily", finance.GetDailyFinancialSummaryHandler())
	protected.Get("/finance/summary/monthly", finance.GetMonthlyFinancialSummaryHandler())
	protected.Get("/finance/reports/monthly.xlsx", finance.ExportMonthlyReportHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
