package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HighviewOne/sonderbe/internal/api"
	"github.com/HighviewOne/sonderbe/internal/billing"
	"github.com/HighviewOne/sonderbe/internal/db"
	"github.com/HighviewOne/sonderbe/internal/logging"
	"github.com/HighviewOne/sonderbe/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.SetOutput(os.Stdout)
	log.Printf("Sonder backend starting (GIT_SHA=%s BUILD_TIME=%s)", os.Getenv("GIT_SHA"), os.Getenv("BUILD_TIME"))

	// Database init is non-fatal so the process can come up for /live
	database, err := db.NewDatabase()
	if err != nil {
		log.Printf("[WARN] Database initialization failed at startup: %v", err)
	}
	if database != nil {
		defer database.Close()
	}

	store, err := storage.New(context.Background())
	if err != nil {
		log.Printf("[WARN] Object storage initialization failed: %v", err)
	}
	if !store.Enabled() {
		log.Println("[WARN] Object storage not configured, document uploads disabled")
	}

	bill := billing.New(billing.Config{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PriceID:       os.Getenv("STRIPE_PRICE_ID"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
	}, database)

	handler := api.NewHandler(database, store, bill)
	router := setupRouter(handler, database)

	port := getEnv("PORT", "8080")

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}

func setupRouter(handler *api.Handler, database *db.Database) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "Stripe-Signature"},
	}
	if origin := os.Getenv("FRONTEND_URL"); origin != "" {
		corsCfg.AllowOrigins = []string{origin}
	} else {
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	// Health and readiness
	router.GET("/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	healthCheck := func(c *gin.Context) {
		if database == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := database.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/ready", healthCheck)
	router.GET("/health", healthCheck)

	apiGroup := router.Group("/api")
	{
		// Intake form accepts anonymous posts
		apiGroup.POST("/submissions", api.OptionalAuth(database), handler.CreateSubmission)

		// Webhook authenticates by signature, not bearer token
		apiGroup.POST("/stripe/webhook", handler.StripeWebhook)

		authed := apiGroup.Group("")
		authed.Use(api.RequireAuth(database))
		{
			authed.GET("/profile", handler.GetProfile)
			authed.GET("/submissions", handler.ListSubmissions)

			authed.GET("/checklist", handler.GetChecklist)
			authed.PUT("/checklist", handler.UpdateChecklistItem)

			authed.GET("/documents", handler.ListDocuments)
			authed.POST("/documents/upload", handler.UploadDocument)
			authed.GET("/documents/:id/download", handler.DownloadDocument)
			authed.DELETE("/documents/:id", handler.DeleteDocument)

			authed.POST("/stripe/create-checkout", handler.CreateCheckout)
			authed.POST("/stripe/portal", handler.BillingPortal)
			authed.GET("/investor/subscription", handler.GetSubscription)

			investor := authed.Group("/investor")
			investor.Use(api.InvestorOnly(database))
			{
				investor.GET("/properties", handler.ListPropertiesInvestor)
				investor.GET("/properties/:id", handler.GetPropertyInvestor)
				investor.GET("/stats", handler.GetInvestorStats)
			}

			admin := authed.Group("")
			admin.Use(api.AdminOnly())
			{
				admin.GET("/profile/:id", handler.GetProfileByID)
				admin.GET("/checklist/:userId", handler.GetChecklistForUser)
				admin.GET("/documents/user/:userId", handler.ListDocumentsForUser)
				admin.PATCH("/submissions/:id", handler.ReviewSubmission)
				admin.PATCH("/documents/:id", handler.ReviewDocument)

				admin.GET("/admin/stats", handler.GetAdminStats)
				admin.GET("/admin/clients", handler.ListClients)
				admin.GET("/admin/clients/:id", handler.GetClientDetail)
				admin.GET("/admin/documents", handler.ListAllDocuments)
				admin.GET("/admin/investors", handler.ListInvestors)
				admin.GET("/admin/csv-uploads", handler.ListCsvUploads)

				admin.GET("/admin/properties", handler.ListPropertiesAdmin)
				admin.POST("/admin/properties", handler.CreateProperty)
				admin.POST("/admin/properties/csv-upload", handler.UploadPropertiesCSV)
				admin.PUT("/admin/properties/:id", handler.UpdateProperty)
				admin.DELETE("/admin/properties/:id", handler.DeleteProperty)
			}
		}
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "sonderbe",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	return router
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
