package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/auth"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/catalog"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/db"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/llm"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/middleware"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/modifier"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/order"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/pos"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/refresh"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/session"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/speech"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/storage"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/whatsapp"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	// ───────────────────────── ENV ─────────────────────────
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	required := []string{
		"JWT_SECRET",
		"ADMIN_USERNAME",
		"ADMIN_PASSWORD_HASH",
		"DATABASE_URL",
		"ANTHROPIC_API_KEY",
		"ANTHROPIC_MODEL",
		"LOYVERSE_CLIENT_ID",
		"LOYVERSE_CLIENT_SECRET",
		"LOYVERSE_REFRESH_TOKEN",
		"LOYVERSE_STORE_ID",
		"R2_ACCESS_KEY",
		"R2_SECRET_KEY",
		"R2_BUCKET_NAME",
		"R2_ENDPOINT",
		"R2_PUBLIC_BASE_URL",
	}

	for _, k := range required {
		if os.Getenv(k) == "" {
			log.Fatalf("❌ Missing env var: %s", k)
		}
	}

	// ───────────────────────── DB ─────────────────────────
	pgDB := db.ConnectPostgres()
	defer pgDB.Close()

	// ───────────────────────── GIN ─────────────────────────
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// ───────────────────────── STORAGE ─────────────────────────
	r2Client, err := storage.NewR2Client(context.Background())
	if err != nil {
		log.Fatal("❌ R2 init failed:", err)
	}

	// ───────────────────────── POS ─────────────────────────
	posAuth := pos.NewAuthenticator(
		os.Getenv("LOYVERSE_CLIENT_ID"),
		os.Getenv("LOYVERSE_CLIENT_SECRET"),
		os.Getenv("LOYVERSE_REFRESH_TOKEN"),
		"https://api.loyverse.com/oauth/token",
	)
	posClient := pos.NewClient(
		"https://api.loyverse.com/v1.0",
		os.Getenv("LOYVERSE_STORE_ID"),
		posAuth,
	)

	// ───────────────────────── CATALOG SNAPSHOT ─────────────────────────
	catalogRepo := catalog.NewPostgresRepository(pgDB)
	ruleRepo := modifier.NewPostgresRepository(pgDB)
	snapshotStore := refresh.NewStore()

	refreshService := refresh.NewService(catalogRepo, ruleRepo, posClient, snapshotStore, r2Client)

	if _, err := refreshService.Rebuild(context.Background()); err != nil {
		log.Printf("⚠️  initial catalog build failed, serving without snapshot: %v", err)
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go refreshService.RunWorker(workerCtx, refreshInterval())

	// ───────────────────────── CONVERSATION ─────────────────────────
	sessions := session.NewStore(30 * time.Minute)
	go sessions.RunJanitor(workerCtx, 5*time.Minute)

	receiptRepo := order.NewPostgresRepository(pgDB)

	adapter := newAdapter()
	conversation := whatsapp.NewService(
		adapter,
		snapshotStore,
		sessions,
		llm.NewClaudeClient(),
		speech.NewDeepgramClient(),
		posClient,
		receiptRepo,
		r2Client,
		taxRate(),
	)

	// ───────────────────────── HANDLERS ─────────────────────────
	authHandler := auth.NewHandler(auth.NewService())
	webhookHandler := whatsapp.NewHandler(adapter, conversation)
	orderHandler := order.NewHandler(snapshotStore, receiptRepo)
	catalogHandler := refresh.NewHandler(refreshService, snapshotStore)

	// ───────────────────────── ROUTES ─────────────────────────
	r.POST("/webhook/whatsapp", webhookHandler.Webhook)
	r.POST("/orders/normalize", orderHandler.Normalize)

	admin := r.Group("/admin")
	{
		admin.POST("/login", authHandler.Login)

		protected := admin.Group("")
		protected.Use(middleware.AdminOnly())
		{
			protected.POST("/catalog/refresh", catalogHandler.Refresh)
			protected.GET("/catalog/status", catalogHandler.Status)
			protected.GET("/orders/history", orderHandler.History)
		}
	}

	// ───────────────────────── HEALTH ─────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ───────────────────────── START ─────────────────────────
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Println("🚀 API running at http://localhost:" + port)
	r.Run(":" + port)
}

// --------------------------------------------------
func newAdapter() whatsapp.Adapter {
	if os.Getenv("WHATSAPP_PROVIDER") == "dialog360" {
		return whatsapp.NewDialog360Adapter()
	}
	return whatsapp.NewTwilioAdapter()
}

func taxRate() float64 {
	raw := os.Getenv("TAX_RATE")
	if raw == "" {
		return 0.115
	}
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || rate < 0 || rate > 1 {
		log.Fatalf("❌ Invalid TAX_RATE: %s", raw)
	}
	return rate
}

func refreshInterval() time.Duration {
	raw := os.Getenv("CATALOG_REFRESH_MINUTES")
	if raw == "" {
		return 6 * time.Hour
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		log.Fatalf("❌ Invalid CATALOG_REFRESH_MINUTES: %s", raw)
	}
	return time.Duration(minutes) * time.Minute
}
