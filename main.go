package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"clan-wars-system/handlers"
	"clan-wars-system/middleware"
	"clan-wars-system/models"
	"clan-wars-system/services"
	"clan-wars-system/utils"
	"clan-wars-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB — avatars only
	})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Name",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Clan{},
		&models.ClanMember{},
		&models.Duel{},
		&models.Tournament{},
		&models.Trade{},
		&models.ClanMessage{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	clanService := services.NewClanService(db)
	duelService := services.NewDuelService(db)
	tournamentService := services.NewTournamentService(db)
	statsService := services.NewStatsService(db)
	profileService := services.NewProfileService(db)
	chatService := services.NewChatService(db)

	heliusKey := os.Getenv("HELIUS_API_KEY")
	if heliusKey == "" {
		log.Fatal("HELIUS_API_KEY environment variable not set")
	}
	importer := workers.NewTradeImporter(db, workers.NewHeliusClient(heliusKey))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go workers.PollLinkedWallets(ctx, importer, 5*time.Minute)
	services.StartResolutionScheduler(duelService, tournamentService)

	handlers.SetupClanRoutes(app, clanService, chatService, statsService)
	handlers.SetupDuelRoutes(app, duelService, clanService)
	handlers.SetupTournamentRoutes(app, tournamentService, statsService)
	handlers.SetupProfileRoutes(app, profileService, clanService, statsService, importer)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Linked-wallet trade polling running (every 5m)")
	log.Println("✅ Duel/tournament resolution scheduler running")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
