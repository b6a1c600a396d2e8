package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"top-doggo/handlers"
	"top-doggo/middleware"
	"top-doggo/models"
	"top-doggo/services"
	"top-doggo/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		log.Fatal("BASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Dog{},
		&models.FinishedDog{},
		&models.Match{},
		&models.Rating{},
		&models.EmailToken{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}
	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	identityService := services.NewIdentityService(db)
	auditService := services.NewAuditService(db)
	ratingService := services.NewRatingService(db)
	matchmakerService := services.NewMatchmakerService(db)
	gameService := services.NewGameService(db, matchmakerService, ratingService, auditService)
	meService := services.NewMeService(db)
	leaderboardService := services.NewLeaderboardService(db)
	uploadService := services.NewUploadService(db, gameService)
	magicLinkService := services.NewMagicLinkService(db, newMailer(), auditService, identityService, baseURL)

	magicLinkService.StartTokenPurgeScheduler()

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // photos only
	})

	// Every request resolves to a user before any handler runs.
	app.Use(middleware.SessionMiddleware(identityService))

	handlers.SetupGameRoutes(app, gameService)
	handlers.SetupMeRoutes(app, meService, magicLinkService)
	handlers.SetupLeaderboardRoutes(app, leaderboardService)
	handlers.SetupUploadRoutes(app, uploadService)

	app.Static("/uploads", "./uploads")

	port := os.Getenv("PORT")
	if port == "" {
		port = "5200"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Top Doggo running on http://localhost:%s", port)
	log.Println("✅ Session middleware enforced globally: every request resolves to a user")
	log.Println("✅ Email token purge scheduler running (hourly)")

	<-ctx.Done()
	log.Println("Shutting down server...")
}

func newMailer() services.Mailer {
	if os.Getenv("MODE") == "development" {
		return &services.LogMailer{}
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return &services.SMTPMailer{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}
