package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-marketplace-ws/internal/config"
	"go-marketplace-ws/internal/handler"
	"go-marketplace-ws/internal/middleware"
	"go-marketplace-ws/internal/repository"
	"go-marketplace-ws/internal/service"
	"go-marketplace-ws/internal/ws"
	"go-marketplace-ws/pkg/database"
	"go-marketplace-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Env
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	cfg.SetupLogging()

	// 2. Setup Database
	db, err := database.Open(database.Options{
		Driver:      cfg.Database.Driver,
		PostgresDSN: cfg.Database.PostgresDSN(),
		SQLitePath:  cfg.Database.SQLitePath,
		Migrations:  cfg.Database.Migrations,
	})
	if err != nil {
		logrus.WithError(err).Fatal("database setup failed")
	}

	// 3. Setup WebSocket Hub
	wsHub := ws.NewHub(cfg.NotifyBuffer)
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	catalogRepo := repository.NewCatalogRepo()
	orderRepo := repository.NewOrderRepo()
	userRepo := repository.NewUserRepo()
	reportRepo := repository.NewReportRepo()

	authService := service.NewAuthService(userRepo, db, tokens)
	catalogService := service.NewCatalogService(catalogRepo, db)
	orderService := service.NewOrderService(catalogRepo, orderRepo, db, wsHub)
	reportService := service.NewReportService(catalogRepo, orderRepo, reportRepo, db)
	subscriptionService := service.NewSubscriptionService(catalogRepo, db)

	handlers := handler.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Catalog: handler.NewCatalogHandler(catalogService),
		Order:   handler.NewOrderHandler(orderService),
		Report:  handler.NewReportHandler(reportService),
		WS:      handler.NewWSHandler(wsHub, subscriptionService),
	}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: handler.ErrorHandler,
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS
	app.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// 6. Routes
	handler.SetupRoutes(app, handlers, middleware.RequireAuth(authService))

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logrus.WithError(err).Panic("server stopped")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		logrus.WithError(err).Fatal("Server forced to shutdown")
	}
	wsHub.Stop()
	if dropped := wsHub.Dropped(); dropped > 0 {
		logrus.WithField("dropped", dropped).Warn("notifications dropped during run")
	}

	logrus.Info("Server exited")
}
