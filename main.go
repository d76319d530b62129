package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/streadway/amqp"

	"storeapi/internal/config"
	"storeapi/internal/database"
	"storeapi/internal/handlers"
	"storeapi/internal/repositories"
	"storeapi/internal/services"
	"storeapi/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		startEventLogger(mqClient)
	} else {
		log.Println("RABBITMQ_URL is empty, domain events are disabled")
	}

	app, err := newApp(cfg, mqClient)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// newApp wires storage, services and handlers into a Fiber app. mqClient may be nil.
func newApp(cfg config.Config, mqClient *rabbitmq.Client) (*fiber.App, error) {
	var tx repositories.TxManager
	if cfg.DatabaseURL == database.MemoryURL {
		log.Println("Using in-memory storage")
		tx = repositories.NewMemoryTxManager()
	} else {
		db, err := database.Open(cfg.DatabaseURL, database.LogLevel(cfg.DBLogLevel))
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		tx = repositories.NewGORMTxManager(db)
	}

	// A nil *rabbitmq.Client must not become a non-nil interface.
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}

	authService := services.NewAuthService(tx, cfg.JWTSecret, cfg.JWTExpiration, publisher, cfg.RabbitMQExchange)
	itemService := services.NewItemService(tx, publisher, cfg.RabbitMQExchange)
	storeService := services.NewStoreService(tx, publisher, cfg.RabbitMQExchange)

	app := fiber.New(handlers.Config())
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": publisher != nil,
		})
	})

	handlers.RegisterRoutes(app, authService, itemService, storeService)
	return app, nil
}

// startEventLogger consumes the domain events published by this service and logs them.
func startEventLogger(mqClient *rabbitmq.Client) {
	err := mqClient.ConsumeEvents(func(msg amqp.Delivery) error {
		var ev services.Event
		if err := json.Unmarshal(msg.Body, &ev); err != nil {
			return fmt.Errorf("malformed event: %w", err)
		}
		log.Printf("Received %s event %s at %s", ev.Type, ev.ID, ev.OccurredAt.Format(time.RFC3339))
		return nil
	})
	if err != nil {
		log.Printf("Failed to start RabbitMQ consumer: %v", err)
	}
}
