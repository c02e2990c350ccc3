package app

import (
	"time"

	client "github.com/alexisbanda/invercorp-backend/app/clients"
	"github.com/alexisbanda/invercorp-backend/config"
	"github.com/alexisbanda/invercorp-backend/database"
	"github.com/alexisbanda/invercorp-backend/router"
	"github.com/go-redis/cache/v8"
	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SetupAndRunApp handle app and database start and graceful shutdown
func SetupAndRunApp() error {
	// start database
	err := database.StartMongoDB()
	if err != nil {
		return err
	}

	// defer closing database
	defer database.CloseMongoDB()

	l := logrus.New()

	rdb := redis.NewClient(&redis.Options{
		Addr: config.GetEnvDefault("REDIS_URL", "localhost:6379"),
	})
	rcache := cache.New(&cache.Options{
		Redis:      rdb,
		LocalCache: cache.NewTinyLFU(1000, time.Minute),
	})

	sms := client.NewTwilioClient(l)

	// create app
	app := fiber.New()

	// attach middleware
	FiberMiddleware(app)

	// setup routes
	router.SetupRoutes(app, rcache, sms)

	// attach swagger
	config.AddSwaggerRoutes(app)

	StartServerWithGracefulShutdown(app)

	return nil
}
