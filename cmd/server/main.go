package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"calendar-service/internal/app"
	"calendar-service/internal/config"
	"calendar-service/internal/notify"
	"calendar-service/internal/postgres"
	"calendar-service/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment variables")
	}

	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if conf.DatabaseURL == "" {
		log.Fatal("DATABASE_URL required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, conf.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     conf.RedisURL,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
	})
	defer redisClient.Close()

	events := postgres.NewEventRepository(pool)
	users := postgres.NewUserRepository(pool)
	ledger := notify.NewRedisLedger(redisClient)
	broker := notify.NewBroker()
	interval := time.Duration(conf.PollIntervalSeconds) * time.Second

	sessions := app.NewSessionManager(ctx, events, ledger, broker, interval)
	defer sessions.Shutdown()

	appInstance := app.New(events, users, ledger, broker, sessions)

	router := gin.Default()
	router.Use(app.AuthMiddleware(conf.JWTSecret, conf.StaticTokens))

	api := router.Group("/api")
	{
		calendars := api.Group("/calendars")
		{
			calendars.POST("", appInstance.CreateCalendarHandler)
			calendars.GET("/:id/events", appInstance.ListCalendarEventsHandler)
		}

		events := api.Group("/events")
		{
			events.POST("/:id/transfer", appInstance.InitiateTransferHandler)
			events.POST("/:id/accept", appInstance.AcceptTransferHandler)
			events.POST("/:id/reject", appInstance.RejectTransferHandler)
			events.POST("/:id/takeover", appInstance.TakeoverHandler)
			events.POST("/:id/status", appInstance.RequestStatusHandler)
		}

		api.POST("/session", appInstance.OpenSessionHandler)
		api.DELETE("/session", appInstance.CloseSessionHandler)
		api.GET("/notifications", appInstance.NotificationsHandler)
		api.POST("/notifications/:id/dismiss", appInstance.DismissNotificationHandler)
	}

	server.Run(router, conf.Listen)
}
