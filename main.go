package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"wardwatch-be/config"
	"wardwatch-be/controllers"
	"wardwatch-be/eventbus"
	"wardwatch-be/routes"
	"wardwatch-be/summary"
	"wardwatch-be/workers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}
	log.Println("MongoDB connection established successfully!")

	config.ConnectRedis()

	bus := eventbus.NewRedisEventBus(config.RedisClient)
	controllers.EventBus = bus
	controllers.SummaryClient = summary.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go workers.StartOverdueWatcher(ctx, bus, 1*time.Minute)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendOrigin},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.AuthRoutes(r)
	routes.IssueRoutes(r)
	routes.WardRoutes(r)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
