package main

import (
	"log"

	"github.com/MUKKASPANDANA/live-polling-system/internal/config"
	"github.com/MUKKASPANDANA/live-polling-system/internal/database"
	"github.com/MUKKASPANDANA/live-polling-system/internal/handlers"
	"github.com/MUKKASPANDANA/live-polling-system/internal/middleware"
	"github.com/MUKKASPANDANA/live-polling-system/internal/services"
	"github.com/MUKKASPANDANA/live-polling-system/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Live Polling API
// @version         1.0
// @description     API for a live, time-boxed poll broadcast to connected participants
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	hub := ws.NewHub()

	authService := services.NewAuthService(db, cfg.JWTSecret)
	pollService := services.NewPollService(db)
	voteService := services.NewVoteService(db, pollService)
	tallyService := services.NewTallyService(db, pollService)

	authHandler := handlers.NewAuthHandler(authService)
	pollHandler := handlers.NewPollHandler(pollService, voteService, tallyService, hub)
	wsHandler := handlers.NewWSHandler(hub, authService, pollService, voteService, tallyService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ws", wsHandler.HandleWebSocket)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		polls := api.Group("/polls")
		{
			polls.GET("/active", pollHandler.GetActivePoll)
			polls.GET("/history", pollHandler.GetHistory)
			polls.GET("/:id/tally", pollHandler.GetTally)
			polls.GET("/:id/participants/:participantId/voted", pollHandler.HasVoted)

			polls.POST("", middleware.JWTAuth(authService), pollHandler.CreatePoll)
			polls.POST("/close", middleware.JWTAuth(authService), pollHandler.ClosePoll)
		}
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
