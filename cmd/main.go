package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/mathx-agent/config"
	"github.com/lshigami/mathx-agent/database"
	_ "github.com/lshigami/mathx-agent/docs" // Swagger docs - auto-generated
	chatctrl "github.com/lshigami/mathx-agent/internal/controller/chat"
	reviewctrl "github.com/lshigami/mathx-agent/internal/controller/review"
	"github.com/lshigami/mathx-agent/internal/logger"
	"github.com/lshigami/mathx-agent/internal/model"
	"github.com/lshigami/mathx-agent/internal/notify"
	"github.com/lshigami/mathx-agent/internal/repository"
	"github.com/lshigami/mathx-agent/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title MathX Agent API
// @version 1.0
// @description Chat assistant that ingests quiz questions from PDFs, walks a reviewer through an approval loop and publishes approved questions into the contest catalog.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:3000
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
			notify.NewHub,
			func(h *notify.Hub) notify.Notifier { return h },
		),

		// Repositories Layer
		fx.Provide(
			repository.NewPendingQuestionRepository,
			repository.NewContestRepository,
			repository.NewCatalogQuestionRepository,
			repository.NewChatMessageRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewExtractionService,
			service.NewIngestionService,
			service.NewReviewService,
			service.NewGeminiRouterService,
			service.NewInsightService,
			service.NewChatService,
		),

		// API Controllers Layer
		fx.Provide(
			reviewctrl.NewReviewController,
			chatctrl.NewChatController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.DebugMode)

	r := gin.New()

	// Request logging through the global zerolog instance.
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	hub *notify.Hub,
	reviewCtrl *reviewctrl.ReviewController,
	chatCtrl *chatctrl.ChatController,
) {
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().Format(time.RFC3339)})
	})
	router.GET("/ws", hub.HandleWS)

	apiGroup := router.Group("/api/v1")
	{
		apiGroup.POST("/ingest", reviewCtrl.Ingest)
		apiGroup.GET("/questions/pending", reviewCtrl.ListPending)

		reviewGroup := apiGroup.Group("/review")
		reviewGroup.POST("/sessions", reviewCtrl.StartSession)
		reviewGroup.POST("/decisions", reviewCtrl.SubmitDecision)

		apiGroup.POST("/chat", chatCtrl.Chat)
		apiGroup.GET("/chat/history", chatCtrl.History)

		apiGroup.GET("/contests", chatCtrl.GetContests)
		apiGroup.GET("/contests/:id", chatCtrl.GetContest)
		apiGroup.GET("/contests/:id/questions", chatCtrl.GetContestQuestions)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("MathX Agent API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Contest{},
		&model.CatalogQuestion{},
		&model.PendingQuestion{},
		&model.ChatMessage{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
