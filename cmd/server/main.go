package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/telecasthq/telecast-backend/internal/auth"
	"github.com/telecasthq/telecast-backend/internal/config"
	"github.com/telecasthq/telecast-backend/internal/controller"
	"github.com/telecasthq/telecast-backend/internal/db"
	"github.com/telecasthq/telecast-backend/internal/google"
	"github.com/telecasthq/telecast-backend/internal/provider"
	"github.com/telecasthq/telecast-backend/internal/provider/telegram"
	"github.com/telecasthq/telecast-backend/internal/provider/whatsapp"
	"github.com/telecasthq/telecast-backend/internal/queue"
	"github.com/telecasthq/telecast-backend/internal/repository"
	"github.com/telecasthq/telecast-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("failed to init logger:", err)
	}
	defer logger.Sync()

	cfg := config.Load()

	database, err := db.Connect(cfg.DB)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	userRepo := &repository.UserRepository{DB: database}
	contactRepo := &repository.ContactRepository{DB: database}
	campaignRepo := &repository.CampaignRepository{DB: database}
	logRepo := &repository.MessageLogRepository{DB: database}

	batch := provider.BatchConfig{ChunkSize: cfg.Dispatch.BatchSize, Pause: cfg.Dispatch.BatchPause}
	router := provider.NewRouter(logger,
		whatsapp.NewSender(cfg.Infobip, batch, logger),
		telegram.NewSender(cfg.Telegram, batch, logger),
	)

	oauthClient := google.NewOAuthClient(cfg.Google.ClientID, cfg.Google.ClientSecret)
	peopleClient := google.NewPeopleClient()

	messageService := &service.MessageService{
		Router:       router,
		ContactRepo:  contactRepo,
		CampaignRepo: campaignRepo,
		LogRepo:      logRepo,
		Logger:       logger,
	}
	contactService := &service.ContactService{
		ContactRepo: contactRepo,
		OAuth:       oauthClient,
		People:      peopleClient,
		Logger:      logger,
	}

	var q queue.Queue
	if cfg.AMQPURL != "" {
		amqpQueue, err := queue.NewAMQPQueue(cfg.AMQPURL, logger)
		if err != nil {
			logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer amqpQueue.Close()
		q = amqpQueue
	} else {
		logger.Info("AMQP_URL not set, using in-memory queue")
		q = queue.NewInMemoryQueue(logger)
	}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		ContactRepo:  contactRepo,
		UserRepo:     userRepo,
		Messages:     messageService,
		Queue:        q,
		Logger:       logger,
	}

	// With the in-memory queue there is no separate worker; jobs are
	// processed in-process.
	if cfg.AMQPURL == "" {
		if err := service.StartCampaignSendSubscriber(q, campaignService, logger); err != nil {
			logger.Fatal("failed to start campaign send subscriber", zap.Error(err))
		}
	}

	authController := &controller.AuthController{
		OAuth:     oauthClient,
		UserRepo:  userRepo,
		JWTSecret: cfg.JWTSecret,
		Logger:    logger,
	}
	contactController := &controller.ContactController{ContactService: contactService, Logger: logger}
	campaignController := &controller.CampaignController{CampaignService: campaignService, Logger: logger}
	messageController := &controller.MessageController{MessageService: messageService, LogRepo: logRepo, Logger: logger}

	authMiddleware := &auth.Middleware{Users: userRepo, Secret: cfg.JWTSecret, Logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/auth/google", authController.Login)
	r.Get("/auth/google/callback", authController.Callback)
	r.Get("/auth/logout", authController.Logout)
	r.Get("/api/auth/status", authController.Status)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Get("/contacts", contactController.List)
		r.Post("/contacts", contactController.Create)
		r.Post("/contacts/import", contactController.Import)
		r.Put("/contacts/update-telegram", contactController.UpdateTelegram)

		r.Get("/campaigns", campaignController.List)
		r.Post("/campaigns", campaignController.Create)
		r.Get("/campaigns/count", campaignController.Count)
		r.Post("/campaigns/{id}/send", campaignController.Send)
		r.Post("/campaigns/{id}/preview", campaignController.Preview)

		r.Post("/messages/send", messageController.Send)
		r.Get("/messages/logs", messageController.Logs)
		r.Get("/messages/count", messageController.Count)
	})

	logger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
