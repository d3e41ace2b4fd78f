package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/telecasthq/telecast-backend/internal/config"
	"github.com/telecasthq/telecast-backend/internal/db"
	"github.com/telecasthq/telecast-backend/internal/provider"
	"github.com/telecasthq/telecast-backend/internal/provider/telegram"
	"github.com/telecasthq/telecast-backend/internal/provider/whatsapp"
	"github.com/telecasthq/telecast-backend/internal/queue"
	"github.com/telecasthq/telecast-backend/internal/repository"
	"github.com/telecasthq/telecast-backend/internal/service"
)

// The worker consumes queued campaign send jobs from RabbitMQ and runs
// the same dispatch pipeline the server uses.
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
	if cfg.AMQPURL == "" {
		logger.Fatal("AMQP_URL is required for the worker")
	}

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

	messageService := &service.MessageService{
		Router:       router,
		ContactRepo:  contactRepo,
		CampaignRepo: campaignRepo,
		LogRepo:      logRepo,
		Logger:       logger,
	}

	amqpQueue, err := queue.NewAMQPQueue(cfg.AMQPURL, logger)
	if err != nil {
		logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer amqpQueue.Close()

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		ContactRepo:  contactRepo,
		UserRepo:     userRepo,
		Messages:     messageService,
		Queue:        amqpQueue,
		Logger:       logger,
	}

	if err := service.StartCampaignSendSubscriber(amqpQueue, campaignService, logger); err != nil {
		logger.Fatal("failed to start campaign send subscriber", zap.Error(err))
	}

	logger.Info("worker running, waiting for jobs")
	select {}
}
