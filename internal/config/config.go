package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the binaries read from the environment.
type Config struct {
	HTTPAddr string

	DB       DBConfig
	Infobip  InfobipConfig
	Telegram TelegramConfig
	Google   GoogleConfig
	Dispatch DispatchConfig

	JWTSecret string
	AMQPURL   string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type InfobipConfig struct {
	APIKey  string
	BaseURL string
	Sender  string
}

type TelegramConfig struct {
	BotToken string
	APIURL   string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
}

// DispatchConfig bounds outbound throughput. The providers rate limit
// around 30 msg/s, so we fan out in small chunks with a pause in between.
type DispatchConfig struct {
	BatchSize  int
	BatchPause time.Duration
}

func Load() Config {
	return Config{
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
		DB: DBConfig{
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
		Infobip: InfobipConfig{
			APIKey:  os.Getenv("INFOBIP_API_KEY"),
			BaseURL: os.Getenv("INFOBIP_BASE_URL"),
			Sender:  os.Getenv("INFOBIP_WHATSAPP_SENDER"),
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			APIURL:   getenv("TELEGRAM_API_URL", "https://api.telegram.org"),
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		},
		Dispatch: DispatchConfig{
			BatchSize:  getenvInt("DISPATCH_BATCH_SIZE", 10),
			BatchPause: getenvDuration("DISPATCH_BATCH_PAUSE", time.Second),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		AMQPURL:   os.Getenv("AMQP_URL"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
