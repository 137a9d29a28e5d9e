package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chatbot  ChatbotConfig  `mapstructure:"chatbot"`
	Carousel CarouselConfig `mapstructure:"carousel"`
	Delivery DeliveryConfig `mapstructure:"delivery"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Environment  string `mapstructure:"environment"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type ChatbotConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Token      string `mapstructure:"token"`
	Timeout    int    `mapstructure:"timeout"`
}

// CarouselConfig holds the settings of the carousel timer scheduler.
type CarouselConfig struct {
	PollInterval    int  `mapstructure:"poll_interval"`    // seconds between due-timer polls
	WorkerCount     int  `mapstructure:"worker_count"`     // parallel fire workers
	SendTimeout     int  `mapstructure:"send_timeout"`     // seconds per transport call
	RetryDelay      int  `mapstructure:"retry_delay"`      // minutes before retrying a failed fire
	ShutdownTimeout int  `mapstructure:"shutdown_timeout"` // seconds to wait for workers on stop
	Enabled         bool `mapstructure:"enabled"`
}

// DeliveryConfig holds the settings of the asynchronous message delivery queue.
type DeliveryConfig struct {
	PollInterval    int `mapstructure:"poll_interval"`    // seconds between due-job polls
	WorkerCount     int `mapstructure:"worker_count"`     // parallel delivery workers
	MaxAttempts     int `mapstructure:"max_attempts"`     // send attempts per job
	RetryDelay      int `mapstructure:"retry_delay"`      // seconds between attempts
	StaleAfter      int `mapstructure:"stale_after"`      // seconds before a claimed job is requeued
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // seconds to wait for workers on stop
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set defaults
	setDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "carouselbot")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 300)

	viper.SetDefault("chatbot.webhook_url", "/webhook")
	viper.SetDefault("chatbot.token", "")
	viper.SetDefault("chatbot.timeout", 30)

	viper.SetDefault("carousel.poll_interval", 15)
	viper.SetDefault("carousel.worker_count", 2)
	viper.SetDefault("carousel.send_timeout", 30)
	viper.SetDefault("carousel.retry_delay", 10) // 10 minutes
	viper.SetDefault("carousel.shutdown_timeout", 30)
	viper.SetDefault("carousel.enabled", true)

	viper.SetDefault("delivery.poll_interval", 5)
	viper.SetDefault("delivery.worker_count", 2)
	viper.SetDefault("delivery.max_attempts", 3)
	viper.SetDefault("delivery.retry_delay", 5)
	viper.SetDefault("delivery.stale_after", 300)
	viper.SetDefault("delivery.shutdown_timeout", 30)
}
