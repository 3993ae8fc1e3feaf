package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Redis      RedisConfig      `yaml:"redis"`
	Twilio     TwilioConfig     `yaml:"twilio"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	DriverComm DriverCommConfig `yaml:"drivercomm"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	LoadEventsTopic string `yaml:"load_events_topic"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// TwilioConfig: без account_sid/auth_token отправка SMS пропускается.
type TwilioConfig struct {
	BaseURL             string `yaml:"base_url"`
	AccountSID          string `yaml:"account_sid"`
	AuthToken           string `yaml:"auth_token"`
	MessagingServiceSID string `yaml:"messaging_service_sid"`
	From                string `yaml:"from"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type DriverCommConfig struct {
	HTTPAddr       string `yaml:"http_addr"`
	WorkerHTTPAddr string `yaml:"worker_http_addr"`
	BaseURL        string `yaml:"base_url"`
	WebDir         string `yaml:"web_dir"`

	NotifyTimeoutSeconds    int    `yaml:"notify_timeout_seconds"`
	LoadCacheTTLSeconds     int    `yaml:"load_cache_ttl_seconds"`
	KafkaConsumerGroup      string `yaml:"kafka_consumer_group"`
	EmailRateLimitPerMinute int    `yaml:"email_rate_limit_per_minute"`

	SMSProvider   string `yaml:"sms_provider"`   // "twilio" | "fake"
	EmailProvider string `yaml:"email_provider"` // "smtp" | "fake"
}

// LoadConfig читает YAML, затем .env (если есть) и переменные окружения
// с секретами поверх файла.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file, using process environment")
	}
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return &config, nil
}

// ApplyEnv переопределяет поля из окружения. Пустые переменные игнорируются.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("TWILIO_ACCOUNT_SID", &c.Twilio.AccountSID)
	str("TWILIO_AUTH_TOKEN", &c.Twilio.AuthToken)
	str("TWILIO_MESSAGING_SERVICE_SID", &c.Twilio.MessagingServiceSID)
	str("TWILIO_FROM", &c.Twilio.From)

	str("SMTP_HOST", &c.SMTP.Host)
	str("SMTP_USER", &c.SMTP.User)
	str("SMTP_PASS", &c.SMTP.Password)
	str("FROM_EMAIL", &c.SMTP.From)
	if err := num("SMTP_PORT", &c.SMTP.Port); err != nil {
		return err
	}

	str("BASE_URL", &c.DriverComm.BaseURL)
	var port string
	str("PORT", &port)
	if port != "" {
		c.DriverComm.HTTPAddr = ":" + port
	}
	return nil
}
