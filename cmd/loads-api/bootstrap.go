package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/DriverComm/config"
	"github.com/BearBump/DriverComm/internal/api/directory_api"
	"github.com/BearBump/DriverComm/internal/api/loads_api"
	"github.com/BearBump/DriverComm/internal/broker/kafka"
	"github.com/BearBump/DriverComm/internal/cache/rediscache"
	"github.com/BearBump/DriverComm/internal/integrations/sms"
	"github.com/BearBump/DriverComm/internal/integrations/sms/fake"
	"github.com/BearBump/DriverComm/internal/integrations/sms/twiliohttp"
	"github.com/BearBump/DriverComm/internal/services/directory"
	"github.com/BearBump/DriverComm/internal/services/loads"
	"github.com/BearBump/DriverComm/internal/services/notify"
	"github.com/BearBump/DriverComm/internal/storage/pgloads"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultBaseURL         = "http://localhost:8080"
	defaultLoadEventsTopic = "load.events"
)

type loadsAPIApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     loadsAPIOpts
	deps     loadsAPIDeps
	producer *kafka.Producer
	cache    *rediscache.RedisCache
	closeDB  func()
}

func mustBootstrapLoadsAPI() *loadsAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	swaggerPath := os.Getenv("swaggerPath")
	if swaggerPath == "" {
		swaggerPath = "api/swagger.json"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	httpAddr := cfg.DriverComm.HTTPAddr
	if httpAddr == "" {
		httpAddr = defaultHTTPAddr
	}
	baseURL := cfg.DriverComm.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	topic := cfg.Kafka.LoadEventsTopic
	if topic == "" {
		topic = defaultLoadEventsTopic
	}
	cacheTTL := time.Duration(cfg.DriverComm.LoadCacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	notifyTimeout := time.Duration(cfg.DriverComm.NotifyTimeoutSeconds) * time.Second

	st := mustOpenPostgresWithRetry(postgresConnString(cfg), 60*time.Second)

	rc := rediscache.New(redisOptions(cfg))

	var producer *kafka.Producer
	if cfg.Kafka.Host != "" {
		producer = kafka.NewProducer([]string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)})
	}

	dispatcher := notify.New(newSMSClient(cfg), st, baseURL, notifyTimeout)
	loadsSvc := loads.New(st, dispatcher, rc, cacheTTL)
	if producer != nil {
		loadsSvc.WithEvents(producer, topic)
	}
	dirSvc := directory.New(st)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &loadsAPIApp{
		ctx:    ctx,
		cancel: cancel,
		opts: loadsAPIOpts{
			httpAddr:    httpAddr,
			swaggerPath: swaggerPath,
			webDir:      cfg.DriverComm.WebDir,
		},
		deps: loadsAPIDeps{
			loads:     loads_api.New(loadsSvc),
			directory: directory_api.New(dirSvc),
			db:        st,
		},
		producer: producer,
		cache:    rc,
		closeDB:  st.Close,
	}
}

// newSMSClient: sms_provider=fake даёт транспорт без сети.
// twiliohttp без кредов сам пропускает отправку.
func newSMSClient(cfg *config.Config) sms.Client {
	if cfg.DriverComm.SMSProvider == "fake" {
		return fake.New()
	}
	return twiliohttp.New(cfg.Twilio.BaseURL, cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.MessagingServiceSID, cfg.Twilio.From)
}

func postgresConnString(cfg *config.Config) string {
	sslMode := cfg.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
}

func redisOptions(cfg *config.Config) rediscache.Options {
	return rediscache.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgloads.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgloads.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *loadsAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.closeDB != nil {
		a.closeDB()
	}
}

func (a *loadsAPIApp) Run() error {
	return runLoadsAPI(a.ctx, a.opts, a.deps)
}
