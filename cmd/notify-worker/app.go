package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BearBump/DriverComm/config"
	"github.com/BearBump/DriverComm/internal/broker/kafka"
	"github.com/BearBump/DriverComm/internal/cache/rediscache"
	"github.com/BearBump/DriverComm/internal/integrations/email"
	"github.com/BearBump/DriverComm/internal/integrations/email/fake"
	"github.com/BearBump/DriverComm/internal/integrations/email/smtpmail"
	"github.com/BearBump/DriverComm/internal/services/emailer"
	"github.com/BearBump/DriverComm/internal/storage/pgloads"
)

const (
	defaultWorkerHTTPAddr  = ":8082"
	defaultLoadEventsTopic = "load.events"
	defaultConsumerGroup   = "notify-worker"

	maxConsumeBackoff = 30 * time.Second
)

type eventConsumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
	Close() error
}

type workerFactories struct {
	newStorage     func(cfg *config.Config) (repo emailer.Repository, closeFn func(), err error)
	newConsumer    func(cfg *config.Config, topic, group string) eventConsumer
	newRateLimiter func(cfg *config.Config) emailer.RateLimiter
	newMailClient  func(cfg *config.Config) email.Client
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newStorage: func(cfg *config.Config) (emailer.Repository, func(), error) {
			sslMode := cfg.Database.SSLMode
			if sslMode == "" {
				sslMode = "disable"
			}
			connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
				cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
			st, err := pgloads.New(connString)
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newConsumer: func(cfg *config.Config, topic, group string) eventConsumer {
			brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
			return kafka.NewConsumer(brokers, topic, group)
		},
		newRateLimiter: func(cfg *config.Config) emailer.RateLimiter {
			return rediscache.NewRateLimiter(rediscache.Options{
				Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
		},
		newMailClient: func(cfg *config.Config) email.Client {
			if cfg.DriverComm.EmailProvider == "fake" {
				return fake.New()
			}
			return smtpmail.New(smtpmail.Config{
				Host:     cfg.SMTP.Host,
				Port:     cfg.SMTP.Port,
				User:     cfg.SMTP.User,
				Password: cfg.SMTP.Password,
				From:     cfg.SMTP.From,
				Timeout:  time.Duration(cfg.DriverComm.NotifyTimeoutSeconds) * time.Second,
			})
		},
	}
}

// RunNotifyWorker читает load.events и рассылает e-mail; рядом крутится
// HTTP-сервер статуса. Любая фатальная ошибка останавливает обе горутины.
func RunNotifyWorker(ctx context.Context, cfg *config.Config, f workerFactories, httpOpts workerHTTPOpts) error {
	topic := cfg.Kafka.LoadEventsTopic
	if topic == "" {
		topic = defaultLoadEventsTopic
	}
	group := cfg.DriverComm.KafkaConsumerGroup
	if group == "" {
		group = defaultConsumerGroup
	}
	sendTimeout := time.Duration(cfg.DriverComm.NotifyTimeoutSeconds) * time.Second

	repo, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	consumer := f.newConsumer(cfg, topic, group)
	defer func() { _ = consumer.Close() }()

	em := emailer.New(repo, f.newMailClient(cfg), f.newRateLimiter(cfg)).
		WithSettings(int64(cfg.DriverComm.EmailRateLimitPerMinute), sendTimeout)

	httpOpts.emailer = em
	httpOpts.cfg = cfg
	if httpOpts.httpAddr == "" {
		httpOpts.httpAddr = cfg.DriverComm.WorkerHTTPAddr
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("kafka consumer started", "topic", topic, "group", group)
		return consumeLoop(gctx, consumer, em.HandleMessage, time.Second)
	})
	g.Go(func() error {
		return runWorkerHTTPServer(gctx, httpOpts)
	})
	return g.Wait()
}

// consumeLoop перезапускает Consume после ошибок чтения/обработки
// с экспоненциальной паузой, пока жив ctx.
func consumeLoop(ctx context.Context, c eventConsumer, handle func(ctx context.Context, key, value []byte) error, backoff time.Duration) error {
	delay := backoff
	for {
		err := c.Consume(ctx, func(key, value []byte) error {
			return handle(ctx, key, value)
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("kafka consumer stopped, restarting", "error", errString(err), "backoff", delay.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxConsumeBackoff {
			delay = maxConsumeBackoff
		}
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
