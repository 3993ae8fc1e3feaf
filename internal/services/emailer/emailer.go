package emailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/DriverComm/internal/broker/messages"
	"github.com/BearBump/DriverComm/internal/integrations/email"
	"github.com/BearBump/DriverComm/internal/metrics"
	"github.com/BearBump/DriverComm/internal/models"
	"github.com/BearBump/DriverComm/internal/services/notify"
)

const triggerEvent = "event"

type Repository interface {
	ListRecipientsByLocations(ctx context.Context, locationIDs []int64) ([]*models.Recipient, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// Emailer рассылает e-mail получателям локаций груза по событиям load.events.
type Emailer struct {
	repo Repository
	mail email.Client
	rl   RateLimiter

	rateLimitPerMinute int64
	sendTimeout        time.Duration

	startedAtUnixNano int64
	lastEventUnixNano atomic.Int64
	totalEvents       atomic.Int64
	totalSkipped      atomic.Int64
	totalSent         atomic.Int64
	totalLimited      atomic.Int64
	totalErrors       atomic.Int64
	lastErrorMu       sync.Mutex
	lastError         string
}

func New(repo Repository, mail email.Client, rl RateLimiter) *Emailer {
	return &Emailer{
		repo:               repo,
		mail:               mail,
		rl:                 rl,
		rateLimitPerMinute: 6,
		sendTimeout:        10 * time.Second,
		startedAtUnixNano:  time.Now().UTC().UnixNano(),
	}
}

func (e *Emailer) WithSettings(rateLimitPerMinute int64, sendTimeout time.Duration) *Emailer {
	if rateLimitPerMinute > 0 {
		e.rateLimitPerMinute = rateLimitPerMinute
	}
	if sendTimeout > 0 {
		e.sendTimeout = sendTimeout
	}
	return e
}

type Stats struct {
	StartedAt    time.Time  `json:"startedAt"`
	LastEventAt  *time.Time `json:"lastEventAt,omitempty"`
	TotalEvents  int64      `json:"totalEvents"`
	TotalSkipped int64      `json:"totalSkipped"`
	TotalSent    int64      `json:"totalSent"`
	TotalLimited int64      `json:"totalLimited"`
	TotalErrors  int64      `json:"totalErrors"`
	LastError    string     `json:"lastError,omitempty"`
}

func (e *Emailer) Stats() Stats {
	st := Stats{
		StartedAt:    time.Unix(0, e.startedAtUnixNano).UTC(),
		TotalEvents:  e.totalEvents.Load(),
		TotalSkipped: e.totalSkipped.Load(),
		TotalSent:    e.totalSent.Load(),
		TotalLimited: e.totalLimited.Load(),
		TotalErrors:  e.totalErrors.Load(),
	}
	if n := e.lastEventUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastEventAt = &t
	}
	e.lastErrorMu.Lock()
	st.LastError = e.lastError
	e.lastErrorMu.Unlock()
	return st
}

// HandleMessage: обработчик kafka.Consumer. Битые сообщения пропускаются (commit),
// ошибка возвращается только если не удалось прочитать получателей: тогда
// сообщение не коммитится и будет прочитано повторно.
func (e *Emailer) HandleMessage(ctx context.Context, key, value []byte) error {
	var ev messages.LoadEvent
	if err := json.Unmarshal(value, &ev); err != nil || ev.LoadID == "" {
		e.totalSkipped.Add(1)
		metrics.LoadEventsConsumed.WithLabelValues("unknown", "malformed").Inc()
		slog.Warn("skip malformed load event", "key", string(key), "error", errString(err))
		return nil
	}
	return e.HandleEvent(ctx, ev)
}

func (e *Emailer) HandleEvent(ctx context.Context, ev messages.LoadEvent) error {
	e.lastEventUnixNano.Store(time.Now().UTC().UnixNano())
	e.totalEvents.Add(1)

	if ev.Kind != messages.LoadEventStatusChanged {
		e.totalSkipped.Add(1)
		metrics.LoadEventsConsumed.WithLabelValues(ev.Kind, metrics.OutcomeSkipped).Inc()
		return nil
	}

	locIDs := ev.LocationIDs()
	if len(locIDs) == 0 {
		e.totalSkipped.Add(1)
		metrics.LoadEventsConsumed.WithLabelValues(ev.Kind, metrics.OutcomeSkipped).Inc()
		return nil
	}

	recipients, err := e.repo.ListRecipientsByLocations(ctx, locIDs)
	if err != nil {
		e.recordError(err)
		metrics.LoadEventsConsumed.WithLabelValues(ev.Kind, metrics.OutcomeFailed).Inc()
		return err
	}

	l := ev.Load()
	subject := notify.StatusSubject(l)
	body := notify.StatusBody(l)

	for _, addr := range EmailAddresses(recipients) {
		e.sendOne(ctx, ev.LoadID, addr, subject, body)
	}
	metrics.LoadEventsConsumed.WithLabelValues(ev.Kind, metrics.OutcomeSent).Inc()
	return nil
}

// EmailAddresses: адреса с включённым notifyEmail, без дублей (без учёта регистра).
func EmailAddresses(recipients []*models.Recipient) []string {
	out := make([]string, 0, len(recipients))
	seen := make(map[string]struct{}, len(recipients))
	for _, r := range recipients {
		if !r.NotifyEmail {
			continue
		}
		addr := strings.TrimSpace(r.Email)
		if addr == "" {
			continue
		}
		k := strings.ToLower(addr)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, addr)
	}
	return out
}

func (e *Emailer) sendOne(ctx context.Context, loadID, to, subject, body string) {
	now := time.Now().UTC()

	if e.rl != nil && e.rateLimitPerMinute > 0 {
		minuteKey := fmt.Sprintf("rl:email:%s:%s", strings.ToLower(to), now.Format("200601021504"))
		allowed, n, err := e.rl.Allow(ctx, minuteKey, e.rateLimitPerMinute, 70*time.Second)
		if err != nil {
			// лимитер недоступен: отправляем без ограничения
			slog.Warn("email rate limiter", "error", err.Error())
		} else if !allowed {
			e.totalLimited.Add(1)
			metrics.Notifications.WithLabelValues(metrics.ChannelEmail, triggerEvent, metrics.OutcomeLimited).Inc()
			slog.Warn("email rate limit exceeded", "load_id", loadID, "to", to, "count", n)
			return
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	defer cancel()

	res, err := e.mail.Send(sendCtx, to, subject, body)
	switch {
	case err != nil:
		e.recordError(err)
		metrics.Notifications.WithLabelValues(metrics.ChannelEmail, triggerEvent, metrics.OutcomeFailed).Inc()
		slog.Error("email send", "load_id", loadID, "to", to, "error", err.Error())
	case res.Skipped:
		e.totalSkipped.Add(1)
		metrics.Notifications.WithLabelValues(metrics.ChannelEmail, triggerEvent, metrics.OutcomeSkipped).Inc()
		slog.Warn("email skipped: transport not configured", "load_id", loadID)
	default:
		e.totalSent.Add(1)
		metrics.Notifications.WithLabelValues(metrics.ChannelEmail, triggerEvent, metrics.OutcomeSent).Inc()
		slog.Info("email sent", "load_id", loadID, "to", to, "message_id", res.MessageID)
	}
}

func (e *Emailer) recordError(err error) {
	e.totalErrors.Add(1)
	e.lastErrorMu.Lock()
	e.lastError = err.Error()
	e.lastErrorMu.Unlock()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
