package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/BearBump/DriverComm/internal/integrations/sms"
	"github.com/BearBump/DriverComm/internal/metrics"
	"github.com/BearBump/DriverComm/internal/models"
)

const (
	TriggerCreated       = "created"
	TriggerStatusChanged = "status_changed"
	TriggerDirect        = "direct"

	defaultSendTimeout = 10 * time.Second
)

type AuditLog interface {
	AppendMessage(ctx context.Context, in models.MessageInput) (*models.Message, error)
}

// Outcome: результат транспорта в ответе POST /api/message.
type Outcome struct {
	OK      bool   `json:"ok"`
	SID     string `json:"sid,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Dispatcher struct {
	sms     sms.Client
	audit   AuditLog
	baseURL string
	timeout time.Duration
}

func New(client sms.Client, audit AuditLog, baseURL string, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{sms: client, audit: audit, baseURL: baseURL, timeout: timeout}
}

// LoadCreated отправляет водителю ссылку на страницу груза. В журнал не пишется.
func (d *Dispatcher) LoadCreated(ctx context.Context, l *models.Load) {
	if l.DriverPhone == "" {
		return
	}
	body := CreatedBody(l, DriverLink(d.baseURL, l.ID))
	d.send(ctx, TriggerCreated, l.ID, l.DriverPhone, body)
}

// LoadChanged рассылает новый статус/ETA по ResolveRecipients, последовательно.
// Ошибка на одном номере не мешает остальным. В журнал не пишется.
func (d *Dispatcher) LoadChanged(ctx context.Context, l *models.Load) {
	body := StatusBody(l)
	for _, to := range ResolveRecipients(l) {
		d.send(ctx, TriggerStatusChanged, l.ID, to, body)
	}
}

// Direct: сообщение водителю или диспетчеру по конкретному грузу.
// Запись в журнал делается при любом исходе отправки.
func (d *Dispatcher) Direct(ctx context.Context, l *models.Load, msg models.DirectMessage) (Outcome, error) {
	to := directPhone(l, msg.To)
	if to == "" {
		return Outcome{}, models.NewValidationError("No phone on file for " + msg.To)
	}

	out := d.send(ctx, TriggerDirect, l.ID, to, DirectBody(l.ID, msg.Body))

	if d.audit != nil {
		_, err := d.audit.AppendMessage(context.WithoutCancel(ctx), models.MessageInput{
			LoadID:   l.ID,
			ToRole:   msg.To,
			ToPhone:  to,
			Body:     msg.Body,
			FromRole: msg.FromRole,
			FromName: msg.FromName,
		})
		if err != nil {
			slog.Error("append message", "load_id", l.ID, "error", err.Error())
		}
	}
	return out, nil
}

// directPhone: driver -> driverPhone, dispatcher -> dispatcherPhone (или agentPhone).
// Для неизвестной роли телефона нет.
func directPhone(l *models.Load, role string) string {
	switch role {
	case models.RoleDriver:
		return l.DriverPhone
	case models.RoleDispatcher:
		if l.DispatcherPhone != "" {
			return l.DispatcherPhone
		}
		return l.AgentPhone
	default:
		return ""
	}
}

// send не возвращает ошибку: сбой транспорта только логируется.
// Запрос клиента уже мог завершиться, поэтому отмена контекста не прерывает отправку.
func (d *Dispatcher) send(ctx context.Context, trigger, loadID, to, body string) Outcome {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	res, err := d.sms.Send(ctx, to, body)
	switch {
	case err != nil:
		metrics.Notifications.WithLabelValues(metrics.ChannelSMS, trigger, metrics.OutcomeFailed).Inc()
		slog.Error("sms send", "trigger", trigger, "load_id", loadID, "to", to, "error", err.Error())
		return Outcome{OK: false, Error: err.Error()}
	case res.Skipped:
		metrics.Notifications.WithLabelValues(metrics.ChannelSMS, trigger, metrics.OutcomeSkipped).Inc()
		slog.Warn("sms skipped: transport not configured", "trigger", trigger, "load_id", loadID)
		return Outcome{OK: false, Skipped: true}
	default:
		metrics.Notifications.WithLabelValues(metrics.ChannelSMS, trigger, metrics.OutcomeSent).Inc()
		slog.Info("sms sent", "trigger", trigger, "load_id", loadID, "to", to, "sid", res.SID)
		return Outcome{OK: true, SID: res.SID}
	}
}
