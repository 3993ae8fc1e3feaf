package loads

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/DriverComm/internal/broker/messages"
	"github.com/BearBump/DriverComm/internal/cache"
	"github.com/BearBump/DriverComm/internal/metrics"
	"github.com/BearBump/DriverComm/internal/models"
	"github.com/BearBump/DriverComm/internal/services/notify"
)

const publishTimeout = 5 * time.Second

type Repository interface {
	ListLoads(ctx context.Context) ([]*models.Load, error)
	GetLoad(ctx context.Context, id string) (*models.Load, error)
	UpsertLoad(ctx context.Context, l *models.Load) (*models.Load, error)
	PatchLoad(ctx context.Context, id string, p models.LoadPatch) (*models.Load, error)
	DeleteLoad(ctx context.Context, id string) (bool, error)
	ListMessages(ctx context.Context, loadID string) ([]*models.Message, error)
}

type Notifier interface {
	LoadCreated(ctx context.Context, l *models.Load)
	LoadChanged(ctx context.Context, l *models.Load)
	Direct(ctx context.Context, l *models.Load, msg models.DirectMessage) (notify.Outcome, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Service struct {
	repo       Repository
	notifier   Notifier
	cache      cache.BytesCache
	currentTTL time.Duration

	producer Producer
	topic    string
}

func New(repo Repository, n Notifier, c cache.BytesCache, currentTTL time.Duration) *Service {
	return &Service{repo: repo, notifier: n, cache: c, currentTTL: currentTTL}
}

// WithEvents включает публикацию LoadEvent в kafka. nil producer: без событий.
func (s *Service) WithEvents(p Producer, topic string) *Service {
	s.producer = p
	s.topic = topic
	return s
}

func (s *Service) List(ctx context.Context) ([]*models.Load, error) {
	return s.repo.ListLoads(ctx)
}

// Get читает через кэш. Версия ключа берётся до запроса в БД: если за это
// время груз изменили или удалили, прочитанная строка в кэш не попадёт.
func (s *Service) Get(ctx context.Context, id string) (*models.Load, error) {
	var (
		version int64
		fill    bool
	)
	if s.cacheOn() {
		key := currentKey(id)
		if b, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var l models.Load
			if json.Unmarshal(b, &l) == nil && l.ID == id {
				return &l, nil
			}
		} else if err != nil {
			slog.Warn("load cache get", "load_id", id, "error", err.Error())
		}

		v, err := s.cache.Version(ctx, key)
		if err != nil {
			slog.Warn("load cache version", "load_id", id, "error", err.Error())
		} else {
			version, fill = v, true
		}
	}

	l, err := s.repo.GetLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	if fill {
		s.fillCurrent(ctx, l, version)
	}
	return l, nil
}

// Create: upsert + SMS водителю. Уведомление не влияет на результат.
func (s *Service) Create(ctx context.Context, in models.LoadInput) (*models.Load, error) {
	candidate := in.ToLoad()
	candidate.ID = strings.TrimSpace(in.ID)

	l, err := s.repo.UpsertLoad(ctx, candidate)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, l.ID)
	s.notifier.LoadCreated(ctx, l)
	s.publish(ctx, messages.LoadEventCreated, l)
	return l, nil
}

// Patch сливает поля и, если статус или ETA действительно поменялись, запускает рассылку.
func (s *Service) Patch(ctx context.Context, id string, p models.LoadPatch) (*models.Load, error) {
	before, err := s.repo.GetLoad(ctx, id)
	if err != nil {
		return nil, err
	}

	after, err := s.repo.PatchLoad(ctx, id, p)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	if p.StatusChanged(before) || p.ETAChanged(before) {
		s.notifier.LoadChanged(ctx, after)
		s.publish(ctx, messages.LoadEventStatusChanged, after)
	}
	return after, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.DeleteLoad(ctx, id)
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	if !ok {
		return models.ErrNotFound
	}
	return nil
}

// SendMessage: прямое сообщение водителю/диспетчеру. Ошибка транспорта
// не ошибка операции: она возвращается в Outcome.
func (s *Service) SendMessage(ctx context.Context, msg models.DirectMessage) (notify.Outcome, error) {
	msg.LoadID = strings.TrimSpace(msg.LoadID)
	msg.To = strings.TrimSpace(msg.To)
	if msg.LoadID == "" || msg.To == "" || msg.Body == "" {
		return notify.Outcome{}, models.NewValidationError("loadId, to, body required")
	}

	l, err := s.repo.GetLoad(ctx, msg.LoadID)
	if err != nil {
		return notify.Outcome{}, err
	}
	return s.notifier.Direct(ctx, l, msg)
}

func (s *Service) ListMessages(ctx context.Context, loadID string) ([]*models.Message, error) {
	loadID = strings.TrimSpace(loadID)
	if loadID == "" {
		return nil, models.NewValidationError("loadId required")
	}
	return s.repo.ListMessages(ctx, loadID)
}

func (s *Service) cacheOn() bool {
	return s.cache != nil && s.currentTTL > 0
}

// fillCurrent: best effort, ошибки кэша только логируются.
func (s *Service) fillCurrent(ctx context.Context, l *models.Load, version int64) {
	b, err := json.Marshal(l)
	if err != nil {
		return
	}
	ok, err := s.cache.SetIfVersion(ctx, currentKey(l.ID), version, b, s.currentTTL)
	if err != nil {
		slog.Warn("load cache set", "load_id", l.ID, "error", err.Error())
		return
	}
	if !ok {
		slog.Debug("load cache fill skipped", "load_id", l.ID)
	}
}

// invalidate вызывается после каждой записи в БД, в том числе после
// неудачного удаления: строки уже могло не быть.
func (s *Service) invalidate(ctx context.Context, id string) {
	if !s.cacheOn() {
		return
	}
	if err := s.cache.Invalidate(ctx, currentKey(id)); err != nil {
		slog.Warn("load cache invalidate", "load_id", id, "error", err.Error())
	}
}

func (s *Service) publish(ctx context.Context, kind string, l *models.Load) {
	if s.producer == nil {
		return
	}
	b, err := json.Marshal(messages.NewLoadEvent(kind, l))
	if err != nil {
		slog.Error("marshal load event", "load_id", l.ID, "error", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.producer.Publish(ctx, s.topic, []byte(l.ID), b); err != nil {
		metrics.LoadEventsPublished.WithLabelValues(kind, metrics.OutcomeFailed).Inc()
		slog.Error("publish load event", "kind", kind, "load_id", l.ID, "error", err.Error())
		return
	}
	metrics.LoadEventsPublished.WithLabelValues(kind, metrics.OutcomeSent).Inc()
}

func currentKey(id string) string {
	return fmt.Sprintf("load:%s:current", id)
}
