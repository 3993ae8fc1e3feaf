package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer читает топик в составе consumer group и коммитит offset
// только после того, как обработчик вернул nil.
type Consumer struct {
	r     messageReader
	topic string
	group string
}

// NewConsumer: новая группа начинает с самого раннего offset, чтобы
// не потерять события, опубликованные до первого запуска воркера.
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		StartOffset:       kafka.FirstOffset,
		MaxWait:           500 * time.Millisecond,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	}
	if groupID != "" {
		cfg.GroupTopics = []string{topic}
	} else {
		cfg.Topic = topic
	}
	return &Consumer{r: kafka.NewReader(cfg), topic: topic, group: groupID}
}

func newConsumerWithReader(r messageReader, topic string) *Consumer {
	return &Consumer{r: r, topic: topic}
}

func (c *Consumer) Close() error {
	return c.r.Close()
}

// Consume блокируется до отмены ctx или первой ошибки.
// Ошибка обработчика возвращается без commit: сообщение будет прочитано снова.
func (c *Consumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrapf(err, "fetch %s", c.topic)
		}

		if err := handler(msg.Key, msg.Value); err != nil {
			return errors.Wrapf(err, "handle %s[%d]@%d", msg.Topic, msg.Partition, msg.Offset)
		}
		if err := c.r.CommitMessages(ctx, msg); err != nil {
			return errors.Wrapf(err, "commit %s[%d]@%d", msg.Topic, msg.Partition, msg.Offset)
		}
		slog.Debug("load event consumed", "topic", msg.Topic, "group", c.group,
			"partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))
	}
}
