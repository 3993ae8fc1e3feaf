package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/BearBump/DriverComm/internal/integrations/sms"
)

type Sent struct {
	To   string
	Body string
}

// Client это SMS-транспорт без сети, он запоминает попытки отправки.
// FailFor: номера, на которые отправка завершается ошибкой.
type Client struct {
	mu      sync.Mutex
	sent    []Sent
	FailFor map[string]error
}

func New() *Client { return &Client{FailFor: map[string]error{}} }

func (c *Client) Send(ctx context.Context, to, body string) (sms.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sent = append(c.sent, Sent{To: to, Body: body})
	if err, ok := c.FailFor[to]; ok {
		return sms.Result{}, err
	}
	return sms.Result{SID: fmt.Sprintf("FAKE%d", len(c.sent))}, nil
}

func (c *Client) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Sent, len(c.sent))
	copy(out, c.sent)
	return out
}
