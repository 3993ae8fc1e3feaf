package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/BearBump/DriverComm/internal/integrations/email"
)

type Sent struct {
	To      string
	Subject string
	Body    string
}

// Client: e-mail транспорт для тестов и локального запуска.
type Client struct {
	mu      sync.Mutex
	sent    []Sent
	FailFor map[string]error
}

func New() *Client { return &Client{FailFor: map[string]error{}} }

func (c *Client) Send(ctx context.Context, to, subject, body string) (email.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sent = append(c.sent, Sent{To: to, Subject: subject, Body: body})
	if err, ok := c.FailFor[to]; ok {
		return email.Result{}, err
	}
	return email.Result{MessageID: fmt.Sprintf("<fake-%d@drivercomm>", len(c.sent))}, nil
}

func (c *Client) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Sent, len(c.sent))
	copy(out, c.sent)
	return out
}
