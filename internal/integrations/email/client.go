package email

import "context"

type Result struct {
	MessageID string
	Skipped   bool
}

type Client interface {
	Send(ctx context.Context, to, subject, body string) (Result, error)
}
