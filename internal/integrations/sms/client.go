package sms

import "context"

// Result описывает одну отправку. Skipped значит, что транспорт не настроен, запрос не выполнялся.
type Result struct {
	SID     string
	Skipped bool
}

type Client interface {
	Send(ctx context.Context, to, body string) (Result, error)
}
