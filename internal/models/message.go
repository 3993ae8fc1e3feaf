package models

import "time"

const (
	RoleDriver     = "driver"
	RoleDispatcher = "dispatcher"
)

// Message: строка журнала исходящих сообщений. Только добавляется.
type Message struct {
	ID        int64     `json:"id"`
	LoadID    string    `json:"loadId"`
	ToRole    string    `json:"toRole"`
	ToPhone   string    `json:"toPhone"`
	Body      string    `json:"body"`
	FromRole  string    `json:"fromRole"`
	FromName  string    `json:"fromName"`
	CreatedAt time.Time `json:"createdAt"`
}

type MessageInput struct {
	LoadID   string
	ToRole   string
	ToPhone  string
	Body     string
	FromRole string
	FromName string
}

// DirectMessage: тело POST /api/message.
type DirectMessage struct {
	LoadID   string `json:"loadId"`
	To       string `json:"to"`
	Body     string `json:"body"`
	FromRole string `json:"fromRole"`
	FromName string `json:"fromName"`
}
