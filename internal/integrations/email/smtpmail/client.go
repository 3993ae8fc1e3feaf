package smtpmail

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"

	"github.com/BearBump/DriverComm/internal/integrations/email"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

type Client struct {
	cfg Config
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg}
}

// Ready: без полного набора host/port/user/pass/from отправка пропускается.
func (c *Client) Ready() bool {
	return c.cfg.Host != "" && c.cfg.Port > 0 && c.cfg.User != "" && c.cfg.Password != "" && c.cfg.From != ""
}

func (c *Client) Send(ctx context.Context, to, subject, body string) (email.Result, error) {
	if !c.Ready() || to == "" {
		return email.Result{Skipped: true}, nil
	}

	m, err := c.buildMsg(to, subject, body)
	if err != nil {
		return email.Result{}, err
	}

	opts := []mail.Option{
		mail.WithPort(c.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(c.cfg.User),
		mail.WithPassword(c.cfg.Password),
		mail.WithTimeout(c.cfg.Timeout),
	}
	// 465: неявный TLS, остальные порты через STARTTLS если сервер умеет
	if c.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	mc, err := mail.NewClient(c.cfg.Host, opts...)
	if err != nil {
		return email.Result{}, errors.Wrap(err, "new smtp client")
	}
	if err := mc.DialAndSendWithContext(ctx, m); err != nil {
		return email.Result{}, errors.Wrap(err, "smtp send")
	}

	var id string
	if v := m.GetGenHeader(mail.HeaderMessageID); len(v) > 0 {
		id = v[0]
	}
	return email.Result{MessageID: id}, nil
}

func (c *Client) buildMsg(to, subject, body string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(c.cfg.From); err != nil {
		return nil, errors.Wrap(err, "from address")
	}
	if err := m.To(to); err != nil {
		return nil, errors.Wrap(err, "to address")
	}
	m.Subject(subject)
	m.SetMessageID()
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, body)
	return m, nil
}
