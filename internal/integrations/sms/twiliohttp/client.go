package twiliohttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/BearBump/DriverComm/internal/integrations/sms"
)

const DefaultBaseURL = "https://api.twilio.com"

type Client struct {
	baseURL             string
	accountSID          string
	authToken           string
	messagingServiceSID string
	from                string
	httpc               *http.Client
}

func New(baseURL, accountSID, authToken, messagingServiceSID, from string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:             strings.TrimRight(baseURL, "/"),
		accountSID:          accountSID,
		authToken:           authToken,
		messagingServiceSID: messagingServiceSID,
		from:                from,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Ready: есть учётные данные и отправитель (messaging service или номер).
func (c *Client) Ready() bool {
	return c.accountSID != "" && c.authToken != "" && (c.messagingServiceSID != "" || c.from != "")
}

type twilioResp struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) Send(ctx context.Context, to, body string) (sms.Result, error) {
	if !c.Ready() || to == "" {
		return sms.Result{Skipped: true}, nil
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("Body", body)
	if c.messagingServiceSID != "" {
		form.Set("MessagingServiceSid", c.messagingServiceSID)
	} else {
		form.Set("From", c.from)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, url.PathEscape(c.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return sms.Result{}, errors.Wrap(err, "new request")
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return sms.Result{}, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	var r twilioResp
	decErr := json.NewDecoder(resp.Body).Decode(&r)

	if resp.StatusCode/100 != 2 {
		if decErr == nil && r.Message != "" {
			return sms.Result{}, fmt.Errorf("twilio http %d: %s (code %d)", resp.StatusCode, r.Message, r.Code)
		}
		return sms.Result{}, fmt.Errorf("twilio http %d", resp.StatusCode)
	}
	if decErr != nil {
		return sms.Result{}, errors.Wrap(decErr, "decode")
	}
	return sms.Result{SID: r.SID}, nil
}
