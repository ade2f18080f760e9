package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vostok-trade/backend/internal/models"
)

// AccountClient provisions disposable test mailboxes over HTTP.
type AccountClient struct {
	url        string
	httpClient *http.Client
}

func NewAccountClient(url string) *AccountClient {
	return &AccountClient{url: url, httpClient: &http.Client{Timeout: 15 * time.Second}}
}

// Create asks the provider for a fresh mailbox.
func (c *AccountClient) Create(ctx context.Context) (*models.MailAccount, error) {
	body, _ := json.Marshal(map[string]string{
		"requestor": "vostok-backend", "version": "1.0.0",
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("test account request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("test account provider returned %d: %s", resp.StatusCode, string(msg))
	}

	var result struct {
		Status string `json:"status"`
		Error  string `json:"error"`
		User   string `json:"user"`
		Pass   string `json:"pass"`
		SMTP   struct {
			Host   string `json:"host"`
			Port   int    `json:"port"`
			Secure bool   `json:"secure"`
		} `json:"smtp"`
		Web string `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode test account: %w", err)
	}
	if result.Status != "success" {
		return nil, fmt.Errorf("test account provider: %s", result.Error)
	}
	return &models.MailAccount{
		User:   result.User,
		Pass:   result.Pass,
		Host:   result.SMTP.Host,
		Port:   result.SMTP.Port,
		Secure: result.SMTP.Secure,
		Web:    result.Web,
	}, nil
}
