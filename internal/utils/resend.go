package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ResendClient sends transactional email through the Resend HTTP API.
type ResendClient struct {
	APIKey string
	URL    string
	From   string
	HTTP   *http.Client
}

type ResendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type ResendResponse struct {
	ID string `json:"id"`
}

func NewResendClient(apiKey, url, from string) *ResendClient {
	return &ResendClient{
		APIKey: apiKey,
		URL:    url,
		From:   from,
		HTTP:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *ResendClient) Send(ctx context.Context, to, subject, html string) (*ResendResponse, error) {
	payload, err := json.Marshal(ResendEmail{
		From:    c.From,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return nil, fmt.Errorf("resend encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := CheckStatus(c.HTTP.Do(req))
	if err != nil {
		return nil, fmt.Errorf("resend send: %w", err)
	}
	defer resp.Body.Close()

	var out ResendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("resend decode: %w", err)
	}
	return &out, nil
}
