package onesignal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harbourapp/harbour-scraper/internal/domain/models"
	"github.com/pkg/errors"
)

const apiURL = "https://onesignal.com/api/v1/notifications"

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client sends a push notification to all subscribed app users when a new
// job record lands in the store.
type Client struct {
	httpClient HTTPClient
	appID      string
	apiKey     string
}

type notificationRequest struct {
	AppID            string            `json:"app_id"`
	IncludedSegments []string          `json:"included_segments"`
	Headings         map[string]string `json:"headings"`
	Contents         map[string]string `json:"contents"`
	URL              string            `json:"url"`
}

func NewClient(appID, apiKey string) (*Client, error) {

	if appID == "" || apiKey == "" {
		return nil, errors.New("onesignal app id and api key must be provided")
	}

	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		appID:      appID,
		apiKey:     apiKey,
	}, nil
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) NotifyJob(ctx context.Context, job models.Job) error {

	link := job.ApplyLink
	if link == "" || link == models.NotAvailable {
		link = job.SourceLink
	}

	payload := notificationRequest{
		AppID:            c.appID,
		IncludedSegments: []string{"All"},
		Headings:         map[string]string{"en": "Job Opening Notification"},
		Contents: map[string]string{
			"en": fmt.Sprintf("%s has openings for %s. Click now to apply!", job.Company, job.JobTitle),
		},
		URL: link,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error encoding notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return nil
	}

	responseBody, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("notification failed with status %v: %s", resp.StatusCode, responseBody)
}
