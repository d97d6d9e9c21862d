package jobpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harbourapp/harbour-scraper/internal/domain/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches posting pages and extracts structured job fields from them.
// The target sites block plain clients, so requests carry full browser
// header profiles and each profile is tried in turn until one gets a 200.
type Client struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
}

var headerProfiles = []map[string]string{
	{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Referer":                   "https://www.google.com/",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	},
	{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:122.0) Gecko/20100101 Firefox/122.0",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Connection":      "keep-alive",
	},
}

func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: 25 * time.Second}}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

// GetJob fetches the page at pageURL and extracts a job record from it.
// Fields the page does not yield are filled with the N/A placeholder;
// admission-level validation decides whether the record is usable.
func (c *Client) GetJob(pageURL string) (*models.Job, error) {

	body, err := c.fetchPage(pageURL)
	if err != nil {
		return nil, err
	}

	job, err := parseJobPage(body)
	if err != nil {
		return nil, fmt.Errorf("error parsing page %v: %w", pageURL, err)
	}

	job.SourceLink = pageURL
	applyPlaceholders(job)
	job.Title = job.Company + " | " + job.JobTitle
	return job, nil
}

func (c *Client) fetchPage(pageURL string) ([]byte, error) {

	for _, headers := range headerProfiles {

		if c.rateLimiter != nil {
			if err := c.rateLimiter.Wait(context.Background()); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequest("GET", pageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("error creating request: %v", err)
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Warnf("error fetching %v: %v, trying next user agent", pageURL, err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if err != nil {
			log.Warnf("error reading %v: %v, trying next user agent", pageURL, err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			log.Warnf("%v -> status %v, trying next user agent", pageURL, resp.StatusCode)
			continue
		}

		return body, nil
	}

	return nil, fmt.Errorf("all header profiles failed for %v", pageURL)
}

func applyPlaceholders(job *models.Job) {
	for _, field := range []*string{
		&job.Company, &job.JobTitle, &job.Experience,
		&job.Location, &job.ApplyLink, &job.Description,
	} {
		if *field == "" {
			*field = models.NotAvailable
		}
	}
}
