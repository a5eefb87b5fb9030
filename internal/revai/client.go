package revai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.rev.ai/speechtotext/v1"
	defaultHTTPTimeout = 60 * time.Second
	errorBodyLimit     = 4096
)

// Job statuses reported by the API.
const (
	StatusInProgress  = "in_progress"
	StatusTranscribed = "transcribed"
	StatusFailed      = "failed"
)

// Config describes the Rev.ai client configuration.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client wraps the Rev.ai asynchronous speech-to-text API.
type Client struct {
	apiKey  string
	baseURL *url.URL
	http    *http.Client
}

// Job is the subset of job details the pipeline uses.
type Job struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	CreatedOn     time.Time `json:"created_on"`
	Failure       string    `json:"failure"`
	FailureDetail string    `json:"failure_detail"`
	DurationSecs  float64   `json:"duration_seconds"`
}

// Account describes the authenticated account.
type Account struct {
	Email          string `json:"email"`
	BalanceSeconds int64  `json:"balance_seconds"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("revai: %s failed (%d)", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("revai: %s failed (%d): %s", e.Operation, e.StatusCode, e.Body)
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("revai: api key is required")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("revai: parse base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{apiKey: apiKey, baseURL: baseURL, http: client}, nil
}

type submitRequest struct {
	SourceConfig sourceConfig `json:"source_config"`
}

type sourceConfig struct {
	URL string `json:"url"`
}

// SubmitJob starts an asynchronous transcription of the media at mediaURL.
func (c *Client) SubmitJob(ctx context.Context, mediaURL string) (Job, error) {
	body, err := json.Marshal(submitRequest{SourceConfig: sourceConfig{URL: mediaURL}})
	if err != nil {
		return Job{}, fmt.Errorf("revai: encode submit request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL.JoinPath("jobs"), bytes.NewReader(body))
	if err != nil {
		return Job{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var job Job
	if err := c.doJSON(req, "submit job", &job); err != nil {
		return Job{}, err
	}
	if job.ID == "" {
		return Job{}, errors.New("revai: submit job returned no id")
	}
	return job, nil
}

// GetJob fetches the current job details.
func (c *Client) GetJob(ctx context.Context, id string) (Job, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL.JoinPath("jobs", id), nil)
	if err != nil {
		return Job{}, err
	}
	var job Job
	if err := c.doJSON(req, "get job", &job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// GetTranscriptText fetches the plain-text transcript of a finished job.
func (c *Client) GetTranscriptText(ctx context.Context, id string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL.JoinPath("jobs", id, "transcript"), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("revai: get transcript request failed: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "get transcript"); err != nil {
		return "", err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("revai: read transcript: %w", err)
	}
	return string(data), nil
}

// Account returns the authenticated account; used to verify credentials.
func (c *Client) Account(ctx context.Context) (Account, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL.JoinPath("account"), nil)
	if err != nil {
		return Account{}, err
	}
	var account Account
	if err := c.doJSON(req, "get account", &account); err != nil {
		return Account{}, err
	}
	return account, nil
}

func (c *Client) newRequest(ctx context.Context, method string, endpoint *url.URL, body io.Reader) (*http.Request, error) {
	if c == nil {
		return nil, errors.New("revai: client is nil")
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("revai: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) doJSON(req *http.Request, operation string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("revai: %s request failed: %w", operation, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, operation); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("revai: decode %s response: %w", operation, err)
	}
	return nil
}

func checkStatus(resp *http.Response, operation string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	return &APIError{Operation: operation, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
