package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ssequote/internal/batch"
	"ssequote/internal/config"
)

const userAgent = "ssequote/0.1.0"

// Service defines the notification surface used by commands.
type Service interface {
	NotifyBatchCompleted(ctx context.Context, summary batch.Summary) error
	NotifyEpisodeFailed(ctx context.Context, command string, episode int, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		onlyOnFailure: cfg.Notifications.OnlyOnFailure,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	onlyOnFailure bool
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, summary batch.Summary) error {
	failed := summary.Failed()
	if failed == 0 && n.onlyOnFailure {
		return nil
	}
	duration := summary.Duration().Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	data := payload{
		title:   "ssequote - Batch Complete",
		message: fmt.Sprintf("Episodes %d-%d: %d processed in %s", summary.From, summary.To, summary.Processed, duration),
		tags:    []string{"ssequote", "batch", "completed"},
	}
	if failed > 0 {
		data.title = "ssequote - Batch Complete (with errors)"
		data.message = fmt.Sprintf("Episodes %d-%d: %d succeeded, %d failed in %s",
			summary.From, summary.To, summary.Succeeded, failed, duration)
		episodes := make([]string, 0, failed)
		for _, f := range summary.SortedFailures() {
			episodes = append(episodes, fmt.Sprintf("%d", f.Episode))
		}
		data.message += "\nFailed: " + strings.Join(episodes, ", ")
		data.tags = []string{"ssequote", "batch", "warning"}
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyEpisodeFailed(ctx context.Context, command string, episode int, err error) error {
	if err == nil {
		return nil
	}
	data := payload{
		title:    "ssequote - Error",
		message:  fmt.Sprintf("%s episode %d failed: %v", command, episode, err),
		tags:     []string{"ssequote", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:   "ssequote - Test",
		message: "Notification delivery is configured",
		tags:    []string{"ssequote", "test"},
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyBatchCompleted(context.Context, batch.Summary) error     { return nil }
func (noopService) NotifyEpisodeFailed(context.Context, string, int, error) error { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
