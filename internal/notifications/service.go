package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"filesort/internal/config"
)

const userAgent = "filesort/1"

// Event identifies what happened.
type Event string

const (
	EventScheduledRunCompleted Event = "scheduled_run_completed"
	EventScheduledRunFailed    Event = "scheduled_run_failed"
	EventSchedulerIdle         Event = "scheduler_idle"
	EventTest                  Event = "test"
)

// Payload carries event details. Known keys: summary, error, kind, count,
// duration.
type Payload map[string]any

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
	// Enabled reports whether events leave the process.
	Enabled() bool
}

// NewService returns an ntfy publisher, or a no-op when no topic is set.
func NewService(cfg *config.Config) Service {
	if cfg == nil || strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:   strings.TrimSpace(cfg.Notifications.NtfyTopic),
		client:     &http.Client{Timeout: timeout},
		notifyIdle: cfg.Notifications.NotifyIdle,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	notifyIdle bool
}

func (n *ntfyService) Enabled() bool { return true }

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventScheduledRunCompleted:
		body := "Scheduled organize finished"
		if summary := payload.text("summary"); summary != "" {
			body = summary
		}
		if d, ok := payload["duration"].(time.Duration); ok && d > 0 {
			body = fmt.Sprintf("%s (%s)", body, d.Round(time.Second))
		}
		return message{
			title: "filesort - Files Organized",
			body:  body,
			tags:  []string{"filesort", "organize", "completed"},
		}, true
	case EventScheduledRunFailed:
		body := "Scheduled organize failed"
		if errText := payload.text("error"); errText != "" {
			body = body + ": " + errText
		}
		if kind := payload.text("kind"); kind != "" {
			body = fmt.Sprintf("%s [%s]", body, kind)
		}
		return message{
			title:    "filesort - Organize Failed",
			body:     body,
			tags:     []string{"filesort", "organize", "error"},
			priority: "high",
		}, true
	case EventSchedulerIdle:
		if !n.notifyIdle {
			return message{}, false
		}
		return message{
			title:    "filesort - Nothing to Organize",
			body:     "Scheduler: No files in queue.",
			tags:     []string{"filesort", "scheduler"},
			priority: "low",
		}, true
	case EventTest:
		return message{
			title:    "filesort - Test",
			body:     "Notification system test",
			tags:     []string{"filesort", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
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

func (p Payload) text(key string) string {
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

func (noopService) Enabled() bool { return false }

// SendTest publishes EventTest and returns the line shown to the user.
func SendTest(ctx context.Context, svc Service) (bool, string, error) {
	if svc == nil || !svc.Enabled() {
		return false, "Notifications are disabled (set [notifications] ntfy_topic)", nil
	}
	if err := svc.Publish(ctx, EventTest, nil); err != nil {
		return false, "", err
	}
	return true, "Test notification sent", nil
}
