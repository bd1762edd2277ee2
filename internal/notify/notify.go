// Package notify delivers health alerts to a configured webhook.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const defaultTimeout = 10 * time.Second

// Alert is the payload posted when an analyzed field needs attention.
type Alert struct {
	CropType       string    `json:"cropType"`
	HealthStatus   string    `json:"healthStatus"`
	EstimatedYield float64   `json:"estimatedYield"`
	WeightedScore  float64   `json:"weightedScore"`
	Timestamp      time.Time `json:"timestamp"`
}

// Notifier posts alerts to a webhook without ever blocking callers. Alerts
// are dropped when the queue is full, no webhook is configured, or the
// notifier has been closed.
type Notifier struct {
	url    string
	client *http.Client
	alerts chan Alert
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New starts a notifier for the given webhook URL. An empty URL returns a
// disabled notifier whose Publish is a no-op.
func New(url string, timeout time.Duration) *Notifier {
	if url == "" {
		return &Notifier{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	n := &Notifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		alerts: make(chan Alert, 100), // Buffer for alert bursts
	}
	n.wg.Add(1)
	go n.run()
	return n
}

// Enabled reports whether a webhook is configured.
func (n *Notifier) Enabled() bool {
	return n.url != ""
}

// Publish queues an alert for delivery. It never blocks, and stays safe to
// call after Close.
func (n *Notifier) Publish(alert Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.alerts == nil || n.closed {
		return
	}
	select {
	case n.alerts <- alert:
	default:
		// Skip when the queue is full
	}
}

// Close drains the queue and stops the delivery worker. Later Publish calls
// become no-ops.
func (n *Notifier) Close() {
	if n.alerts == nil {
		return
	}
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.alerts)
	}
	n.mu.Unlock()
	n.wg.Wait()
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for alert := range n.alerts {
		if err := n.post(alert); err != nil {
			slog.Error("error delivering alert", "error", err, "webhook", n.url)
		}
	}
}

func (n *Notifier) post(alert Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("error marshaling alert: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}
