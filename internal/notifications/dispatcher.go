package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ziadkadry99/flowactivate/internal/session"
)

// Dispatcher delivers run summaries to a webhook.
type Dispatcher struct {
	url         string
	minSeverity Severity
	client      *http.Client
}

// NewDispatcher creates a Dispatcher posting to url. Notifications below
// minSeverity are dropped.
func NewDispatcher(url string, minSeverity Severity) *Dispatcher {
	return &Dispatcher{
		url:         url,
		minSeverity: minSeverity,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Build turns a session summary into a notification. Any failed flow makes it
// a warning; a run where nothing was activated is critical.
func Build(runID string, summary *session.Summary) Notification {
	n := Notification{
		RunID:     runID,
		Severity:  SeverityInfo,
		Skipped:   summary.Skipped,
		CreatedAt: time.Now().UTC(),
	}
	for _, r := range summary.Results {
		n.Results = append(n.Results, FlowResult{
			Org:           r.Org,
			Flow:          r.Outcome.Flow,
			Status:        r.Outcome.Status.String(),
			VersionNumber: r.Outcome.VersionNumber,
			Message:       r.Outcome.Message,
		})
	}

	activated, failed := summary.Activated(), summary.Failed()
	switch {
	case activated == 0 && (failed > 0 || len(summary.Skipped) > 0):
		n.Severity = SeverityCritical
	case failed > 0 || len(summary.Skipped) > 0:
		n.Severity = SeverityWarning
	}
	n.Title = fmt.Sprintf("Flow activation: %d activated, %d failed", activated, failed)
	n.Message = fmt.Sprintf("%d flow activation(s) attempted, %d org(s) skipped", len(summary.Results), len(summary.Skipped))
	return n
}

// Dispatch sends n to the webhook when its severity meets the threshold.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) error {
	if !severityMatches(n.Severity, d.minSeverity) {
		log.Debug().Str("severity", string(n.Severity)).Msg("notification below threshold")
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}
	return d.SendWebhook(ctx, payload)
}

// SendWebhook POSTs payload to the configured URL.
func (d *Dispatcher) SendWebhook(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// severityMatches returns true if the notification severity meets or exceeds the filter threshold.
func severityMatches(actual, filter Severity) bool {
	return severityLevels[actual] >= severityLevels[filter]
}
