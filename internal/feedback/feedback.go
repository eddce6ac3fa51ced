// Package feedback records documentation-issue reports. Reports are
// appended to a local log file and, when a governance webhook is
// configured, forwarded as JSON.
package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Report is one documentation-issue report.
type Report struct {
	Section    string    `json:"section"`
	Note       string    `json:"note"`
	ReceivedAt time.Time `json:"received_at"`
}

// Reporter appends reports to a log file and optionally forwards them
// to a webhook with a Bearer key.
type Reporter struct {
	logPath    string
	webhookURL string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

func NewReporter(logPath, webhookURL, apiKey string, log *slog.Logger) *Reporter {
	if log == nil {
		log = slog.Default()
	}
	return &Reporter{
		logPath:    logPath,
		webhookURL: webhookURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Submit records the report. The local log is authoritative; a webhook
// failure is logged but does not fail the submission.
func (r *Reporter) Submit(ctx context.Context, report Report) error {
	if report.ReceivedAt.IsZero() {
		report.ReceivedAt = time.Now().UTC()
	}

	r.log.Warn("documentation issue reported", "section", report.Section, "note", report.Note)

	if r.logPath != "" {
		if err := r.appendLog(report); err != nil {
			return fmt.Errorf("append feedback log: %w", err)
		}
	}

	if r.webhookURL != "" {
		if err := r.forward(ctx, report); err != nil {
			r.log.Error("feedback webhook failed", "error", err)
		}
	}
	return nil
}

func (r *Reporter) appendLog(report Report) error {
	f, err := os.OpenFile(r.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(report)
	if err != nil {
		return err
	}
	_, err = f.Write(append(line, '\n'))
	return err
}

func (r *Reporter) forward(ctx context.Context, report Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post report: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("post report: status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Close releases any resources.
func (r *Reporter) Close() {
	r.httpClient.CloseIdleConnections()
}
