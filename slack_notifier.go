package scam_detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type scamAlert struct {
	RequestID string
	Message   string
	Output    *ScamDetectionOutput
}

// SendSlackNotification posts a short summary of a scam verdict to the webhook.
// It is a no-op when the webhook is empty or the message was not labelled Scam.
func SendSlackNotification(ctx context.Context, webhookURL string, alert scamAlert) error {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" || alert.Output == nil || alert.Output.Label != LabelScam {
		return nil
	}

	payload := map[string]string{
		"text": formatSlackVerdict(alert.RequestID, alert.Message, alert.Output),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack webhook status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
