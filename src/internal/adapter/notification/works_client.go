package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/api-sage/payout-reconciler/src/internal/logger"
	"github.com/api-sage/payout-reconciler/src/internal/usecase/service_interfaces"
)

// Verify that WorksClient implements the notification interfaces
var _ service_interfaces.NotificationService = (*WorksClient)(nil)
var _ service_interfaces.ReportDispatcher = (*WorksClient)(nil)

// WorksClient posts text messages to a works incoming-webhook channel.
// An empty webhook URL disables delivery; sends then log and return
// nil so callers never fail on a missing channel.
type WorksClient struct {
	webhookURL string
	httpClient *http.Client
}

func NewWorksClient(webhookURL string) *WorksClient {
	return &WorksClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type worksMessage struct {
	Content worksContent `json:"content"`
}

type worksContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (c *WorksClient) SendRejectionNotice(ctx context.Context, contact, creatorName, reason string) error {
	text := fmt.Sprintf("출금 거절 안내\n크리에이터: %s (%s)\n사유: %s", creatorName, contact, reason)
	return c.post(ctx, text)
}

func (c *WorksClient) DispatchReport(ctx context.Context, text string) error {
	return c.post(ctx, text)
}

func (c *WorksClient) post(ctx context.Context, text string) error {
	if c.webhookURL == "" {
		logger.Info("works client delivery skipped, no webhook configured", nil)
		return nil
	}

	payload, err := json.Marshal(worksMessage{Content: worksContent{Type: "text", Text: text}})
	if err != nil {
		return fmt.Errorf("failed to encode works message: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build works request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("failed to deliver works message: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("works webhook returned status %d", response.StatusCode)
	}
	return nil
}
