package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// EmailService handles sending emails via Azure Communication Services REST API.
type EmailService struct {
	endpoint   string
	sender     string
	cred       azcore.TokenCredential
	httpClient *http.Client
}

// NewEmailService creates an EmailService that sends through the
// Communication Services resource at endpoint.
// If cred is nil, it defaults to using DefaultAzureCredential.
func NewEmailService(cred azcore.TokenCredential, endpoint, sender string) (*EmailService, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("COMMUNICATION_SERVICES_ENDPOINT environment variable is required")
	}
	if sender == "" {
		return nil, fmt.Errorf("SENDER_EMAIL environment variable is required")
	}

	if cred == nil {
		var err error
		cred, err = newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
	}

	return &EmailService{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		sender:     sender,
		cred:       cred,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type emailAddress struct {
	Address string `json:"address"`
}

type emailRecipients struct {
	To []emailAddress `json:"to"`
}

type emailContent struct {
	Subject   string `json:"subject"`
	HTML      string `json:"html,omitempty"`
	PlainText string `json:"plainText,omitempty"`
}

type emailRequest struct {
	SenderAddress                  string          `json:"senderAddress"`
	Content                        emailContent    `json:"content"`
	Recipients                     emailRecipients `json:"recipients"`
	UserEngagementTrackingDisabled bool            `json:"userEngagementTrackingDisabled"`
}

// EmailMessage is one outgoing message. At least one of HTML or PlainText
// must be set.
type EmailMessage struct {
	To        []string
	Subject   string
	HTML      string
	PlainText string
}

// maxSendAttempts bounds retries on throttling (429) and 503 responses.
const maxSendAttempts = 3

// SendEmail sends msg through the Communication Services REST API.
func (s *EmailService) SendEmail(ctx context.Context, msg EmailMessage) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	if msg.HTML == "" && msg.PlainText == "" {
		return fmt.Errorf("email has no content")
	}

	token, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{"https://communication.azure.com//.default"},
	})
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}

	recipients := make([]emailAddress, len(msg.To))
	for i, email := range msg.To {
		recipients[i] = emailAddress{Address: email}
	}

	jsonBody, err := json.Marshal(emailRequest{
		SenderAddress: s.sender,
		Content: emailContent{
			Subject:   msg.Subject,
			HTML:      msg.HTML,
			PlainText: msg.PlainText,
		},
		Recipients:                     emailRecipients{To: recipients},
		UserEngagementTrackingDisabled: true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	url := fmt.Sprintf("%s/emails:send?api-version=2023-03-31", s.endpoint)
	for attempt := 1; ; attempt++ {
		status, retryAfter, err := s.post(ctx, url, token.Token, jsonBody)
		if err != nil {
			return err
		}
		if status == 0 {
			break
		}
		if attempt >= maxSendAttempts {
			return fmt.Errorf("email request still throttled after %d attempts (status %d)", attempt, status)
		}
		slog.Warn("email request throttled, retrying", "status", status, "attempt", attempt, "retry_after", retryAfter)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryAfter):
		}
	}

	slog.Info("email sent successfully", "recipients_count", len(msg.To))
	return nil
}

// post sends one request. A non-zero status means the request was throttled
// and may be retried after the returned delay.
func (s *EmailService) post(ctx context.Context, url, token string, body []byte) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		return 0, 0, nil
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return resp.StatusCode, retryDelay(resp.Header.Get("Retry-After")), nil
	default:
		bodyBytes, _ := io.ReadAll(resp.Body)
		return 0, 0, fmt.Errorf("email request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}
}

// retryDelay parses a Retry-After seconds value, capped at 30s.
func retryDelay(header string) time.Duration {
	d := time.Second
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs >= 0 {
		d = time.Duration(secs) * time.Second
	}
	return min(d, 30*time.Second)
}

// SendImportReport tells the uploader which rows of an import were skipped.
func (s *EmailService) SendImportReport(ctx context.Context, recipients []string, report ImportReport) error {
	subject := "Money Tracker - Import finished with skipped rows"
	if report.Created == 0 {
		subject = "Money Tracker - Import failed"
	}
	return s.SendEmail(ctx, EmailMessage{
		To:        recipients,
		Subject:   subject,
		HTML:      RenderImportReport(report),
		PlainText: RenderImportReportText(report),
	})
}
