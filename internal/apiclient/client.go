// Package apiclient is a typed, stateless wrapper around the remote
// ticketing API. One method per remote capability; no state is retained
// between calls, and nothing is retried automatically.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/config"
	"github.com/spec-kit/ticket-console/internal/conversation"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/pkg/util"
)

// Client talks to the remote ticket API. The base URL is injected via
// configuration, never compiled in.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	logger        *zap.Logger
	healthTimeout time.Duration
}

// TicketDetail is a single ticket with its embedded raw conversation, as
// served by GET /tickets/{id}.
type TicketDetail struct {
	domain.Ticket
	Replies []conversation.RawReply `json:"replies"`
}

// CreateTicketInput is the validated ticket creation payload. CreatedBy is
// required by validation but not transmitted; the backend accepts only
// title, description, and category.
type CreateTicketInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	CreatedBy   string
}

// ReplyInput is a conversation reply to append.
type ReplyInput struct {
	Text          string
	Role          domain.ReplyRole
	AttachmentURL string
}

// AIReplyInput requests an AI-authored reply; the result is appended to
// the conversation server-side.
type AIReplyInput struct {
	TicketID      string
	Message       string
	ImageBase64   string
	ImageFilename string
}

// EmailInput is a notification email to send for a ticket.
type EmailInput struct {
	ToEmail string
	Subject string
	Message string
}

// New constructs a client against the configured base URL.
func New(cfg config.APIConfig, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		HTTPClient:    &http.Client{Timeout: cfg.RequestTimeout()},
		logger:        logger,
		healthTimeout: cfg.HealthTimeout(),
	}
}

// Health probes GET /health with a bounded wait. It never hangs past the
// configured health timeout regardless of the transport default.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()
	return c.doJSON(ctx, http.MethodGet, "/health", nil, nil, "health check", http.StatusOK)
}

// ListTickets fetches every ticket.
func (c *Client) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := c.doJSON(ctx, http.MethodGet, "/tickets/", nil, &tickets, "fetch tickets", http.StatusOK); err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetTicket fetches one ticket with its embedded replies. Unknown
// identifiers surface as an unexpected-status failure, never as a
// partially-populated ticket.
func (c *Client) GetTicket(ctx context.Context, ticketID string) (*TicketDetail, error) {
	if strings.TrimSpace(ticketID) == "" {
		return nil, util.NewValidationError("ticket id required")
	}
	var detail TicketDetail
	path := fmt.Sprintf("/tickets/%s", url.PathEscape(ticketID))
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &detail, "fetch ticket", http.StatusOK); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateTicket creates a new ticket and returns the server-populated
// record, including the assigned identifier.
func (c *Client) CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, util.NewValidationError("title required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, util.NewValidationError("description required")
	}
	if strings.TrimSpace(string(input.Category)) == "" {
		return nil, util.NewValidationError("category required")
	}
	if strings.TrimSpace(input.CreatedBy) == "" {
		return nil, util.NewValidationError("created_by required")
	}

	payload := map[string]string{
		"title":       input.Title,
		"description": input.Description,
		"category":    string(input.Category),
	}
	var ticket domain.Ticket
	err := c.doJSON(ctx, http.MethodPost, "/tickets/", payload, &ticket, "create ticket",
		http.StatusOK, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateStatus patches a ticket's status.
func (c *Client) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus) error {
	if strings.TrimSpace(ticketID) == "" {
		return util.NewValidationError("ticket id required")
	}
	if !domain.ValidStatus(status) {
		return util.NewValidationError(fmt.Sprintf("unknown status %q", status))
	}
	path := fmt.Sprintf("/tickets/%s/status", url.PathEscape(ticketID))
	payload := map[string]string{"status": string(status)}
	return c.doJSON(ctx, http.MethodPatch, path, payload, nil, "update status", http.StatusOK)
}

// AddReply appends a reply to a ticket's conversation and returns the
// created record in canonical form.
func (c *Client) AddReply(ctx context.Context, ticketID string, input ReplyInput) (*domain.Reply, error) {
	if strings.TrimSpace(ticketID) == "" {
		return nil, util.NewValidationError("ticket id required")
	}
	if strings.TrimSpace(input.Text) == "" && input.AttachmentURL == "" {
		return nil, util.NewValidationError("reply text or attachment required")
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	payload := map[string]string{
		"text": input.Text,
		"role": string(role),
	}
	if input.AttachmentURL != "" {
		payload["attachment_url"] = input.AttachmentURL
	}
	var raw conversation.RawReply
	path := fmt.Sprintf("/tickets/%s/replies", url.PathEscape(ticketID))
	if err := c.doJSON(ctx, http.MethodPost, path, payload, &raw, "add reply", http.StatusOK); err != nil {
		return nil, err
	}
	reply := conversation.Normalize([]conversation.RawReply{raw})[0]
	return &reply, nil
}

// uploadResponse carries the two URL variants the storage layer may
// return; the signed, expiring one is preferred when both are present.
type uploadResponse struct {
	SignedURL     string `json:"signed_url"`
	AttachmentURL string `json:"attachment_url"`
}

// UploadAttachment posts raw file content as a multipart upload and
// returns the resolved accessible URL.
func (c *Client) UploadAttachment(ctx context.Context, ticketID, filename string, content []byte) (string, error) {
	if strings.TrimSpace(ticketID) == "" {
		return "", util.NewValidationError("ticket id required")
	}
	if strings.TrimSpace(filename) == "" {
		return "", util.NewValidationError("filename required")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", util.NewTransportError("build upload request", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", util.NewTransportError("build upload request", err)
	}
	if err := writer.Close(); err != nil {
		return "", util.NewTransportError("build upload request", err)
	}

	path := fmt.Sprintf("/tickets/%s/attachment", url.PathEscape(ticketID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, &body)
	if err != nil {
		return "", util.NewTransportError("build upload request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var uploaded uploadResponse
	if err := c.send(req, &uploaded, "upload file", http.StatusOK); err != nil {
		return "", err
	}
	if uploaded.SignedURL != "" {
		return uploaded.SignedURL, nil
	}
	return uploaded.AttachmentURL, nil
}

// RequestAIReply asks the backend to generate and append an AI reply. The
// result payload shape is backend-defined and returned decoded as-is.
func (c *Client) RequestAIReply(ctx context.Context, input AIReplyInput) (map[string]any, error) {
	if strings.TrimSpace(input.TicketID) == "" {
		return nil, util.NewValidationError("ticket id required")
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, util.NewValidationError("message required")
	}

	payload := map[string]string{
		"ticket_id": input.TicketID,
		"message":   input.Message,
	}
	if input.ImageBase64 != "" {
		payload["image_base64"] = input.ImageBase64
		payload["image_filename"] = input.ImageFilename
	}
	var result map[string]any
	if err := c.doJSON(ctx, http.MethodPost, "/ai/reply", payload, &result, "generate AI reply", http.StatusOK); err != nil {
		return nil, err
	}
	return result, nil
}

// SendEmail sends a notification email for a ticket.
func (c *Client) SendEmail(ctx context.Context, ticketID string, input EmailInput) error {
	if strings.TrimSpace(ticketID) == "" {
		return util.NewValidationError("ticket id required")
	}
	if strings.TrimSpace(input.ToEmail) == "" {
		return util.NewValidationError("to_email required")
	}
	payload := map[string]string{
		"to_email": input.ToEmail,
		"subject":  input.Subject,
		"message":  input.Message,
	}
	path := fmt.Sprintf("/tickets/%s/send-email", url.PathEscape(ticketID))
	return c.doJSON(ctx, http.MethodPost, path, payload, nil, "send email", http.StatusOK)
}

// doJSON performs a JSON request and decodes the response into out when a
// recognized success code is returned.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any, op string, okCodes ...int) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return util.NewTransportError(op+" request encode", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return util.NewTransportError(op+" request build", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out, op, okCodes...)
}

func (c *Client) send(req *http.Request, out any, op string, okCodes ...int) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.logger.Warn("api call failed",
			zap.String("op", op),
			zap.String("url", req.URL.String()),
			zap.Error(err))
		return util.NewTransportError("failed to "+op, err)
	}
	defer resp.Body.Close()

	if !recognizedSuccess(resp.StatusCode, okCodes) {
		c.logger.Warn("api call returned unexpected status",
			zap.String("op", op),
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode))
		return util.NewUnexpectedStatus("failed to "+op, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return util.NewTransportError(op+" response decode", err)
	}
	return nil
}

func recognizedSuccess(status int, okCodes []int) bool {
	for _, code := range okCodes {
		if status == code {
			return true
		}
	}
	return false
}
