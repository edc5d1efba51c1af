package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/apiclient"
	"github.com/spec-kit/ticket-console/internal/config"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/stubapi"
	"github.com/spec-kit/ticket-console/pkg/util"
)

func newTestClient(t *testing.T) (*apiclient.Client, *stubapi.Server) {
	t.Helper()
	server := stubapi.NewServer(zap.NewNop())
	client := apiclient.New(config.APIConfig{
		BaseURL:               "http://stub.local",
		RequestTimeoutSeconds: 5,
		HealthTimeoutSeconds:  2,
	}, zap.NewNop())
	client.HTTPClient = server.HTTPClient()
	return client, server
}

func createTicket(t *testing.T, client *apiclient.Client) *domain.Ticket {
	t.Helper()
	ticket, err := client.CreateTicket(context.Background(), apiclient.CreateTicketInput{
		Title:       "Printer on fire",
		Description: "It prints, but also burns.",
		Category:    domain.CategoryTechnical,
		CreatedBy:   "dana",
	})
	require.NoError(t, err)
	require.NotEmpty(t, ticket.ID)
	return ticket
}

func TestHealth(t *testing.T) {
	client, _ := newTestClient(t)
	assert.NoError(t, client.Health(context.Background()))
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestHealthTransportFailure(t *testing.T) {
	client, _ := newTestClient(t)
	client.HTTPClient = &http.Client{Transport: failingTransport{}}

	err := client.Health(context.Background())
	require.Error(t, err)
	assert.True(t, util.IsTransport(err))
}

func TestCreateTicketValidation(t *testing.T) {
	client, _ := newTestClient(t)
	base := apiclient.CreateTicketInput{
		Title:       "t",
		Description: "d",
		Category:    domain.CategoryBugReport,
		CreatedBy:   "c",
	}

	cases := map[string]func(*apiclient.CreateTicketInput){
		"title":       func(in *apiclient.CreateTicketInput) { in.Title = " " },
		"description": func(in *apiclient.CreateTicketInput) { in.Description = "" },
		"category":    func(in *apiclient.CreateTicketInput) { in.Category = "" },
		"created_by":  func(in *apiclient.CreateTicketInput) { in.CreatedBy = "" },
	}
	for field, clear := range cases {
		input := base
		clear(&input)
		_, err := client.CreateTicket(context.Background(), input)
		require.Error(t, err, field)
		assert.True(t, util.IsValidation(err), field)
	}
}

func TestCreateAndFetchTicket(t *testing.T) {
	client, _ := newTestClient(t)
	created := createTicket(t, client)

	assert.Equal(t, domain.TicketStatusOpen, created.Status)
	assert.Equal(t, domain.TicketPriorityMedium, created.Priority)
	assert.NotEmpty(t, created.CreatedAt)

	detail, err := client.GetTicket(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, detail.ID)
	assert.Equal(t, "Printer on fire", detail.Title)
	assert.Empty(t, detail.Replies)
}

func TestGetTicketUnknownID(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.GetTicket(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.True(t, util.IsUnexpectedStatus(err))
	assert.Equal(t, http.StatusNotFound, util.StatusCode(err))
}

func TestTicketIDIsPathEscaped(t *testing.T) {
	client, _ := newTestClient(t)
	ticket := createTicket(t, client)

	// Metacharacters in the identifier must not reroute the request: an
	// appended query string looks up a ticket by that literal id and gets
	// a not-found, instead of silently fetching the real ticket.
	_, err := client.GetTicket(context.Background(), ticket.ID+"?x=1")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, util.StatusCode(err))

	err = client.UpdateStatus(context.Background(), ticket.ID+"/status", domain.TicketStatusClosed)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, util.StatusCode(err))
}

func TestListTickets(t *testing.T) {
	client, _ := newTestClient(t)
	createTicket(t, client)
	createTicket(t, client)

	tickets, err := client.ListTickets(context.Background())
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}

func TestUpdateStatusReflectedOnFetch(t *testing.T) {
	client, _ := newTestClient(t)
	ticket := createTicket(t, client)

	require.NoError(t, client.UpdateStatus(context.Background(), ticket.ID, domain.TicketStatusClosed))

	detail, err := client.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, detail.Status)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	client, _ := newTestClient(t)
	ticket := createTicket(t, client)

	err := client.UpdateStatus(context.Background(), ticket.ID, "Reopened")
	require.Error(t, err)
	assert.True(t, util.IsValidation(err))
}

func TestAddReplyDefaultsRole(t *testing.T) {
	client, _ := newTestClient(t)
	ticket := createTicket(t, client)

	reply, err := client.AddReply(context.Background(), ticket.ID, apiclient.ReplyInput{Text: "still burning"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, reply.Role)
	assert.Equal(t, "still burning", reply.Text)
	assert.True(t, reply.HasTimestamp)
}

func TestAddReplyRequiresTextOrAttachment(t *testing.T) {
	client, _ := newTestClient(t)
	ticket := createTicket(t, client)

	_, err := client.AddReply(context.Background(), ticket.ID, apiclient.ReplyInput{})
	require.Error(t, err)
	assert.True(t, util.IsValidation(err))
}

func TestUploadAttachmentPrefersSignedURL(t *testing.T) {
	client, _ := newTestClient(t)
	ticket := createTicket(t, client)

	url, err := client.UploadAttachment(context.Background(), ticket.ID, "screenshot.png", []byte{0x89, 0x50})
	require.NoError(t, err)
	assert.Contains(t, url, "?sig=")
	assert.Contains(t, url, "screenshot.png")

	// The first upload becomes the ticket's primary attachment.
	detail, err := client.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, detail.AttachmentURL)
	assert.False(t, strings.Contains(detail.AttachmentURL, "?sig="))
}

func TestRequestAIReplyAppendsConversation(t *testing.T) {
	client, _ := newTestClient(t)
	ticket := createTicket(t, client)

	result, err := client.RequestAIReply(context.Background(), apiclient.AIReplyInput{
		TicketID: ticket.ID,
		Message:  "New ticket: Printer on fire",
	})
	require.NoError(t, err)
	assert.Contains(t, result, "reply")

	detail, err := client.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, detail.Replies, 1)
	// The stub emits the drifted reply_type/content spelling for AI rows.
	assert.Equal(t, "ai", detail.Replies[0].ReplyType)
	assert.NotEmpty(t, detail.Replies[0].Content)
}

func TestSendEmail(t *testing.T) {
	client, _ := newTestClient(t)
	ticket := createTicket(t, client)

	err := client.SendEmail(context.Background(), ticket.ID, apiclient.EmailInput{
		ToEmail: "dana@example.com",
		Subject: "Ticket created",
		Message: "hello",
	})
	assert.NoError(t, err)

	err = client.SendEmail(context.Background(), "no-such-id", apiclient.EmailInput{ToEmail: "dana@example.com"})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, util.StatusCode(err))
}
