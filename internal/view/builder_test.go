package view_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/apiclient"
	"github.com/spec-kit/ticket-console/internal/attachment"
	"github.com/spec-kit/ticket-console/internal/config"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/stubapi"
	"github.com/spec-kit/ticket-console/internal/view"
)

func newBuilder(t *testing.T) (*view.Builder, *apiclient.Client, *stubapi.Server) {
	t.Helper()
	server := stubapi.NewServer(zap.NewNop())
	client := apiclient.New(config.APIConfig{BaseURL: "http://stub.local"}, zap.NewNop())
	client.HTTPClient = server.HTTPClient()
	return view.NewBuilder(client, zap.NewNop()), client, server
}

func seedTicket(t *testing.T, client *apiclient.Client) string {
	t.Helper()
	ticket, err := client.CreateTicket(context.Background(), apiclient.CreateTicketInput{
		Title:       "Monitor flickers",
		Description: "Flickers when the heater is on.",
		Category:    domain.CategoryTechnical,
		CreatedBy:   "ravi",
	})
	require.NoError(t, err)
	return ticket.ID
}

func TestBuildSnapshot(t *testing.T) {
	builder, client, _ := newBuilder(t)
	ctx := context.Background()
	ticketID := seedTicket(t, client)

	_, err := client.AddReply(ctx, ticketID, apiclient.ReplyInput{Text: "any update?"})
	require.NoError(t, err)
	_, err = client.RequestAIReply(ctx, apiclient.AIReplyInput{TicketID: ticketID, Message: "ctx"})
	require.NoError(t, err)

	snapshot, err := builder.Build(ctx, ticketID)
	require.NoError(t, err)

	assert.Equal(t, ticketID, snapshot.Ticket.ID)
	require.Len(t, snapshot.Replies, 2)
	// Canonical roles regardless of which wire spelling the backend used.
	assert.Equal(t, domain.RoleUser, snapshot.Replies[0].Reply.Role)
	assert.Equal(t, domain.RoleAI, snapshot.Replies[1].Reply.Role)
	assert.True(t, snapshot.Replies[0].KnownRole)
	assert.NotEmpty(t, snapshot.Replies[1].Reply.Text)
}

func TestBuildIsIdempotent(t *testing.T) {
	builder, client, _ := newBuilder(t)
	ctx := context.Background()
	ticketID := seedTicket(t, client)
	_, err := client.AddReply(ctx, ticketID, apiclient.ReplyInput{Text: "first"})
	require.NoError(t, err)

	first, err := builder.Build(ctx, ticketID)
	require.NoError(t, err)
	second, err := builder.Build(ctx, ticketID)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("snapshots differ between identical builds:\n%s", diff)
	}
}

func TestBuildResolvesAttachmentMetadata(t *testing.T) {
	builder, client, _ := newBuilder(t)
	ctx := context.Background()
	ticketID := seedTicket(t, client)

	url, err := client.UploadAttachment(ctx, ticketID, "boot log.txt", []byte("..."))
	require.NoError(t, err)
	_, err = client.AddReply(ctx, ticketID, apiclient.ReplyInput{Text: "attached", AttachmentURL: url})
	require.NoError(t, err)

	snapshot, err := builder.Build(ctx, ticketID)
	require.NoError(t, err)

	// Ticket-level primary attachment from the first upload.
	require.NotNil(t, snapshot.Attachment)
	assert.Equal(t, "boot log.txt", snapshot.Attachment.Name)
	assert.Equal(t, attachment.KindDocument, snapshot.Attachment.Kind)

	require.Len(t, snapshot.Replies, 1)
	require.NotNil(t, snapshot.Replies[0].Attachment)
	assert.Equal(t, "boot log.txt", snapshot.Replies[0].Attachment.Name)
}

func TestBuildMarksUnknownRoles(t *testing.T) {
	builder, client, server := newBuilder(t)
	ctx := context.Background()
	ticketID := seedTicket(t, client)

	_, ok := server.Store().AppendReply(ticketID, "scheduled maintenance", "system", "")
	require.True(t, ok)

	snapshot, err := builder.Build(ctx, ticketID)
	require.NoError(t, err)
	require.Len(t, snapshot.Replies, 1)
	// Unknown roles stay in the conversation but are flagged.
	assert.False(t, snapshot.Replies[0].KnownRole)
	assert.Equal(t, domain.ReplyRole("system"), snapshot.Replies[0].Reply.Role)
}

func TestBuildUnknownTicket(t *testing.T) {
	builder, _, _ := newBuilder(t)
	_, err := builder.Build(context.Background(), "missing")
	assert.Error(t, err)
}
