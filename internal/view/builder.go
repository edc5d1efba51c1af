// Package view assembles display-ready snapshots from remote state. A
// snapshot is always rebuilt from scratch; refresh is an explicit re-call
// by the consumer, never a push.
package view

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/apiclient"
	"github.com/spec-kit/ticket-console/internal/attachment"
	"github.com/spec-kit/ticket-console/internal/conversation"
	"github.com/spec-kit/ticket-console/internal/domain"
)

// AttachmentInfo is the resolved display metadata for one attachment URL.
type AttachmentInfo struct {
	URL  string
	Name string
	Kind attachment.Kind
}

// ReplyView is one conversation entry with resolved attachment metadata.
// KnownRole is false for role strings outside user/ai/admin; such replies
// stay in the conversation but are excluded from role-specific handling.
type ReplyView struct {
	Reply      domain.Reply
	Attachment *AttachmentInfo
	KnownRole  bool
}

// Snapshot is the assembled point-in-time view of a ticket and its
// ordered conversation.
type Snapshot struct {
	Ticket     domain.Ticket
	Attachment *AttachmentInfo
	Replies    []ReplyView
}

// Builder fetches and assembles snapshots.
type Builder struct {
	client *apiclient.Client
	logger *zap.Logger
}

// NewBuilder constructs a builder.
func NewBuilder(client *apiclient.Client, logger *zap.Logger) *Builder {
	return &Builder{client: client, logger: logger}
}

// Build fetches the ticket and its replies and assembles the snapshot.
// Repeated calls against unchanged remote state yield identical output.
func (b *Builder) Build(ctx context.Context, ticketID string) (*Snapshot, error) {
	detail, err := b.client.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Ticket:     detail.Ticket,
		Attachment: resolveAttachment(detail.AttachmentURL),
	}
	for _, reply := range conversation.Normalize(detail.Replies) {
		snapshot.Replies = append(snapshot.Replies, ReplyView{
			Reply:      reply,
			Attachment: resolveAttachment(reply.AttachmentURL),
			KnownRole:  domain.KnownRole(reply.Role),
		})
	}
	b.logger.Debug("snapshot built",
		zap.String("ticket_id", ticketID),
		zap.Int("replies", len(snapshot.Replies)))
	return snapshot, nil
}

func resolveAttachment(url string) *AttachmentInfo {
	if url == "" {
		return nil
	}
	name, kind := attachment.Resolve(url)
	return &AttachmentInfo{URL: url, Name: name, Kind: kind}
}
