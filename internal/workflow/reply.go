package workflow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/apiclient"
	"github.com/spec-kit/ticket-console/internal/conversation"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/session"
	"github.com/spec-kit/ticket-console/pkg/util"
)

// ReplyResult reports a posted reply together with the attachment
// outcome. A failed upload does not block the reply; UploadErr carries
// the reported failure and the reply goes out without the attachment.
type ReplyResult struct {
	Reply         *domain.Reply
	AttachmentURL string
	UploadErr     error
}

// PostUserReply appends a user reply, uploading the optional file first.
// When the text is empty and a file is attached, a placeholder body naming
// the shared file is generated.
func (o *Orchestrator) PostUserReply(ctx context.Context, ticketID, text string, file *FileInput) (*ReplyResult, error) {
	return o.postReply(ctx, ticketID, text, domain.RoleUser, file)
}

// PostAdminReply appends an admin reply. The caller's session must have
// authenticated as admin.
func (o *Orchestrator) PostAdminReply(ctx context.Context, sess *session.Session, ticketID, text string, file *FileInput) (*ReplyResult, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return o.postReply(ctx, ticketID, text, domain.RoleAdmin, file)
}

// UpdateStatus changes a ticket's status; admin only.
func (o *Orchestrator) UpdateStatus(ctx context.Context, sess *session.Session, ticketID string, status domain.TicketStatus) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	return o.client.UpdateStatus(ctx, ticketID, status)
}

// TriggerAIReply asks the backend to generate a contextual AI reply;
// admin only. The prompt carries the ticket title and description plus
// the conversation so far as "Role: text" lines, the way the admin panel
// composed it.
func (o *Orchestrator) TriggerAIReply(ctx context.Context, sess *session.Session, ticketID string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	detail, err := o.client.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Ticket: %s\nDescription: %s\n\n", detail.Title, detail.Description)
	replies := conversation.Normalize(detail.Replies)
	if len(replies) > 0 {
		sb.WriteString("Previous conversation:\n")
		for _, reply := range replies {
			fmt.Fprintf(&sb, "%s: %s\n", titleCase(string(reply.Role)), reply.Text)
		}
	}
	prompt := "As a helpful customer service AI, provide a professional and helpful response to this ticket based on the conversation context:\n\n" + sb.String()

	_, err = o.client.RequestAIReply(ctx, apiclient.AIReplyInput{
		TicketID: ticketID,
		Message:  prompt,
	})
	return err
}

func (o *Orchestrator) postReply(ctx context.Context, ticketID, text string, role domain.ReplyRole, file *FileInput) (*ReplyResult, error) {
	result := &ReplyResult{}

	if file != nil {
		url, err := o.client.UploadAttachment(ctx, ticketID, file.Name, file.Content)
		if err != nil {
			o.logger.Warn("reply attachment upload failed",
				zap.String("ticket_id", ticketID),
				zap.String("filename", file.Name),
				zap.Error(err))
			result.UploadErr = err
		} else {
			result.AttachmentURL = url
		}
	}

	body := strings.TrimSpace(text)
	if body == "" && file != nil {
		body = fmt.Sprintf("Shared a file: %s", file.Name)
	}

	reply, err := o.client.AddReply(ctx, ticketID, apiclient.ReplyInput{
		Text:          body,
		Role:          role,
		AttachmentURL: result.AttachmentURL,
	})
	if err != nil {
		return nil, err
	}
	result.Reply = reply
	return result, nil
}

func requireAdmin(sess *session.Session) error {
	if sess == nil || !sess.IsAdmin() {
		return util.NewValidationError("admin session required")
	}
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
