package domain

import "time"

// ReplyRole indicates who authored a conversation reply.
type ReplyRole string

const (
	RoleUser  ReplyRole = "user"
	RoleAI    ReplyRole = "ai"
	RoleAdmin ReplyRole = "admin"
)

// KnownRole reports whether r is one of the three recognized roles.
// Replies with other role strings are kept in the conversation but
// excluded from role-specific handling.
func KnownRole(r ReplyRole) bool {
	switch r {
	case RoleUser, RoleAI, RoleAdmin:
		return true
	}
	return false
}

// Reply is one message in a ticket's conversation. Replies are append-only;
// there is no edit or delete. Text may be empty when an attachment is
// present. CreatedAt keeps the raw server string; Timestamp carries the
// parsed value when parsing succeeded.
type Reply struct {
	Role          ReplyRole `json:"role"`
	Text          string    `json:"text"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
	CreatedAt     string    `json:"created_at,omitempty"`

	Timestamp    time.Time `json:"-"`
	HasTimestamp bool      `json:"-"`
}
