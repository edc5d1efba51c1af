// Package conversation normalizes the backend's loosely-typed reply
// records into canonical, time-ordered replies.
//
// The backend has drifted between two field spellings for the same data:
// role vs reply_type, text vs content, created_at vs timestamp. This
// package is the single place that drift is absorbed; nothing downstream
// looks at raw records.
package conversation

import (
	"sort"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// RawReply is a reply record as it arrives off the wire, carrying every
// field spelling the backend has been observed to emit.
type RawReply struct {
	Role          string `json:"role,omitempty"`
	ReplyType     string `json:"reply_type,omitempty"`
	Text          string `json:"text,omitempty"`
	Content       string `json:"content,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
	AttachmentURL string `json:"attachment_url,omitempty"`
}

// Normalize maps raw records to canonical replies and orders them.
//
// Field resolution is first-present-wins: role falls back to reply_type
// and then "user"; text falls back to content and then empty; the
// timestamp falls back from created_at to timestamp and may be absent.
//
// Ordering is ascending by timestamp only when every record has a
// parseable one. If even a single record does not, the whole sequence
// keeps its arrival order. The fallback is all-or-nothing so that a
// partially-sorted conversation can never interleave messages out of
// sequence.
func Normalize(raw []RawReply) []domain.Reply {
	replies := make([]domain.Reply, 0, len(raw))
	sortable := true
	for _, record := range raw {
		reply := normalizeOne(record)
		if !reply.HasTimestamp {
			sortable = false
		}
		replies = append(replies, reply)
	}
	if sortable {
		sort.SliceStable(replies, func(i, j int) bool {
			return replies[i].Timestamp.Before(replies[j].Timestamp)
		})
	}
	return replies
}

func normalizeOne(record RawReply) domain.Reply {
	role := record.Role
	if role == "" {
		role = record.ReplyType
	}
	if role == "" {
		role = string(domain.RoleUser)
	}

	text := record.Text
	if text == "" {
		text = record.Content
	}

	rawStamp := record.CreatedAt
	if rawStamp == "" {
		rawStamp = record.Timestamp
	}

	reply := domain.Reply{
		Role:          domain.ReplyRole(role),
		Text:          text,
		AttachmentURL: record.AttachmentURL,
		CreatedAt:     rawStamp,
	}
	reply.Timestamp, reply.HasTimestamp = domain.ParseTimestamp(rawStamp)
	return reply
}
