package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Values match the
// backend wire format verbatim, including the space in "In Progress".
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusClosed     TicketStatus = "Closed"
)

// Statuses lists all statuses in lifecycle order.
func Statuses() []TicketStatus {
	return []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed}
}

// ValidStatus reports whether s is one of the three known statuses.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketCategory enumerates the fixed category set accepted by the backend.
type TicketCategory string

const (
	CategoryTechnical      TicketCategory = "Technical"
	CategoryBugReport      TicketCategory = "Bug Report"
	CategoryFeatureRequest TicketCategory = "Feature Request"
	CategoryGeneralInquiry TicketCategory = "General Inquiry"
	CategoryAccountIssue   TicketCategory = "Account Issue"
)

// Categories lists all categories in menu order.
func Categories() []TicketCategory {
	return []TicketCategory{
		CategoryTechnical,
		CategoryBugReport,
		CategoryFeatureRequest,
		CategoryGeneralInquiry,
		CategoryAccountIssue,
	}
}

// Ticket is a support request as served by the remote API. The identifier
// is server-assigned and immutable; the conversation is fetched fresh with
// the ticket rather than cached alongside it.
type Ticket struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Category      TicketCategory `json:"category"`
	Priority      TicketPriority `json:"priority,omitempty"`
	Status        TicketStatus   `json:"status"`
	CreatedBy     string         `json:"created_by,omitempty"`
	ContactEmail  string         `json:"contact_email,omitempty"`
	CreatedAt     string         `json:"created_at,omitempty"`
	AttachmentURL string         `json:"attachment_url,omitempty"`
}

// CreatedAtTime parses the server timestamp. The zero time and false are
// returned when the field is absent or unparseable.
func (t Ticket) CreatedAtTime() (time.Time, bool) {
	return ParseTimestamp(t.CreatedAt)
}

// ParseTimestamp parses a backend timestamp string. The backend emits
// RFC3339 with fractional seconds and a numeric offset.
func ParseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
