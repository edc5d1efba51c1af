package stubapi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// timeLayout mirrors the production backend's timestamp format: RFC3339
// with microseconds and a numeric offset.
const timeLayout = "2006-01-02T15:04:05.000000+00:00"

// TicketRecord is a stored ticket in wire shape.
type TicketRecord struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	Priority      string        `json:"priority"`
	Status        string        `json:"status"`
	CreatedBy     string        `json:"created_by,omitempty"`
	ContactEmail  string        `json:"contact_email,omitempty"`
	CreatedAt     string        `json:"created_at"`
	AttachmentURL string        `json:"attachment_url,omitempty"`
	Replies       []ReplyRecord `json:"replies"`
}

// ReplyRecord is a stored reply. AI-authored rows deliberately use the
// reply_type/content spelling to reproduce the schema drift the real
// backend exhibits.
type ReplyRecord struct {
	Role          string `json:"role,omitempty"`
	ReplyType     string `json:"reply_type,omitempty"`
	Text          string `json:"text,omitempty"`
	Content       string `json:"content,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	AttachmentURL string `json:"attachment_url,omitempty"`
}

// Store holds tickets in memory behind a mutex. It exists so the console
// and the tests can run without the production backend; nothing survives
// a restart.
type Store struct {
	mu      sync.Mutex
	tickets map[string]*TicketRecord
	order   []string
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		tickets: make(map[string]*TicketRecord),
		now:     time.Now,
	}
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

// CreateTicket inserts a ticket with server-assigned id, defaults, and
// creation timestamp.
func (s *Store) CreateTicket(title, description, category string) TicketRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := &TicketRecord{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    string(domain.TicketPriorityMedium),
		Status:      string(domain.TicketStatusOpen),
		CreatedAt:   s.timestamp(),
		Replies:     []ReplyRecord{},
	}
	s.tickets[record.ID] = record
	s.order = append(s.order, record.ID)
	return *record
}

// ListTickets returns all tickets in insertion order.
func (s *Store) ListTickets() []TicketRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TicketRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.tickets[id])
	}
	return out
}

// GetTicket returns a copy of the ticket, if present.
func (s *Store) GetTicket(id string) (TicketRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.tickets[id]
	if !ok {
		return TicketRecord{}, false
	}
	return *record, true
}

// UpdateStatus sets a ticket's status.
func (s *Store) UpdateStatus(id, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.tickets[id]
	if !ok {
		return false
	}
	record.Status = status
	return true
}

// AppendReply appends a user/admin reply and returns the stored record.
func (s *Store) AppendReply(id, text, role, attachmentURL string) (ReplyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.tickets[id]
	if !ok {
		return ReplyRecord{}, false
	}
	reply := ReplyRecord{
		Role:          role,
		Text:          text,
		CreatedAt:     s.timestamp(),
		AttachmentURL: attachmentURL,
	}
	record.Replies = append(record.Replies, reply)
	return reply, true
}

// AppendAIReply appends an AI-authored reply using the drifted field
// spelling (reply_type/content).
func (s *Store) AppendAIReply(id, content string) (ReplyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.tickets[id]
	if !ok {
		return ReplyRecord{}, false
	}
	reply := ReplyRecord{
		ReplyType: "ai",
		Content:   content,
		CreatedAt: s.timestamp(),
	}
	record.Replies = append(record.Replies, reply)
	return reply, true
}

// StoreAttachment records an upload and returns the permanent and signed
// URLs. Object names carry the same timestamp prefix the real file store
// applies. The first upload becomes the ticket's primary attachment.
func (s *Store) StoreAttachment(id, filename string) (attachmentURL, signedURL string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok2 := s.tickets[id]
	if !ok2 {
		return "", "", false
	}
	object := fmt.Sprintf("api_%s_%s", s.timestamp(), strings.ReplaceAll(filename, " ", "%20"))
	attachmentURL = fmt.Sprintf("https://files.stub.local/%s/%s", id, object)
	signedURL = attachmentURL + "?sig=" + uuid.NewString()
	if record.AttachmentURL == "" {
		record.AttachmentURL = attachmentURL
	}
	return attachmentURL, signedURL, true
}
