package view

import (
	"sort"
	"strings"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// Stats tallies a ticket list by status.
type Stats struct {
	Total      int
	Open       int
	InProgress int
	Closed     int
}

// Tally counts tickets per status. Unknown statuses count toward Total
// only.
func Tally(tickets []domain.Ticket) Stats {
	stats := Stats{Total: len(tickets)}
	for _, ticket := range tickets {
		switch ticket.Status {
		case domain.TicketStatusOpen:
			stats.Open++
		case domain.TicketStatusInProgress:
			stats.InProgress++
		case domain.TicketStatusClosed:
			stats.Closed++
		}
	}
	return stats
}

// SortNewestFirst returns a copy ordered by created_at descending.
// Tickets compare by the raw timestamp string, which sorts correctly for
// the backend's fixed-offset RFC3339 format.
func SortNewestFirst(tickets []domain.Ticket) []domain.Ticket {
	out := make([]domain.Ticket, len(tickets))
	copy(out, tickets)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// FilterByCreator returns tickets whose creator name contains the given
// name, case-insensitively.
func FilterByCreator(tickets []domain.Ticket, name string) []domain.Ticket {
	needle := strings.ToLower(name)
	var out []domain.Ticket
	for _, ticket := range tickets {
		if strings.Contains(strings.ToLower(ticket.CreatedBy), needle) {
			out = append(out, ticket)
		}
	}
	return out
}

// Search returns tickets matching the term in title or description
// (case-insensitive) or whose identifier contains the term verbatim.
func Search(tickets []domain.Ticket, term string) []domain.Ticket {
	lower := strings.ToLower(term)
	var out []domain.Ticket
	for _, ticket := range tickets {
		if strings.Contains(strings.ToLower(ticket.Title), lower) ||
			strings.Contains(strings.ToLower(ticket.Description), lower) ||
			strings.Contains(ticket.ID, term) {
			out = append(out, ticket)
		}
	}
	return out
}

// FindByID returns the ticket with exactly the given identifier.
func FindByID(tickets []domain.Ticket, id string) (domain.Ticket, bool) {
	for _, ticket := range tickets {
		if ticket.ID == id {
			return ticket, true
		}
	}
	return domain.Ticket{}, false
}
