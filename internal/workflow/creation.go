// Package workflow sequences the multi-step remote operations the backend
// offers no transactions for. Each step's outcome is recorded
// independently so partial success can be reported accurately.
package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/apiclient"
	"github.com/spec-kit/ticket-console/internal/domain"
)

// Step names the independently-failable units of the creation workflow.
type Step string

const (
	StepCreate  Step = "create"
	StepUpload  Step = "upload"
	StepAIReply Step = "ai_reply"
	StepEmail   Step = "email"
)

// StepStatus is the recorded outcome of one step.
type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// StepResult records one step's outcome. Upload steps produce one result
// per file, with the filename in Detail.
type StepResult struct {
	Step   Step
	Status StepStatus
	Detail string
	Err    error
}

// FileInput is one attachment to upload after creation.
type FileInput struct {
	Name    string
	Content []byte
}

// CreateRequest is the full creation workflow input. Priority and
// ContactEmail are collected for the caller's own bookkeeping and the
// email step; the backend's create endpoint accepts neither.
type CreateRequest struct {
	Title        string
	Description  string
	Category     domain.TicketCategory
	Priority     domain.TicketPriority
	CreatedBy    string
	ContactEmail string
	Files        []FileInput
}

// Result is the terminal state of one workflow run. Once Ticket is
// non-nil the ticket exists regardless of later step outcomes; there is
// no rollback.
type Result struct {
	RunID          string
	Ticket         *domain.Ticket
	AttachmentURLs []string
	Steps          []StepResult
}

// Created reports whether the ticket exists.
func (r *Result) Created() bool {
	return r.Ticket != nil
}

// FailedSteps returns the steps that failed, in execution order.
func (r *Result) FailedSteps() []StepResult {
	var failed []StepResult
	for _, step := range r.Steps {
		if step.Status == StepFailed {
			failed = append(failed, step)
		}
	}
	return failed
}

// Orchestrator runs multi-step ticket workflows against the client.
type Orchestrator struct {
	client *apiclient.Client
	logger *zap.Logger
}

// NewOrchestrator constructs the orchestrator.
func NewOrchestrator(client *apiclient.Client, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{client: client, logger: logger}
}

// Create runs the four-step creation workflow:
//
//  1. create the ticket — failure aborts everything else;
//  2. upload each file independently — one failure blocks neither the
//     remaining files nor later steps;
//  3. request an AI reply — reported, never fatal;
//  4. send the notification email when a contact address was supplied —
//     reported, never fatal.
func (o *Orchestrator) Create(ctx context.Context, req CreateRequest) *Result {
	result := &Result{RunID: uuid.NewString()}
	log := o.logger.With(zap.String("run_id", result.RunID))

	ticket, err := o.client.CreateTicket(ctx, apiclient.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		log.Error("ticket creation failed", zap.Error(err))
		result.record(StepCreate, StepFailed, "", err)
		return result
	}
	result.Ticket = ticket
	result.record(StepCreate, StepSucceeded, ticket.ID, nil)
	log = log.With(zap.String("ticket_id", ticket.ID))
	log.Info("ticket created")

	for _, file := range req.Files {
		url, err := o.client.UploadAttachment(ctx, ticket.ID, file.Name, file.Content)
		if err != nil {
			log.Warn("attachment upload failed", zap.String("filename", file.Name), zap.Error(err))
			result.record(StepUpload, StepFailed, file.Name, err)
			continue
		}
		result.AttachmentURLs = append(result.AttachmentURLs, url)
		result.record(StepUpload, StepSucceeded, file.Name, nil)
	}

	aiMessage := fmt.Sprintf("New ticket: %s\n\n%s", req.Title, req.Description)
	if _, err := o.client.RequestAIReply(ctx, apiclient.AIReplyInput{
		TicketID: ticket.ID,
		Message:  aiMessage,
	}); err != nil {
		log.Warn("AI reply request failed", zap.Error(err))
		result.record(StepAIReply, StepFailed, "", err)
	} else {
		result.record(StepAIReply, StepSucceeded, "", nil)
	}

	if req.ContactEmail == "" {
		result.record(StepEmail, StepSkipped, "no contact email", nil)
		return result
	}
	err = o.client.SendEmail(ctx, ticket.ID, apiclient.EmailInput{
		ToEmail: req.ContactEmail,
		Subject: fmt.Sprintf("Ticket #%s Created Successfully", ticket.ID),
		Message: fmt.Sprintf("Your ticket '%s' has been created and assigned ID #%s. We'll get back to you soon!", req.Title, ticket.ID),
	})
	if err != nil {
		log.Warn("notification email failed", zap.Error(err))
		result.record(StepEmail, StepFailed, req.ContactEmail, err)
	} else {
		result.record(StepEmail, StepSucceeded, req.ContactEmail, nil)
	}
	return result
}

func (r *Result) record(step Step, status StepStatus, detail string, err error) {
	r.Steps = append(r.Steps, StepResult{Step: step, Status: status, Detail: detail, Err: err})
}
