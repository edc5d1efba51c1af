// Package stubapi is an in-memory stand-in for the remote ticket API. It
// implements the full route surface the console consumes so local
// development and tests need no external backend.
package stubapi

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/domain"
)

// Server bundles the store and handlers behind a fiber app.
type Server struct {
	store  *Store
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a stub server over a fresh store.
func NewServer(logger *zap.Logger) *Server {
	s := &Server{store: NewStore(), logger: logger}
	s.app = s.buildApp()
	return s
}

// Store exposes the backing store for test seeding.
func (s *Server) Store() *Store {
	return s.store
}

// App returns the fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) buildApp() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(s.recoverMiddleware())

	app.Get("/health", s.health)
	app.Get("/tickets/", s.listTickets)
	app.Post("/tickets/", s.createTicket)
	app.Get("/tickets/:id", s.getTicket)
	app.Patch("/tickets/:id/status", s.updateStatus)
	app.Post("/tickets/:id/replies", s.addReply)
	app.Post("/tickets/:id/attachment", s.uploadAttachment)
	app.Post("/tickets/:id/send-email", s.sendEmail)
	app.Post("/ai/reply", s.aiReply)

	return app
}

func (s *Server) recoverMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": fiber.Map{"code": "INTERNAL_ERROR", "message": "internal server error"},
				})
			}
		}()
		return c.Next()
	}
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) listTickets(c *fiber.Ctx) error {
	return c.JSON(s.store.ListTickets())
}

func (s *Server) getTicket(c *fiber.Ctx) error {
	record, ok := s.store.GetTicket(c.Params("id"))
	if !ok {
		return notFound(c, "ticket")
	}
	return c.JSON(record)
}

func (s *Server) createTicket(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if req.Title == "" || req.Description == "" || req.Category == "" {
		return badRequest(c, "title, description, category required")
	}
	record := s.store.CreateTicket(req.Title, req.Description, req.Category)
	s.logger.Info("ticket created", zap.String("ticket_id", record.ID))
	return c.Status(fiber.StatusCreated).JSON(record)
}

func (s *Server) updateStatus(c *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if !domain.ValidStatus(domain.TicketStatus(req.Status)) {
		return badRequest(c, fmt.Sprintf("unknown status %q", req.Status))
	}
	if !s.store.UpdateStatus(c.Params("id"), req.Status) {
		return notFound(c, "ticket")
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

func (s *Server) addReply(c *fiber.Ctx) error {
	var req struct {
		Text          string `json:"text"`
		Role          string `json:"role"`
		AttachmentURL string `json:"attachment_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if req.Text == "" && req.AttachmentURL == "" {
		return badRequest(c, "text or attachment_url required")
	}
	if req.Role == "" {
		req.Role = string(domain.RoleUser)
	}
	reply, ok := s.store.AppendReply(c.Params("id"), req.Text, req.Role, req.AttachmentURL)
	if !ok {
		return notFound(c, "ticket")
	}
	return c.JSON(reply)
}

func (s *Server) uploadAttachment(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file field required")
	}
	file, err := header.Open()
	if err != nil {
		return badRequest(c, "unreadable file")
	}
	defer file.Close()
	if _, err := io.Copy(io.Discard, file); err != nil {
		return badRequest(c, "unreadable file")
	}

	attachmentURL, signedURL, ok := s.store.StoreAttachment(c.Params("id"), header.Filename)
	if !ok {
		return notFound(c, "ticket")
	}
	s.logger.Info("attachment stored",
		zap.String("ticket_id", c.Params("id")),
		zap.String("filename", header.Filename))
	return c.JSON(fiber.Map{
		"signed_url":     signedURL,
		"attachment_url": attachmentURL,
	})
}

func (s *Server) aiReply(c *fiber.Ctx) error {
	var req struct {
		TicketID    string `json:"ticket_id"`
		Message     string `json:"message"`
		ImageBase64 string `json:"image_base64"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if req.TicketID == "" || req.Message == "" {
		return badRequest(c, "ticket_id and message required")
	}
	content := "Thanks for reaching out. An agent has reviewed your request and will follow up shortly."
	reply, ok := s.store.AppendAIReply(req.TicketID, content)
	if !ok {
		return notFound(c, "ticket")
	}
	return c.JSON(fiber.Map{"reply": reply})
}

func (s *Server) sendEmail(c *fiber.Ctx) error {
	var req struct {
		ToEmail string `json:"to_email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if req.ToEmail == "" {
		return badRequest(c, "to_email required")
	}
	if _, ok := s.store.GetTicket(c.Params("id")); !ok {
		return notFound(c, "ticket")
	}
	s.logger.Info("email sent",
		zap.String("ticket_id", c.Params("id")),
		zap.String("to", req.ToEmail),
		zap.String("subject", req.Subject))
	return c.JSON(fiber.Map{"status": "sent"})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": fiber.Map{"code": "VALIDATION_FAILED", "message": message},
	})
}

func notFound(c *fiber.Ctx, resource string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": fiber.Map{"code": "NOT_FOUND", "message": resource + " not found"},
	})
}
