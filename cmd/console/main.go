package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/apiclient"
	"github.com/spec-kit/ticket-console/internal/config"
	"github.com/spec-kit/ticket-console/internal/domain"
	"github.com/spec-kit/ticket-console/internal/observability"
	"github.com/spec-kit/ticket-console/internal/session"
	"github.com/spec-kit/ticket-console/internal/view"
	"github.com/spec-kit/ticket-console/internal/workflow"
)

var (
	logger  *zap.Logger
	client  *apiclient.Client
	orch    *workflow.Orchestrator
	builder *view.Builder
	gate    session.Gate

	// create flags
	createTitle       string
	createDescription string
	createCategory    string
	createPriority    string
	createCreatedBy   string
	createEmail       string
	createFiles       []string

	// reply flags
	replyText  string
	replyFile  string
	replyAdmin bool

	// shared admin credential flags
	adminUser     string
	adminPassword string

	// list flags
	listMine   string
	listSearch string
)

var rootCmd = &cobra.Command{
	Use:   "ticket-console",
	Short: "Support-ticket console over the remote ticketing API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err = observability.NewLogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		client = apiclient.New(cfg.API, logger)
		orch = workflow.NewOrchestrator(client, logger)
		builder = view.NewBuilder(client, logger)
		gate, err = session.NewGate(cfg.Admin)
		if err != nil {
			return fmt.Errorf("init credential gate: %w", err)
		}

		if err := client.Health(cmd.Context()); err != nil {
			return fmt.Errorf("cannot reach API at %s: %w", client.BaseURL, err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		tickets, err := client.ListTickets(cmd.Context())
		if err != nil {
			return err
		}
		if listMine != "" {
			tickets = view.FilterByCreator(tickets, listMine)
		}
		if listSearch != "" {
			tickets = view.Search(tickets, listSearch)
		}
		stats := view.Tally(tickets)
		fmt.Printf("total=%d open=%d in_progress=%d closed=%d\n\n",
			stats.Total, stats.Open, stats.InProgress, stats.Closed)
		for _, ticket := range view.SortNewestFirst(tickets) {
			fmt.Printf("#%s  [%s]  %s  (%s, by %s)\n",
				ticket.ID, ticket.Status, ticket.Title, ticket.Category, ticket.CreatedBy)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [ticket-id]",
	Short: "Show a ticket and its conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := builder.Build(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printSnapshot(snapshot)
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a ticket with optional attachments",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := workflow.CreateRequest{
			Title:        createTitle,
			Description:  createDescription,
			Category:     domain.TicketCategory(createCategory),
			Priority:     domain.TicketPriority(createPriority),
			CreatedBy:    createCreatedBy,
			ContactEmail: createEmail,
		}
		for _, path := range createFiles {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read attachment %s: %w", path, err)
			}
			req.Files = append(req.Files, workflow.FileInput{Name: baseName(path), Content: content})
		}

		result := orch.Create(cmd.Context(), req)
		for _, step := range result.Steps {
			line := fmt.Sprintf("%-8s %s", step.Step, step.Status)
			if step.Detail != "" {
				line += "  " + step.Detail
			}
			if step.Err != nil {
				line += "  (" + step.Err.Error() + ")"
			}
			fmt.Println(line)
		}
		if !result.Created() {
			return fmt.Errorf("ticket was not created")
		}
		fmt.Printf("\nticket #%s created\n", result.Ticket.ID)
		return nil
	},
}

var replyCmd = &cobra.Command{
	Use:   "reply [ticket-id]",
	Short: "Append a reply, optionally with a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var file *workflow.FileInput
		if replyFile != "" {
			content, err := os.ReadFile(replyFile)
			if err != nil {
				return fmt.Errorf("read attachment %s: %w", replyFile, err)
			}
			file = &workflow.FileInput{Name: baseName(replyFile), Content: content}
		}

		var result *workflow.ReplyResult
		var err error
		if replyAdmin {
			sess, loginErr := adminLogin()
			if loginErr != nil {
				return loginErr
			}
			result, err = orch.PostAdminReply(cmd.Context(), sess, args[0], replyText, file)
		} else {
			result, err = orch.PostUserReply(cmd.Context(), args[0], replyText, file)
		}
		if err != nil {
			return err
		}
		if result.UploadErr != nil {
			fmt.Printf("attachment upload failed, reply sent without it: %v\n", result.UploadErr)
		}
		fmt.Println("reply sent")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [ticket-id] [status]",
	Short: "Update a ticket's status (admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := adminLogin()
		if err != nil {
			return err
		}
		if err := orch.UpdateStatus(cmd.Context(), sess, args[0], domain.TicketStatus(args[1])); err != nil {
			return err
		}
		fmt.Println("status updated")
		return nil
	},
}

var aiReplyCmd = &cobra.Command{
	Use:   "ai-reply [ticket-id]",
	Short: "Generate a contextual AI reply (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := adminLogin()
		if err != nil {
			return err
		}
		if err := orch.TriggerAIReply(cmd.Context(), sess, args[0]); err != nil {
			return err
		}
		fmt.Println("AI reply added to the conversation")
		return nil
	},
}

func adminLogin() (*session.Session, error) {
	sess := session.New(gate)
	if err := sess.Login(adminUser, adminPassword); err != nil {
		return nil, fmt.Errorf("admin login failed: %w", err)
	}
	return sess, nil
}

func printSnapshot(snapshot *view.Snapshot) {
	t := snapshot.Ticket
	fmt.Printf("#%s  %s\n", t.ID, t.Title)
	fmt.Printf("status=%s priority=%s category=%s created_by=%s\n", t.Status, t.Priority, t.Category, t.CreatedBy)
	fmt.Println(t.Description)
	if snapshot.Attachment != nil {
		fmt.Printf("attachment: %s (%s) %s\n", snapshot.Attachment.Name, snapshot.Attachment.Kind, snapshot.Attachment.URL)
	}
	if len(snapshot.Replies) == 0 {
		fmt.Println("\nno conversation yet")
		return
	}
	fmt.Println("\nconversation:")
	for _, entry := range snapshot.Replies {
		role := string(entry.Reply.Role)
		if !entry.KnownRole {
			role += " (unknown role)"
		}
		fmt.Printf("  [%s] %s\n", role, entry.Reply.Text)
		if entry.Attachment != nil {
			fmt.Printf("      attachment: %s (%s)\n", entry.Attachment.Name, entry.Attachment.Kind)
		}
	}
}

func baseName(path string) string {
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func main() {
	createCmd.Flags().StringVar(&createTitle, "title", "", "ticket title (required)")
	createCmd.Flags().StringVar(&createDescription, "description", "", "ticket description (required)")
	createCmd.Flags().StringVar(&createCategory, "category", string(domain.CategoryTechnical), "ticket category")
	createCmd.Flags().StringVar(&createPriority, "priority", string(domain.TicketPriorityMedium), "ticket priority")
	createCmd.Flags().StringVar(&createCreatedBy, "created-by", "", "your name (required)")
	createCmd.Flags().StringVar(&createEmail, "email", "", "contact email for the confirmation message")
	createCmd.Flags().StringSliceVar(&createFiles, "file", nil, "attachment file path (repeatable)")

	replyCmd.Flags().StringVar(&replyText, "text", "", "reply text")
	replyCmd.Flags().StringVar(&replyFile, "file", "", "attachment file path")
	replyCmd.Flags().BoolVar(&replyAdmin, "admin", false, "post as admin")

	listCmd.Flags().StringVar(&listMine, "mine", "", "filter by creator name")
	listCmd.Flags().StringVar(&listSearch, "search", "", "search term for title, description, or id")

	rootCmd.PersistentFlags().StringVar(&adminUser, "admin-user", "admin", "admin username for gated commands")
	rootCmd.PersistentFlags().StringVar(&adminPassword, "admin-password", "", "admin password for gated commands")

	rootCmd.AddCommand(listCmd, showCmd, createCmd, replyCmd, statusCmd, aiReplyCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
