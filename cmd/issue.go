package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/AyushShukla12112005/trackctl/internal/api"
	"github.com/AyushShukla12112005/trackctl/internal/models"
	"github.com/AyushShukla12112005/trackctl/internal/notify"
	"github.com/AyushShukla12112005/trackctl/internal/output"
	"github.com/AyushShukla12112005/trackctl/internal/query"
	"github.com/AyushShukla12112005/trackctl/internal/validate"
)

var (
	issueSearch   string
	issueProject  string
	issueStatus   string
	issuePriority string
	issueType     string
	issueAssignee string

	issueTitle       string
	issueDescription string
	issueDue         string
	issueYes         bool

	commentText string
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Manage issues",
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues with optional filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueListRun(cmd.Context())
	},
}

var issueShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one issue with its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueShowRun(cmd.Context(), args[0])
	},
}

var issueCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an issue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueCreateRun(cmd.Context())
	},
}

var issueEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update fields of an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueEditRun(cmd.Context(), args[0], cmd)
	},
}

var issueDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueDeleteRun(cmd.Context(), args[0])
	},
}

var issueCommentCmd = &cobra.Command{
	Use:   "comment <id>",
	Short: "Add a comment to an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueCommentRun(cmd.Context(), args[0])
	},
}

var issueAssignedCmd = &cobra.Command{
	Use:   "assigned",
	Short: "List issues assigned to you",
	RunE: func(cmd *cobra.Command, args []string) error {
		return issueAssignedRun(cmd.Context())
	},
}

func init() {
	issueListCmd.Flags().StringVar(&issueSearch, "search", "", "Free-text search")
	issueListCmd.Flags().StringVar(&issueProject, "project", "", "Filter by project id")
	issueListCmd.Flags().StringVar(&issueStatus, "status", "", "Filter by status (open|in-progress|done)")
	issueListCmd.Flags().StringVar(&issuePriority, "priority", "", "Filter by priority (low|medium|high|urgent)")
	issueListCmd.Flags().StringVar(&issueType, "type", "", "Filter by type (bug|feature|task)")
	issueListCmd.Flags().StringVar(&issueAssignee, "assignee", "", "Filter by assignee user id")

	issueCreateCmd.Flags().StringVar(&issueTitle, "title", "", "Issue title")
	issueCreateCmd.Flags().StringVar(&issueDescription, "description", "", "Issue description")
	issueCreateCmd.Flags().StringVar(&issueProject, "project", "", "Project id")
	issueCreateCmd.Flags().StringVar(&issueType, "type", "task", "Type (bug|feature|task)")
	issueCreateCmd.Flags().StringVar(&issuePriority, "priority", "medium", "Priority (low|medium|high|urgent)")
	issueCreateCmd.Flags().StringVar(&issueAssignee, "assignee", "", "Assignee user id")
	issueCreateCmd.Flags().StringVar(&issueDue, "due", "", "Due date (YYYY-MM-DD)")

	issueEditCmd.Flags().StringVar(&issueTitle, "title", "", "New title")
	issueEditCmd.Flags().StringVar(&issueDescription, "description", "", "New description")
	issueEditCmd.Flags().StringVar(&issueStatus, "status", "", "New status (open|in-progress|done)")
	issueEditCmd.Flags().StringVar(&issuePriority, "priority", "", "New priority (low|medium|high|urgent)")
	issueEditCmd.Flags().StringVar(&issueType, "type", "", "New type (bug|feature|task)")
	issueEditCmd.Flags().StringVar(&issueAssignee, "assignee", "", "New assignee user id ('' to unassign)")
	issueEditCmd.Flags().StringVar(&issueDue, "due", "", "New due date (YYYY-MM-DD)")

	issueDeleteCmd.Flags().BoolVar(&issueYes, "yes", false, "Skip the confirmation prompt")

	issueCommentCmd.Flags().StringVar(&commentText, "text", "", "Comment text")

	issueCmd.AddCommand(issueListCmd)
	issueCmd.AddCommand(issueShowCmd)
	issueCmd.AddCommand(issueCreateCmd)
	issueCmd.AddCommand(issueEditCmd)
	issueCmd.AddCommand(issueDeleteCmd)
	issueCmd.AddCommand(issueCommentCmd)
	issueCmd.AddCommand(issueAssignedCmd)
	rootCmd.AddCommand(issueCmd)
}

func issueFilter() (query.Filter, error) {
	f := query.Filter{
		Search:     issueSearch,
		ProjectID:  issueProject,
		AssigneeID: issueAssignee,
	}
	if issueStatus != "" {
		s := models.IssueStatus(issueStatus)
		if !s.Valid() {
			return f, fmt.Errorf("unknown status %q", issueStatus)
		}
		f.Status = s
	}
	if issuePriority != "" {
		p := models.IssuePriority(issuePriority)
		if !p.Valid() {
			return f, fmt.Errorf("unknown priority %q", issuePriority)
		}
		f.Priority = p
	}
	if issueType != "" {
		t := models.IssueType(issueType)
		if !t.Valid() {
			return f, fmt.Errorf("unknown type %q", issueType)
		}
		f.Type = t
	}
	return f, nil
}

func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	due, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q (want YYYY-MM-DD)", s)
	}
	if err := validate.DueDate(due, time.Now()); err != nil {
		return nil, err
	}
	return &due, nil
}

// emitIssueSignal tells other views and processes that an issue changed.
// Best-effort: a failed broadcast never fails the write that caused it.
func emitIssueSignal(verb notify.Verb, id string) {
	n, err := getNotifier()
	if err != nil {
		log.Warnf("issue %s: %v", verb, err)
		return
	}
	n.Emit(notify.Signal{Kind: notify.KindIssue, Verb: verb, ID: id})
}

func printIssueTable(issues []*models.Issue) {
	if len(issues) == 0 {
		ui.Info("No issues match")
		return
	}
	table := ui.Table([]string{"ID", "Type", "Title", "Status", "Priority", "Assignee", "Updated"})
	for _, issue := range issues {
		assignee := "-"
		if issue.Assignee != nil && issue.Assignee.Name != "" {
			assignee = issue.Assignee.Name
		}
		table.Append([]string{
			issue.ID,
			string(issue.Type),
			issue.Title,
			output.StatusColor(issue.Status),
			output.PriorityColor(issue.Priority),
			assignee,
			humanize.Time(issue.UpdatedAt),
		})
	}
	_ = table.Render()
}

func issueListRun(ctx context.Context) error {
	if _, err := requireSession(); err != nil {
		return err
	}
	f, err := issueFilter()
	if err != nil {
		return err
	}

	issues, err := client.ListIssues(ctx, f)
	if err != nil {
		return finish(err)
	}

	// Refresh the fallback cache while we have fresh data.
	if f.ProjectID != "" {
		if c, cerr := getCache(); cerr == nil {
			if cerr := c.ReplaceProjectIssues(ctx, f.ProjectID, issues); cerr != nil {
				log.Warnf("cache refresh: %v", cerr)
			}
		}
	}

	printIssueTable(issues)
	return nil
}

func issueAssignedRun(ctx context.Context) error {
	if _, err := requireSession(); err != nil {
		return err
	}
	issues, err := client.AssignedIssues(ctx)
	if err != nil {
		return finish(err)
	}
	printIssueTable(issues)
	return nil
}

func issueShowRun(ctx context.Context, id string) error {
	if _, err := requireSession(); err != nil {
		return err
	}

	issue, err := client.GetIssue(ctx, id)
	if err != nil {
		return finish(err)
	}

	fmt.Fprintf(ui.Out, "%s %s\n", issue.Type.Icon(), issue.Title)
	fmt.Fprintf(ui.Out, "  Status:   %s\n", output.StatusColor(issue.Status))
	fmt.Fprintf(ui.Out, "  Priority: %s\n", output.PriorityColor(issue.Priority))
	if issue.Project.Name != "" {
		fmt.Fprintf(ui.Out, "  Project:  %s\n", issue.Project.Name)
	}
	if issue.Assignee != nil && issue.Assignee.Name != "" {
		fmt.Fprintf(ui.Out, "  Assignee: %s\n", issue.Assignee.Name)
	}
	if issue.DueDate != nil {
		due := issue.DueDate.Format("2006-01-02")
		if issue.Overdue(time.Now()) {
			due = output.Red(due + " (overdue)")
		}
		fmt.Fprintf(ui.Out, "  Due:      %s\n", due)
	}
	if issue.Description != "" {
		fmt.Fprintf(ui.Out, "\n%s\n", issue.Description)
	}

	comments, err := client.ListComments(ctx, id)
	if err != nil {
		// The issue itself rendered; degrade quietly.
		log.Warnf("list comments for %s: %v", id, err)
		return nil
	}
	if len(comments) > 0 {
		fmt.Fprintf(ui.Out, "\nComments (%d):\n", len(comments))
		for _, c := range comments {
			fmt.Fprintf(ui.Out, "  %s (%s)\n    %s\n", c.Author.Name, humanize.Time(c.CreatedAt), c.Text)
		}
	}
	return nil
}

func issueCreateRun(ctx context.Context) error {
	if _, err := requireSession(); err != nil {
		return err
	}
	if issueProject == "" {
		return fmt.Errorf("--project is required")
	}
	if err := validate.IssueTitle(issueTitle); err != nil {
		return err
	}
	if err := validate.IssueDescription(issueDescription); err != nil {
		return err
	}

	t := models.IssueType(issueType)
	if !t.Valid() {
		return fmt.Errorf("unknown type %q", issueType)
	}
	p := models.IssuePriority(issuePriority)
	if !p.Valid() {
		return fmt.Errorf("unknown priority %q", issuePriority)
	}
	due, err := parseDue(issueDue)
	if err != nil {
		return err
	}

	issue, err := client.CreateIssue(ctx, api.CreateIssueRequest{
		Title:       issueTitle,
		Description: issueDescription,
		Type:        t,
		Priority:    p,
		ProjectID:   issueProject,
		AssigneeID:  issueAssignee,
		DueDate:     due,
	})
	if err != nil {
		return finish(err)
	}

	emitIssueSignal(notify.VerbCreated, issue.ID)
	ui.Success("Issue created: %s", issue.ID)
	return nil
}

func issueEditRun(ctx context.Context, id string, cmd *cobra.Command) error {
	if _, err := requireSession(); err != nil {
		return err
	}

	patch := map[string]any{}
	if cmd.Flags().Changed("title") {
		if err := validate.IssueTitle(issueTitle); err != nil {
			return err
		}
		patch["title"] = issueTitle
	}
	if cmd.Flags().Changed("description") {
		if err := validate.IssueDescription(issueDescription); err != nil {
			return err
		}
		patch["description"] = issueDescription
	}
	if cmd.Flags().Changed("status") {
		s := models.IssueStatus(issueStatus)
		if !s.Valid() {
			return fmt.Errorf("unknown status %q", issueStatus)
		}
		patch["status"] = s
	}
	if cmd.Flags().Changed("priority") {
		p := models.IssuePriority(issuePriority)
		if !p.Valid() {
			return fmt.Errorf("unknown priority %q", issuePriority)
		}
		patch["priority"] = p
	}
	if cmd.Flags().Changed("type") {
		t := models.IssueType(issueType)
		if !t.Valid() {
			return fmt.Errorf("unknown type %q", issueType)
		}
		patch["type"] = t
	}
	if cmd.Flags().Changed("assignee") {
		patch["assignee"] = issueAssignee
	}
	if cmd.Flags().Changed("due") {
		due, err := parseDue(issueDue)
		if err != nil {
			return err
		}
		patch["dueDate"] = due
	}
	if len(patch) == 0 {
		return fmt.Errorf("nothing to change")
	}

	issue, err := client.PatchIssue(ctx, id, patch)
	if err != nil {
		return finish(err)
	}

	emitIssueSignal(notify.VerbUpdated, issue.ID)
	ui.Success("Issue updated")
	return nil
}

func issueDeleteRun(ctx context.Context, id string) error {
	if _, err := requireSession(); err != nil {
		return err
	}
	if !issueYes && !ui.Confirm("Delete issue %s? This cannot be undone", id) {
		ui.Info("Aborted")
		return nil
	}
	if err := client.DeleteIssue(ctx, id); err != nil {
		return finish(err)
	}
	emitIssueSignal(notify.VerbUpdated, id)
	ui.Success("Issue deleted")
	return nil
}

func issueCommentRun(ctx context.Context, id string) error {
	if _, err := requireSession(); err != nil {
		return err
	}
	if commentText == "" {
		return fmt.Errorf("--text is required")
	}

	if _, err := client.AddComment(ctx, id, commentText); err != nil {
		return finish(err)
	}
	emitIssueSignal(notify.VerbUpdated, id)
	ui.Success("Comment added")
	return nil
}
