package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/AyushShukla12112005/trackctl/internal/api"
	"github.com/AyushShukla12112005/trackctl/internal/notify"
	"github.com/AyushShukla12112005/trackctl/internal/output"
	"github.com/AyushShukla12112005/trackctl/internal/validate"
)

var (
	projectName        string
	projectDescription string
	projectStatus      string
	projectPriority    string
	projectStart       string
	projectEnd         string
	projectLead        string
	projectYes         bool
	inviteEmail        string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectListRun(cmd.Context())
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectShowRun(cmd.Context(), args[0])
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectCreateRun(cmd.Context())
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectUpdateRun(cmd.Context(), args[0], cmd)
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectDeleteRun(cmd.Context(), args[0])
	},
}

var projectInviteCmd = &cobra.Command{
	Use:   "invite <id>",
	Short: "Invite a member by email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return projectInviteRun(cmd.Context(), args[0])
	},
}

func init() {
	for _, c := range []*cobra.Command{projectCreateCmd, projectUpdateCmd} {
		c.Flags().StringVar(&projectName, "name", "", "Project name")
		c.Flags().StringVar(&projectDescription, "description", "", "Project description")
		c.Flags().StringVar(&projectStatus, "status", "", "Project status")
		c.Flags().StringVar(&projectPriority, "priority", "", "Project priority")
		c.Flags().StringVar(&projectStart, "start", "", "Start date (YYYY-MM-DD)")
		c.Flags().StringVar(&projectEnd, "end", "", "End date (YYYY-MM-DD)")
		c.Flags().StringVar(&projectLead, "lead", "", "Project lead user id")
	}

	projectDeleteCmd.Flags().BoolVar(&projectYes, "yes", false, "Skip the confirmation prompt")

	projectInviteCmd.Flags().StringVar(&inviteEmail, "email", "", "Email of the user to invite")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectInviteCmd)
	rootCmd.AddCommand(projectCmd)
}

// projectStatusLabel colors a project status the way board columns color
// issue statuses. Unknown statuses pass through uncolored.
func projectStatusLabel(s string) string {
	switch s {
	case "active":
		return output.Green(s)
	case "completed":
		return output.Cyan(s)
	case "on-hold":
		return output.Yellow(s)
	}
	return s
}

func emitProjectSignal(verb notify.Verb, id string) {
	n, err := getNotifier()
	if err != nil {
		log.Warnf("project %s: %v", verb, err)
		return
	}
	n.Emit(notify.Signal{Kind: notify.KindProject, Verb: verb, ID: id})
}

func parseDate(s, flag string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q (want YYYY-MM-DD)", flag, s)
	}
	return &d, nil
}

func projectRequest() (api.CreateProjectRequest, error) {
	start, err := parseDate(projectStart, "start")
	if err != nil {
		return api.CreateProjectRequest{}, err
	}
	end, err := parseDate(projectEnd, "end")
	if err != nil {
		return api.CreateProjectRequest{}, err
	}
	return api.CreateProjectRequest{
		Name:        projectName,
		Description: projectDescription,
		Status:      projectStatus,
		Priority:    projectPriority,
		StartDate:   start,
		EndDate:     end,
		ProjectLead: projectLead,
	}, nil
}

func projectListRun(ctx context.Context) error {
	if _, err := requireSession(); err != nil {
		return err
	}

	projects, err := client.ListProjects(ctx)
	if err != nil {
		return finish(err)
	}

	if c, cerr := getCache(); cerr == nil {
		if cerr := c.PutProjects(ctx, projects); cerr != nil {
			log.Warnf("cache refresh: %v", cerr)
		}
	}

	if len(projects) == 0 {
		ui.Info("No projects yet. Create one with 'trackctl project create --name ...'")
		return nil
	}

	table := ui.Table([]string{"ID", "Name", "Status", "Lead", "Members", "Updated"})
	for _, p := range projects {
		lead := "-"
		if p.ProjectLead != nil && p.ProjectLead.Name != "" {
			lead = p.ProjectLead.Name
		}
		table.Append([]string{
			p.ID,
			p.Name,
			projectStatusLabel(p.Status),
			lead,
			fmt.Sprintf("%d", len(p.Members)),
			humanize.Time(p.UpdatedAt),
		})
	}
	_ = table.Render()
	return nil
}

func projectShowRun(ctx context.Context, id string) error {
	if _, err := requireSession(); err != nil {
		return err
	}

	p, err := client.GetProject(ctx, id)
	if err != nil {
		return finish(err)
	}

	fmt.Fprintf(ui.Out, "%s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(ui.Out, "  %s\n", p.Description)
	}
	if p.Status != "" {
		fmt.Fprintf(ui.Out, "  Status:   %s\n", projectStatusLabel(p.Status))
	}
	if p.ProjectLead != nil && p.ProjectLead.Name != "" {
		fmt.Fprintf(ui.Out, "  Lead:     %s\n", p.ProjectLead.Name)
	}
	if len(p.Members) > 0 {
		fmt.Fprintf(ui.Out, "  Members:\n")
		for _, m := range p.Members {
			name := m.Name
			if name == "" {
				name = m.ID
			}
			fmt.Fprintf(ui.Out, "    - %s\n", name)
		}
	}
	return nil
}

func projectCreateRun(ctx context.Context) error {
	if _, err := requireSession(); err != nil {
		return err
	}
	if err := validate.ProjectName(projectName); err != nil {
		return err
	}

	req, err := projectRequest()
	if err != nil {
		return err
	}
	p, err := client.CreateProject(ctx, req)
	if err != nil {
		return finish(err)
	}

	emitProjectSignal(notify.VerbCreated, p.ID)
	ui.Success("Project created: %s", p.ID)
	return nil
}

func projectUpdateRun(ctx context.Context, id string, cmd *cobra.Command) error {
	if _, err := requireSession(); err != nil {
		return err
	}

	// Update sends the full document, so start from the current record
	// and overlay only the flags that were set.
	current, err := client.GetProject(ctx, id)
	if err != nil {
		return finish(err)
	}
	if !cmd.Flags().Changed("name") {
		projectName = current.Name
	}
	if !cmd.Flags().Changed("description") {
		projectDescription = current.Description
	}
	if !cmd.Flags().Changed("status") {
		projectStatus = current.Status
	}
	if !cmd.Flags().Changed("priority") {
		projectPriority = current.Priority
	}
	if err := validate.ProjectName(projectName); err != nil {
		return err
	}

	req, err := projectRequest()
	if err != nil {
		return err
	}
	if req.StartDate == nil {
		req.StartDate = current.StartDate
	}
	if req.EndDate == nil {
		req.EndDate = current.EndDate
	}

	p, err := client.UpdateProject(ctx, id, req)
	if err != nil {
		return finish(err)
	}

	emitProjectSignal(notify.VerbUpdated, p.ID)
	ui.Success("Project updated")
	return nil
}

func projectDeleteRun(ctx context.Context, id string) error {
	if _, err := requireSession(); err != nil {
		return err
	}
	if !projectYes && !ui.Confirm("Delete project %s and all of its issues? This cannot be undone", id) {
		ui.Info("Aborted")
		return nil
	}
	if err := client.DeleteProject(ctx, id); err != nil {
		return finish(err)
	}
	emitProjectSignal(notify.VerbUpdated, id)
	ui.Success("Project deleted")
	return nil
}

func projectInviteRun(ctx context.Context, id string) error {
	if _, err := requireSession(); err != nil {
		return err
	}
	if inviteEmail == "" {
		return fmt.Errorf("--email is required")
	}
	if err := client.InviteMember(ctx, id, inviteEmail); err != nil {
		return finish(err)
	}
	emitProjectSignal(notify.VerbUpdated, id)
	ui.Success("Invitation sent to %s", inviteEmail)
	return nil
}
