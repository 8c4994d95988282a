package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/AyushShukla12112005/trackctl/internal/api"
	"github.com/AyushShukla12112005/trackctl/internal/dashboard"
	"github.com/AyushShukla12112005/trackctl/internal/output"
)

var dashboardWatch bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the cross-project summary",
	Long: `Show project counts, your open work and the recent activity feed.

With --watch the summary stays up and recomputes whenever an issue or
project changes anywhere, including in other trackctl processes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardRun(cmd.Context())
	},
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashboardWatch, "watch", false, "Stay up and recompute on changes")
	rootCmd.AddCommand(dashboardCmd)
}

func dashboardRun(ctx context.Context) error {
	sess, err := requireSession()
	if err != nil {
		return err
	}

	if !dashboardWatch {
		ctrl := dashboard.NewController(client, nil, sess.User.ID, log)
		if err := ctrl.Recompute(ctx); err != nil {
			if !api.IsFetch(err) {
				return finish(err)
			}
			snap := ctrl.Snapshot()
			if len(snap.Projects) == 0 && len(snap.Issues) == 0 && len(snap.Recent) == 0 {
				return dashboardFromCache(ctx)
			}
			// Some pieces fetched fine; show them rather than throwing
			// the whole recompute away.
			ui.Warning("Some data could not be fetched, parts of this summary may be stale")
			printSnapshot(snap)
			return nil
		}
		printSnapshot(ctrl.Snapshot())
		if c, cerr := getCache(); cerr == nil {
			if cerr := c.PutProjects(ctx, ctrl.Snapshot().Projects); cerr != nil {
				log.Warnf("cache refresh: %v", cerr)
			}
		}
		return nil
	}

	n, err := getNotifier()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := dashboard.NewController(client, n, sess.User.ID, log)
	ctrl.OnUpdate(func(snap dashboard.Snapshot) {
		fmt.Fprintf(ui.Out, "\n%s\n", time.Now().Format("15:04:05"))
		printSnapshot(snap)
	})
	ctrl.Mount(ctx)
	defer ctrl.Close()

	if err := ctrl.Recompute(ctx); err != nil {
		log.Warnf("dashboard: initial fetch: %v", err)
		ui.Warning("Some data could not be fetched, retrying on the next change")
	}

	ui.Info("Watching for changes (Ctrl-C to quit)")
	<-ctx.Done()
	return nil
}

func dashboardFromCache(ctx context.Context) error {
	c, err := getCache()
	if err != nil {
		return err
	}
	projects, fetchedAt, err := c.Projects(ctx)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return fmt.Errorf("backend unreachable and nothing cached")
	}

	ui.Warning("Backend unreachable, showing cached data from %s", humanize.Time(fetchedAt))
	table := ui.Table([]string{"Project", "Status", "Updated"})
	for _, p := range projects {
		table.Append([]string{p.Name, projectStatusLabel(p.Status), humanize.Time(p.UpdatedAt)})
	}
	_ = table.Render()
	return nil
}

func printSnapshot(snap dashboard.Snapshot) {
	stats := snap.Stats
	fmt.Fprintf(ui.Out, "Projects: %d (%d completed)   My tasks: %d   Overdue: %s\n\n",
		stats.TotalProjects, stats.CompletedProjects, stats.MyTasks,
		overdueLabel(stats.Overdue))

	if len(snap.Projects) > 0 {
		table := ui.Table([]string{"Project", "Status", "Progress", "Lead", "Updated"})
		for _, p := range snap.Projects {
			lead := "-"
			if p.ProjectLead != nil && p.ProjectLead.Name != "" {
				lead = p.ProjectLead.Name
			}
			done, total := dashboard.ProjectIssueCounts(snap.Issues, p.ID)
			progress := fmt.Sprintf("%s (%d/%d)",
				output.ProgressColor(dashboard.ProjectProgress(snap.Issues, p.ID)), done, total)
			table.Append([]string{p.Name, projectStatusLabel(p.Status), progress, lead, humanize.Time(p.UpdatedAt)})
		}
		_ = table.Render()
	}

	if len(snap.Recent) > 0 {
		fmt.Fprintf(ui.Out, "\nRecent activity:\n")
		for _, issue := range snap.Recent {
			fmt.Fprintf(ui.Out, "  %s %s (%s, %s)\n",
				issue.Type.Icon(), issue.Title,
				output.StatusColor(issue.Status), humanize.Time(issue.UpdatedAt))
		}
	}
}

func overdueLabel(n int) string {
	s := fmt.Sprintf("%d", n)
	if n > 0 {
		return output.Red(s)
	}
	return s
}
