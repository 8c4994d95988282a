package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AyushShukla12112005/trackctl/internal/api"
	"github.com/AyushShukla12112005/trackctl/internal/board"
	"github.com/AyushShukla12112005/trackctl/internal/notify"
	"github.com/AyushShukla12112005/trackctl/internal/query"
	"github.com/AyushShukla12112005/trackctl/internal/render"
)

var (
	boardProject string
	boardWatch   bool
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show a project's kanban board",
	Long: `Show a project's issues as a three-column kanban board.

With --watch the board stays up and re-renders whenever an issue
changes, whether the change came from this process or another one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return boardRun(cmd.Context())
	},
}

func init() {
	boardCmd.Flags().StringVar(&boardProject, "project", "", "Project id (default from config)")
	boardCmd.Flags().BoolVar(&boardWatch, "watch", false, "Stay up and re-render on changes")
	rootCmd.AddCommand(boardCmd)
}

func boardProjectID() (string, error) {
	if boardProject != "" {
		return boardProject, nil
	}
	if p := viper.GetString("board.default_project"); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("--project is required (or set board.default_project)")
}

func boardRun(ctx context.Context) error {
	if _, err := requireSession(); err != nil {
		return err
	}
	projectID, err := boardProjectID()
	if err != nil {
		return err
	}

	store := board.NewStore(client)
	filter := query.Filter{ProjectID: projectID}

	if err := store.Load(ctx, filter); err != nil {
		// Reads degrade: a failed fetch falls back to the cache instead
		// of a blank board. Anything else is a real error.
		if !api.IsFetch(err) {
			return finish(err)
		}
		return boardFromCache(ctx, projectID)
	}

	if c, cerr := getCache(); cerr == nil {
		if cerr := c.ReplaceProjectIssues(ctx, projectID, store.Issues()); cerr != nil {
			log.Warnf("cache refresh: %v", cerr)
		}
	}

	fmt.Fprint(ui.Out, render.Board(store.Issues(), render.BoardOptions{}))

	if boardWatch {
		return boardWatchLoop(ctx, store, filter)
	}
	return nil
}

func boardFromCache(ctx context.Context, projectID string) error {
	c, err := getCache()
	if err != nil {
		return err
	}
	issues, fetchedAt, err := c.IssuesForProject(ctx, projectID)
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		return fmt.Errorf("backend unreachable and nothing cached for project %s", projectID)
	}
	fmt.Fprint(ui.Out, render.Board(issues, render.BoardOptions{Stale: true, FetchedAt: fetchedAt}))
	return nil
}

// boardWatchLoop keeps the board mounted: every issue change signal
// triggers a reload and re-render until interrupted.
func boardWatchLoop(ctx context.Context, store *board.Store, filter query.Filter) error {
	n, err := getNotifier()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	refresh := make(chan struct{}, 1)
	cancel := n.Subscribe(notify.KindIssue, func(notify.Signal) {
		select {
		case refresh <- struct{}{}:
		default:
		}
	})
	defer cancel()

	ui.Info("Watching for changes (Ctrl-C to quit)")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-refresh:
			// Signals are refetch hints, never data.
			if err := store.Load(ctx, filter); err != nil {
				log.Warnf("board reload: %v", err)
				continue
			}
			fmt.Fprintf(ui.Out, "\n%s %s\n", time.Now().Format("15:04:05"),
				render.Board(store.Issues(), render.BoardOptions{}))
		}
	}
}
