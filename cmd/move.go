package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AyushShukla12112005/trackctl/internal/board"
	"github.com/AyushShukla12112005/trackctl/internal/models"
	"github.com/AyushShukla12112005/trackctl/internal/query"
)

var moveCmd = &cobra.Command{
	Use:   "move <issue-id> <column>",
	Short: "Move an issue to another board column",
	Long: `Move an issue to another board column (open, in-progress or done).

The move shows up immediately and is then persisted; if the backend
rejects it, the issue snaps back to its previous column.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return moveRun(cmd.Context(), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
}

func moveRun(ctx context.Context, issueID, column string) error {
	if _, err := requireSession(); err != nil {
		return err
	}

	dest := models.IssueStatus(column)
	if !dest.Valid() {
		return fmt.Errorf("unknown column %q (want open, in-progress or done)", column)
	}

	issue, err := client.GetIssue(ctx, issueID)
	if err != nil {
		return finish(err)
	}
	if issue.Status == dest {
		ui.Info("Issue is already in %s", dest.Label())
		return nil
	}

	n, err := getNotifier()
	if err != nil {
		return err
	}

	store := board.NewStore(client)
	if err := store.Load(ctx, query.Filter{ProjectID: issue.Project.ID}); err != nil {
		return finish(err)
	}

	engine := board.NewEngine(store, client, n, ui)
	if _, err := engine.Move(ctx, issueID, issue.Status, dest, 0, 0); err != nil {
		return finish(err)
	}
	return nil
}
