package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AyushShukla12112005/trackctl/internal/models"
)

var usersCmd = &cobra.Command{
	Use:   "users [query]",
	Short: "List or search users (assignee lookups)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := ""
		if len(args) == 1 {
			q = args[0]
		}
		return usersRun(cmd.Context(), q)
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
}

func usersRun(ctx context.Context, q string) error {
	if _, err := requireSession(); err != nil {
		return err
	}

	var users []*models.User
	var err error
	if q != "" {
		users, err = client.SearchUsers(ctx, q)
	} else {
		users, err = client.ListUsers(ctx)
	}
	if err != nil {
		return finish(err)
	}

	if len(users) == 0 {
		ui.Info("No users found")
		return nil
	}
	table := ui.Table([]string{"ID", "Name", "Email"})
	for _, u := range users {
		table.Append([]string{u.ID, u.Name, u.Email})
	}
	_ = table.Render()
	return nil
}
