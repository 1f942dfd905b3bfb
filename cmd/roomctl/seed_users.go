package main

import (
	"context"
	"encoding/json"
	"fmt"
	"interviewroom/internal/model"
	"interviewroom/internal/repository"
	"os"

	"github.com/spf13/cobra"
)

var demoUsers = []model.UserSummary{
	{ID: "user_host", Name: "Hana Host", Email: "host@example.com"},
	{ID: "user_interviewer", Name: "Ivan Interviewer", Email: "interviewer@example.com"},
	{ID: "user_student", Name: "Sam Student", Email: "student@example.com"},
}

func newSeedUsersCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed-users",
		Short: "Upsert user directory entries",
		Long: `Upserts display names and emails into the user directory used for
pending request lists. Without --file a small demo set is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users := demoUsers
			if file != "" {
				var err error
				if users, err = readUsers(file); err != nil {
					return err
				}
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return withStore(cfg, func(ctx context.Context, store *repository.Store) error {
				for _, u := range users {
					if err := store.Users.Upsert(ctx, u); err != nil {
						return fmt.Errorf("failed to upsert user %s: %w", u.ID, err)
					}
					printf(cmd.OutOrStdout(), "upserted %s (%s)\n", u.ID, u.Name)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON array of {id, name, email}")
	return cmd
}

func readUsers(path string) ([]model.UserSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var users []model.UserSummary
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for i, u := range users {
		if u.ID == "" {
			return nil, fmt.Errorf("%s: entry %d has no id", path, i)
		}
	}
	return users, nil
}
