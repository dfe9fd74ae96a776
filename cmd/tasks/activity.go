package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/baiirun/simplrtask/internal/activity"
	"github.com/baiirun/simplrtask/internal/store"
)

var flagActivitySearch string

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the active project's activity log, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if _, ok := a.store.ActiveProject(); !ok {
				return store.ErrNoActiveProject
			}
			entries := a.store.SearchActivity(flagActivitySearch)
			if len(entries) == 0 {
				return notice(cmd, "No activity found")
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s  %s\n", formatTime(e.Timestamp), e.Type, describeActivity(e))
			}
			return nil
		})
	},
}

var activityExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the activity log as JSON (default activity_log_<date>.json, - for stdout)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			data, err := a.store.ExportActivity()
			if err != nil {
				return err
			}

			path := activity.ExportFilename(time.Now())
			if len(args) == 1 {
				path = args[0]
			}
			if path == "-" {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported activity to %s\n", path)
			return nil
		})
	},
}

var activityImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge an exported activity log into the active project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read import: %w", err)
		}
		return withApp(cmd, func(a *app) error {
			added, err := a.store.ImportActivity(data)
			var verr *activity.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("invalid activity file %s: %w", args[0], verr)
			}
			if err != nil {
				return err
			}
			if added == 0 {
				return notice(cmd, "Nothing imported: every entry is already in the log")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entr%s\n", added, plural(added, "y", "ies"))
			return nil
		})
	},
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	activityCmd.Flags().StringVarP(&flagActivitySearch, "search", "s", "", "only show entries matching this text")

	activityCmd.AddCommand(activityExportCmd)
	activityCmd.AddCommand(activityImportCmd)
	rootCmd.AddCommand(activityCmd)
}
