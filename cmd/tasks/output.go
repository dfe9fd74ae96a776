package main

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/baiirun/simplrtask/internal/activity"
	"github.com/baiirun/simplrtask/internal/model"
)

// notice reports a no-op. No-ops are not failures, so the exit code stays 0.
func notice(cmd *cobra.Command, msg string) error {
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func checkContent(content string) error {
	if n := utf8.RuneCountInString(content); n > model.MaxContentLength {
		return fmt.Errorf("task content is limited to %d characters, got %d", model.MaxContentLength, n)
	}
	return nil
}

func taskNotFound(id string) error {
	return fmt.Errorf("task not found: %s (use 'tasks list' to see available tasks)", id)
}

func projectNotFound(id string) error {
	return fmt.Errorf("project not found: %s (use 'tasks project list' to see available projects)", id)
}

// requireTask distinguishes a missing task from a no-op change.
func requireTask(a *app, id string) error {
	if _, ok := a.store.Task(id); !ok {
		return taskNotFound(id)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.Local().Format(activity.DisplayTimeLayout)
}

func describeActivity(e model.GlobalActivity) string {
	switch e.Type {
	case model.ActivityCreated:
		return fmt.Sprintf("created %q", e.TaskContent)
	case model.ActivityContent:
		return fmt.Sprintf("edited %q → %q", e.From, e.To)
	case model.ActivityStatus:
		return fmt.Sprintf("%q %s → %s", e.TaskContent, e.From, e.To)
	case model.ActivityDeleted:
		return fmt.Sprintf("deleted %q", e.TaskContent)
	case model.ActivityReported:
		return fmt.Sprintf("reported %q", e.TaskContent)
	default:
		return fmt.Sprintf("%s %q", e.Type, e.TaskContent)
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(historyCmd)
}
