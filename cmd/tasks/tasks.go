package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baiirun/simplrtask/internal/model"
	"github.com/baiirun/simplrtask/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active project's tasks, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			p, ok := a.store.ActiveProject()
			if !ok {
				return store.ErrNoActiveProject
			}
			printTasks(cmd.OutOrStdout(), p)
			return nil
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Add a task to the active project",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content := strings.Join(args, " ")
		if err := checkContent(content); err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			if _, ok := a.store.ActiveProject(); !ok {
				return store.ErrNoActiveProject
			}
			id, ok := a.store.CreateTask(content)
			if !ok {
				return notice(cmd, "Nothing added: task content is empty")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", id)
			return nil
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id> <content>",
	Short: "Change a task's content",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, content := args[0], strings.Join(args[1:], " ")
		if err := checkContent(content); err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			if err := requireTask(a, id); err != nil {
				return err
			}
			if !a.store.UpdateTask(id, content) {
				return notice(cmd, "Nothing changed: content is empty or the same")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", id)
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Set a task's status (pending, in-progress, done)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		status, ok := model.ParseStatus(strings.Join(args[1:], " "))
		if !ok {
			return fmt.Errorf("invalid status: %q (use pending, in-progress or done)", strings.Join(args[1:], " "))
		}
		return withApp(cmd, func(a *app) error {
			if err := requireTask(a, id); err != nil {
				return err
			}
			if !a.store.UpdateTaskStatus(id, status) {
				return notice(cmd, fmt.Sprintf("Nothing changed: %s is already %s", id, status))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s → %s\n", id, status)
			return nil
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task (it stays in the activity log)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if err := requireTask(a, args[0]); err != nil {
				return err
			}
			a.store.DeleteTask(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove done tasks, reporting each in the activity log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if _, ok := a.store.ActiveProject(); !ok {
				return store.ErrNoActiveProject
			}
			n := a.store.ClearCompletedTasks()
			if n == 0 {
				return notice(cmd, "Nothing to clear: no done tasks")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d done task(s)\n", n)
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show a task's change history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			task, ok := a.store.Task(args[0])
			if !ok {
				return taskNotFound(args[0])
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s  %s\n", task.ID, task.Content)
			fmt.Fprintf(w, "  %s  created\n", formatTime(task.CreatedAt))
			for _, m := range task.Modifications {
				fmt.Fprintf(w, "  %s  %s: %s → %s\n", formatTime(m.Timestamp), m.Type, m.From, m.To)
			}
			return nil
		})
	},
}

func printTasks(w io.Writer, p model.Project) {
	fmt.Fprintf(w, "%s (%s)  %d task(s)\n", p.Name, p.ID, len(p.Tasks))
	if len(p.Tasks) == 0 {
		fmt.Fprintln(w, "  No tasks yet! Add one with 'tasks add <content>'.")
		return
	}
	for _, t := range p.Tasks {
		fmt.Fprintf(w, "  %s %s  %-10s  %s\n", statusIcon(t.Status), t.ID, t.Status, t.Content)
	}
}

func statusIcon(s model.Status) string {
	switch s {
	case model.StatusInProgress:
		return "◐"
	case model.StatusDone:
		return "●"
	default:
		return "○"
	}
}
