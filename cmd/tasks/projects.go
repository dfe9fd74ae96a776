package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var flagProjectUse bool

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects (* marks the active one)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			active, _ := a.store.ActiveProject()
			projects := a.store.Projects()
			if len(projects) == 0 {
				return notice(cmd, "No projects. Create one with 'tasks project add'.")
			}
			for _, p := range projects {
				marker := " "
				if p.ID == active.ID {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s  (%d task(s))\n", marker, p.ID, p.Name, len(p.Tasks))
			}
			return nil
		})
	},
}

var projectAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a project; without a name it is called 'Project N' and selected",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if len(args) == 0 {
				id := a.store.AddProject()
				fmt.Fprintf(cmd.OutOrStdout(), "Created and selected %s\n", id)
				return nil
			}

			id, ok := a.store.CreateProject(strings.Join(args, " "))
			if !ok {
				return notice(cmd, "Nothing created: project name is empty")
			}
			if flagProjectUse {
				a.store.SetActiveProject(id)
				fmt.Fprintf(cmd.OutOrStdout(), "Created and selected %s\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", id)
			return nil
		})
	},
}

var projectRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a project",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if !hasProject(a, args[0]) {
				return projectNotFound(args[0])
			}
			if !a.store.RenameProject(args[0], strings.Join(args[1:], " ")) {
				return notice(cmd, "Nothing changed: name is empty or the same")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s\n", args[0])
			return nil
		})
	},
}

var projectRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a project with all its tasks and activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if !a.store.DeleteProject(args[0]) {
				return projectNotFound(args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			if p, ok := a.store.ActiveProject(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Active project: %s (%s)\n", p.Name, p.ID)
			}
			return nil
		})
	},
}

var projectUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Select the active project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if !hasProject(a, args[0]) {
				return projectNotFound(args[0])
			}
			a.store.SetActiveProject(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Active project: %s\n", args[0])
			return nil
		})
	},
}

func hasProject(a *app, id string) bool {
	for _, p := range a.store.Projects() {
		if p.ID == id {
			return true
		}
	}
	return false
}

func init() {
	projectAddCmd.Flags().BoolVar(&flagProjectUse, "use", false, "select the new project")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectRenameCmd)
	projectCmd.AddCommand(projectRmCmd)
	projectCmd.AddCommand(projectUseCmd)
	rootCmd.AddCommand(projectCmd)
}
