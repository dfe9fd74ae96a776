package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baiirun/simplrtask/internal/model"
)

var (
	flagCopyFormat string
	flagColors     []string
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			s := a.store.Settings()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "copy format: %s\n", s.CopyFormat)
			fmt.Fprintln(w, "status colors:")
			for _, status := range model.Statuses() {
				fmt.Fprintf(w, "  %-10s  %s\n", status, s.StatusColors[status])
			}
			fmt.Fprintf(w, "popout position: %s\n", a.adapter.PopoutPosition())
			return nil
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings",
	Long: `Change settings.

The copy format (text or html) is stored for the clipboard exporter, which
reads it when copying a task list; the tasks CLI itself does not copy.
Status colors are used by the popout.`,
	Example: `  tasks settings set --copy-format html
  tasks settings set --color done=#16a34a --color pending=#dc2626`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagCopyFormat == "" && len(flagColors) == 0 {
			return fmt.Errorf("nothing to set (use --copy-format or --color)")
		}
		return withApp(cmd, func(a *app) error {
			settings, err := applySettings(a.store.Settings(), flagCopyFormat, flagColors)
			if err != nil {
				return err
			}
			a.store.UpdateSettings(settings)
			fmt.Fprintln(cmd.OutOrStdout(), "Settings updated")
			return nil
		})
	},
}

// applySettings returns a copy of current with the requested changes.
func applySettings(current model.AppSettings, copyFormat string, colors []string) (model.AppSettings, error) {
	out := current.Clone()
	if copyFormat != "" {
		f := model.CopyFormat(strings.ToLower(copyFormat))
		if !f.IsValid() {
			return current, fmt.Errorf("invalid copy format: %q (use text or html)", copyFormat)
		}
		out.CopyFormat = f
	}
	for _, c := range colors {
		name, value, ok := strings.Cut(c, "=")
		if !ok {
			return current, fmt.Errorf("invalid color %q (use status=#rrggbb)", c)
		}
		status, ok := model.ParseStatus(name)
		if !ok {
			return current, fmt.Errorf("invalid status in color %q (use pending, in-progress or done)", c)
		}
		value = strings.TrimSpace(value)
		if !hexColor.MatchString(value) {
			return current, fmt.Errorf("invalid color value %q (use #rgb or #rrggbb)", value)
		}
		out.StatusColors[status] = value
	}
	return out, nil
}

func init() {
	settingsSetCmd.Flags().StringVar(&flagCopyFormat, "copy-format", "", "format the clipboard exporter copies task lists in: text or html")
	settingsSetCmd.Flags().StringArrayVar(&flagColors, "color", nil, "status color as status=#rrggbb (repeatable)")

	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
