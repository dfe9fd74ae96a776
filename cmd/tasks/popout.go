package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baiirun/simplrtask/internal/model"
	"github.com/baiirun/simplrtask/internal/tui"
)

var popoutCmd = &cobra.Command{
	Use:   "popout",
	Short: "Open a live view of the active project's tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Console logging would draw over the view
		a, err := openApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return tui.Run(ctx, a.store, a.adapter, a.cfg.Watch.Interval)
	},
}

var popoutPositionCmd = &cobra.Command{
	Use:   "position [" + positionChoices() + "]",
	Short: "Show or set where the popout window opens",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), a.adapter.PopoutPosition())
				return nil
			}
			pos := model.PopoutPosition(strings.ToLower(args[0]))
			if !pos.IsValid() {
				return fmt.Errorf("invalid position: %q (use %s)", args[0], positionChoices())
			}
			a.adapter.SavePopoutPosition(pos)
			fmt.Fprintf(cmd.OutOrStdout(), "Popout position: %s\n", pos)
			return nil
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the task list again whenever another process changes it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			show := func() {
				if p, ok := a.store.ActiveProject(); ok {
					printTasks(cmd.OutOrStdout(), p)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "No active project")
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			show()

			go func() {
				if err := a.adapter.Watch(ctx, a.cfg.Watch.Interval); err != nil && !errors.Is(err, context.Canceled) {
					a.log.Sugar().Errorw("watch stopped", "error", err)
				}
			}()
			if err := a.store.Sync(ctx, show); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	},
}

func positionChoices() string {
	names := make([]string, 0, len(model.PopoutPositions()))
	for _, p := range model.PopoutPositions() {
		names = append(names, string(p))
	}
	return strings.Join(names, "|")
}

func init() {
	popoutCmd.AddCommand(popoutPositionCmd)
	rootCmd.AddCommand(popoutCmd)
	rootCmd.AddCommand(watchCmd)
}
