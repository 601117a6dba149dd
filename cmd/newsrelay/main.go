package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"newsrelay/internal/app"
	logx "newsrelay/pkg/logx"
)

type rootFlags struct {
	config  string
	envFile string
	dryRun  bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "newsrelay",
		Short:         "Forward new Newrank articles to a WeCom group",
		Long:          "Polls tracked WeChat official accounts through the Newrank API and posts unseen articles as one digest.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, f)
		},
	}
	root.PersistentFlags().StringVarP(&f.config, "config", "c", "", "YAML or JSON config file")
	root.PersistentFlags().StringVar(&f.envFile, "env-file", "", "dotenv file (default .env when present)")
	root.Flags().BoolVar(&f.dryRun, "dry-run", false, "print the digest instead of sending it; history is not updated")

	root.AddCommand(
		runCmd(f),
		historyCmd(f),
		targetsCmd(f),
	)
	return root
}

func runCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll once and send the digest (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, f)
		},
	}
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "print the digest instead of sending it; history is not updated")
	return cmd
}

func runOnce(cmd *cobra.Command, f *rootFlags) error {
	a, err := openApp(cmd, f)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.Run(cmd.Context()); err != nil {
		return report(cmd, err)
	}
	return nil
}

func historyCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or trim the pushed-URL history",
	}

	var n int
	list := &cobra.Command{
		Use:   "list",
		Short: "Print the most recent pushed URLs, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			urls, err := a.RecentHistory(cmd.Context(), n)
			if err != nil {
				return report(cmd, err)
			}
			for _, u := range urls {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	}
	list.Flags().IntVarP(&n, "limit", "n", 20, "how many URLs to print (0 = all)")

	var keep int
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Keep only the newest entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			dropped, err := a.PruneHistory(cmd.Context(), keep)
			if err != nil {
				return report(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dropped %d\n", dropped)
			return nil
		},
	}
	prune.Flags().IntVar(&keep, "keep", 500, "entries to keep")

	cmd.AddCommand(list, prune)
	return cmd
}

func targetsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "Print the tracked accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, t := range a.Targets() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.Account, t.Name)
			}
			return nil
		},
	}
}

// openApp loads config and logging. Errors before the config is loaded go to a bootstrap console logger.
func openApp(cmd *cobra.Command, f *rootFlags) (*app.App, error) {
	a, err := app.New(app.Options{ConfigPath: f.config, EnvFile: f.envFile, DryRun: f.dryRun})
	if err != nil {
		logx.NewConsole("INFO").With(logx.String("comp", "cli")).Error("startup failed", logx.Err(err))
		return nil, err
	}
	return a, nil
}

func report(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
	return err
}
