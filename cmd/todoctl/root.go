package main

import (
	"context"
	"fmt"
	"strconv"
	"todoTracker/internal/app"
	"todoTracker/internal/config"
	"todoTracker/internal/logger"

	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "todoctl",
		Short:         "todoctl - task tracker from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				return logger.Init(true)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yml", "Path to config file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	open := func(ctx context.Context) (*app.Core, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		return app.NewCore(ctx, cfg)
	}

	cmd.AddCommand(listCmd(open))
	cmd.AddCommand(addCmd(open))
	cmd.AddCommand(editCmd(open))
	cmd.AddCommand(doneCmd(open))
	cmd.AddCommand(rmCmd(open))
	cmd.AddCommand(statsCmd(open))
	cmd.AddCommand(calendarCmd(open))
	cmd.AddCommand(exportCmd(open))
	cmd.AddCommand(importCmd(open))
	cmd.AddCommand(themeCmd(open))

	return cmd
}

type opener func(ctx context.Context) (*app.Core, error)

// withCore открывает хранилище на время одной команды
func withCore(cmd *cobra.Command, open opener, fn func(context.Context, *app.Core) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	core, err := open(ctx)
	if err != nil {
		return err
	}
	defer core.Close()

	return fn(ctx, core)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректный id %q", s)
	}
	return id, nil
}
