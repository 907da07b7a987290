package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"todoTracker/internal/app"
	"todoTracker/internal/models/task"
	"todoTracker/internal/query"
	"todoTracker/internal/transfer"

	"github.com/spf13/cobra"
)

func listCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
	}
	search := cmd.Flags().StringP("search", "s", "", "Case-insensitive text filter")
	sortKey := cmd.Flags().String("sort", string(query.SortDefault), "Sort key (default, datetime, priority, manual)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, open, func(ctx context.Context, core *app.Core) error {
			now := core.Service.Now()
			view := query.View(core.Service.Tasks(ctx), *search, query.ParseSortKey(*sortKey), now)
			out := cmd.OutOrStdout()
			if len(view) == 0 {
				fmt.Fprintln(out, "No tasks")
				return nil
			}
			for _, t := range view {
				printTask(out, t, now)
			}
			return nil
		})
	}
	return cmd
}

func printTask(out io.Writer, t task.Task, now time.Time) {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	due := t.Datetime
	if parsed, ok := t.Due(now.Location()); ok {
		due = query.FormatDatetime(parsed)
	}
	overdue := ""
	if !t.Completed && query.IsOverdue(t, now) {
		overdue = " (overdue)"
	}
	tags := ""
	if len(t.Tags) > 0 {
		parts := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			parts[i] = "#" + string(tag)
		}
		tags = " " + strings.Join(parts, " ")
	}
	fmt.Fprintf(out, "[%s] %d  %s  %s%s%s\n", mark, t.ID, t.Text, due, overdue, tags)
}

func addCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [text] [datetime]",
		Short: "Add a task",
		Args:  cobra.ExactArgs(2),
	}
	tags := cmd.Flags().StringSliceP("tag", "t", nil, "Tags (work, personal, shopping)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		parsed := make([]task.Tag, 0, len(*tags))
		for _, s := range *tags {
			tag, ok := task.ParseTag(s)
			if !ok {
				return fmt.Errorf("неизвестный тег %q", s)
			}
			parsed = append(parsed, tag)
		}

		return withCore(cmd, open, func(ctx context.Context, core *app.Core) error {
			created, err := core.Service.Create(ctx, args[0], args[1], parsed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d\n", created.ID)
			return nil
		})
	}
	return cmd
}

func editCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [id] [text] [datetime]",
		Short: "Replace task text and due date",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withCore(cmd, open, func(ctx context.Context, core *app.Core) error {
				if !core.Service.Exists(ctx, id) {
					return fmt.Errorf("задача %d не найдена", id)
				}
				return core.Service.Edit(ctx, id, args[1], args[2])
			})
		},
	}
}

func doneCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "done [id...]",
		Short: "Toggle completion of tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd, open, func(ctx context.Context, core *app.Core) error {
				for _, arg := range args {
					id, err := parseID(arg)
					if err != nil {
						return err
					}
					if err := core.Service.ToggleComplete(ctx, id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func rmCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm [id...]",
		Short: "Delete tasks",
	}
	completed := cmd.Flags().Bool("completed", false, "Delete all completed tasks")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if !*completed && len(args) == 0 {
			return fmt.Errorf("укажите id задач или --completed")
		}
		return withCore(cmd, open, func(ctx context.Context, core *app.Core) error {
			if *completed {
				removed, err := core.Service.ClearCompleted(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d\n", removed)
				return nil
			}

			// групповое удаление через выбор, как в интерфейсе
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				core.Service.ToggleTaskSelection(ctx, id)
			}
			removed, err := core.Service.BulkDelete(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d\n", removed)
			return nil
		})
	}
	return cmd
}

func statsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd, open, func(ctx context.Context, core *app.Core) error {
				stats := query.ComputeStatistics(core.Service.Tasks(ctx), core.Service.Now())
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total:     %d\n", stats.Total)
				fmt.Fprintf(out, "Completed: %d\n", stats.Completed)
				fmt.Fprintf(out, "Pending:   %d\n", stats.Pending)
				fmt.Fprintf(out, "Overdue:   %d\n", stats.Overdue)
				fmt.Fprintf(out, "Progress:  %.0f%%\n", stats.Progress)
				for _, tag := range task.Vocabulary {
					fmt.Fprintf(out, "  #%-9s %d\n", tag, stats.ByTag[tag])
				}
				return nil
			})
		},
	}
}

func calendarCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show month calendar with task counts",
		Args:  cobra.NoArgs,
	}
	year := cmd.Flags().Int("year", 0, "Year (current by default)")
	month := cmd.Flags().Int("month", 0, "Month 1-12 (current by default)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if *month < 0 || *month > 12 {
			return fmt.Errorf("некорректный месяц %d", *month)
		}
		return withCore(cmd, open, func(ctx context.Context, core *app.Core) error {
			now := core.Service.Now()
			y, m := now.Year(), now.Month()
			if *year > 0 {
				y = *year
			}
			if *month > 0 {
				m = time.Month(*month)
			}
			printMonth(cmd.OutOrStdout(), query.Calendar(core.Service.Tasks(ctx), y, m, now.Location()))
			return nil
		})
	}
	return cmd
}

// день с задачами помечается звёздочкой, ниже - список задач по дням
func printMonth(out io.Writer, m query.Month) {
	fmt.Fprintf(out, "%s %d\n", m.Month, m.Year)
	fmt.Fprintln(out, " Su  Mo  Tu  We  Th  Fr  Sa")
	for _, week := range m.Weeks {
		var b strings.Builder
		for _, day := range week {
			switch {
			case day == 0:
				b.WriteString("    ")
			case m.Days[day-1].HasTasks():
				fmt.Fprintf(&b, "%3d*", day)
			default:
				fmt.Fprintf(&b, "%3d ", day)
			}
		}
		fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
	}
	for _, d := range m.Days {
		if d.HasTasks() {
			fmt.Fprintf(out, "%2d: %s\n", d.Day, strings.ReplaceAll(d.Summary(), "\n", "; "))
		}
	}
}

func exportCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks to a file",
		Args:  cobra.NoArgs,
	}
	format := cmd.Flags().StringP("format", "f", "json", "File format (json, yaml)")
	output := cmd.Flags().StringP("out", "o", "", "Output path (tasks.json by default, - for stdout)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		f, err := transfer.ParseFormat(*format)
		if err != nil {
			return err
		}
		return withCore(cmd, open, func(ctx context.Context, core *app.Core) error {
			data, filename, err := core.Transfer.Export(ctx, f)
			if err != nil {
				return err
			}
			if *output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if *output != "" {
				filename = *output
			}
			if err := os.WriteFile(filename, data, 0644); err != nil {
				return fmt.Errorf("запись %s: %w", filename, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", filename)
			return nil
		})
	}
	return cmd
}

func importCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace all tasks with the contents of a file",
		Args:  cobra.ExactArgs(1),
	}
	format := cmd.Flags().StringP("format", "f", "", "File format (json, yaml); by extension when empty")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		name := *format
		if name == "" && (strings.HasSuffix(args[0], ".yaml") || strings.HasSuffix(args[0], ".yml")) {
			name = string(transfer.FormatYAML)
		}
		f, err := transfer.ParseFormat(name)
		if err != nil {
			return err
		}

		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		return withCore(cmd, open, func(ctx context.Context, core *app.Core) error {
			n, err := core.Transfer.Import(ctx, file, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks\n", n)
			return nil
		})
	}
	return cmd
}

func themeCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Show or change the theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"light", "dark", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCore(cmd, open, func(ctx context.Context, core *app.Core) error {
				switch {
				case len(args) == 0:
				case args[0] == "toggle":
					if _, err := core.Service.ToggleTheme(ctx); err != nil {
						return err
					}
				default:
					if err := core.Service.SetTheme(ctx, task.Theme(args[0])); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), core.Service.Theme())
				return nil
			})
		},
	}
}
