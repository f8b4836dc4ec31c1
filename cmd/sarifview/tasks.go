package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dkoosis/sarifview/internal/tasks"
)

func (a *app) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List or initialise workspace tasks (.vscode/tasks.json)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTasksList(cmd)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print task labels and the roots defining them",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.runTasksList(cmd)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create .vscode/tasks.json in the first root when missing",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.runTasksInit(cmd)
			},
		},
	)
	return cmd
}

func (a *app) runTasksList(cmd *cobra.Command) error {
	if err := a.setup(cmd, true); err != nil {
		return err
	}
	set := tasks.Load(a.fs, a.cfg.Roots, a.logger)
	if len(set.Entries) == 0 {
		return &exitError{code: 2, err: tasks.ErrNoTasksConfigured}
	}
	for _, e := range set.Entries {
		fmt.Fprintf(a.stdout, "%s\t%s\n", e.Label, e.Root)
	}
	return nil
}

func (a *app) runTasksInit(cmd *cobra.Command) error {
	if err := a.setup(cmd, true); err != nil {
		return err
	}
	path, err := tasks.EnsureTasksFile(a.fs, a.cfg.Roots[0])
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	fmt.Fprintln(a.stdout, path)
	return nil
}

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [label]",
		Short: "Run a workspace task, then print the refreshed tree per refresh_on_task_end",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTask(cmd, args)
		},
	}
}

func (a *app) runTask(cmd *cobra.Command, args []string) error {
	if err := a.setup(cmd, true); err != nil {
		return err
	}
	set := tasks.Load(a.fs, a.cfg.Roots, a.logger)

	// Without an argument the first label stands in for an interactive pick.
	var selection tasks.Selection
	label, _, err := selection.Choose(set.Labels())
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	if len(args) == 1 {
		label = args[0]
	}
	entry, err := set.Find(label)
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	done := tasks.NewRunner(a.logger).Run(cmd.Context(), entry, func(line string) {
		fmt.Fprintln(a.stdout, line)
	})
	if done.Err != nil {
		a.logger.Warn("task failed", zap.String("task", done.Label), zap.Error(done.Err))
	}

	if a.cfg.RefreshOnTaskEnd.ShouldRefresh(done) {
		p, _ := a.provider()
		if err := a.printTree(cmd, p, false); err != nil && !findingsOnly(err) {
			return err
		}
	}
	if done.Failed() {
		return &exitError{code: 1, err: fmt.Errorf("task %s failed (exit %d)", done.Label, done.ExitCode)}
	}
	return nil
}

// findingsOnly reports whether err is the quiet exit for error-level results.
func findingsOnly(err error) bool {
	var ee *exitError
	return errors.As(err, &ee) && ee.code == 1 && ee.err == nil
}
