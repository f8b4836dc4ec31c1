package main

import (
	"context"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dkoosis/sarifview/internal/command"
	"github.com/dkoosis/sarifview/internal/navigate"
	"github.com/dkoosis/sarifview/internal/tasks"
	"github.com/dkoosis/sarifview/internal/ui"
	"github.com/dkoosis/sarifview/internal/watch"
)

func (a *app) viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Open the interactive tree (default on a terminal)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runView(cmd)
		},
	}
}

func (a *app) runView(cmd *cobra.Command) error {
	if err := a.setup(cmd, false); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	provider, scanner := a.provider()
	roots := a.cfg.Roots

	var changes <-chan watch.Change
	w, err := watch.New(watch.Options{
		Roots:     roots,
		SarifDirs: lo.Map(roots, func(r string, _ int) string { return scanner.Dir(r) }),
		Logger:    a.logger,
	})
	if err != nil {
		a.logger.Warn("file watching disabled", zap.Error(err))
	} else {
		defer w.Close()
		go w.Run(ctx)
		changes = w.Changes()
	}

	selection := &tasks.Selection{}
	err = ui.Run(ctx, ui.Options{
		Provider: provider,
		Registry: command.NewRegistry(),
		Shower:   navigate.NewShower(a.fs, a.logger),
		Editor:   navigate.NewEditor(a.cfg.Editor),
		FS:       a.fs,
		Roots:    roots,
		LoadTasks: func() *tasks.Set {
			return tasks.Load(a.fs, roots, a.logger)
		},
		Runner:            tasks.NewRunner(a.logger),
		Selection:         selection,
		Changes:           changes,
		Policy:            a.cfg.RefreshOnTaskEnd,
		FocusAfterRefresh: a.cfg.FocusAfterRefresh,
		Theme:             ui.Compile(a.cfg.Theme),
		Logger:            a.logger,
	})
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	return nil
}
