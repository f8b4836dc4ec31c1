package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dkoosis/sarifview/internal/tree"
)

func (a *app) listCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Scan once and print the result tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runList(cmd, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print tree items as JSON")
	return cmd
}

func (a *app) runList(cmd *cobra.Command, asJSON bool) error {
	if err := a.setup(cmd, true); err != nil {
		return err
	}
	p, _ := a.provider()
	return a.printTree(cmd, p, asJSON)
}

// printTree rescans through p and prints the forest. Error-level results give
// exit status 1.
func (a *app) printTree(cmd *cobra.Command, p *tree.Provider, asJSON bool) error {
	roots := p.GetChildren(cmd.Context(), nil)
	forest := p.Forest()

	var err error
	if asJSON {
		err = tree.WriteJSON(a.stdout, p, roots)
	} else {
		err = tree.Write(a.stdout, p, roots, termWidth(a.stdout))
		if err == nil {
			_, err = fmt.Fprintln(a.stdout, tree.Summarize(forest).String())
		}
	}
	if err != nil {
		return &exitError{code: 2, err: fmt.Errorf("write tree: %w", err)}
	}
	if tree.Summarize(forest).HasErrors() {
		return &exitError{code: 1}
	}
	return nil
}
