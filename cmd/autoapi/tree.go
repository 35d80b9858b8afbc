package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/autoapi/internal/apitree"
)

// newTreeCommand creates the `autoapi tree` command.
func newTreeCommand(a *app) *cobra.Command {
	var fullname bool

	cmd := &cobra.Command{
		Use:   "tree <root>",
		Short: "Print the package tree of a root package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.build(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), tree.Root.Tree(fullname))
			return nil
		},
	}

	cmd.Flags().BoolVar(&fullname, "fullname", false, "label nodes with their full import path")
	return cmd
}

// build builds the tree of root, reporting skipped sub-packages.
func (a *app) build(cmd *cobra.Command, root string) (*apitree.Tree, error) {
	tree, err := apitree.Build(cmd.Context(), a.imp, root, apitree.WithLogger(a.log))
	if err != nil {
		var rootErr *apitree.RootError
		if errors.As(err, &rootErr) {
			return nil, fmt.Errorf("cannot document %s: %w", rootErr.Name, rootErr.Err)
		}
		return nil, err
	}
	for _, f := range tree.Failures {
		a.log.Warn("package left out", "package", f.Fullname, "error", f.Err)
	}
	return tree, nil
}
