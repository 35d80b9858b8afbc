package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/dgallion1/autoapi/internal/apitree"
)

// newWalkCommand creates the `autoapi walk` command.
func newWalkCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "walk <root>",
		Short: "List every package that has sub-packages, with its leaf children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.build(cmd, args[0])
			if err != nil {
				return err
			}
			for node, leaves := range tree.Root.Walk() {
				names := lo.Map(leaves, func(l *apitree.Node, _ int) string { return l.Name })
				fmt.Fprintf(cmd.OutOrStdout(), "%s node has leaves: %s\n", node.Name, strings.Join(names, ", "))
			}
			return nil
		},
	}
}
