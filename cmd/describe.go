package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/bidsgraph/internal/graph"
)

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [path]",
		Short: "Print the dataset description governing a path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, node, err := a.open(argOr(args, 0, "."))
			if err != nil {
				return err
			}
			desc := nearestDescription(ds, node)
			if desc == nil {
				return fmt.Errorf("dataset %s has no readable description", ds.BaseDir)
			}
			return printValue(cmd.OutOrStdout(), desc.Fields().ToMap())
		},
	}
}

// nearestDescription returns the description of the closest derivative
// enclosing n, falling back to the dataset's own.
func nearestDescription(ds *graph.Dataset, n graph.Node) *graph.DatasetDescription {
	for cur := n; cur != nil; cur = cur.Parent() {
		if d, ok := cur.(*graph.DerivativeFolder); ok {
			if desc := d.Description(); desc != nil {
				return desc
			}
		}
	}
	return ds.Description()
}
