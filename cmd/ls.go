package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/bidsgraph/internal/codec"
	"github.com/agentic-research/bidsgraph/internal/export"
	"github.com/agentic-research/bidsgraph/internal/graph"
)

func newLsCmd(a *app) *cobra.Command {
	var (
		depth    int
		typeName string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List the dataset tree below a path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := argOr(args, 0, ".")
			_, start, err := a.open(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				_, err := fmt.Fprintln(out, codec.EncodeJSON(export.Tree(start)))
				return err
			}

			// Filter while printing rather than in the traversal: a pre-order
			// filter prunes the folders that lead to matching nodes.
			var filter graph.Filter
			if typeName != "" {
				filter = graph.OfType(typeName)
			}
			for n := range graph.Traverse(start, false, nil, depth) {
				if n == start || (filter != nil && !filter(n)) {
					continue
				}
				line := graph.RelativePath(n, "")
				if _, ok := n.(graph.Container); ok {
					line += "/"
				}
				if _, err := fmt.Fprintln(out, line); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", graph.DefaultDepth, "Maximum depth to descend")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Only list nodes of this model type (e.g. Artifact)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tree as JSON")
	return cmd
}
