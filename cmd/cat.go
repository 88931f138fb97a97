package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/bidsgraph/internal/codec"
	"github.com/agentic-research/bidsgraph/internal/graph"
	"github.com/agentic-research/bidsgraph/internal/query"
)

func newCatCmd(a *app) *cobra.Command {
	var (
		selectExpr string
		returnType string
		metadata   bool
	)
	cmd := &cobra.Command{
		Use:   "cat <file>",
		Short: "Print the decoded contents of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, node, err := a.open(args[0])
			if err != nil {
				return err
			}
			leaf, ok := node.(graph.Leaf)
			if !ok {
				return fmt.Errorf("%s is a folder", args[0])
			}
			f := leaf.AsFile()
			out := cmd.OutOrStdout()

			if metadata {
				artifact, ok := leaf.(*graph.Artifact)
				if !ok {
					return fmt.Errorf("%s carries no entities", args[0])
				}
				return printValue(out, query.Metadata(artifact))
			}
			if selectExpr != "" {
				results, err := query.Extract(f, selectExpr)
				if err != nil {
					return err
				}
				return printValue(out, results)
			}

			var value any
			if returnType != "" {
				value, err = f.LoadContents(codec.Options{ReturnType: returnType})
				if err != nil {
					return err
				}
			} else {
				c := f.Contents()
				if c == nil {
					return fmt.Errorf("cannot decode %s", f.AbsolutePath())
				}
				value = c.Value
			}
			return printValue(out, value)
		},
	}
	cmd.Flags().StringVar(&selectExpr, "select", "", "JSONPath expression evaluated against the contents")
	cmd.Flags().StringVar(&returnType, "return-type", "", "Decoded shape for tabular files: rows, columns or frame")
	cmd.Flags().BoolVar(&metadata, "metadata", false, "Print the merged sidecar metadata of an artifact instead")
	return cmd
}

// printValue writes text lines verbatim and everything else as JSON.
func printValue(w io.Writer, value any) error {
	if lines, ok := value.([]string); ok {
		if len(lines) == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
		return err
	}
	_, err := fmt.Fprintln(w, codec.EncodeJSON(value))
	return err
}
