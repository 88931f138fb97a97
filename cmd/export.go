package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/agentic-research/bidsgraph/internal/export"
)

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Write the dataset tree and its entities to a SQLite catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, start, err := a.open(argOr(args, 0, "."))
			if err != nil {
				return err
			}
			n, err := export.SQLite(start, output)
			if err != nil {
				return err
			}
			logrus.WithField("nodes", n).Debug("Export finished")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d nodes written to %s\n", n, output)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "catalog.db", "SQLite database to write")
	return cmd
}
