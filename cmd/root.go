package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentic-research/bidsgraph/internal/config"
	"github.com/agentic-research/bidsgraph/internal/graph"
	"github.com/agentic-research/bidsgraph/internal/loader"
)

// app carries the state shared by the subcommands of one invocation.
type app struct {
	logLevel         string
	logColorDisabled bool
	cfgFile          string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "bidsgraph",
		Short:         "Browse and query dataset directories as a lazily loaded graph",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.initLog(); err != nil {
				return err
			}
			cfg, err := config.Load(viper.New(), a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", logrus.InfoLevel.String(), "Log level")
	rootCmd.PersistentFlags().BoolVar(&a.logColorDisabled, "log-color-disabled", false, "Force to disable colorful logs")
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./bidsgraph.yaml or $HOME/.bidsgraph/bidsgraph.yaml)")

	rootCmd.AddCommand(
		newLsCmd(a),
		newQueryCmd(a),
		newEntitiesCmd(a),
		newCatCmd(a),
		newDescribeCmd(a),
		newExportCmd(a),
	)
	return rootCmd
}

func (a *app) initLog() error {
	formatter := logrus.TextFormatter{
		FullTimestamp: true,
	}
	if a.logColorDisabled {
		formatter.DisableColors = true
	} else {
		formatter.ForceColors = true
	}
	logrus.SetFormatter(&formatter)

	level, err := logrus.ParseLevel(a.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.logLevel, err)
	}
	logrus.SetLevel(level)
	return nil
}

// open mirrors the dataset containing path, "." when empty, and returns the
// node at path alongside it.
func (a *app) open(path string) (*graph.Dataset, graph.Node, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, err
	}
	cfg := *a.cfg
	if cfg.Schema != "" {
		if cfg.Schema, err = filepath.Abs(cfg.Schema); err != nil {
			return nil, nil, err
		}
	}
	opts, err := cfg.LoaderOptions(osfs.New("/"))
	if err != nil {
		return nil, nil, err
	}
	ds, err := loader.Load(abs, opts)
	if err != nil {
		return nil, nil, err
	}
	node := ds.Locate(abs)
	if node == nil {
		return nil, nil, fmt.Errorf("%s is not part of dataset %s", path, ds.BaseDir)
	}
	return ds, node, nil
}

func argOr(args []string, i int, fallback string) string {
	if i < len(args) {
		return args[i]
	}
	return fallback
}

// Execute is the command line entrypoint.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
