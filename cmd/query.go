package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/bidsgraph/internal/graph"
	"github.com/agentic-research/bidsgraph/internal/query"
)

// queryFlags are shared by the query and entities commands.
type queryFlags struct {
	entities   []string
	suffixes   []string
	extensions []string
	scope      string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.entities, "entity", "e", nil, "Entity filter key=value; value may be * (any) or ! (absent), repeat for more")
	cmd.Flags().StringSliceVarP(&f.suffixes, "suffix", "s", nil, "Accepted suffixes")
	cmd.Flags().StringSliceVarP(&f.extensions, "extension", "x", nil, "Accepted extensions")
	cmd.Flags().StringVar(&f.scope, "scope", string(query.ScopeAll), "One of all, raw, derivatives")
}

func (f *queryFlags) build() (query.Query, error) {
	q := query.Query{
		Entities:  make(map[string][]any),
		Suffix:    f.suffixes,
		Extension: f.extensions,
		Scope:     query.Scope(f.scope),
	}
	switch q.Scope {
	case query.ScopeAll, query.ScopeRaw, query.ScopeDerivatives:
	default:
		return q, fmt.Errorf("unknown scope %q", f.scope)
	}
	for _, kv := range f.entities {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return q, fmt.Errorf("entity filter %q is not key=value", kv)
		}
		for _, v := range strings.Split(value, ",") {
			q.Entities[key] = append(q.Entities[key], v)
		}
	}
	return q, nil
}

func newQueryCmd(a *app) *cobra.Command {
	var (
		flags    queryFlags
		absolute bool
	)
	cmd := &cobra.Command{
		Use:   "query [path]",
		Short: "List the artifacts matching entity, suffix and extension filters",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.build()
			if err != nil {
				return err
			}
			_, start, err := a.open(argOr(args, 0, "."))
			if err != nil {
				return err
			}
			for _, artifact := range query.Find(start, q) {
				p := graph.RelativePath(artifact, "")
				if absolute {
					p = artifact.AbsolutePath()
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&absolute, "absolute", false, "Print absolute paths")
	return cmd
}

func newEntitiesCmd(a *app) *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "entities [path]",
		Short: "List entity keys and their values among matching artifacts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.build()
			if err != nil {
				return err
			}
			_, start, err := a.open(argOr(args, 0, "."))
			if err != nil {
				return err
			}
			entities := query.Build(start).Entities(q)
			keys := make([]string, 0, len(entities))
			for k := range entities {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", k, strings.Join(entities[k], ", ")); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
