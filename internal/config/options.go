package config

import (
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"

	"github.com/agentic-research/bidsgraph/internal/codec"
	"github.com/agentic-research/bidsgraph/internal/loader"
	"github.com/agentic-research/bidsgraph/internal/schema"
)

// LoaderOptions turns the configuration into loader options over fsys.
func (c *Config) LoaderOptions(fsys billy.Filesystem) (loader.Options, error) {
	opts := loader.Options{
		FS:                fsys,
		PinnedContents:    c.Cache.Pinned,
		IgnoreDerivatives: c.Load.IgnoreDerivatives,
		ExtraIgnore:       c.Load.ExtraIgnore,
	}

	if c.Codec.MmapThreshold != codec.DefaultMmapThreshold {
		reg := codec.NewRegistry()
		codec.RegisterBuiltins(reg, c.Codec.MmapThreshold)
		opts.Codecs = reg
	}

	if c.Schema != "" {
		data, err := util.ReadFile(fsys, c.Schema)
		if err != nil {
			return opts, errors.WithMessagef(err, "read schema %s", c.Schema)
		}
		sc, err := schema.Parse(data)
		if err != nil {
			return opts, errors.WithMessagef(err, "schema %s", c.Schema)
		}
		opts.Schema = sc
	}
	return opts, nil
}
