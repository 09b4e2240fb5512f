package main

import (
	"fmt"

	"github.com/jamesainslie/satchel/pkg/satchel/config"
	"github.com/jamesainslie/satchel/pkg/satchel/filter"
)

// buildFilter creates the source filter from the resolved configuration.
// The configured exclude list is used as is, so an --exclude flag replaces
// it rather than adding to it.
func buildFilter(c *config.Config) (*filter.Filter, error) {
	opts := []filter.Option{
		filter.WithoutDefaults(),
		filter.WithExclude(c.Exclude...),
	}

	if len(c.Include) > 0 {
		opts = append(opts, filter.WithInclude(c.Include...))
	}

	if c.MaxSize != "" {
		size, err := filter.ParseSize(c.MaxSize)
		if err != nil {
			return nil, fmt.Errorf("invalid max-size %q: %w", c.MaxSize, err)
		}
		opts = append(opts, filter.WithMaxSize(size))
	}

	if c.SkipHidden {
		opts = append(opts, filter.WithSkipHidden(true))
	}

	return filter.New(opts...)
}
