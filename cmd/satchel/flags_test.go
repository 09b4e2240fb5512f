package main

import (
	"testing"

	"github.com/jamesainslie/satchel/pkg/satchel/config"
	"github.com/jamesainslie/satchel/pkg/satchel/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		keep    []filter.FileInfo
		skip    []filter.FileInfo
		wantErr bool
	}{
		{
			name: "configured excludes",
			cfg:  config.Config{Exclude: config.DefaultExclusions},
			keep: []filter.FileInfo{{Name: "notes.txt"}, {Name: ".hidden"}},
			skip: []filter.FileInfo{{Name: ".DS_Store"}, {Name: "Thumbs.db"}},
		},
		{
			name: "exclude list replaces defaults",
			cfg:  config.Config{Exclude: []string{"*.tmp"}},
			keep: []filter.FileInfo{{Name: ".DS_Store"}},
			skip: []filter.FileInfo{{Name: "a.tmp"}},
		},
		{
			name: "include",
			cfg:  config.Config{Include: []string{"*.pdf"}},
			keep: []filter.FileInfo{{Name: "a.pdf"}},
			skip: []filter.FileInfo{{Name: "a.txt"}},
		},
		{
			name: "max size",
			cfg:  config.Config{MaxSize: "1K"},
			keep: []filter.FileInfo{{Name: "small", Size: 1024}},
			skip: []filter.FileInfo{{Name: "big", Size: 1025}},
		},
		{
			name: "skip hidden",
			cfg:  config.Config{SkipHidden: true},
			keep: []filter.FileInfo{{Name: "visible"}},
			skip: []filter.FileInfo{{Name: ".hidden"}},
		},
		{
			name:    "bad size",
			cfg:     config.Config{MaxSize: "lots"},
			wantErr: true,
		},
		{
			name:    "bad pattern",
			cfg:     config.Config{Exclude: []string{"[unclosed"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := buildFilter(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, fi := range tt.keep {
				assert.True(t, f.Match(fi), "expected %s to be kept", fi.Name)
			}
			for _, fi := range tt.skip {
				assert.False(t, f.Match(fi), "expected %s to be skipped", fi.Name)
			}
		})
	}
}
