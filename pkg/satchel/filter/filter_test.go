package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	f, err := New()
	require.NoError(t, err)

	assert.Equal(t, DefaultExcludes, f.Exclude)
	assert.Empty(t, f.Include)
	assert.Zero(t, f.MaxSize)
	assert.False(t, f.SkipHidden)
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New(WithExclude("[unclosed"))
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = New(WithInclude("[z-"))
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		file FileInfo
		want bool
	}{
		{
			name: "plain file passes defaults",
			file: FileInfo{Name: "report.pdf", Size: 10},
			want: true,
		},
		{
			name: "DS_Store excluded by default",
			file: FileInfo{Name: ".DS_Store"},
			want: false,
		},
		{
			name: "Thumbs.db excluded by default",
			file: FileInfo{Name: "Thumbs.db"},
			want: false,
		},
		{
			name: "defaults dropped",
			opts: []Option{WithoutDefaults()},
			file: FileInfo{Name: ".DS_Store"},
			want: true,
		},
		{
			name: "user exclude glob",
			opts: []Option{WithExclude("*.tmp")},
			file: FileInfo{Name: "scratch.tmp"},
			want: false,
		},
		{
			name: "user exclude keeps defaults",
			opts: []Option{WithExclude("*.tmp")},
			file: FileInfo{Name: "desktop.ini"},
			want: false,
		},
		{
			name: "include match",
			opts: []Option{WithInclude("*.pdf", "*.docx")},
			file: FileInfo{Name: "a.docx"},
			want: true,
		},
		{
			name: "include miss",
			opts: []Option{WithInclude("*.pdf")},
			file: FileInfo{Name: "a.txt"},
			want: false,
		},
		{
			name: "exclude wins over include",
			opts: []Option{WithInclude("*.pdf"), WithExclude("draft-*")},
			file: FileInfo{Name: "draft-1.pdf"},
			want: false,
		},
		{
			name: "over size limit",
			opts: []Option{WithMaxSize(100)},
			file: FileInfo{Name: "big.bin", Size: 101},
			want: false,
		},
		{
			name: "at size limit",
			opts: []Option{WithMaxSize(100)},
			file: FileInfo{Name: "ok.bin", Size: 100},
			want: true,
		},
		{
			name: "negative size means unlimited",
			opts: []Option{WithMaxSize(-5)},
			file: FileInfo{Name: "huge.bin", Size: 1 << 40},
			want: true,
		},
		{
			name: "hidden skipped",
			opts: []Option{WithSkipHidden(true)},
			file: FileInfo{Name: ".env"},
			want: false,
		},
		{
			name: "hidden kept by default",
			file: FileInfo{Name: ".env"},
			want: true,
		},
		{
			name: "encrypted suffix untouched by filter",
			file: FileInfo{Name: "ABCDEFGHIJKL.zip.AES256"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Match(tt.file))
		})
	}
}

func TestFilter_NilMatchesAll(t *testing.T) {
	var f *Filter
	assert.True(t, f.Match(FileInfo{Name: ".DS_Store"}))
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{input: "", want: 0},
		{input: "0", want: 0},
		{input: "1024", want: 1024},
		{input: "25M", want: 25 << 20},
		{input: "25m", want: 25 << 20},
		{input: "2K", want: 2048},
		{input: "1G", want: 1 << 30},
		{input: "10 MiB", want: 10 << 20},
		{input: "1MB", want: 1000 * 1000},
		{input: "  5K  ", want: 5120},
		{input: "-1M", wantErr: true},
		{input: "lots", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSize)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
