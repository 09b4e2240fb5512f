package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/jamesainslie/satchel/pkg/satchel/archive"
	"github.com/jamesainslie/satchel/pkg/satchel/config"
	"github.com/jamesainslie/satchel/pkg/satchel/manifest"
	"github.com/jamesainslie/satchel/pkg/satchel/output"
	"github.com/jamesainslie/satchel/pkg/satchel/passphrase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPrompter struct{ err error }

func (p failingPrompter) Passphrase() ([]byte, error) { return nil, p.err }

type jsonSummary struct {
	Run     output.Result `json:"run"`
	Summary struct {
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
	} `json:"summary"`
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Jobs:    1,
		Exclude: config.DefaultExclusions,
		Output:  "json",
		KDF:     config.KDFConfig{Time: 1, Memory: 64, Threads: 1},
		History: config.HistoryConfig{
			Enabled:       true,
			Path:          filepath.Join(t.TempDir(), "history"),
			RetentionDays: 30,
		},
	}
}

func mkdirs(t *testing.T, names ...string) []string {
	t.Helper()
	root := t.TempDir()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(root, n)
		require.NoError(t, os.Mkdir(out[i], 0o755))
	}
	return out
}

func names(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

func runProcessTest(t *testing.T, b batch) (jsonSummary, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	b.stdout, b.stderr = &stdout, &stderr

	err := process(context.Background(), b)

	var doc jsonSummary
	if stdout.Len() > 0 {
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
	}
	return doc, stderr.String(), err
}

func history(t *testing.T, c *config.Config) []manifest.Entry {
	t.Helper()
	m, err := manifest.New(c.History.Path)
	require.NoError(t, err)
	entries, err := m.List(0)
	require.NoError(t, err)
	return entries
}

func TestProcess_RoundTrip(t *testing.T) {
	dirs := mkdirs(t, "in", "sealed", "restored")
	require.NoError(t, os.WriteFile(filepath.Join(dirs[0], "notes.txt"), []byte("hello"), 0o644))
	c := testConfig(t)

	doc, stderr, err := runProcessTest(t, batch{
		cfg: c, source: dirs[0], target: dirs[1],
		prompter: passphrase.Static("pw"), record: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Summary.Succeeded)
	assert.Contains(t, stderr, "Processing 1 file(s):")
	assert.NotEmpty(t, doc.Run.HistoryID)
	require.Len(t, doc.Run.Intermediate, 1)
	assert.FileExists(t, doc.Run.Intermediate[0])

	sealed := names(t, dirs[1])
	require.Len(t, sealed, 1)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z]{12}\.zip\.AES256$`), sealed[0])

	doc, _, err = runProcessTest(t, batch{
		cfg: c, source: dirs[1], target: dirs[2],
		prompter: passphrase.Static("pw"), record: true,
	})
	require.NoError(t, err)
	assert.Empty(t, doc.Run.Intermediate)

	restored := names(t, dirs[2])
	require.Equal(t, []string{strings.TrimSuffix(sealed[0], ".AES256")}, restored)
	data, err := archive.ReadFileEntry(filepath.Join(dirs[2], restored[0]), "notes.txt", true)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	entries := history(t, c)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, manifest.StatusSucceeded, e.Status)
	}
}

func TestProcess_MismatchLeavesTargetUntouched(t *testing.T) {
	dirs := mkdirs(t, "in", "out")
	require.NoError(t, os.WriteFile(filepath.Join(dirs[0], "notes.txt"), []byte("hello"), 0o644))
	c := testConfig(t)

	doc, _, err := runProcessTest(t, batch{
		cfg: c, source: dirs[0], target: dirs[1],
		prompter: failingPrompter{err: passphrase.ErrMismatch}, record: true,
	})
	require.Error(t, err)
	assert.Equal(t, exitMismatch, exitCode(err))
	assert.Empty(t, names(t, dirs[1]))
	assert.Contains(t, doc.Run.Error, "do not match")

	entries := history(t, c)
	require.Len(t, entries, 1)
	assert.Equal(t, manifest.StatusFailed, entries[0].Status)
}

func TestProcess_WrongPassphrase(t *testing.T) {
	dirs := mkdirs(t, "in", "sealed", "restored")
	require.NoError(t, os.WriteFile(filepath.Join(dirs[0], "notes.txt"), []byte("hello"), 0o644))
	c := testConfig(t)

	_, _, err := runProcessTest(t, batch{cfg: c, source: dirs[0], target: dirs[1], prompter: passphrase.Static("right")})
	require.NoError(t, err)

	doc, _, err := runProcessTest(t, batch{cfg: c, source: dirs[1], target: dirs[2], prompter: passphrase.Static("wrong")})
	assert.Equal(t, exitDecryptionFailed, exitCode(err))
	assert.Equal(t, 1, doc.Summary.Failed)
	assert.Empty(t, names(t, dirs[2]))
}

func TestProcess_InvalidDirectories(t *testing.T) {
	dirs := mkdirs(t, "in")
	missing := filepath.Join(t.TempDir(), "missing")
	c := testConfig(t)

	doc, _, err := runProcessTest(t, batch{cfg: c, source: missing, target: dirs[0], prompter: passphrase.Static("pw"), record: true})
	assert.Equal(t, exitSourceNotDir, exitCode(err))
	assert.Empty(t, doc.Run.Source, "no summary is printed")

	_, _, err = runProcessTest(t, batch{cfg: c, source: dirs[0], target: missing, prompter: passphrase.Static("pw"), record: true})
	assert.Equal(t, exitTargetNotDir, exitCode(err))

	assert.NoDirExists(t, c.History.Path)
}

func TestProcess_EmptySourceNeverPrompts(t *testing.T) {
	dirs := mkdirs(t, "in", "out")
	c := testConfig(t)

	doc, stderr, err := runProcessTest(t, batch{
		cfg: c, source: dirs[0], target: dirs[1],
		prompter: failingPrompter{err: passphrase.ErrMismatch},
	})
	require.NoError(t, err)
	assert.Empty(t, doc.Run.Items)
	assert.Contains(t, stderr, "Nothing to do.")
}

func TestProcess_DiscardIntermediate(t *testing.T) {
	dirs := mkdirs(t, "in", "out")
	require.NoError(t, os.WriteFile(filepath.Join(dirs[0], "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dirs[0], "b.txt"), []byte("b"), 0o644))
	c := testConfig(t)

	doc, _, err := runProcessTest(t, batch{
		cfg: c, source: dirs[0], target: dirs[1],
		prompter: passphrase.Static("pw"), discard: true, permanent: true,
	})
	require.NoError(t, err)
	assert.True(t, doc.Run.Discarded)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, names(t, dirs[0]))
	assert.Len(t, names(t, dirs[1]), 2)
}

func TestProcess_NoHistory(t *testing.T) {
	dirs := mkdirs(t, "in", "out")
	require.NoError(t, os.WriteFile(filepath.Join(dirs[0], "a.txt"), []byte("a"), 0o644))
	c := testConfig(t)

	doc, _, err := runProcessTest(t, batch{cfg: c, source: dirs[0], target: dirs[1], prompter: passphrase.Static("pw")})
	require.NoError(t, err)
	assert.Empty(t, doc.Run.HistoryID)
	assert.NoDirExists(t, c.History.Path)
}

func TestProcess_Parallel(t *testing.T) {
	dirs := mkdirs(t, "in", "out")
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, os.WriteFile(filepath.Join(dirs[0], n+".txt"), []byte(n), 0o644))
	}
	c := testConfig(t)
	c.Jobs = 3

	doc, _, err := runProcessTest(t, batch{cfg: c, source: dirs[0], target: dirs[1], prompter: passphrase.Static("pw"), quiet: true})
	require.NoError(t, err)
	assert.Equal(t, 5, doc.Summary.Succeeded)
	assert.Len(t, names(t, dirs[1]), 5)
}

func TestProcess_BadSettings(t *testing.T) {
	dirs := mkdirs(t, "in", "out")

	c := testConfig(t)
	c.Output = "xml"
	_, _, err := runProcessTest(t, batch{cfg: c, source: dirs[0], target: dirs[1], prompter: passphrase.Static("pw")})
	assert.ErrorContains(t, err, "unknown output format")

	c = testConfig(t)
	c.KDF.Memory = 1
	_, _, err = runProcessTest(t, batch{cfg: c, source: dirs[0], target: dirs[1], prompter: passphrase.Static("pw")})
	assert.ErrorContains(t, err, "invalid kdf settings")
}

func TestPrintEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photos.zip")
	require.NoError(t, archive.WriteFile(path, []archive.Entry{
		{Name: "one.txt", Data: []byte("1")},
		{Name: "two.txt", Data: []byte("22")},
	}))

	var buf bytes.Buffer
	require.NoError(t, printEntries(&buf, path, "pretty"))
	assert.Contains(t, buf.String(), "2 entries")
	assert.Contains(t, buf.String(), "Name:            one.txt")

	buf.Reset()
	require.NoError(t, printEntries(&buf, path, "json"))
	var infos []archive.EntryInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "two.txt", infos[1].Name)
	assert.Equal(t, uint64(2), infos[1].Size)

	buf.Reset()
	require.NoError(t, printEntries(&buf, path, "yaml"))
	assert.Contains(t, buf.String(), "name: one.txt")

	err := printEntries(&buf, filepath.Join(t.TempDir(), "missing.zip"), "pretty")
	assert.Error(t, err)
}

func TestShowConfig(t *testing.T) {
	c := testConfig(t)

	var buf bytes.Buffer
	require.NoError(t, showConfig(&buf, c, "", []string{"HOME=/root", "SATCHEL_JOBS=4"}))
	out := buf.String()
	assert.Contains(t, out, "using defaults")
	assert.Contains(t, out, "jobs: 1")
	assert.Contains(t, out, "SATCHEL_JOBS=4")
	assert.NotContains(t, out, "HOME=/root")

	buf.Reset()
	require.NoError(t, showConfig(&buf, c, "/etc/satchel.yaml", nil))
	assert.Contains(t, buf.String(), "Config file: /etc/satchel.yaml")
	assert.Contains(t, buf.String(), "(none)")
}

func TestResolveJobs(t *testing.T) {
	c := testConfig(t)
	c.Jobs = 3
	assert.Equal(t, 3, resolveJobs(c))

	c.Jobs = 0
	jobs := resolveJobs(c)
	assert.GreaterOrEqual(t, jobs, 1)
	assert.LessOrEqual(t, jobs, 16)
}
