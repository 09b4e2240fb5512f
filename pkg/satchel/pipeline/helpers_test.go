package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/jamesainslie/satchel/pkg/satchel/seal"
	"github.com/stretchr/testify/require"
)

// fastParams keeps Argon2id cheap in tests.
var fastParams = seal.Params{Time: 1, Memory: 64, Threads: 1}

func newSealer(t *testing.T) *seal.Sealer {
	t.Helper()
	s, err := seal.New(fastParams)
	require.NoError(t, err)
	return s
}

var errFakeAuth = errors.New("fake: bad passphrase")

// fakeCipher prefixes data with the passphrase. It is only here to keep
// tests that are not about cryptography fast.
type fakeCipher struct{}

func (fakeCipher) Encrypt(pw, data []byte) ([]byte, error) {
	out := append([]byte("FAKE:"), pw...)
	out = append(out, ':')
	return append(out, data...), nil
}

func (fakeCipher) Decrypt(pw, data []byte) ([]byte, error) {
	prefix := append(append([]byte("FAKE:"), pw...), ':')
	if !bytes.HasPrefix(data, prefix) {
		return nil, errFakeAuth
	}
	return bytes.Clone(data[len(prefix):]), nil
}

// failingEncryptCipher fails to encrypt the named input.
type failingEncryptCipher struct {
	fakeCipher
	fail []byte
}

var errEncryptBoom = errors.New("encrypt boom")

func (c failingEncryptCipher) Encrypt(pw, data []byte) ([]byte, error) {
	if bytes.Equal(data, c.fail) {
		return nil, errEncryptBoom
	}
	return c.fakeCipher.Encrypt(pw, data)
}

type countingPrompter struct {
	pw    []byte
	err   error
	calls int
}

func (p *countingPrompter) Passphrase() ([]byte, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return bytes.Clone(p.pw), nil
}

func dirs(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	src, dst := filepath.Join(root, "in"), filepath.Join(root, "out")
	require.NoError(t, os.Mkdir(src, 0o755))
	require.NoError(t, os.Mkdir(dst, 0o755))
	return src, dst
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func readFile(t *testing.T, dir, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return data
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// stubNames makes newArchiveName return names in order, repeating the last.
func stubNames(t *testing.T, names ...string) {
	t.Helper()
	old := newArchiveName
	t.Cleanup(func() { newArchiveName = old })

	i := 0
	newArchiveName = func() (string, error) {
		n := names[min(i, len(names)-1)]
		i++
		return n, nil
	}
}
