// Package naming generates the random base names satchel gives to the
// archives it creates, so that an observer of the transmitted file learns
// nothing from its name.
package naming

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// ArchiveNameLength is the length of generated archive base names.
const ArchiveNameLength = 12

// alphabet is the set of characters names are drawn from.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ErrInvalidLength is returned when a non-positive length is requested.
var ErrInvalidLength = errors.New("name length must be positive")

// Generator draws names from an entropy source.
type Generator struct {
	source io.Reader
}

// NewGenerator returns a Generator reading from source.
// A nil source uses crypto/rand.
func NewGenerator(source io.Reader) *Generator {
	if source == nil {
		source = rand.Reader
	}
	return &Generator{source: source}
}

// Name returns a string of exactly length characters, each drawn
// independently and uniformly from A-Z.
func (g *Generator) Name(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	n := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, length)
	for i := range buf {
		idx, err := rand.Int(g.source, n)
		if err != nil {
			return "", fmt.Errorf("reading entropy: %w", err)
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}

var defaultGenerator = NewGenerator(nil)

// RandomName returns a random name of the given length using crypto/rand.
func RandomName(length int) (string, error) {
	return defaultGenerator.Name(length)
}
