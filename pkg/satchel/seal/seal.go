// Package seal is the passphrase-keyed cipher behind the .AES256 files.
//
// A sealed blob is laid out as:
//
//	magic "STCH" | version (1) | argon2 time (4, BE) | argon2 memory KiB (4, BE)
//	| argon2 threads (1) | salt (16) | nonce (12) | AES-256-GCM ciphertext+tag
//
// The key is derived with Argon2id from the passphrase and the salt. The
// KDF parameters are stored in the header so a blob can be opened with the
// parameters it was sealed with, as long as they cost no more than the
// opening sealer's own parameters or DefaultParams.
package seal

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	// Version is the current blob format version.
	Version byte = 1

	// KeySize is the AES-256 key size.
	KeySize = 32

	// SaltSize is the size of the random KDF salt.
	SaltSize = 16

	// NonceSize is the AES-GCM nonce size.
	NonceSize = 12

	headerSize = 4 + 1 + 4 + 4 + 1 + SaltSize + NonceSize

	// Upper bounds keep a tampered header from demanding absurd work.
	maxTime   = 64
	maxMemory = 4 * 1024 * 1024 // 4 GiB in KiB
)

var magic = []byte("STCH")

// Errors returned by Sealer.
var (
	// ErrDecryptionFailed means the passphrase is wrong or the blob was
	// corrupted or tampered with.
	ErrDecryptionFailed = errors.New("decryption failed: wrong passphrase or corrupted data")

	// ErrEmptyPassphrase is returned for a zero-length passphrase.
	ErrEmptyPassphrase = errors.New("passphrase cannot be empty")

	// ErrInvalidParams is returned for unusable KDF parameters.
	ErrInvalidParams = errors.New("invalid key derivation parameters")
)

// Params configures Argon2id.
type Params struct {
	// Time is the number of passes over memory.
	Time uint32

	// Memory is the memory cost in KiB.
	Memory uint32

	// Threads is the degree of parallelism.
	Threads uint8
}

// DefaultParams returns the Argon2id parameters used for new blobs.
func DefaultParams() Params {
	return Params{
		Time:    3,
		Memory:  64 * 1024, // 64 MiB
		Threads: 4,
	}
}

// Validate reports whether p can be used for key derivation.
func (p Params) Validate() error {
	if p.Time == 0 {
		return fmt.Errorf("%w: time must be at least 1", ErrInvalidParams)
	}
	if p.Threads == 0 {
		return fmt.Errorf("%w: threads must be at least 1", ErrInvalidParams)
	}
	if p.Memory < 8*uint32(p.Threads) {
		return fmt.Errorf("%w: memory must be at least 8 KiB per thread", ErrInvalidParams)
	}
	if p.Time > maxTime || p.Memory > maxMemory {
		return fmt.Errorf("%w: time %d or memory %d KiB out of range", ErrInvalidParams, p.Time, p.Memory)
	}
	return nil
}

// Sealer encrypts and decrypts blobs. It holds no key material and is safe
// for concurrent use.
type Sealer struct {
	params Params
	rand   io.Reader
}

// New returns a Sealer that seals new blobs with params.
func New(params Params) (*Sealer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Sealer{params: params, rand: rand.Reader}, nil
}

// Params returns the parameters used for new blobs.
func (s *Sealer) Params() Params {
	return s.params
}

// decryptLimit is the most expensive header Decrypt accepts: the larger of
// the sealer's own parameters and DefaultParams, per field.
func (s *Sealer) decryptLimit() Params {
	limit := DefaultParams()
	limit.Time = max(limit.Time, s.params.Time)
	limit.Memory = max(limit.Memory, s.params.Memory)
	return limit
}

func deriveKey(passphrase, salt []byte, p Params) []byte {
	return argon2.IDKey(passphrase, salt, p.Time, p.Memory, p.Threads, KeySize)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}

// Encrypt seals plaintext under passphrase with a fresh salt and nonce.
func (s *Sealer) Encrypt(passphrase, plaintext []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}

	header := make([]byte, headerSize)
	copy(header, magic)
	header[4] = Version
	binary.BigEndian.PutUint32(header[5:9], s.params.Time)
	binary.BigEndian.PutUint32(header[9:13], s.params.Memory)
	header[13] = s.params.Threads

	salt := header[14 : 14+SaltSize]
	nonce := header[14+SaltSize:]
	if _, err := io.ReadFull(s.rand, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if _, err := io.ReadFull(s.rand, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	aead, err := newGCM(deriveKey(passphrase, salt, s.params))
	if err != nil {
		return nil, err
	}

	// The header is authenticated as additional data.
	return aead.Seal(header, nonce, plaintext, header), nil
}

// Decrypt opens a blob produced by Encrypt. Any failure, including a
// malformed header, is reported as ErrDecryptionFailed.
func (s *Sealer) Decrypt(passphrase, blob []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	if len(blob) < headerSize {
		return nil, fmt.Errorf("%w: blob too short (%d bytes)", ErrDecryptionFailed, len(blob))
	}

	header := blob[:headerSize]
	if !bytes.Equal(header[:4], magic) {
		return nil, fmt.Errorf("%w: not a satchel blob", ErrDecryptionFailed)
	}
	if header[4] != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrDecryptionFailed, header[4])
	}

	params := Params{
		Time:    binary.BigEndian.Uint32(header[5:9]),
		Memory:  binary.BigEndian.Uint32(header[9:13]),
		Threads: header[13],
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	// The header is not authenticated until after key derivation, so its
	// cost is capped before Argon2id runs.
	if limit := s.decryptLimit(); params.Time > limit.Time || params.Memory > limit.Memory {
		return nil, fmt.Errorf("%w: key derivation cost (time %d, memory %d KiB) exceeds the configured limit (time %d, memory %d KiB)",
			ErrDecryptionFailed, params.Time, params.Memory, limit.Time, limit.Memory)
	}

	salt := header[14 : 14+SaltSize]
	nonce := header[14+SaltSize:]

	aead, err := newGCM(deriveKey(passphrase, salt, params))
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, blob[headerSize:], header)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
