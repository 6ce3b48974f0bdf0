package shortener

import (
	"errors"
	"fmt"

	"github.com/jaevor/go-nanoid"
)

const (
	// DefaultAlphabet is the 62-character base62 alphabet.
	DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// DefaultCodeLength gives 62^6 (about 56.8 billion) possible codes.
	DefaultCodeLength = 6
)

var errInvalidAlphabet = errors.New("alphabet must be non-empty ASCII without repeated characters")

// CodeGenerator generates candidate short codes.
type CodeGenerator func() string

// NewCodeGenerator returns a generator of codes of the given length whose
// characters are drawn uniformly and independently from alphabet.
func NewCodeGenerator(alphabet string, length int) (CodeGenerator, error) {
	if err := validateAlphabet(alphabet); err != nil {
		return nil, err
	}

	gen, err := nanoid.CustomASCII(alphabet, length)
	if err != nil {
		return nil, fmt.Errorf("code generator (length %d): %w", length, err)
	}

	return gen, nil
}

// validateAlphabet rejects repeated characters, which would skew the distribution.
func validateAlphabet(alphabet string) error {
	if alphabet == "" {
		return errInvalidAlphabet
	}

	var seen [128]bool

	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		if c >= 128 || seen[c] {
			return errInvalidAlphabet
		}

		seen[c] = true
	}

	return nil
}
