// Package secrets resolves credentials that may be given inline or as a file.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotConfigured is returned by Load when a required secret has no source.
var ErrNotConfigured = errors.New("secret is not configured")

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages, for example "jwt signing key".
	Name string
	// Value is an inline secret from configuration or the environment.
	Value string
	// File holds the secret. It wins over Value.
	File string
}

// Load returns the trimmed secret. Neither a file nor a value is an error
// wrapping ErrNotConfigured.
func Load(src Source) (string, error) {
	secret, err := Optional(src)
	if err != nil {
		return "", err
	}
	if secret == "" {
		return "", fmt.Errorf("%s: %w", name(src), ErrNotConfigured)
	}
	return secret, nil
}

// Optional is Load for secrets that may be absent. It returns an empty string
// when no source is set, and still fails on an unreadable or empty file.
func Optional(src Source) (string, error) {
	file := strings.TrimSpace(src.File)
	if file == "" {
		return strings.TrimSpace(src.Value), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read %s from file %q: %w", name(src), file, err)
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("%s file %q is empty", name(src), file)
	}
	return secret, nil
}

func name(src Source) string {
	if n := strings.TrimSpace(src.Name); n != "" {
		return n
	}
	return "secret"
}
