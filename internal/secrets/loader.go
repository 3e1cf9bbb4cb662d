// Package secrets resolves credentials for the external research providers,
// preferring file mounts over inline config so API keys stay out of argv and
// config dumps.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source locates one credential. The Gemini API key is the only credential
// the audit currently needs.
type Source struct {
	// Name labels the credential in error messages.
	Name string
	// Value is an inline credential from config or environment.
	Value string
	// File is a path to a file holding the credential. Wins over Value.
	File string
}

// Load resolves the credential, trimming surrounding whitespace. A file that
// exists but holds only whitespace is an error, not an empty key.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "credential"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from %q: %w", name, file, err)
		}
		value := strings.TrimSpace(string(data))
		if value == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return value, nil
	}

	if value := strings.TrimSpace(src.Value); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("%s is not configured", name)
}
