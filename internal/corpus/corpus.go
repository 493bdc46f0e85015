// Package corpus loads training text from files.
package corpus

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/verte-zerg/charlm/internal/langmodel"
)

// Load reads the whole file at path and replaces line endings with spaces.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("corpus is empty")
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("corpus is not valid UTF-8")
	}
	return langmodel.NormalizeLineEndings(string(data)), nil
}
