// Package transfer converts habit lists to and from the plain-text import/export format:
// habit names separated by commas or newlines. History is never exported.
package transfer

import (
	"fmt"
	"io"
	"strings"

	"github.com/julianstephens/habitkeep/internal/errors"
	"github.com/julianstephens/habitkeep/internal/models"
)

// MaxImportBytes caps how much of an import payload is read.
const MaxImportBytes = 1 << 20

func isSeparator(r rune) bool {
	return r == ',' || r == '\n' || r == '\r'
}

// ParseNames splits content on commas and line breaks, trims each entry and drops
// empty ones. Zero remaining names is an ImportFormat error.
func ParseNames(content string) ([]string, error) {
	var names []string
	for _, field := range strings.FieldsFunc(content, isSeparator) {
		if name := strings.TrimSpace(field); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no habit names found", errors.ErrImportFormat)
	}
	return names, nil
}

// ReadNames parses names from r. Payloads over MaxImportBytes are rejected
// whole rather than truncated.
func ReadNames(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImportBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImportBytes {
		return nil, fmt.Errorf("%w: import file too large (limit %d bytes)", errors.ErrImportFormat, MaxImportBytes)
	}
	return ParseNames(string(data))
}

// FormatNames joins the habit names with commas, in the given order.
func FormatNames(habits []models.Habit) string {
	names := make([]string, len(habits))
	for i, h := range habits {
		names[i] = h.Name
	}
	return strings.Join(names, ",")
}

// WriteNames writes FormatNames(habits) to w.
func WriteNames(w io.Writer, habits []models.Habit) error {
	_, err := io.WriteString(w, FormatNames(habits))
	return err
}
