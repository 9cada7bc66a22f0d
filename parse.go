package serialkit

import (
	"fmt"
	"strings"
)

// Parser turns a raw command response into a value
type Parser[T any] func(response []byte) (T, error)

// SplitLines trims the response and splits it into lines, dropping carriage returns
func SplitLines(response []byte) ([]string, error) {
	text := strings.TrimSpace(string(response))
	if text == "" {
		return []string{}, nil
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines, nil
}

// Text returns the response as a trimmed string
func Text(response []byte) (string, error) {
	return strings.TrimSpace(string(response)), nil
}

// KeyValues parses "key=value" or "key: value" lines. Blank lines are skipped.
func KeyValues(response []byte) (map[string]string, error) {
	lines, _ := SplitLines(response)
	values := make(map[string]string, len(lines))

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		idx := strings.IndexAny(line, "=:")
		if idx <= 0 {
			return nil, fmt.Errorf("line %d: no key/value separator in %q", i+1, line)
		}
		key := strings.TrimSpace(line[:idx])
		values[key] = strings.TrimSpace(line[idx+1:])
	}
	return values, nil
}

// Hex renders the response as space separated upper-case hex bytes
func Hex(response []byte) (string, error) {
	return fmt.Sprintf("% X", response), nil
}
