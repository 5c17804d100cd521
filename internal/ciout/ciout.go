// Package ciout writes step outputs in the format that GitHub Actions
// captures.
package ciout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Format returns the output line "<key>=<json value>".
func Format(key string, value any) (string, error) {
	if key == "" || strings.ContainsAny(key, "=\n\r") {
		return "", fmt.Errorf("invalid output key %q", key)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encoding value of output %s failed: %w", key, err)
	}

	return key + "=" + string(data) + "\n", nil
}

// Write writes the output line for key and value to w.
func Write(w io.Writer, key string, value any) error {
	line, err := Format(key, value)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, line)
	return err
}

// AppendToFile appends the output line to the file at path, this is the file
// that GITHUB_OUTPUT refers to.
func AppendToFile(path, key string, value any) error {
	line, err := Format(key, value)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
