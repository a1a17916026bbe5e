// Package template renders text with $name and ${name} placeholders.
//
// Substitution is safe: placeholders without a value, and dollar signs that
// do not start a valid placeholder, are copied to the output unchanged.
// "$$" renders a single literal dollar sign.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// placeholderPattern matches "$$", "$name", "${name}" and a lone "$".
var placeholderPattern = regexp.MustCompile(
	`\$(?:(\$)|([_a-zA-Z][_a-zA-Z0-9]*)|\{([_a-zA-Z][_a-zA-Z0-9]*)\}|)`,
)

// SafeSubstitute replaces every known placeholder in text with its value.
func SafeSubstitute(text string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := placeholderPattern.FindStringSubmatch(match)

		switch {
		case groups[1] != "":
			return "$"
		case groups[2] != "":
			if value, ok := values[groups[2]]; ok {
				return value
			}
		case groups[3] != "":
			if value, ok := values[groups[3]]; ok {
				return value
			}
		}

		return match
	})
}

// RenderFile loads the template at path and substitutes values into it.
func RenderFile(path string, values map[string]string) (string, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}

	return SafeSubstitute(string(contents), values), nil
}
