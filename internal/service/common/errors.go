package common

import (
	"errors"
	"sort"

	"go.trai.ch/zerr"
)

// exitCodeKey is the error attribute carrying a tool's exit status.
const exitCodeKey = "exit_code"

// ErrorFields flattens the attributes attached anywhere in the error chain
// into key-value pairs for the logger. Outer attributes win on duplicate keys.
func ErrorFields(err error) []any {
	fields := make(map[string]any)

	for ; err != nil; err = errors.Unwrap(err) {
		var zErr *zerr.Error
		if !errors.As(err, &zErr) {
			break
		}

		for key, value := range zErr.Metadata() {
			if _, seen := fields[key]; !seen {
				fields[key] = value
			}
		}

		err = zErr
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	kvs := make([]any, 0, 2*len(keys))
	for _, key := range keys {
		kvs = append(kvs, key, fields[key])
	}

	return kvs
}

// ExitCode returns the exit status recorded on a failed tool run, or 1 for any other error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	fields := ErrorFields(err)
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i] != exitCodeKey {
			continue
		}

		if code, ok := fields[i+1].(int); ok && code > 0 {
			return code
		}
	}

	return 1
}
