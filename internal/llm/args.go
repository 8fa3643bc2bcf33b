package llm

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// OverrideArg sets flag's value in args, replacing the value after an
// existing occurrence or appending "flag value". args is not modified.
func OverrideArg(args []string, flag, value string) []string {
	out := append([]string(nil), args...)
	for i, a := range out {
		if a != flag {
			continue
		}
		if i+1 < len(out) {
			out[i+1] = value
		} else {
			out = append(out, value)
		}
		return out
	}
	return append(out, flag, value)
}

// ParseArgs splits s into flags using POSIX shell quoting rules.
func ParseArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	fields, err := shell.Fields(s, nil)
	if err != nil {
		return nil, fmt.Errorf("parse args %q: %w", s, err)
	}
	return fields, nil
}
