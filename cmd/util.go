package cmd

import "strconv"

// parseID parses a decimal row id from a CLI positional argument.
func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
