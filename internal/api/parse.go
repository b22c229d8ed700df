package api

import (
	"fmt"
	"strconv"
)

// parseVersionIndex parses a version query parameter as an index into a
// newest-first version list of the given length.
func parseVersionIndex(raw string, length int) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("version must be an integer index, got %q", raw)
	}
	if n < 0 || n >= length {
		return 0, fmt.Errorf("version index %d out of range (0..%d)", n, length-1)
	}
	return n, nil
}
