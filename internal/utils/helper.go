package utils

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ParseUUID parses s and reports whether it held a non-nil UUID.
func ParseUUID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}

	return id, true
}

func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// ParseBool reads a query flag such as ?dry_run=true, treating anything
// unparsable as false.
func ParseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
