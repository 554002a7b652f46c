package validation

import (
	"errors"
	"strconv"
)

const maxLength = 255

// JailName validates that the provided name is not empty, does not exceed
// the maxLength, is not a number, and only contains alphanumeric, '_', '-'
// and '.' characters. A '.' separates the names of nested jails, so it may
// not start or end the name.
func JailName(name string) error {
	if name == "" {
		return errors.New("empty jail name")
	}

	if len(name) > maxLength {
		return errors.New("max length is 255 chars")
	}

	if _, err := strconv.Atoi(name); err == nil {
		return errors.New("may not be a number")
	}

	if name[0] == '.' || name[len(name)-1] == '.' {
		return errors.New("may not start or end with '.'")
	}

	for _, c := range name {
		if !((c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') ||
			c == '-' ||
			c == '_' ||
			c == '.') {
			return errors.New(
				"may only contain alphanumeric, '-', '_' and '.' chars",
			)
		}
	}

	return nil
}
