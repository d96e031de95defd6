package utils

import (
	"strings"
	"time"
)

// ValidISBN reports whether s is a 10- or 13-digit ISBN after stripping
// dashes and spaces. An empty string is not valid; callers treat ISBN as
// optional before validating.
func ValidISBN(s string) bool {
	cleaned := strings.NewReplacer("-", "", " ", "").Replace(s)
	if len(cleaned) != 10 && len(cleaned) != 13 {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidDate reports whether s is a calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
