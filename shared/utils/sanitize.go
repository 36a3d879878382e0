package utils

import (
	"strings"

	"github.com/itchan-dev/anonboard/shared/errors"
	"github.com/microcosm-cc/bluemonday"
)

const emptyAfterSanitizeMsg = "Text is empty after removing markup"

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips every html tag from user text, escapes what is left
// and trims surrounding whitespace.
func SanitizeText(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// SanitizeRequiredText is SanitizeText for fields that must keep content.
// Input made only of markup is a ValidationError; blank input is returned
// as "" for the caller's own required check.
func SanitizeRequiredText(s string) (string, error) {
	clean := SanitizeText(s)
	if clean == "" && strings.TrimSpace(s) != "" {
		return "", &errors.ValidationError{Message: emptyAfterSanitizeMsg}
	}
	return clean, nil
}
