package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/itchan-dev/anonboard/shared/errors"
)

const (
	BoardMinLen    = 2
	BoardMaxLen    = 30
	TextMaxLen     = 500
	PasswordMaxLen = 72 // bcrypt ignores everything past 72 bytes
)

var boardPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func IsValidBoardName(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= BoardMinLen && n <= BoardMaxLen && boardPattern.MatchString(s)
}

func IsValidText(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && utf8.RuneCountInString(s) <= TextMaxLen
}

func IsValidPassword(s string) bool {
	return s != "" && len(s) <= PasswordMaxLen
}

// IsValidIdentifier accepts only the canonical lowercase uuid form produced by the store.
func IsValidIdentifier(s string) bool {
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return id.String() == s
}

func IsPositiveInteger(n int) bool {
	return n > 0
}

// ThreadValidator turns the predicates above into ValidationErrors.
type ThreadValidator struct{}

func New() *ThreadValidator {
	return &ThreadValidator{}
}

func (v *ThreadValidator) Board(board string) error {
	if !IsValidBoardName(board) {
		return &errors.ValidationError{Message: "Invalid board name, it must be 2-30 characters of alphanumerics, '-' or '_'"}
	}
	return nil
}

func (v *ThreadValidator) Text(text string) error {
	if strings.TrimSpace(text) == "" {
		return &errors.ValidationError{Message: "Text is required"}
	}
	if !IsValidText(text) {
		return &errors.ValidationError{Message: "Text is too long"}
	}
	return nil
}

func (v *ThreadValidator) Password(password string) error {
	if password == "" {
		return &errors.ValidationError{Message: "Delete password is required"}
	}
	if !IsValidPassword(password) {
		return &errors.ValidationError{Message: "Delete password is too long"}
	}
	return nil
}

func (v *ThreadValidator) Limit(name string, n int) error {
	if !IsPositiveInteger(n) {
		return &errors.ValidationError{Message: "Invalid " + name + " limit"}
	}
	return nil
}
