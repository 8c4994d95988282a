// Package validate holds the client-side form checks. They run before any
// network call; a failure is surfaced next to the offending field and is
// never sent to the backend.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxNameLen  = 50
	minNameLen  = 2
	minPassword = 6
	maxTitleLen = 200
	maxDescLen  = 1000
)

var (
	nameRe   = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	letterRe = regexp.MustCompile(`[a-zA-Z]`)
)

// Error reports a single-field constraint violation.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fieldErr(field, format string, a ...any) error {
	return &Error{Field: field, Message: fmt.Sprintf(format, a...)}
}

// DisplayName checks an account display name: letters, spaces, hyphens and
// apostrophes only, at least one letter, 2-50 characters.
func DisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fieldErr("name", "name is required")
	}
	if !nameRe.MatchString(name) {
		return fieldErr("name", "name may only contain letters, spaces, hyphens and apostrophes")
	}
	if !letterRe.MatchString(name) {
		return fieldErr("name", "name must contain at least one letter")
	}
	if utf8.RuneCountInString(name) < minNameLen {
		return fieldErr("name", "name must be at least %d characters", minNameLen)
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return fieldErr("name", "name must be at most %d characters", maxNameLen)
	}
	return nil
}

// Password checks a password against the minimum-length rule.
func Password(pw string) error {
	if pw == "" {
		return fieldErr("password", "password is required")
	}
	if len(pw) < minPassword {
		return fieldErr("password", "password must be at least %d characters", minPassword)
	}
	return nil
}

// NewPassword checks a new password and its confirmation.
func NewPassword(pw, confirm string) error {
	if err := Password(pw); err != nil {
		return err
	}
	if confirm == "" {
		return fieldErr("confirm", "please confirm your password")
	}
	if pw != confirm {
		return fieldErr("confirm", "passwords do not match")
	}
	return nil
}

// IssueTitle checks an issue title: non-empty after trimming, at most 200
// characters.
func IssueTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fieldErr("title", "title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return fieldErr("title", "title must be at most %d characters", maxTitleLen)
	}
	return nil
}

// IssueDescription checks an optional description length.
func IssueDescription(desc string) error {
	if utf8.RuneCountInString(desc) > maxDescLen {
		return fieldErr("description", "description must be at most %d characters", maxDescLen)
	}
	return nil
}

// DueDate rejects due dates before today. Only the calendar date matters;
// a due date of today is allowed.
func DueDate(due, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return fieldErr("dueDate", "due date cannot be in the past")
	}
	return nil
}

// ProjectName checks a project name is non-empty after trimming.
func ProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fieldErr("name", "project name is required")
	}
	return nil
}
