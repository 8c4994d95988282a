package api

import (
	"errors"
	"fmt"
)

// FetchError is a failed read (network or HTTP). Views recover by showing
// the list they already have plus a non-blocking warning; it is never fatal.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PersistError is a failed create/update/delete. Any optimistic change is
// reverted and the operation is not retried automatically.
type PersistError struct {
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *PersistError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("request %s failed: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request %s failed: %v", e.URL, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// AuthError marks a rejected session: a 401 on anything other than a
// login/register attempt. The caller tears down local session state.
type AuthError struct {
	URL string
}

func (e *AuthError) Error() string {
	return "session expired or invalid"
}

// IsAuth reports whether err (anywhere in its chain) is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsFetch reports whether err is a FetchError.
func IsFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
