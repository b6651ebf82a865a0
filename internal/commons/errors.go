package commons

import (
	"errors"
	"fmt"
)

// ErrNotAuthorized is returned by Upload and Edit before a successful Login.
var ErrNotAuthorized = errors.New("session is not authorized")

// ErrDuplicateTarget marks a record whose target name already appeared
// earlier in the same batch.
var ErrDuplicateTarget = errors.New("duplicate target name in batch")

// AuthError is a failed step of the login handshake. It aborts a publish run.
type AuthError struct {
	Step   string
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth %s: %s: %v", e.Step, e.Reason, e.Err)
	}
	return fmt.Sprintf("auth %s: %s", e.Step, e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// UploadError is a rejected or failed upload of one asset.
type UploadError struct {
	TargetName string
	StatusCode int
	Result     string
	Code       string
	Info       string
	Warnings   map[string]any
	Err        error
}

func (e *UploadError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("upload %s: %v", e.TargetName, e.Err)
	case e.Code != "":
		return fmt.Sprintf("upload %s: %s: %s", e.TargetName, e.Code, e.Info)
	case e.StatusCode != 0:
		return fmt.Sprintf("upload %s: HTTP %d", e.TargetName, e.StatusCode)
	case len(e.Warnings) > 0:
		return fmt.Sprintf("upload %s: result %q with warnings %v", e.TargetName, e.Result, e.Warnings)
	}
	return fmt.Sprintf("upload %s: result %q", e.TargetName, e.Result)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// AnnotateError is a failed description edit for an uploaded asset.
type AnnotateError struct {
	Title      string
	StatusCode int
	Result     string
	Code       string
	Info       string
	Err        error
}

func (e *AnnotateError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("edit %s: %v", e.Title, e.Err)
	case e.Code != "":
		return fmt.Sprintf("edit %s: %s: %s", e.Title, e.Code, e.Info)
	case e.StatusCode != 0:
		return fmt.Sprintf("edit %s: HTTP %d", e.Title, e.StatusCode)
	}
	return fmt.Sprintf("edit %s: result %q", e.Title, e.Result)
}

func (e *AnnotateError) Unwrap() error {
	return e.Err
}
