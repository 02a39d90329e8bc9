// pkg/check_err/classification.go
//
// Error classification for the check plugin. Every failure ends in the
// UNKNOWN (3) exit state; the category only decides how it is printed.

package check_err

import (
	"fmt"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

// ErrorCategory classifies errors for reporting
type ErrorCategory int

const (
	// CategoryRuntime - anything raised while talking to the pool (exit 3)
	CategoryRuntime ErrorCategory = iota
	// CategoryConfig - missing or malformed command line options (exit 3)
	CategoryConfig
	// CategoryVersion - pool software too old for priority semantics (exit 3)
	CategoryVersion
	// CategoryInternal - recovered panics (exit 3)
	CategoryInternal
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryConfig:
		return "config"
	case CategoryVersion:
		return "version"
	case CategoryInternal:
		return "internal"
	default:
		return "runtime"
	}
}

// ClassifiedError wraps an error with a category
type ClassifiedError struct {
	Category ErrorCategory
	Message  string
	Cause    error
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		if e.Message == "" {
			return e.Cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// VersionError reports a pool running software older than the supported minimum.
type VersionError struct {
	Detected string
	Minimum  string
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("XenServer version %s is older than %s", e.Detected, e.Minimum)
}

// NewConfigError creates an error for command line problems.
// The message is printed verbatim as the plugin output.
func NewConfigError(message string) error {
	return &ClassifiedError{
		Category: CategoryConfig,
		Message:  message,
	}
}

// NewVersionError creates an error for an unsupported pool version.
func NewVersionError(detected, minimum string) error {
	return &ClassifiedError{
		Category: CategoryVersion,
		Cause:    &VersionError{Detected: detected, Minimum: minimum},
	}
}

// NewInternalError creates an error for a recovered panic.
func NewInternalError(r any) error {
	return &ClassifiedError{
		Category: CategoryInternal,
		Cause:    cerr.AssertionFailedf("panic: %v", r),
	}
}

// Classify returns the category of err. Unclassified errors are runtime errors.
func Classify(err error) ErrorCategory {
	var classified *ClassifiedError
	if cerr.As(err, &classified) {
		return classified.Category
	}
	return CategoryRuntime
}

// AsVersionError returns the VersionError inside err, if any.
func AsVersionError(err error) (*VersionError, bool) {
	var ve *VersionError
	if cerr.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// UserMessage flattens err into a single line for plugin output.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return strings.Join(strings.Fields(err.Error()), " ")
}
