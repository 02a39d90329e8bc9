// pkg/nagios/result.go
//
// Plugin output and exit status. Monitoring systems parse these lines
// literally, so the formats below must not change.

package nagios

import (
	"fmt"
	"io"

	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/alerts"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/check_err"
)

// Status is a plugin exit state. WARNING (1) is never produced.
type Status int

const (
	StatusOK       Status = 0
	StatusCritical Status = 2
	StatusUnknown  Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Kind tags how a run ended.
type Kind int

const (
	KindChecked Kind = iota
	KindConfigError
	KindVersionError
	KindRuntimeError
)

// MinimumVersion is named in the version-too-old diagnostic.
const MinimumVersion = "6.2.0"

// Result is the outcome of one run.
type Result struct {
	Kind    Kind
	Alerts  []alerts.Alert
	Message string
}

// Checked is a completed check carrying the alerts at or above the severity threshold.
func Checked(found []alerts.Alert) Result {
	return Result{Kind: KindChecked, Alerts: found}
}

// ConfigError carries the command line diagnostic printed as-is.
func ConfigError(msg string) Result {
	return Result{Kind: KindConfigError, Message: msg}
}

// VersionError carries the product version the pool reported.
func VersionError(detected string) Result {
	return Result{Kind: KindVersionError, Message: detected}
}

// RuntimeError carries the message of any other failure.
func RuntimeError(err error) Result {
	return Result{Kind: KindRuntimeError, Message: check_err.UserMessage(err)}
}

// FromError maps a classified error to its result.
func FromError(err error) Result {
	switch check_err.Classify(err) {
	case check_err.CategoryConfig:
		return ConfigError(check_err.UserMessage(err))
	case check_err.CategoryVersion:
		if ve, ok := check_err.AsVersionError(err); ok {
			return VersionError(ve.Detected)
		}
	}
	return RuntimeError(err)
}

// Status returns the exit state of the result.
func (r Result) Status() Status {
	if r.Kind != KindChecked {
		return StatusUnknown
	}
	if len(r.Alerts) > 0 {
		return StatusCritical
	}
	return StatusOK
}

// ExitCode returns the process exit code.
func (r Result) ExitCode() int {
	return int(r.Status())
}

// Lines renders the plugin output, summary first.
func (r Result) Lines() []string {
	switch r.Kind {
	case KindConfigError:
		return []string{r.Message}
	case KindVersionError:
		return []string{fmt.Sprintf("ERROR - XenServer version ( %s ) too old. Upgrade atleast to XenServer %s.", r.Message, MinimumVersion)}
	case KindRuntimeError:
		return []string{fmt.Sprintf("ERROR - Unexpected Exception [ %s ]", r.Message)}
	}

	if len(r.Alerts) == 0 {
		return []string{"OK - No System alert messages|alert_count=0"}
	}

	lines := make([]string, 0, len(r.Alerts)+1)
	lines = append(lines, fmt.Sprintf("CRITICAL - There is system alert messages! Count: %d | alert_count=%d", len(r.Alerts), len(r.Alerts)))
	for _, a := range r.Alerts {
		lines = append(lines, a.DetailLine())
	}
	return lines
}

// Write prints the rendered output to w.
func (r Result) Write(w io.Writer) error {
	for _, line := range r.Lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
