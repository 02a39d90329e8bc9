// pkg/check_cli/wrap.go

package check_cli

import (
	"context"

	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/alerts"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/check_io"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/nagios"
)

// CheckFunc performs one check and returns the alerts to report.
type CheckFunc func(rc *check_io.RuntimeContext) ([]alerts.Alert, error)

// Wrap runs fn inside a RuntimeContext with panic recovery, logging and
// telemetry, and maps the outcome to a plugin result.
func Wrap(parent context.Context, command string, fn CheckFunc) nagios.Result {
	var found []alerts.Alert

	err := func() (err error) {
		rc := check_io.NewContext(parent, command)
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		rc.Log.Debug("Check starting")
		found, err = fn(rc)
		return err
	}()

	if err != nil {
		zap.L().Debug("Mapping check error to result", zap.Error(err))
		return nagios.FromError(err)
	}
	return nagios.Checked(found)
}
