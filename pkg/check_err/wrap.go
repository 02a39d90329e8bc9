// pkg/check_err/wrap.go

package check_err

import (
	cerr "github.com/cockroachdb/errors"
)

// WrapRemote annotates a failed remote call with the operation it belongs to.
func WrapRemote(err error, op string) error {
	if err == nil {
		return nil
	}
	return cerr.Wrap(err, op)
}

// WrapRemotef is WrapRemote with a formatted operation.
func WrapRemotef(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return cerr.Wrapf(err, format, args...)
}
