// pkg/xenapi/failure.go

package xenapi

import (
	"fmt"
	"strings"
)

// Error codes the probe reacts to.
const (
	ErrHostIsSlave                 = "HOST_IS_SLAVE"
	ErrSessionAuthenticationFailed = "SESSION_AUTHENTICATION_FAILED"
)

// Failure is a XenAPI call that returned Status "Failure".
type Failure struct {
	Method string
	Code   string
	Params []string
}

func newFailure(method string, description []string) *Failure {
	f := &Failure{Method: method}
	if len(description) > 0 {
		f.Code = description[0]
		f.Params = description[1:]
	}
	return f
}

func (f *Failure) Error() string {
	code := f.Code
	if code == "" {
		code = "UNKNOWN_FAILURE"
	}
	if len(f.Params) == 0 {
		return fmt.Sprintf("%s: %s", f.Method, code)
	}
	return fmt.Sprintf("%s: %s [%s]", f.Method, code, strings.Join(f.Params, ", "))
}

// RedirectError reports that the contacted host is a pool member and the
// session must be opened on Master instead.
type RedirectError struct {
	Host   string
	Master string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("%s is not the pool master, master is %s", e.Host, e.Master)
}
