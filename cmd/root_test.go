package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/alerts"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/probe"
)

type stubSession struct {
	version string
	records map[string]alerts.Alert
	logouts int
}

func (s *stubSession) Endpoint() string { return "https://xen1" }

func (s *stubSession) ProductVersion() (string, error) { return s.version, nil }

func (s *stubSession) AllMessages() (map[string]alerts.Alert, error) { return s.records, nil }

func (s *stubSession) Logout() error {
	s.logouts++
	return nil
}

type openCall struct {
	host, username, password string
}

func stubOpener(sess *stubSession, calls *[]openCall) probe.Opener {
	return func(ctx context.Context, host, username, password string) (probe.Session, error) {
		*calls = append(*calls, openCall{host, username, password})
		return sess, nil
	}
}

func run(t *testing.T, open probe.Opener, args ...string) (string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr, open)
	return stdout.String(), code
}

func TestRunMissingOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no arguments", nil, "-H/--hostname option not supplied\n"},
		{"missing hostname", []string{"-p", "secret"}, "-H/--hostname option not supplied\n"},
		{"missing password", []string{"-H", "xen1"}, "-p/--password option not supplied\n"},
		{"empty hostname", []string{"-H", "", "-p", "secret"}, "-H/--hostname option not supplied\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []openCall
			out, code := run(t, stubOpener(&stubSession{version: "6.5.0"}, &calls), tt.args...)

			assert.Equal(t, tt.want, out)
			assert.Equal(t, 3, code)
			assert.Empty(t, calls, "no remote call on a configuration error")
		})
	}
}

func TestRunRejectsBadCommandLine(t *testing.T) {
	for _, args := range [][]string{
		{"-H", "xen1", "-p", "secret", "-x"},
		{"-H", "xen1", "-p", "secret", "extra"},
		{"-H"},
	} {
		var calls []openCall
		out, code := run(t, stubOpener(&stubSession{version: "6.5.0"}, &calls), args...)

		assert.Equal(t, 3, code, args)
		assert.NotEmpty(t, out, args)
		assert.Empty(t, calls, args)
	}
}

func TestRunHelp(t *testing.T) {
	var calls []openCall
	out, code := run(t, stubOpener(&stubSession{}, &calls), "--help")

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "--hostname")
	assert.Empty(t, calls)
}

func TestRunDefaultLogin(t *testing.T) {
	var calls []openCall
	sess := &stubSession{version: "6.5.0", records: map[string]alerts.Alert{}}

	out, code := run(t, stubOpener(sess, &calls), "-H", "xen1", "-p", "secret")

	assert.Equal(t, "OK - No System alert messages|alert_count=0\n", out)
	assert.Equal(t, 0, code)
	require.Len(t, calls, 1)
	assert.Equal(t, openCall{"xen1", "root", "secret"}, calls[0])
	assert.Equal(t, 1, sess.logouts)
}

func TestRunEmptyLoginReachesPool(t *testing.T) {
	var calls []openCall
	open := func(ctx context.Context, host, username, password string) (probe.Session, error) {
		calls = append(calls, openCall{host, username, password})
		return nil, errors.New("session.login_with_password: SESSION_AUTHENTICATION_FAILED [, Authentication failure]")
	}

	out, code := run(t, open, "-H", "xen1", "-l", "", "-p", "secret")

	assert.Equal(t, 3, code)
	require.Len(t, calls, 1)
	assert.Equal(t, "", calls[0].username)
	assert.Equal(t,
		"ERROR - Unexpected Exception [ open session on xen1: session.login_with_password: SESSION_AUTHENTICATION_FAILED [, Authentication failure] ]\n",
		out)
}

func TestRunLongFlags(t *testing.T) {
	var calls []openCall
	sess := &stubSession{version: "7.2.0", records: map[string]alerts.Alert{}}

	_, code := run(t, stubOpener(sess, &calls),
		"--hostname", "xen2", "--login-name", "monitor", "--password", "pw")

	assert.Equal(t, 0, code)
	require.Len(t, calls, 1)
	assert.Equal(t, openCall{"xen2", "monitor", "pw"}, calls[0])
}

func TestRunCritical(t *testing.T) {
	var calls []openCall
	ts := time.Date(2015, 11, 10, 8, 30, 0, 0, time.UTC)
	sess := &stubSession{
		version: "6.5.0",
		records: map[string]alerts.Alert{
			"OpaqueRef:1": {Priority: 1, Name: "HA_HOST_FAILED", Body: "host failed", Timestamp: ts},
			"OpaqueRef:2": {Priority: 5, Name: "VM_STARTED", Body: "vm started", Timestamp: ts},
		},
	}

	out, code := run(t, stubOpener(sess, &calls), "-H", "xen1", "-p", "secret")

	assert.Equal(t, 2, code)
	assert.Equal(t,
		"CRITICAL - There is system alert messages! Count: 1 | alert_count=1\n"+
			"20151110T08:30:00Z Priority: 1 , name: HA_HOST_FAILED body: host failed\n",
		out)
}

func TestRunOpenFailure(t *testing.T) {
	open := func(ctx context.Context, host, username, password string) (probe.Session, error) {
		return nil, errors.New("no route to host")
	}

	out, code := run(t, open, "-H", "xen1", "-p", "secret")

	assert.Equal(t, 3, code)
	assert.Equal(t, "ERROR - Unexpected Exception [ open session on xen1: no route to host ]\n", out)
}

func TestRunVersionTooOld(t *testing.T) {
	var calls []openCall
	sess := &stubSession{version: "6.1.0"}

	out, code := run(t, stubOpener(sess, &calls), "-H", "xen1", "-p", "secret")

	assert.Equal(t, 3, code)
	assert.Equal(t, "ERROR - XenServer version ( 6.1.0 ) too old. Upgrade atleast to XenServer 6.2.0.\n", out)
	assert.Equal(t, 0, sess.logouts)
}
