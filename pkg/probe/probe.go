// pkg/probe/probe.go
//
// The check itself: open a session, make sure the pool reports message
// priorities we can trust, fetch and filter messages, log out.

package probe

import (
	"context"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/alerts"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/check_err"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/check_io"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/config"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/telemetry"
	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/xenapi"
)

// Session is the part of a XenAPI session the check uses.
type Session interface {
	Endpoint() string
	ProductVersion() (string, error)
	AllMessages() (map[string]alerts.Alert, error)
	Logout() error
}

// Opener establishes an authenticated session, following a master redirect.
type Opener func(ctx context.Context, host, username, password string) (Session, error)

// XenAPI opens real sessions over XML-RPC.
func XenAPI(ctx context.Context, host, username, password string) (Session, error) {
	sess, err := xenapi.Open(ctx, host, username, password)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Check runs the stages and returns the alerts at or above the severity
// threshold. Remote failures are returned as errors, never panics.
func Check(rc *check_io.RuntimeContext, opts config.Options, open Opener) ([]alerts.Alert, error) {
	log := otelzap.Ctx(rc.Ctx)

	sess, err := openSession(rc.Ctx, opts, open)
	if err != nil {
		return nil, err
	}
	rc.Attributes["endpoint"] = sess.Endpoint()

	version, err := checkCapability(rc.Ctx, sess)
	if err != nil {
		return nil, err
	}
	rc.Attributes["product_version"] = version

	found, err := fetchAlerts(rc.Ctx, sess)
	if err != nil {
		return nil, err
	}

	log.Info("Message check finished",
		zap.String("endpoint", sess.Endpoint()),
		zap.Int("alert_count", len(found)))
	return found, nil
}

func openSession(ctx context.Context, opts config.Options, open Opener) (Session, error) {
	ctx, span := telemetry.Start(ctx, "probe.open", attribute.String("host", opts.Hostname))
	defer span.End()

	sess, err := open(ctx, opts.Hostname, opts.Username, opts.Password)
	if err != nil {
		span.RecordError(err)
		return nil, check_err.WrapRemotef(err, "open session on %s", opts.Hostname)
	}

	otelzap.Ctx(ctx).Debug("Session established",
		zap.String("host", opts.Hostname),
		zap.String("endpoint", sess.Endpoint()),
		zap.String("username", opts.Username))
	return sess, nil
}

// checkCapability rejects pools whose product version predates defined
// priorities. The session is left open on rejection.
func checkCapability(ctx context.Context, sess Session) (string, error) {
	ctx, span := telemetry.Start(ctx, "probe.version")
	defer span.End()

	version, err := sess.ProductVersion()
	if err != nil {
		span.RecordError(err)
		return "", check_err.WrapRemote(err, "get product version")
	}
	span.SetAttributes(attribute.String("product_version", version))

	if err := CheckVersion(version); err != nil {
		otelzap.Ctx(ctx).Warn("Pool version too old for message priorities",
			zap.String("product_version", version),
			zap.String("minimum", MinimumVersion))
		return version, err
	}
	return version, nil
}

// fetchAlerts retrieves all messages, logs out, and returns the severe ones.
// Logout is attempted even when the fetch fails; both errors are reported.
func fetchAlerts(ctx context.Context, sess Session) ([]alerts.Alert, error) {
	ctx, span := telemetry.Start(ctx, "probe.fetch")
	defer span.End()
	log := otelzap.Ctx(ctx)

	records, fetchErr := sess.AllMessages()
	logoutErr := sess.Logout()

	if fetchErr != nil {
		var result *multierror.Error
		result = multierror.Append(result, check_err.WrapRemote(fetchErr, "fetch messages"))
		if logoutErr != nil {
			result = multierror.Append(result, check_err.WrapRemote(logoutErr, "logout"))
		}
		result.ErrorFormat = singleLine
		span.RecordError(result)
		return nil, result.ErrorOrNil()
	}
	if logoutErr != nil {
		span.RecordError(logoutErr)
		return nil, check_err.WrapRemote(logoutErr, "logout")
	}

	found := alerts.Filter(alerts.FromRecords(records), alerts.SevereThreshold)
	span.SetAttributes(
		attribute.Int("message_count", len(records)),
		attribute.Int("alert_count", len(found)),
	)
	for _, a := range found {
		log.Info("Severe message",
			zap.String("ref", a.Ref),
			zap.Int("priority", a.Priority),
			zap.String("priority_name", alerts.PriorityName(a.Priority)),
			zap.String("name", a.Name),
			zap.Time("timestamp", a.Timestamp))
	}
	log.Debug("Messages filtered",
		zap.Int("message_count", len(records)),
		zap.Int("alert_count", len(found)),
		zap.Int("threshold", alerts.SevereThreshold))
	return found, nil
}

func singleLine(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
