// pkg/xenapi/records.go

package xenapi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"

	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/alerts"
)

var timestampLayouts = []string{
	"20060102T15:04:05Z07:00",
	"20060102T15:04:05Z0700",
	"20060102T15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func asString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", cerr.Newf("expected string value, got %T", v)
	}
	return s, nil
}

func asStringMap(v interface{}) (map[string]string, error) {
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil, cerr.Newf("expected struct value, got %T", v)
	}
	out := make(map[string]string, len(raw))
	for k, val := range raw {
		out[k] = fmt.Sprint(val)
	}
	return out, nil
}

// parseInt accepts XML-RPC ints and the decimal strings XenAPI uses for int64.
func parseInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, cerr.Newf("invalid integer %q", n)
		}
		return int(i), nil
	default:
		return 0, cerr.Newf("expected integer value, got %T", v)
	}
}

// parseTimestamp accepts a decoded time or XenAPI's compact ISO 8601 string.
// A missing timestamp is the zero time.
func parseTimestamp(v interface{}) (time.Time, error) {
	switch ts := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return ts.UTC(), nil
	case string:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, ts); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, cerr.Newf("invalid timestamp %q", ts)
	default:
		return time.Time{}, cerr.Newf("expected timestamp value, got %T", v)
	}
}

func decodeMessages(v interface{}) (map[string]alerts.Alert, error) {
	if v == nil {
		return map[string]alerts.Alert{}, nil
	}
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil, cerr.Newf("expected struct of message records, got %T", v)
	}

	out := make(map[string]alerts.Alert, len(raw))
	for ref, rec := range raw {
		fields, ok := rec.(map[string]interface{})
		if !ok {
			return nil, cerr.Newf("message %s: expected struct, got %T", ref, rec)
		}

		priority, err := parseInt(fields["priority"])
		if err != nil {
			return nil, cerr.Wrapf(err, "message %s: priority", ref)
		}
		ts, err := parseTimestamp(fields["timestamp"])
		if err != nil {
			return nil, cerr.Wrapf(err, "message %s: timestamp", ref)
		}

		out[ref] = alerts.Alert{
			Ref:       ref,
			Priority:  priority,
			Name:      stringField(fields, "name"),
			Body:      stringField(fields, "body"),
			Timestamp: ts,
		}
	}
	return out, nil
}

func stringField(fields map[string]interface{}, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
