package xenapi

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	fakeSessionRef = "OpaqueRef:0f7d8a2c-session"
	fakeHostRef    = "OpaqueRef:b41e5c0a-host"
)

type methodCall struct {
	MethodName string `xml:"methodName"`
	Params     []struct {
		Value struct {
			String string `xml:"string"`
		} `xml:"value"`
	} `xml:"params>param"`
}

// fakeHost is an httptest XenAPI endpoint implementing just the calls the
// probe makes.
type fakeHost struct {
	srv *httptest.Server

	mu    sync.Mutex
	calls []string

	master         string
	username       string
	password       string
	productVersion string
	messages       map[string]map[string]any
	failures       map[string][]string
}

func newFakeHost(t *testing.T) *fakeHost {
	t.Helper()
	f := &fakeHost{
		username:       "root",
		password:       "secret",
		productVersion: "6.5.0",
		messages:       map[string]map[string]any{},
		failures:       map[string][]string{},
	}
	f.srv = httptest.NewTLSServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeHost) Host() string {
	return strings.TrimPrefix(f.srv.URL, "https://")
}

func (f *fakeHost) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeHost) count(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == method {
			n++
		}
	}
	return n
}

func (f *fakeHost) serve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var call methodCall
	if err := xml.Unmarshal(body, &call); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	params := make([]string, len(call.Params))
	for i, p := range call.Params {
		params[i] = p.Value.String
	}

	f.mu.Lock()
	f.calls = append(f.calls, call.MethodName)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "text/xml")

	if desc, ok := f.failures[call.MethodName]; ok {
		writeFailure(w, desc...)
		return
	}

	switch call.MethodName {
	case "session.login_with_password":
		if f.master != "" {
			writeFailure(w, ErrHostIsSlave, f.master)
			return
		}
		if len(params) < 2 || params[0] != f.username || params[1] != f.password {
			writeFailure(w, ErrSessionAuthenticationFailed, f.username, "Authentication failure")
			return
		}
		writeSuccess(w, fakeSessionRef)
	case "session.get_this_host":
		if !f.validSession(w, params) {
			return
		}
		writeSuccess(w, fakeHostRef)
	case "host.get_software_version":
		if !f.validSession(w, params) {
			return
		}
		sv := map[string]any{"build_number": "90233c"}
		if f.productVersion != "" {
			sv["product_version"] = f.productVersion
		}
		writeSuccess(w, sv)
	case "message.get_all_records":
		if !f.validSession(w, params) {
			return
		}
		records := map[string]any{}
		for ref, rec := range f.messages {
			records[ref] = rec
		}
		writeSuccess(w, records)
	case "session.logout":
		if !f.validSession(w, params) {
			return
		}
		writeSuccess(w, "")
	default:
		writeFailure(w, "MESSAGE_METHOD_UNKNOWN", call.MethodName)
	}
}

func (f *fakeHost) validSession(w http.ResponseWriter, params []string) bool {
	if len(params) == 0 || params[0] != fakeSessionRef {
		writeFailure(w, "SESSION_INVALID", strings.Join(params, ","))
		return false
	}
	return true
}

// dateTime is sent verbatim as a dateTime.iso8601 value.
type dateTime string

func message(priority string, name, body string, ts time.Time) map[string]any {
	return map[string]any{
		"uuid":      "3b1f" + name,
		"name":      name,
		"priority":  priority,
		"cls":       "Host",
		"obj_uuid":  "e2b1c7f0",
		"timestamp": ts,
		"body":      body,
	}
}

func writeSuccess(w io.Writer, value any) {
	writeEnvelope(w, map[string]any{"Status": "Success", "Value": value})
}

func writeFailure(w io.Writer, description ...string) {
	writeEnvelope(w, map[string]any{"Status": "Failure", "ErrorDescription": description})
}

func writeEnvelope(w io.Writer, envelope map[string]any) {
	fmt.Fprintf(w, `<?xml version="1.0"?><methodResponse><params><param>%s</param></params></methodResponse>`, xmlValue(envelope))
}

func xmlValue(v any) string {
	switch x := v.(type) {
	case string:
		return "<value><string>" + escape(x) + "</string></value>"
	case int:
		return fmt.Sprintf("<value><int>%d</int></value>", x)
	case dateTime:
		return "<value><dateTime.iso8601>" + string(x) + "</dateTime.iso8601></value>"
	case time.Time:
		return "<value><dateTime.iso8601>" + x.UTC().Format("20060102T15:04:05Z") + "</dateTime.iso8601></value>"
	case []string:
		var b strings.Builder
		b.WriteString("<value><array><data>")
		for _, s := range x {
			b.WriteString(xmlValue(s))
		}
		b.WriteString("</data></array></value>")
		return b.String()
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString("<value><struct>")
		for _, k := range keys {
			b.WriteString("<member><name>" + escape(k) + "</name>" + xmlValue(x[k]) + "</member>")
		}
		b.WriteString("</struct></value>")
		return b.String()
	default:
		panic(fmt.Sprintf("xmlValue: unsupported %T", v))
	}
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
