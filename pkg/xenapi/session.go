// pkg/xenapi/session.go

package xenapi

import (
	cerr "github.com/cockroachdb/errors"

	"github.com/CodeMonkeyCybersecurity/xencheck/pkg/alerts"
)

// Session is an authenticated XenAPI session.
type Session struct {
	client *Client
	ref    string
}

// Endpoint returns the URL the session was opened on, which differs from
// the requested host after a master redirect.
func (s *Session) Endpoint() string {
	return s.client.URL()
}

// ThisHost returns the reference of the host serving the session.
func (s *Session) ThisHost() (string, error) {
	v, err := s.client.call("session.get_this_host", s.ref, s.ref)
	if err != nil {
		return "", err
	}
	return asString(v)
}

// SoftwareVersion returns the software version map of hostRef.
func (s *Session) SoftwareVersion(hostRef string) (map[string]string, error) {
	v, err := s.client.call("host.get_software_version", s.ref, hostRef)
	if err != nil {
		return nil, err
	}
	return asStringMap(v)
}

// ProductVersion returns product_version of the host serving the session.
func (s *Session) ProductVersion() (string, error) {
	hostRef, err := s.ThisHost()
	if err != nil {
		return "", err
	}
	sv, err := s.SoftwareVersion(hostRef)
	if err != nil {
		return "", err
	}
	v, ok := sv["product_version"]
	if !ok {
		return "", cerr.Newf("software version of %s has no product_version", hostRef)
	}
	return v, nil
}

// AllMessages returns every message record keyed by reference.
func (s *Session) AllMessages() (map[string]alerts.Alert, error) {
	v, err := s.client.call("message.get_all_records", s.ref)
	if err != nil {
		return nil, err
	}
	msgs, err := decodeMessages(v)
	if err != nil {
		return nil, cerr.Wrap(err, "message.get_all_records")
	}
	return msgs, nil
}

// Logout ends the session and closes the client.
func (s *Session) Logout() error {
	_, err := s.client.call("session.logout", s.ref)
	if closeErr := s.client.Close(); err == nil && closeErr != nil {
		err = cerr.Wrap(closeErr, "close XenAPI client")
	}
	return err
}
