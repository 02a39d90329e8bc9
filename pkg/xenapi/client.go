// pkg/xenapi/client.go
//
// Minimal XenAPI client: the handful of calls a message check needs, spoken
// over XML-RPC to https://<host>/.

package xenapi

import (
	"context"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/kolo/xmlrpc"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Scheme is prepended to bare host names.
const Scheme = "https://"

const statusSuccess = "Success"

// response is the envelope every XenAPI call returns.
type response struct {
	Status           string      `xmlrpc:"Status"`
	Value            interface{} `xmlrpc:"Value"`
	ErrorDescription []string    `xmlrpc:"ErrorDescription"`
}

// Client is an unauthenticated connection to one host.
type Client struct {
	ctx       context.Context
	host      string
	url       string
	rpc       *xmlrpc.Client
	transport *contextTransport
}

// EndpointURL returns the API URL for host.
func EndpointURL(host string) string {
	if strings.HasPrefix(host, Scheme) {
		return host
	}
	return Scheme + host
}

// Dial prepares a client for host. No request is sent until the first call.
func Dial(ctx context.Context, host string) (*Client, error) {
	if host == "" {
		return nil, cerr.New("host is required")
	}

	url := EndpointURL(host)
	transport := &contextTransport{ctx: ctx, base: newTransport()}
	rpc, err := xmlrpc.NewClient(url, transport)
	if err != nil {
		return nil, cerr.Wrapf(err, "create XML-RPC client for %s", url)
	}

	return &Client{
		ctx:       ctx,
		host:      host,
		url:       url,
		rpc:       rpc,
		transport: transport,
	}, nil
}

// URL returns the endpoint this client talks to.
func (c *Client) URL() string {
	return c.url
}

// Close releases the underlying connections.
func (c *Client) Close() error {
	err := c.rpc.Close()
	c.transport.CloseIdleConnections()
	return err
}

// call invokes method and unwraps the XenAPI envelope.
func (c *Client) call(method string, args ...interface{}) (interface{}, error) {
	log := otelzap.Ctx(c.ctx)

	if args == nil {
		args = []interface{}{}
	}

	var resp response
	if err := c.rpc.Call(method, args, &resp); err != nil {
		log.Debug("XenAPI call failed", zap.String("method", method), zap.String("url", c.url), zap.Error(err))
		return nil, cerr.Wrap(err, method)
	}

	if resp.Status != statusSuccess {
		f := newFailure(method, resp.ErrorDescription)
		log.Debug("XenAPI call returned failure",
			zap.String("method", method),
			zap.String("code", f.Code),
			zap.Strings("params", f.Params))
		return nil, f
	}

	log.Debug("XenAPI call succeeded", zap.String("method", method))
	return resp.Value, nil
}

// Login authenticates and returns a session. A HOST_IS_SLAVE failure is
// returned as *RedirectError naming the pool master.
func (c *Client) Login(username, password string) (*Session, error) {
	v, err := c.call("session.login_with_password", username, password)
	if err != nil {
		var f *Failure
		if cerr.As(err, &f) {
			switch {
			case f.Code == ErrHostIsSlave && len(f.Params) > 0:
				return nil, &RedirectError{Host: c.host, Master: f.Params[0]}
			case f.Code == ErrSessionAuthenticationFailed:
				otelzap.Ctx(c.ctx).Warn("XenAPI rejected credentials",
					zap.String("url", c.url),
					zap.String("username", username))
			}
		}
		return nil, err
	}

	ref, err := asString(v)
	if err != nil {
		return nil, cerr.Wrap(err, "session.login_with_password")
	}
	return &Session{client: c, ref: ref}, nil
}

// Open logs in to host. When host is a pool member the login is repeated
// once against the master it names; a second redirect is returned as an error.
func Open(ctx context.Context, host, username, password string) (*Session, error) {
	log := otelzap.Ctx(ctx)

	sess, err := login(ctx, host, username, password)
	var redirect *RedirectError
	if !cerr.As(err, &redirect) {
		return sess, err
	}

	log.Info("Host is a pool member, redirecting login to master",
		zap.String("host", host),
		zap.String("master", redirect.Master))

	return login(ctx, redirect.Master, username, password)
}

func login(ctx context.Context, host, username, password string) (*Session, error) {
	c, err := Dial(ctx, host)
	if err != nil {
		return nil, err
	}
	sess, err := c.Login(username, password)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return sess, nil
}
