// Package client implements the Go API client used by the CLI, every call receives the Session it
// acts on behalf of.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mercari/go-circuitbreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sanLimbu/taskboard-api/internal"
	"github.com/sanLimbu/taskboard-api/internal/rest"
)

// DefaultTimeout is used when Config.Timeout is not set.
const DefaultTimeout = 10 * time.Second

// Config defines the settings used for instantiating a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client

	// Authorize adds the credentials to outgoing requests, the default sets a bearer token.
	Authorize func(req *http.Request, token string)

	// Breaker wraps every call, the default opens after 3 consecutive failures.
	Breaker *circuitbreaker.CircuitBreaker
}

// Client talks to the REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	timeout   time.Duration
	authorize func(req *http.Request, token string)
	cb        *circuitbreaker.CircuitBreaker
}

// New instantiates the Client.
func New(conf Config) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(conf.BaseURL, "/"))
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "url.Parse")
	}

	if base.Scheme == "" || base.Host == "" {
		return nil, internal.NewErrorf(internal.ErrorCodeInvalidArgument, "base url must be absolute")
	}

	httpClient := http.Client{}
	if conf.HTTPClient != nil {
		httpClient = *conf.HTTPClient
	}

	transport := httpClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	httpClient.Transport = otelhttp.NewTransport(transport)

	res := Client{
		baseURL:   base,
		http:      &httpClient,
		timeout:   conf.Timeout,
		authorize: conf.Authorize,
		cb:        conf.Breaker,
	}

	if res.timeout <= 0 {
		res.timeout = DefaultTimeout
	}

	if res.authorize == nil {
		res.authorize = BearerAuthorization
	}

	if res.cb == nil {
		res.cb = NewBreaker()
	}

	return &res, nil
}

// BearerAuthorization sets the Authorization header.
func BearerAuthorization(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}

// NewBreaker returns the default circuit breaker.
func NewBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(
		circuitbreaker.WithOpenTimeout(5*time.Second),
		circuitbreaker.WithCounterResetInterval(time.Minute),
		circuitbreaker.WithTripFunc(circuitbreaker.NewTripFuncConsecutiveFailures(3)),
	)
}

// Error describes a response that was not successful.
type Error struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

// Error ...
func (e *Error) Error() string {
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
}

func (c *Client) do(ctx context.Context, session *Session, r request, dst interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var respErr error

	_, err := c.cb.Do(ctx, func() (interface{}, error) {
		req, err := c.newRequest(ctx, session, r)
		if err != nil {
			respErr = err

			return nil, circuitbreaker.Ignore(err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "http.Do")
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			respErr = newResponseError(resp)

			if resp.StatusCode < http.StatusInternalServerError {
				return nil, circuitbreaker.Ignore(respErr)
			}

			return nil, respErr
		}

		if dst == nil || resp.StatusCode == http.StatusNoContent {
			_, _ = io.Copy(io.Discard, resp.Body)

			return nil, nil
		}

		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			respErr = internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Decode")

			return nil, circuitbreaker.Ignore(respErr)
		}

		return nil, nil
	})

	if respErr != nil {
		err = respErr
	}

	if err == nil {
		return nil
	}

	if errors.Is(err, circuitbreaker.ErrOpen) {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "service unavailable")
	}

	var ierr *internal.Error
	if errors.As(err, &ierr) && ierr.Code() == internal.ErrorCodeUnauthenticated && session != nil {
		session.Clear()
	}

	return err
}

func (c *Client) newRequest(ctx context.Context, session *Session, r request) (*http.Request, error) {
	u := *c.baseURL
	u.Path += r.path

	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader

	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Marshal")
		}

		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "http.NewRequest")
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token := session.Token(); token != "" {
		c.authorize(req, token)
	}

	return req, nil
}

func newResponseError(resp *http.Response) error {
	var body rest.ErrorResponse

	_ = json.NewDecoder(resp.Body).Decode(&body)

	if body.Message == "" {
		body.Message = http.StatusText(resp.StatusCode)
	}

	rerr := &Error{
		StatusCode: resp.StatusCode,
		Message:    body.Message,
		Fields:     body.Errors,
	}

	code := internal.ErrorCodeUnknown

	switch resp.StatusCode {
	case http.StatusBadRequest:
		code = internal.ErrorCodeInvalidArgument
	case http.StatusUnauthorized:
		code = internal.ErrorCodeUnauthenticated
	case http.StatusNotFound:
		code = internal.ErrorCodeNotFound
	case http.StatusConflict:
		code = internal.ErrorCodeConflict
	}

	return internal.WrapErrorf(rerr, code, "%s", body.Message)
}
