// Package client talks to the tracker service and keeps the logged-in
// account, refreshing its token pair before the access token expires.
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
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

var ErrNotLoggedIn = errors.New("not logged in")

// refreshMargin is how long before expiry the access token is renewed.
const refreshMargin = time.Minute

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Breaker    *gobreaker.CircuitBreaker
	Storage    Storage
	Logger     logrus.FieldLogger

	// refreshMu serializes refreshes; a refresh token can be redeemed once.
	refreshMu sync.Mutex
	now       func() time.Time
}

// New creates a client for the service at baseURL. A nil storage keeps the
// account in memory and a nil logger uses the logrus standard logger.
func New(baseURL string, storage Storage, logger logrus.FieldLogger) *Client {
	if storage == nil {
		storage = &MemoryStorage{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Storage:    storage,
		Logger:     logger,
		now:        time.Now,
	}
	c.Breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "tracker-service",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
	return c
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// auth attaches the bearer token, refreshing it first when needed.
	auth bool
}

// send performs the request through the breaker and returns the raw body.
// Transport failures and 5xx answers count against the breaker; the body
// of any answer is returned so callers can read error envelopes.
func (c *Client) send(ctx context.Context, req request) ([]byte, error) {
	var payload []byte
	if req.body != nil {
		var err error
		if payload, err = json.Marshal(req.body); err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
	}
	target := c.BaseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var authHeader string
	if req.auth {
		var err error
		if authHeader, err = c.AuthHeader(ctx); err != nil {
			return nil, err
		}
	}

	result, err := c.Breaker.Execute(func() (interface{}, error) {
		httpReq, err := http.NewRequestWithContext(ctx, req.method, target, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if payload != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}
		if authHeader != "" {
			httpReq.Header.Set("Authorization", authHeader)
		}
		resp, err := c.HTTPClient.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			if msg, ok := models.AsMessage(body); ok {
				return nil, &models.APIError{Msg: msg.Msg}
			}
			return nil, fmt.Errorf("%s %s: %s", req.method, req.path, resp.Status)
		}
		return body, nil
	})
	if err != nil {
		c.Logger.Warnf("Event ID: REQUEST_FAILED, Description: %s %s failed: %v", req.method, req.path, err)
		return nil, err
	}
	return result.([]byte), nil
}

// call decodes a typed result. An envelope in place of the result is an
// error.
func call[T any](ctx context.Context, c *Client, req request) (T, error) {
	var zero T
	body, err := c.send(ctx, req)
	if err != nil {
		return zero, err
	}
	if msg, ok := models.AsMessage(body); ok {
		return zero, &models.APIError{Msg: msg.Msg}
	}
	return models.Decode[T](body)
}

// callMsg expects an envelope and returns its msg.
func (c *Client) callMsg(ctx context.Context, req request) (string, error) {
	body, err := c.send(ctx, req)
	if err != nil {
		return "", err
	}
	msg, ok := models.AsMessage(body)
	if !ok {
		return "", fmt.Errorf("%w: expected a message from %s %s", models.ErrInvalidPayload, req.method, req.path)
	}
	if err := msg.Err(); err != nil {
		return "", err
	}
	return msg.Msg, nil
}

func pathf(format string, segments ...string) string {
	args := make([]any, len(segments))
	for i, s := range segments {
		args[i] = url.PathEscape(s)
	}
	return fmt.Sprintf(format, args...)
}
