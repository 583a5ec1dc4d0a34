// Package backend is the client for the upstream project-management REST
// API. The API is a black box; this package only knows the request and
// response shapes the dashboard needs, and folds every failure into a
// FetchError of kind Transport or ServerRejected.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/devmarvs/pmboard/httpclient"
	"github.com/devmarvs/pmboard/logging"
)

// MaxResponseBytes bounds how much of an upstream body is read.
const MaxResponseBytes = 4 << 20

// Options configures a Client.
type Options struct {
	BaseURL string
	// HTTPClient is wrapped with an Authorization transport using
	// AuthScheme unless its chain already has one.
	HTTPClient *http.Client
	AuthScheme httpclient.Scheme
	Logger     *slog.Logger
}

// Client calls the upstream backend. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
}

// New builds a Client for the backend at options.BaseURL.
func New(options Options) (*Client, error) {
	if strings.TrimSpace(options.BaseURL) == "" {
		return nil, errors.New("backend url is required")
	}
	base, err := url.Parse(strings.TrimRight(options.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", options.BaseURL)
	}

	client := httpclient.EnsureAuth(options.HTTPClient, options.AuthScheme)
	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{baseURL: base, http: client, logger: logger}, nil
}

// BaseURL returns the upstream base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListRequest describes one call to a list endpoint.
type ListRequest struct {
	Op    string
	Path  string
	Query url.Values
	Token string
	// Auth marks endpoints that must not be called without a token.
	Auth bool
}

// List fetches a list endpoint and unwraps its envelope. A success:false
// envelope is a ServerRejected error; everything else that goes wrong is
// Transport.
func (c *Client) List(ctx context.Context, req ListRequest) (Envelope, error) {
	resp, err := c.do(ctx, call{
		op:     req.Op,
		method: http.MethodGet,
		path:   req.Path,
		query:  req.Query,
		token:  req.Token,
		auth:   req.Auth,
	})
	if err != nil {
		return Envelope{}, err
	}

	env, err := Normalize(resp.body)
	if err != nil {
		return env, c.envelopeError(req.Op, resp.status, env.Message, err)
	}
	return env, nil
}

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	token  string
	auth   bool
	body   any
}

type reply struct {
	status int
	body   []byte
}

func (c *Client) do(ctx context.Context, cl call) (reply, error) {
	if cl.auth && cl.token == "" {
		c.logger.Debug("upstream call refused", slog.String("op", cl.op), slog.String("reason", "no token"))
		return reply{}, &FetchError{Kind: KindTransport, Op: cl.op, Err: ErrMissingToken}
	}

	target := c.baseURL.JoinPath(cl.path)
	if len(cl.query) > 0 {
		target.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return reply{}, &FetchError{Kind: KindTransport, Op: cl.op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	if cl.token != "" {
		ctx = httpclient.WithToken(ctx, cl.token)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target.String(), body)
	if err != nil {
		return reply{}, &FetchError{Kind: KindTransport, Op: cl.op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("upstream call failed",
			slog.String("op", cl.op),
			slog.String("path", cl.path),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return reply{}, &FetchError{Kind: KindTransport, Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return reply{}, &FetchError{Kind: KindTransport, Op: cl.op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("upstream call",
		slog.String("op", cl.op),
		slog.String("method", cl.method),
		slog.String("path", cl.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := messageOf(raw)
		c.logger.Warn("upstream call rejected",
			slog.String("op", cl.op),
			slog.Int("status", resp.StatusCode),
			slog.String("message", message),
		)
		return reply{}, &FetchError{
			Kind:    KindTransport,
			Op:      cl.op,
			Status:  resp.StatusCode,
			Message: message,
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return reply{status: resp.StatusCode, body: raw}, nil
}

// object performs a call whose 2xx body must be a JSON object.
func (c *Client) object(ctx context.Context, cl call) (map[string]any, error) {
	resp, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	value, err := decodeBody(resp.body)
	if err != nil {
		return nil, c.envelopeError(cl.op, resp.status, "", err)
	}
	body, ok := value.(map[string]any)
	if !ok {
		return nil, c.envelopeError(cl.op, resp.status, "", ErrUnexpectedEnvelope)
	}
	if success, ok := body["success"].(bool); ok && !success {
		return nil, c.envelopeError(cl.op, resp.status, stringField(body, "message"), ErrRejected)
	}
	return body, nil
}

// mutate performs a write and returns the upstream message or fallback.
// Writes may answer with an empty body.
func (c *Client) mutate(ctx context.Context, cl call, fallback string) (string, error) {
	resp, err := c.do(ctx, cl)
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return fallback, nil
	}
	value, err := decodeBody(resp.body)
	if err != nil {
		return "", c.envelopeError(cl.op, resp.status, "", err)
	}
	body, _ := value.(map[string]any)
	message := stringField(body, "message")
	if success, ok := body["success"].(bool); ok && !success {
		return "", c.envelopeError(cl.op, resp.status, message, ErrRejected)
	}
	if message == "" {
		message = fallback
	}
	return message, nil
}

func (c *Client) envelopeError(op string, status int, message string, err error) error {
	kind := KindTransport
	if errors.Is(err, ErrRejected) {
		kind = KindServerRejected
	}
	c.logger.Warn("upstream response not usable",
		slog.String("op", op),
		slog.String("kind", string(kind)),
		slog.String("error", err.Error()),
	)
	return &FetchError{Kind: kind, Op: op, Status: status, Message: message, Err: err}
}

func messageOf(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
