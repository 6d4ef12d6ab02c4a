package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/suPer8Hu/mall-console/internal/logger"
)

// TokenSource yields the bearer token of the current session, "" before login.
type TokenSource interface {
	Token() string
}

type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e Envelope) success() bool { return e.Code == 0 || e.Code == 200 }

type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	imageBase      string
	onUnauthorized func(token string)
}

type Option func(*Client)

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithImageBase enables rewriting of relative image paths in response data.
func WithImageBase(base string) Option {
	return func(c *Client) { c.imageBase = base }
}

// WithUnauthorizedHook runs whenever a request comes back with code 401. It
// receives the token that request carried.
func WithUnauthorizedHook(fn func(token string)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenKey struct{}

// WithToken makes requests made with ctx carry token instead of the one from
// the client's TokenSource.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *Client) token(ctx context.Context) string {
	if tok, ok := ctx.Value(tokenKey{}).(string); ok {
		return tok
	}
	if c.tokens != nil {
		return c.tokens.Token()
	}
	return ""
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodDelete, path, query, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "%s %s: encode body", method, path)
		}
		rd = bytes.NewReader(b)
	}
	return c.send(ctx, method, path, query, "application/json;charset=UTF-8", rd, out)
}

// Upload posts one file as multipart/form-data under field.
func (c *Client) Upload(ctx context.Context, path, field, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return errors.Wrapf(err, "POST %s: build form", path)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return errors.Wrapf(err, "POST %s: read file", path)
	}
	if err := mw.Close(); err != nil {
		return errors.Wrapf(err, "POST %s: build form", path)
	}
	return c.send(ctx, http.MethodPost, path, nil, mw.FormDataContentType(), &buf, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader, out any) error {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return errors.Wrapf(err, "%s %s: build request", method, path)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	tok := c.token(ctx)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Errorf("[http] %s %s: %v", method, path, err)
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	var env Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &ServerError{
			HTTPStatus: resp.StatusCode,
			Code:       resp.StatusCode,
			Message:    httpStatusMessage(resp.StatusCode, env.Message),
		}
		c.reject(method, path, tok, se)
		return se
	}
	if decodeErr != nil {
		return errors.Wrapf(decodeErr, "%s %s: decode envelope", method, path)
	}

	if !env.success() {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		se := &ServerError{HTTPStatus: resp.StatusCode, Code: env.Code, Message: msg}
		c.reject(method, path, tok, se)
		return se
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return c.decodeData(env.Data, out)
}

func (c *Client) reject(method, path, token string, se *ServerError) {
	logger.Warnf("[http] %s %s rejected: code=%d message=%s", method, path, se.Code, se.Message)
	if errors.Is(se, ErrUnauthorized) && c.onUnauthorized != nil {
		c.onUnauthorized(token)
	}
}

func (c *Client) decodeData(data json.RawMessage, out any) error {
	if c.imageBase == "" {
		return json.Unmarshal(data, out)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return errors.Wrap(err, "decode data")
	}
	rewriteImages(c.imageBase, generic)

	b, err := json.Marshal(generic)
	if err != nil {
		return errors.Wrap(err, "re-encode data")
	}
	return json.Unmarshal(b, out)
}
