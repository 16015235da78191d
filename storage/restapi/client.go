package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Body       string
}

func (err *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", err.StatusCode, err.Body)
}

// ErrUnauthorized means the backend rejected our credentials; the session
// must re-authenticate.
var ErrUnauthorized = errors.New("api: unauthorized")

// Client talks to the school backend's REST API. It is the single transport
// shared by the student, course and attendance repositories.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  core.Logger
	loc     *time.Location
}

func NewClient(conf *core.Config, tokens TokenSource, logger core.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.API.BaseURL, "/"),
		http:    &http.Client{Timeout: conf.API.Timeout},
		tokens:  tokens,
		logger:  logger,
		loc:     conf.Location(),
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "api: encoding request")
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return errors.Wrap(err, "api: building request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "api: %s %s", method, path)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := ioutil.ReadAll(io.LimitReader(res.Body, 1<<10))
		return &APIError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "api: decoding %s %s", method, path)
	}
	return nil
}
