package verify

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client drives a running gateway over plain HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

type Response struct {
	Status int
	Body   string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Ping(ctx context.Context) (Response, error) {
	return c.do(ctx, http.MethodGet, "/ping", nil)
}

func (c *Client) Get(ctx context.Context, key string) (Response, error) {
	return c.do(ctx, http.MethodGet, "/get/"+url.PathEscape(key), nil)
}

// Set posts key and value; a nil ttl leaves the field out of the form.
func (c *Client) Set(ctx context.Context, key, value string, ttl *int) (Response, error) {
	form := url.Values{}
	form.Set("key", key)
	form.Set("value", value)
	if ttl != nil {
		form.Set("ttl", strconv.Itoa(*ttl))
	}
	return c.do(ctx, http.MethodPost, "/set", form)
}

func (c *Client) Del(ctx context.Context, key string) (Response, error) {
	form := url.Values{}
	form.Set("key", key)
	return c.do(ctx, http.MethodPost, "/del", form)
}

// do sends path verbatim, so callers escape path segments themselves.
func (c *Client) do(ctx context.Context, method, path string, form url.Values) (Response, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return Response{}, err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: resp.StatusCode, Body: string(b)}, nil
}
