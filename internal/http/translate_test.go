package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func formRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/set", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func requireRequestError(t *testing.T, err error, status int) {
	t.Helper()
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, status, reqErr.Status)
}

func TestDecodeSet(t *testing.T) {
	req, err := DecodeSet(formRequest("key=foo&value=bar"))
	require.NoError(t, err)
	require.Equal(t, SetRequest{Key: "foo", Value: "bar"}, req)

	req, err = DecodeSet(formRequest("key=foo&value=bar&ttl=1"))
	require.NoError(t, err)
	require.NotNil(t, req.TTL)
	require.EqualValues(t, 1, *req.TTL)

	req, err = DecodeSet(formRequest("key=a%20b&value=x%26y&ttl=-5"))
	require.NoError(t, err)
	require.Equal(t, "a b", req.Key)
	require.Equal(t, "x&y", req.Value)
	require.EqualValues(t, -5, *req.TTL)
}

func TestDecodeSet_EmptyValueAllowed(t *testing.T) {
	req, err := DecodeSet(formRequest("key=foo&value="))
	require.NoError(t, err)
	require.Equal(t, "", req.Value)
}

func TestDecodeSet_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing key":   "value=bar",
		"missing value": "key=foo",
		"ttl not int":   "key=foo&value=bar&ttl=soon",
		"ttl empty":     "key=foo&value=bar&ttl=",
		"ttl overflow":  "key=foo&value=bar&ttl=4294967296",
		"bad escape":    "key=%zz&value=bar",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSet(formRequest(body))
			requireRequestError(t, err, http.StatusBadRequest)
		})
	}
}

func TestDecodeSet_WrongContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/set", strings.NewReader(`{"key":"foo"}`))
	req.Header.Set("Content-Type", "application/json")
	_, err := DecodeSet(req)
	requireRequestError(t, err, http.StatusUnsupportedMediaType)

	req = httptest.NewRequest(http.MethodPost, "/set", strings.NewReader("key=foo&value=bar"))
	_, err = DecodeSet(req)
	requireRequestError(t, err, http.StatusUnsupportedMediaType)
}

func TestDecodeSet_IgnoresQueryString(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/set?key=foo&value=bar", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	_, err := DecodeSet(req)
	requireRequestError(t, err, http.StatusBadRequest)
}

func TestDecodeDel(t *testing.T) {
	req, err := DecodeDel(formRequest("key=foo"))
	require.NoError(t, err)
	require.Equal(t, "foo", req.Key)

	_, err = DecodeDel(formRequest("value=foo"))
	requireRequestError(t, err, http.StatusBadRequest)
}

func TestPathKey(t *testing.T) {
	cases := map[string]string{
		"/get/foo":       "foo",
		"/get/a%20b":     "a b",
		"/get/a+b":       "a+b",
		"/get/a+b%2Fc":   "a+b/c",
		"/get/a%2Bb%2Fc": "a+b/c",
	}
	for target, want := range cases {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		require.Equal(t, want, PathKey(req, "/get/", "fallback"), target)
	}

	req := httptest.NewRequest(http.MethodGet, "/other/foo", nil)
	require.Equal(t, "fallback", PathKey(req, "/get/", "fallback"))
}
