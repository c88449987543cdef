package httpx

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const formContentType = "application/x-www-form-urlencoded"

type SetRequest struct {
	Key   string
	Value string
	TTL   *int32
}

type DelRequest struct {
	Key string
}

// RequestError is a malformed request rejected before the backend is called.
type RequestError struct {
	Status int
	Msg    string
}

func (e *RequestError) Error() string { return e.Msg }

func badRequest(format string, args ...any) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Msg: fmt.Sprintf(format, args...)}
}

// PathKey returns the path segment after prefix, percent-decoded once with
// path rules ("+" stays literal). fallback is used when the path does not
// carry the prefix or fails to decode.
func PathKey(r *http.Request, prefix, fallback string) string {
	raw, ok := strings.CutPrefix(r.URL.EscapedPath(), prefix)
	if !ok {
		return fallback
	}
	key, err := url.PathUnescape(raw)
	if err != nil {
		return fallback
	}
	return key
}

func DecodeSet(r *http.Request) (SetRequest, error) {
	form, err := readForm(r)
	if err != nil {
		return SetRequest{}, err
	}
	key, err := required(form, "key")
	if err != nil {
		return SetRequest{}, err
	}
	value, err := required(form, "value")
	if err != nil {
		return SetRequest{}, err
	}
	req := SetRequest{Key: key, Value: value}
	if raw, ok := lookup(form, "ttl"); ok {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return SetRequest{}, badRequest("invalid ttl %q: expected a signed integer", raw)
		}
		ttl := int32(n)
		req.TTL = &ttl
	}
	return req, nil
}

func DecodeDel(r *http.Request) (DelRequest, error) {
	form, err := readForm(r)
	if err != nil {
		return DelRequest{}, err
	}
	key, err := required(form, "key")
	if err != nil {
		return DelRequest{}, err
	}
	return DelRequest{Key: key}, nil
}

// readForm accepts only URL-encoded bodies; query string values are ignored.
func readForm(r *http.Request) (url.Values, error) {
	ct := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(ct)
	if ct == "" || err != nil || mediaType != formContentType {
		return nil, &RequestError{
			Status: http.StatusUnsupportedMediaType,
			Msg:    "expected content type " + formContentType,
		}
	}
	if err := r.ParseForm(); err != nil {
		return nil, badRequest("invalid form body: %v", err)
	}
	return r.PostForm, nil
}

func lookup(form url.Values, name string) (string, bool) {
	vv, ok := form[name]
	if !ok || len(vv) == 0 {
		return "", false
	}
	return vv[0], true
}

func required(form url.Values, name string) (string, error) {
	v, ok := lookup(form, name)
	if !ok {
		return "", badRequest("missing field %q", name)
	}
	return v, nil
}
