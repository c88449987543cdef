package verify

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type step struct {
	name   string
	call   func(ctx context.Context) (Response, error)
	status int
	body   string
}

// StepError names the first scenario step whose response did not match.
type StepError struct {
	Step string
	Want Response
	Got  Response
}

func (e *StepError) Error() string {
	return "step " + e.Step + ": want " + describe(e.Want) + ", got " + describe(e.Got)
}

func describe(r Response) string {
	return http.StatusText(r.Status) + " " + `"` + r.Body + `"`
}

// Scenario is the end-to-end check: basic set/get/del, then a ttl write that
// must disappear after Wait.
type Scenario struct {
	Client *Client
	Key    string
	Value  string
	TTL    int
	Wait   time.Duration
	// Sleep defaults to a context-aware timer; tests replace it to advance a
	// fake backend clock instead.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *zap.Logger
}

func NewScenario(client *Client, wait time.Duration, logger *zap.Logger) *Scenario {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scenario{
		Client: client,
		Key:    "foo",
		Value:  "bar",
		TTL:    1,
		Wait:   wait,
		Sleep:  sleep,
		Logger: logger,
	}
}

func (s *Scenario) Run(ctx context.Context) error {
	ttl := s.TTL
	get := func(ctx context.Context) (Response, error) { return s.Client.Get(ctx, s.Key) }

	steps := []step{
		{"ping", s.Client.Ping, http.StatusOK, "pong"},
		{"set", func(ctx context.Context) (Response, error) {
			return s.Client.Set(ctx, s.Key, s.Value, nil)
		}, http.StatusOK, "set ok"},
		{"get", get, http.StatusOK, s.Value},
		{"del", func(ctx context.Context) (Response, error) {
			return s.Client.Del(ctx, s.Key)
		}, http.StatusOK, "del ok"},
		{"get after del", get, http.StatusNotFound, "not found"},
		{"set with ttl", func(ctx context.Context) (Response, error) {
			return s.Client.Set(ctx, s.Key, s.Value, &ttl)
		}, http.StatusOK, "set ok"},
		{"get before expiry", get, http.StatusOK, s.Value},
		{"wait", func(ctx context.Context) (Response, error) {
			return Response{}, s.Sleep(ctx, s.Wait)
		}, 0, ""},
		{"get after expiry", get, http.StatusNotFound, "not found"},
	}

	for _, st := range steps {
		resp, err := st.call(ctx)
		if err != nil {
			return errors.Wrapf(err, "step %s", st.name)
		}
		want := Response{Status: st.status, Body: st.body}
		if resp != want {
			return &StepError{Step: st.name, Want: want, Got: resp}
		}
		s.Logger.Info("step passed", zap.String("step", st.name))
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
