package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/52poke/kvgate/internal/cache"
	httpx "github.com/52poke/kvgate/internal/http"
)

func newGateway(t *testing.T) (*httptest.Server, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := miniredis.RunT(t)
	store := cache.NewRedisStore(cache.NewRedisClient(cache.RedisOptions{Addr: m.Addr(), PoolSize: 4}))
	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(httpx.NewHandler(store, nil).Router())
	t.Cleanup(srv.Close)
	return srv, m
}

func TestScenario_Passes(t *testing.T) {
	srv, m := newGateway(t)

	s := NewScenario(NewClient(srv.URL), 2*time.Second, nil)
	var waited time.Duration
	s.Sleep = func(_ context.Context, d time.Duration) error {
		waited = d
		m.FastForward(d)
		return nil
	}

	require.NoError(t, s.Run(context.Background()))
	require.Equal(t, 2*time.Second, waited)
}

func TestScenario_FailsWhenEntryOutlivesTTL(t *testing.T) {
	srv, _ := newGateway(t)

	// the fake clock never advances, so the ttl entry is still there
	s := NewScenario(NewClient(srv.URL), time.Millisecond, nil)
	s.Sleep = func(context.Context, time.Duration) error { return nil }

	err := s.Run(context.Background())
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, "get after expiry", stepErr.Step)
	require.Equal(t, Response{Status: http.StatusOK, Body: "bar"}, stepErr.Got)
}

func TestScenario_TransportError(t *testing.T) {
	srv, _ := newGateway(t)
	srv.Close()

	err := NewScenario(NewClient(srv.URL), 0, nil).Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "step ping")
}

func TestClient_EscapesKey(t *testing.T) {
	srv, m := newGateway(t)
	require.NoError(t, m.Set("a b/c", "v"))

	resp, err := NewClient(srv.URL+"/").Get(context.Background(), "a b/c")
	require.NoError(t, err)
	require.Equal(t, Response{Status: http.StatusOK, Body: "v"}, resp)

	client := NewClient(srv.URL)
	_, err = client.Set(context.Background(), "a+b/c", "plus", nil)
	require.NoError(t, err)
	resp, err = client.Get(context.Background(), "a+b/c")
	require.NoError(t, err)
	require.Equal(t, Response{Status: http.StatusOK, Body: "plus"}, resp)
}

func TestSleep_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
}
