package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapwallet/internal/keys"
	"github.com/leapstack-labs/leapwallet/internal/testutil"
)

func testRelay(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var subscribes atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("GET /challenge", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"challenge": "nonce-1234"})
	})
	mux.HandleFunc("POST /subscribe", func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		subscribes.Add(1)
	})
	mux.HandleFunc("POST /unsubscribe", func(http.ResponseWriter, *http.Request) {})
	mux.HandleFunc("GET /poll", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]Message{})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &subscribes
}

func testSecret(t *testing.T) string {
	t.Helper()
	secret, _, err := keys.GenerateKeypair()
	require.NoError(t, err)
	return secret
}

func TestStartStop(t *testing.T) {
	srv, subscribes := testRelay(t)
	c := NewClient(testutil.NewTestLogger(t))

	require.False(t, c.Listening())
	require.NoError(t, c.Start(srv.URL, testSecret(t)))
	require.True(t, c.Listening())
	require.Equal(t, "nonce-1234", c.Challenge())
	require.NotEmpty(t, c.Address())
	require.EqualValues(t, 1, subscribes.Load())

	c.Stop()
	require.False(t, c.Listening())

	// Stopping again is a no-op.
	c.Stop()
	require.False(t, c.Listening())
}

func TestStartTwice(t *testing.T) {
	srv, _ := testRelay(t)
	c := NewClient(testutil.NewTestLogger(t))

	require.NoError(t, c.Start(srv.URL, testSecret(t)))
	defer c.Stop()
	require.Error(t, c.Start(srv.URL, testSecret(t)))
}

func TestSubscribeRequiresStart(t *testing.T) {
	c := NewClient(testutil.NewTestLogger(t))
	require.ErrorIs(t, c.Subscribe(), ErrNotStarted)
	require.ErrorIs(t, c.Unsubscribe(), ErrNotStarted)
}

func TestSubscribeResubscribes(t *testing.T) {
	srv, subscribes := testRelay(t)
	c := NewClient(testutil.NewTestLogger(t))

	require.NoError(t, c.Start(srv.URL, testSecret(t)))
	defer c.Stop()

	require.NoError(t, c.Subscribe())
	require.EqualValues(t, 2, subscribes.Load())
	require.NoError(t, c.Unsubscribe())
}

func TestStartBadSecret(t *testing.T) {
	srv, _ := testRelay(t)
	c := NewClient(testutil.NewTestLogger(t))

	require.Error(t, c.Start(srv.URL, "not-hex"))
	require.False(t, c.Listening())
}
