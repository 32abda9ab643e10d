package main

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/opencrew/pitchboard/internal/e2etest"
	"github.com/stretchr/testify/require"
)

// decodeBody reads a JSON response body into out and closes it.
func decodeBody(resp *http.Response, out any) error {
	return e2etest.DecodeJSON(resp, out)
}

// testEnv builds a lookupEnv with sane test defaults plus per-test overrides,
// typically the base URLs of httptest fakes for the external services.
func testEnv(overrides map[string]string) func(string) (string, bool) {
	env := map[string]string{
		"PITCHBOARD_ADDR":       "localhost:0",
		"PITCHBOARD_SQLITE_URL": ":memory:",
	}
	for k, v := range overrides {
		env[k] = v
	}
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// startTestServer boots the full application on a random port with an
// in-memory database and returns a client for it.
func startTestServer(t *testing.T, overrides map[string]string) *e2etest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv, err := e2etest.StartServer(ctx, io.Discard, testEnv(overrides), run)
	require.NoError(t, err)
	return srv
}
