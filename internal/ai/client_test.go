package ai_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opencrew/pitchboard/internal/ai"
	"github.com/opencrew/pitchboard/internal/models"
	"github.com/opencrew/pitchboard/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestClient_GenerateTips(t *testing.T) {
	t.Parallel()

	logger := testhelpers.NewLogger(io.Discard)
	investor := models.Investor{
		ID:          1,
		Name:        "Jane Doe",
		Fund:        "Acme Capital",
		SectorFocus: "AI, SaaS",
		StageFocus:  "Pre-Seed",
	}

	t.Run("returns the completion content", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/chat/completions", r.URL.Path)
			require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Lead with traction.\nMention Acme's dev tool bets.\nKeep the ask concrete."}}]}`))
		}))
		defer srv.Close()

		client := ai.NewClient("test-key", srv.URL, logger)
		tips, err := client.GenerateTips(context.Background(), investor)
		require.NoError(t, err)
		require.Contains(t, tips, "Lead with traction.")
	})

	t.Run("service failure maps to ErrTipsUnavailable", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := ai.NewClient("test-key", srv.URL, logger).GenerateTips(context.Background(), investor)
		require.ErrorIs(t, err, ai.ErrTipsUnavailable)
	})

	t.Run("empty completion maps to ErrTipsUnavailable", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		_, err := ai.NewClient("test-key", srv.URL, logger).GenerateTips(context.Background(), investor)
		require.ErrorIs(t, err, ai.ErrTipsUnavailable)
	})
}
