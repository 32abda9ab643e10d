package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opencrew/pitchboard/internal/hunter"
	"github.com/opencrew/pitchboard/internal/models"
	"github.com/opencrew/pitchboard/internal/pitch"
	"github.com/stretchr/testify/require"
)

func Test_application_pitchWorkflow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	finder := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"email":"jane@acme.vc"}}`))
	}))
	t.Cleanup(finder.Close)

	srv := startTestServer(t, map[string]string{"HUNTER_BASE_URL": finder.URL})
	client := srv.Client()

	resp, err := client.PostJSON(ctx, "/api/add_investor", map[string]string{
		"name":                "Jane Doe",
		"fund":                "Acme Capital",
		"domain":              "acme.vc",
		"portfolio_companies": "Stripe, Figma",
		"sector_focus":        "AI, SaaS",
		"linkedin_url":        "https://linkedin.com/in/janedoe",
	})
	require.NoError(t, err)
	var created models.Investor
	require.NoError(t, decodeBody(resp, &created))

	t.Run("state without an open session is not found", func(t *testing.T) {
		resp, err := client.Get(ctx, "/api/pitch/state")
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("open starts an idle session", func(t *testing.T) {
		resp, err := client.PostJSON(ctx, "/api/pitch/open", map[string]int64{"id": created.ID})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var state pitch.State
		require.NoError(t, decodeBody(resp, &state))
		require.Equal(t, pitch.PhaseIdle, state.Phase)
		require.Equal(t, created.ID, state.InvestorID)
		require.False(t, state.HasMedia)
	})

	t.Run("resolve email through the session", func(t *testing.T) {
		resp, err := client.PostJSON(ctx, "/api/pitch/find_email", nil)
		require.NoError(t, err)
		var resolution hunter.Resolution
		require.NoError(t, decodeBody(resp, &resolution))
		require.Equal(t, hunter.StateFound, resolution.State)
		require.Equal(t, "jane@acme.vc", resolution.Email)
	})

	t.Run("send is refused without a hosted video", func(t *testing.T) {
		resp, err := client.PostJSON(ctx, "/api/pitch/send", nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		var body map[string]string
		require.NoError(t, decodeBody(resp, &body))
		require.Contains(t, body["error"], "hosted video")
	})

	t.Run("upload is refused before a recording exists", func(t *testing.T) {
		resp, err := client.PostJSON(ctx, "/api/pitch/upload", nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("stop outside recording leaves the session idle", func(t *testing.T) {
		resp, err := client.PostJSON(ctx, "/api/pitch/record/stop", nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var state pitch.State
		require.NoError(t, decodeBody(resp, &state))
		require.Equal(t, pitch.PhaseIdle, state.Phase)
	})

	t.Run("user edits to the email body stick", func(t *testing.T) {
		resp, err := client.PostJSON(ctx, "/api/pitch/email_body", map[string]string{"body": "Hi Jane, short version."})
		require.NoError(t, err)
		var state pitch.State
		require.NoError(t, decodeBody(resp, &state))
		require.Equal(t, "Hi Jane, short version.", state.EmailBody)
	})

	t.Run("linkedin prep needs only identity", func(t *testing.T) {
		resp, err := client.Get(ctx, "/api/pitch/linkedin")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var prep pitch.LinkedInPrep
		require.NoError(t, decodeBody(resp, &prep))
		require.Equal(t, "https://linkedin.com/in/janedoe", prep.ProfileURL)
		require.Contains(t, prep.Message, "I saw your work with Stripe")
	})

	t.Run("reopen replaces the session wholesale", func(t *testing.T) {
		resp, err := client.PostJSON(ctx, "/api/pitch/open", map[string]int64{"id": created.ID})
		require.NoError(t, err)
		var state pitch.State
		require.NoError(t, decodeBody(resp, &state))
		require.Equal(t, pitch.PhaseIdle, state.Phase)
		require.Empty(t, state.EmailBody)
		require.Equal(t, hunter.StateUnresolved, state.Resolution.State)
	})

	t.Run("close discards the session", func(t *testing.T) {
		resp, err := client.PostJSON(ctx, "/api/pitch/close", nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		resp, err = client.Get(ctx, "/api/pitch/state")
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
