package models_test

import (
	"strings"
	"testing"

	"github.com/opencrew/pitchboard/internal/models"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    models.Status
		wantErr bool
	}{
		{name: "to research", raw: "To Research", want: models.StatusToResearch},
		{name: "invested", raw: "Invested", want: models.StatusInvested},
		{name: "follow-up", raw: "Follow-up", want: models.StatusFollowUp},
		{name: "empty", raw: "", wantErr: true},
		{name: "unknown", raw: "Ghosted", wantErr: true},
		{name: "wrong case", raw: "pitched", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := models.ParseStatus(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, models.ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLikelihoodBand(t *testing.T) {
	tests := []struct {
		score int
		want  models.Band
	}{
		{score: 85, want: models.BandHigh},
		{score: 71, want: models.BandHigh},
		{score: 70, want: models.BandMedium},
		{score: 55, want: models.BandMedium},
		{score: 40, want: models.BandMedium},
		{score: 39, want: models.BandLow},
		{score: 10, want: models.BandLow},
		{score: 0, want: models.BandLow},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, models.LikelihoodBand(tt.score), "score %d", tt.score)
	}
}

func TestInvestor_Likelihood(t *testing.T) {
	profile := models.ParseCompanyProfile("AI, SaaS", "Pre-Seed")

	tests := []struct {
		name     string
		investor models.Investor
		want     int
	}{
		{
			name: "full match",
			investor: models.Investor{
				SectorFocus:   "AI, Fintech",
				StageFocus:    "Pre-Seed",
				TwitterHandle: "@jane",
			},
			want: 55,
		},
		{
			name: "sector only",
			investor: models.Investor{
				SectorFocus: "SaaS",
				StageFocus:  "Series A",
			},
			want: 30,
		},
		{
			name:     "no match",
			investor: models.Investor{SectorFocus: "Biotech", StageFocus: "Seed"},
			want:     0,
		},
		{
			name: "sector matched once even when both sectors hit",
			investor: models.Investor{
				SectorFocus: "AI, SaaS",
				StageFocus:  "Pre-Seed",
			},
			want: 50,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.investor.Likelihood(profile))
		})
	}
}

func TestInvestor_helpers(t *testing.T) {
	investor := models.Investor{
		Name:               "Jane van Doe",
		SectorFocus:        "AI, SaaS",
		PortfolioCompanies: "OpenCrew, Acme",
		NotesForPitch:      "Loves AI agents; Backed two dev tools ; ",
	}
	require.Equal(t, "Jane", investor.FirstName())
	require.Equal(t, "Doe", investor.LastName())
	require.Equal(t, "OpenCrew", investor.FirstPortfolioCompany())
	require.Equal(t, "AI", investor.FirstSectorFocus())
	require.Equal(t, []string{"Loves AI agents", "Backed two dev tools"}, investor.PitchNotes())

	empty := models.Investor{}
	require.Equal(t, "", empty.FirstName())
	require.Nil(t, empty.PitchNotes())
}

func TestParseInvestorCSV(t *testing.T) {
	t.Run("round trips the template columns", func(t *testing.T) {
		csv := models.CSVTemplate() +
			"Jane Doe,Acme Capital,acme.vc,\"AI, SaaS\",Pre-Seed,OpenCrew,Loves agents;Fast replies,Bio here,Thesis here,https://linkedin.com/in/janedoe,@jane,https://avatars/1.png,Ready to Pitch\n" +
			"John Roe,Beta Fund,beta.vc,,,,,,,,,,\n"
		investors, err := models.ParseInvestorCSV(strings.NewReader(csv))
		require.NoError(t, err)
		require.Len(t, investors, 2)

		jane := investors[0]
		require.Equal(t, "Jane Doe", jane.Name)
		require.Equal(t, "Acme Capital", jane.Fund)
		require.Equal(t, "acme.vc", jane.Domain)
		require.Equal(t, "AI, SaaS", jane.SectorFocus)
		require.Equal(t, models.StatusReadyToPitch, jane.Status)

		// Missing status defaults to the start of the pipeline.
		require.Equal(t, models.StatusToResearch, investors[1].Status)
	})

	t.Run("skips rows without a name", func(t *testing.T) {
		csv := "name,fund\n,Acme Capital\nJane Doe,Acme Capital\n"
		investors, err := models.ParseInvestorCSV(strings.NewReader(csv))
		require.NoError(t, err)
		require.Len(t, investors, 1)
	})

	t.Run("requires a name column", func(t *testing.T) {
		_, err := models.ParseInvestorCSV(strings.NewReader("fund,domain\nAcme,acme.vc\n"))
		require.ErrorIs(t, err, models.ErrMissingNameColumn)
	})

	t.Run("invalid status falls back to To Research", func(t *testing.T) {
		csv := "name,status\nJane Doe,Ghosted\n"
		investors, err := models.ParseInvestorCSV(strings.NewReader(csv))
		require.NoError(t, err)
		require.Equal(t, models.StatusToResearch, investors[0].Status)
	})
}
