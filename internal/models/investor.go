package models

import (
	"log/slog"
	"strings"

	"github.com/opencrew/pitchboard/internal/errors"
)

// Status tracks where an investor sits in the outreach pipeline.
type Status string

const (
	StatusToResearch   Status = "To Research"
	StatusReadyToPitch Status = "Ready to Pitch"
	StatusPitched      Status = "Pitched"
	StatusFollowUp     Status = "Follow-up"
	StatusPassed       Status = "Passed"
	StatusInvested     Status = "Invested"
)

var ErrInvalidStatus = errors.NewSentinel("invalid investor status")

// Statuses lists the pipeline statuses in board order.
func Statuses() []Status {
	return []Status{
		StatusToResearch,
		StatusReadyToPitch,
		StatusPitched,
		StatusFollowUp,
		StatusPassed,
		StatusInvested,
	}
}

// ParseStatus validates a raw status value coming from the API or a CSV import.
func ParseStatus(raw string) (Status, error) {
	for _, s := range Statuses() {
		if Status(raw) == s {
			return s, nil
		}
	}
	return "", errors.Wrap(ErrInvalidStatus, "parse status", slog.String("status", raw))
}

// Investor is an investor record in the outreach board. The JSON field names match
// the dashboard API. LikelihoodScore is computed from the company profile on read
// and never stored.
type Investor struct {
	ID                 int64  `db:"id" json:"id"`
	Name               string `db:"name" json:"name"`
	Fund               string `db:"fund" json:"fund"`
	Domain             string `db:"domain" json:"domain"`
	SectorFocus        string `db:"sector_focus" json:"sector_focus"`
	StageFocus         string `db:"stage_focus" json:"stage_focus"`
	PortfolioCompanies string `db:"portfolio_companies" json:"portfolio_companies"`
	NotesForPitch      string `db:"notes_for_pitch" json:"notes_for_pitch"`
	Bio                string `db:"bio" json:"bio"`
	Thesis             string `db:"thesis" json:"thesis"`
	LinkedInURL        string `db:"linkedin_url" json:"linkedin_url"`
	TwitterHandle      string `db:"twitter_handle" json:"twitter_handle"`
	AvatarURL          string `db:"avatar_url" json:"avatar_url"`
	Status             Status `db:"status" json:"status"`
	LikelihoodScore    int    `db:"-" json:"likelihood_score"`
}

// FirstName is the investor's name up to the first whitespace.
func (i Investor) FirstName() string {
	fields := strings.Fields(i.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// LastName is the investor's name after the last whitespace.
func (i Investor) LastName() string {
	fields := strings.Fields(i.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// PitchNotes splits the semicolon-delimited notes into individual talking points.
func (i Investor) PitchNotes() []string {
	var notes []string
	for _, note := range strings.Split(i.NotesForPitch, ";") {
		if note = strings.TrimSpace(note); note != "" {
			notes = append(notes, note)
		}
	}
	return notes
}

// FirstPortfolioCompany returns the first entry of the comma-delimited portfolio list.
func (i Investor) FirstPortfolioCompany() string {
	return firstCommaField(i.PortfolioCompanies)
}

// FirstSectorFocus returns the first entry of the comma-delimited sector focus.
func (i Investor) FirstSectorFocus() string {
	return firstCommaField(i.SectorFocus)
}

func firstCommaField(s string) string {
	first, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(first)
}

// CompanyProfile describes the pitching company. Likelihood scores are computed
// against it.
type CompanyProfile struct {
	// Sectors the company operates in, e.g. ["AI", "SaaS"].
	Sectors []string
	// Stage the company is raising at, e.g. "Pre-Seed".
	Stage string
}

// ParseCompanyProfile builds a profile from a comma-delimited sector list and a stage.
func ParseCompanyProfile(sectors, stage string) CompanyProfile {
	var parsed []string
	for _, s := range strings.Split(sectors, ",") {
		if s = strings.TrimSpace(s); s != "" {
			parsed = append(parsed, s)
		}
	}
	return CompanyProfile{Sectors: parsed, Stage: stage}
}

// Likelihood scores how likely the investor is to engage: +30 for a sector match,
// +20 for a stage match and +5 for a reachable twitter handle.
func (i Investor) Likelihood(profile CompanyProfile) int {
	score := 0
	for _, sector := range profile.Sectors {
		if strings.Contains(i.SectorFocus, sector) {
			score += 30
			break
		}
	}
	if profile.Stage != "" && profile.Stage == i.StageFocus {
		score += 20
	}
	if i.TwitterHandle != "" {
		score += 5
	}
	return score
}

// Band is the display classification of a likelihood score.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// LikelihoodBand classifies a score for display: above 70 is high, 40 to 70
// inclusive is medium, below 40 is low.
func LikelihoodBand(score int) Band {
	switch {
	case score > 70:
		return BandHigh
	case score >= 40:
		return BandMedium
	default:
		return BandLow
	}
}
