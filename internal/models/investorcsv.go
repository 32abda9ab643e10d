package models

import (
	"encoding/csv"
	"io"
	"log/slog"
	"strings"

	"github.com/opencrew/pitchboard/internal/errors"
)

// csvColumns is the canonical column order for investor CSV imports and the
// downloadable template.
var csvColumns = []string{
	"name",
	"fund",
	"domain",
	"sector_focus",
	"stage_focus",
	"portfolio_companies",
	"notes_for_pitch",
	"bio",
	"thesis",
	"linkedin_url",
	"twitter_handle",
	"avatar_url",
	"status",
}

var ErrMissingNameColumn = errors.NewSentinel("CSV must have a name column")

// CSVTemplate returns the header row for the investor import template.
func CSVTemplate() string {
	return strings.Join(csvColumns, ",") + "\n"
}

// ParseInvestorCSV reads investor records from a header-mapped CSV stream.
// Unknown columns are ignored, missing columns default to empty. A missing or
// invalid status defaults to "To Research".
func ParseInvestorCSV(r io.Reader) ([]Investor, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read CSV header")
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, ErrMissingNameColumn
	}

	field := func(record []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var investors []Investor
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read CSV record", slog.Int("line", line))
		}
		investor := Investor{
			Name:               field(record, "name"),
			Fund:               field(record, "fund"),
			Domain:             field(record, "domain"),
			SectorFocus:        field(record, "sector_focus"),
			StageFocus:         field(record, "stage_focus"),
			PortfolioCompanies: field(record, "portfolio_companies"),
			NotesForPitch:      field(record, "notes_for_pitch"),
			Bio:                field(record, "bio"),
			Thesis:             field(record, "thesis"),
			LinkedInURL:        field(record, "linkedin_url"),
			TwitterHandle:      field(record, "twitter_handle"),
			AvatarURL:          field(record, "avatar_url"),
		}
		if investor.Name == "" {
			continue
		}
		status, err := ParseStatus(field(record, "status"))
		if err != nil {
			status = StatusToResearch
		}
		investor.Status = status
		investors = append(investors, investor)
	}
	return investors, nil
}
