// Package investors holds the CLI commands for bulk investor management.
package investors

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/opencrew/pitchboard/internal/db"
	"github.com/opencrew/pitchboard/internal/errors"
	"github.com/opencrew/pitchboard/internal/models"
	"github.com/opencrew/pitchboard/internal/repositories"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "investors",
	Title: "Investor operations",
}

func init() {
	Import.Flags().String("sqlite-url", "./pitchboard.sqlite", "path to the SQLite database")
}

var Import = &cobra.Command{
	Use:     "import [csv-file]",
	GroupID: "investors",
	Short:   "Bulk-import investors",
	Long:    `Imports investors from a CSV file into the outreach board. Use the template command for the expected columns.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

		sqliteURL, err := cmd.Flags().GetString("sqlite-url")
		if err != nil {
			return errors.Wrap(err, "read sqlite-url flag")
		}

		var file io.ReadCloser
		if file, err = os.Open(args[0]); err != nil {
			return errors.Wrap(err, "open CSV file")
		}
		defer func() {
			_ = file.Close()
		}()

		parsed, err := models.ParseInvestorCSV(file)
		if err != nil {
			return errors.Wrap(err, "parse CSV")
		}

		database, err := db.NewDatabase(ctx, sqliteURL, logger)
		if err != nil {
			return errors.Wrap(err, "connect database")
		}
		defer func() {
			_ = database.Close()
		}()

		imported, err := repositories.NewInvestorRepository(database, logger).BulkInsert(ctx, parsed)
		if err != nil {
			return errors.Wrap(err, "import investors")
		}
		cmd.Printf("imported %d investors\n", imported)
		return nil
	},
}

var Template = &cobra.Command{
	Use:     "template",
	GroupID: "investors",
	Short:   "Print the CSV import template",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprint(cmd.OutOrStdout(), models.CSVTemplate())
	},
}
