package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/opencrew/pitchboard/cmd/cli/investors"
	"github.com/opencrew/pitchboard/internal/errors"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(investors.Group)
	rootCmd.AddCommand(investors.Import)
	rootCmd.AddCommand(investors.Template)
}

var rootCmd = &cobra.Command{
	Use:  "pitchboard-cli",
	Long: `Command line utilities for PitchBoard https://github.com/opencrew/pitchboard`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
